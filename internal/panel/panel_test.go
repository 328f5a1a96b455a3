package panel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

const sourceText = "The patient showed improvement. Dosage was increased to 10mg daily over six weeks."

func testDocument() Document {
	return Document{
		Sources: domain.SourceDocument{"1": sourceText},
		PageReferences: domain.PageReference{
			"1": {
				{StartWord: "Dosage", EndWord: "weeks"},
				{StartWord: "Nonexistent", EndWord: "weeks"},
			},
		},
	}
}

func openPanel(t *testing.T) *Panel {
	t.Helper()
	p := New("panel-1", "user-1", domain.PanelReferencesSidebar)
	require.NoError(t, p.Open("summary-1", testDocument()))
	return p
}

func TestPanel_StartsIdle(t *testing.T) {
	p := openPanel(t)

	snap := p.Snapshot()
	assert.Equal(t, domain.PanelIdle, snap.State)
	assert.Nil(t, snap.Active)
	assert.Equal(t, domain.PanelPlaceholder, snap.Placeholder)
	assert.Equal(t, "summary-1", snap.SummaryID)
}

func TestPanel_ClickFound(t *testing.T) {
	p := openPanel(t)

	snap, err := p.Click("1", 0)
	require.NoError(t, err)

	assert.Equal(t, domain.PanelResolvedFound, snap.State)
	require.NotNil(t, snap.Active)
	assert.Equal(t, "1", snap.Active.Number)
	assert.NotNil(t, snap.Active.HighlightedRange)
	assert.Empty(t, snap.Placeholder)
}

func TestPanel_ClickError(t *testing.T) {
	p := openPanel(t)

	snap, err := p.Click("1", 1)
	require.NoError(t, err)

	assert.Equal(t, domain.PanelResolvedError, snap.State)
	require.NotNil(t, snap.Active)
	assert.True(t, snap.Active.IsError)
	assert.Contains(t, snap.Active.ErrorMessage, "[1]")
	assert.Equal(t, sourceText, snap.Active.FullText)
}

func TestPanel_ClickMissingSource(t *testing.T) {
	p := openPanel(t)

	snap, err := p.Click("5", 0)
	require.NoError(t, err)

	assert.Equal(t, domain.PanelResolvedError, snap.State)
	assert.False(t, snap.Active.HasText())
}

func TestPanel_ToggleSameOccurrence(t *testing.T) {
	p := openPanel(t)

	_, err := p.Click("1", 0)
	require.NoError(t, err)

	snap, err := p.Click("1", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.PanelIdle, snap.State)
	assert.Nil(t, snap.Active)
	assert.False(t, snap.Closed)

	snap, err = p.Click("1", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.PanelResolvedFound, snap.State, "third click resolves again")
}

func TestPanel_ClickReplacesActive(t *testing.T) {
	p := openPanel(t)

	_, err := p.Click("1", 0)
	require.NoError(t, err)
	snap, err := p.Click("1", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, snap.Active.Index)
	assert.Equal(t, domain.PanelResolvedError, snap.State)
}

func TestPanel_OpenDiscardsActive(t *testing.T) {
	p := openPanel(t)
	_, err := p.Click("1", 0)
	require.NoError(t, err)

	require.NoError(t, p.Open("summary-2", testDocument()))

	snap := p.Snapshot()
	assert.Nil(t, snap.Active)
	assert.Equal(t, "summary-2", snap.SummaryID)
}

func TestPanel_Close(t *testing.T) {
	p := openPanel(t)
	_, err := p.Click("1", 0)
	require.NoError(t, err)

	p.Close()
	p.Close()

	snap := p.Snapshot()
	assert.True(t, snap.Closed)
	assert.Nil(t, snap.Active)
	assert.True(t, p.Closed())

	_, err = p.Click("1", 0)
	assert.True(t, errors.Is(err, domain.ErrPanelClosed))
	assert.True(t, errors.Is(p.Open("summary-3", testDocument()), domain.ErrPanelClosed))
}

func TestPanel_NegativeIndex(t *testing.T) {
	p := openPanel(t)
	_, err := p.Click("1", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPanel_ClickElement(t *testing.T) {
	p := openPanel(t)

	snap, fired, err := p.ClickElement(map[string]string{"citation": "1", "occurrence": "0"})
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, domain.PanelResolvedFound, snap.State)

	snap, fired, err = p.ClickElement(map[string]string{"citation-placeholder": "1"})
	require.NoError(t, err)
	assert.False(t, fired)
	assert.Equal(t, domain.PanelResolvedFound, snap.State, "inert click leaves state unchanged")
}

func TestPanel_SnapshotsNeverReportResolving(t *testing.T) {
	p := openPanel(t)

	clicks := []struct {
		number string
		index  int
	}{
		{"1", 0}, {"1", 1}, {"1", 1}, {"2", 0}, {"1", 5},
	}
	for _, c := range clicks {
		snap, err := p.Click(c.number, c.index)
		require.NoError(t, err)
		assert.NotEqual(t, domain.PanelResolving, snap.State)
		assert.NotEqual(t, domain.PanelResolving, p.Snapshot().State)
	}
}
