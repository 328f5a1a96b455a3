// Package panel holds the per-panel state machine shared by the guideline
// modal, the mobile modal and the references sidebar.
package panel

import (
	"sync"
	"time"

	"github.com/custodia-labs/clinref/internal/citations"
	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/reference"
)

// Document is the unit a panel resolves clicks against. Sources and page
// references arrive together in one backend response.
type Document struct {
	Sources        domain.SourceDocument
	PageReferences domain.PageReference
	Citations      domain.CitationMap
}

// Panel tracks the active citation of one open panel.
//
// Clicks resolve synchronously against the in-memory document. Clicking the
// active occurrence again clears it and returns the panel to idle. After
// Close every mutating call fails with domain.ErrPanelClosed.
type Panel struct {
	mu sync.Mutex

	id        string
	ownerID   string
	kind      domain.PanelKind
	summaryID string
	doc       Document

	state     domain.PanelState
	active    *domain.ActiveReference
	closed    bool
	updatedAt time.Time

	now func() time.Time
}

// New creates an idle panel
func New(id, ownerID string, kind domain.PanelKind) *Panel {
	p := &Panel{
		id:      id,
		ownerID: ownerID,
		kind:    kind,
		state:   domain.PanelIdle,
		now:     time.Now,
	}
	p.updatedAt = p.now()
	return p
}

// ID returns the panel ID
func (p *Panel) ID() string { return p.id }

// OwnerID returns the ID of the user that opened the panel
func (p *Panel) OwnerID() string { return p.ownerID }

// Open binds the panel to a document. Any active reference from a previous
// document is discarded.
func (p *Panel) Open(summaryID string, doc Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return domain.ErrPanelClosed
	}
	p.summaryID = summaryID
	p.doc = doc
	p.active = nil
	p.state = domain.PanelIdle
	p.updatedAt = p.now()
	return nil
}

// Click resolves the index-th occurrence of citation number. Clicking the
// currently active occurrence clears it instead.
func (p *Panel) Click(number string, index int) (domain.PanelSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return domain.PanelSnapshot{}, domain.ErrPanelClosed
	}
	if index < 0 {
		return domain.PanelSnapshot{}, domain.ErrInvalidInput
	}

	if p.active.Same(number, index) {
		p.active = nil
		p.state = domain.PanelIdle
		p.updatedAt = p.now()
		return p.snapshotLocked(), nil
	}

	// Resolution runs under the lock, so resolving is never observable.
	active := reference.Resolve(p.doc.Sources, p.doc.PageReferences, number, index)
	p.active = &active
	if active.IsError {
		p.state = domain.PanelResolvedError
	} else {
		p.state = domain.PanelResolvedFound
	}
	p.updatedAt = p.now()
	return p.snapshotLocked(), nil
}

// ClickElement handles a delegated click given the clicked element's
// dataset. The boolean is false when the element is not an active citation
// marker, in which case the panel is unchanged.
func (p *Panel) ClickElement(dataset map[string]string) (domain.PanelSnapshot, bool, error) {
	var (
		snap domain.PanelSnapshot
		err  error
	)
	fired := citations.NewDispatcher(func(c citations.Click) {
		snap, err = p.Click(c.Number, c.Occurrence)
	}).Dispatch(dataset)
	if !fired {
		return p.Snapshot(), false, nil
	}
	return snap, true, err
}

// Close tears the panel down and discards the active reference. Closing
// twice is a no-op.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.active = nil
	p.state = domain.PanelIdle
	p.doc = Document{}
	p.updatedAt = p.now()
}

// Closed reports whether the panel was torn down
func (p *Panel) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Snapshot returns the current externally visible state
func (p *Panel) Snapshot() domain.PanelSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Panel) lastUpdated() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updatedAt
}

func (p *Panel) snapshotLocked() domain.PanelSnapshot {
	snap := domain.PanelSnapshot{
		ID:        p.id,
		Kind:      p.kind,
		SummaryID: p.summaryID,
		State:     p.state,
		Closed:    p.closed,
		UpdatedAt: p.updatedAt,
	}
	if p.active != nil {
		active := *p.active
		snap.Active = &active
	} else {
		snap.Placeholder = domain.PanelPlaceholder
	}
	return snap
}
