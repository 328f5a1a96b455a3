package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/custodia-labs/clinref/internal/catalog"
	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
	"github.com/custodia-labs/clinref/internal/core/ports/driven/mocks"
)

const dosageSource = "The patient showed improvement. Dosage was increased to 10mg daily over six weeks."

func newTestGuidelineService(t *testing.T) (*mocks.MockGuidelineAPI, *mocks.MockSummaryCache, *guidelineService) {
	api := &mocks.MockGuidelineAPI{}
	cache := mocks.NewMockSummaryCache()
	svc := NewGuidelineService(api, cache, catalog.Default(), nil, zaptest.NewLogger(t)).(*guidelineService)
	return api, cache, svc
}

func summaryPayload() *driven.SummaryPayload {
	return &driven.SummaryPayload{
		Title:   "Hypertension in adults",
		Summary: "## Treatment\n\nIncrease the dose [1]. Review after six weeks [1].",
		Sources: domain.SourceDocument{"1": dosageSource},
		PageReferences: domain.PageReference{
			"1": {{StartWord: "Dosage", EndWord: "weeks"}},
		},
		Citations: domain.CitationMap{"1": {Title: "NG136", SourceType: domain.SourceGuidelines}},
	}
}

func TestGuidelineService_Summarize(t *testing.T) {
	api, cache, svc := newTestGuidelineService(t)
	req := domain.SummarizeRequest{Title: "Hypertension", GuidelinesIndex: "42"}
	api.On("Summarize", mock.Anything, req).Return(summaryPayload(), nil)

	summary, err := svc.Summarize(context.Background(), "user-1", req)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, "Hypertension in adults", summary.Title)
	assert.Equal(t, "user-1", summary.OwnerID)
	assert.Contains(t, summary.HTML, `data-citation="1" data-occurrence="1"`)
	assert.Equal(t, map[string]int{"1": 2}, summary.Occurrences)

	cached, err := cache.Get(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.Equal(t, summary, cached)
	api.AssertExpectations(t)
}

func TestGuidelineService_Summarize_Invalid(t *testing.T) {
	api, _, svc := newTestGuidelineService(t)

	_, err := svc.Summarize(context.Background(), "user-1", domain.SummarizeRequest{Title: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	api.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
}

func TestGuidelineService_Summarize_BackendError(t *testing.T) {
	api, cache, svc := newTestGuidelineService(t)
	api.On("Summarize", mock.Anything, mock.Anything).
		Return(nil, &domain.BackendError{Operation: "summarize", StatusCode: 502, Message: "bad gateway"})

	_, err := svc.Summarize(context.Background(), "user-1", domain.SummarizeRequest{Title: "T", GuidelinesIndex: "1"})
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.Equal(t, 0, cache.Len())
}

func TestGuidelineService_Followup(t *testing.T) {
	api, cache, svc := newTestGuidelineService(t)
	api.On("Summarize", mock.Anything, mock.Anything).Return(summaryPayload(), nil)
	parent, err := svc.Summarize(context.Background(), "user-1", domain.SummarizeRequest{Title: "Hypertension", GuidelinesIndex: "42"})
	require.NoError(t, err)

	api.On("Followup", mock.Anything, domain.FollowupRequest{
		SummaryID:       parent.ID,
		Title:           "Hypertension in adults",
		GuidelinesIndex: "42",
		Question:        "When to review?",
	}).Return(&driven.FollowupPayload{
		Answer:  "After six weeks [1].",
		Sources: domain.SourceDocument{"1": dosageSource},
	}, nil)

	answer, err := svc.Followup(context.Background(), "user-1", domain.FollowupRequest{SummaryID: parent.ID, Question: " When to review? "})
	require.NoError(t, err)

	assert.NotEqual(t, parent.ID, answer.SummaryID)
	assert.Equal(t, "When to review?", answer.Question)
	assert.Contains(t, answer.HTML, `data-citation-placeholder="1"`, "follow-up without citation metadata renders placeholders")
	assert.Equal(t, 2, cache.Len())
	api.AssertExpectations(t)
}

func TestGuidelineService_Followup_OtherOwner(t *testing.T) {
	api, _, svc := newTestGuidelineService(t)
	api.On("Summarize", mock.Anything, mock.Anything).Return(summaryPayload(), nil)
	parent, err := svc.Summarize(context.Background(), "user-1", domain.SummarizeRequest{Title: "T", GuidelinesIndex: "1"})
	require.NoError(t, err)

	_, err = svc.Followup(context.Background(), "user-2", domain.FollowupRequest{SummaryID: parent.ID, Question: "Q?"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGuidelineService_Search(t *testing.T) {
	hits := []domain.GuidelineSearchResult{{Title: "Asthma", GuidelinesIndex: "7"}}

	tests := []struct {
		name         string
		setup        func(api *mocks.MockGuidelineAPI)
		country      string
		wantDatabase string
		wantFellBack bool
		wantErr      error
	}{
		{
			name: "country database succeeds",
			setup: func(api *mocks.MockGuidelineAPI) {
				api.On("Search", mock.Anything, "asthma", "nice").Return(hits, nil).Once()
			},
			country:      "gb",
			wantDatabase: "nice",
		},
		{
			name: "falls back once on server error",
			setup: func(api *mocks.MockGuidelineAPI) {
				api.On("Search", mock.Anything, "asthma", "nice").
					Return(nil, &domain.BackendError{Operation: "search", StatusCode: 503}).Once()
				api.On("Search", mock.Anything, "asthma", "english").Return(hits, nil).Once()
			},
			country:      "gb",
			wantDatabase: "english",
			wantFellBack: true,
		},
		{
			name: "fallback failure is returned",
			setup: func(api *mocks.MockGuidelineAPI) {
				api.On("Search", mock.Anything, "asthma", "nice").
					Return(nil, &domain.BackendError{Operation: "search", StatusCode: 0, Message: "dial"}).Once()
				api.On("Search", mock.Anything, "asthma", "english").
					Return(nil, &domain.BackendError{Operation: "search", StatusCode: 500}).Once()
			},
			country: "gb",
			wantErr: domain.ErrServiceUnavailable,
		},
		{
			name: "client errors are not retried",
			setup: func(api *mocks.MockGuidelineAPI) {
				api.On("Search", mock.Anything, "asthma", "nice").
					Return(nil, &domain.BackendError{Operation: "search", StatusCode: 400}).Once()
			},
			country: "gb",
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "unknown country uses fallback without retry",
			setup: func(api *mocks.MockGuidelineAPI) {
				api.On("Search", mock.Anything, "asthma", "english").
					Return(nil, &domain.BackendError{Operation: "search", StatusCode: 503}).Once()
			},
			country: "zz",
			wantErr: domain.ErrServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, _, svc := newTestGuidelineService(t)
			tt.setup(api)

			resp, err := svc.Search(context.Background(), domain.GuidelineSearchRequest{Query: " asthma ", Country: tt.country})

			api.AssertExpectations(t)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDatabase, resp.Database)
			assert.Equal(t, tt.wantFellBack, resp.FellBack)
			assert.Equal(t, 1, resp.TotalCount)
		})
	}
}

func TestGuidelineService_Search_EmptyQuery(t *testing.T) {
	_, _, svc := newTestGuidelineService(t)
	_, err := svc.Search(context.Background(), domain.GuidelineSearchRequest{Query: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGuidelineService_GetSummary(t *testing.T) {
	_, cache, svc := newTestGuidelineService(t)
	require.NoError(t, cache.Put(context.Background(), &domain.GuidelineSummary{ID: "s1", OwnerID: "user-1"}))

	got, err := svc.GetSummary(context.Background(), "user-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	_, err = svc.GetSummary(context.Background(), "user-2", "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetSummary(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
