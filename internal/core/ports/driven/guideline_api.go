package driven

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// SummaryPayload is the backend response to a summarize call
type SummaryPayload struct {
	Title          string                `json:"title"`
	Summary        string                `json:"summary"`
	Sources        domain.SourceDocument `json:"sources"`
	PageReferences domain.PageReference  `json:"page_references"`
	Citations      domain.CitationMap    `json:"citations,omitempty"`
}

// FollowupPayload is the backend response to a follow-up question
type FollowupPayload struct {
	Answer         string                `json:"answer"`
	Sources        domain.SourceDocument `json:"sources"`
	PageReferences domain.PageReference  `json:"page_references"`
	Citations      domain.CitationMap    `json:"citations,omitempty"`
}

// GuidelineAPI is the guideline side of the summarization backend
type GuidelineAPI interface {
	// Summarize summarizes one guideline
	Summarize(ctx context.Context, req domain.SummarizeRequest) (*SummaryPayload, error)

	// Followup answers a question about a guideline
	Followup(ctx context.Context, req domain.FollowupRequest) (*FollowupPayload, error)

	// Search searches one guideline database
	Search(ctx context.Context, query, database string) ([]domain.GuidelineSearchResult, error)
}
