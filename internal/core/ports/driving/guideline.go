package driving

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// GuidelineService summarizes and searches clinical guidelines
type GuidelineService interface {
	// Summarize fetches, renders and caches a guideline summary
	Summarize(ctx context.Context, ownerID string, req domain.SummarizeRequest) (*domain.GuidelineSummary, error)

	// Followup answers a question about a guideline and caches the answer
	// as its own summary unit
	Followup(ctx context.Context, ownerID string, req domain.FollowupRequest) (*domain.FollowupAnswer, error)

	// Search searches the country's guideline database, retrying once
	// against the fallback database
	Search(ctx context.Context, req domain.GuidelineSearchRequest) (*domain.GuidelineSearchResponse, error)

	// GetSummary returns a cached summary owned by ownerID
	GetSummary(ctx context.Context, ownerID, id string) (*domain.GuidelineSummary, error)
}
