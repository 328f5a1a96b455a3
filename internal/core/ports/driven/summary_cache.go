package driven

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// SummaryCache keeps the SourceDocument/PageReference units that panels
// resolve citation clicks against.
type SummaryCache interface {
	// Put stores a summary under its ID
	Put(ctx context.Context, summary *domain.GuidelineSummary) error

	// Get returns domain.ErrNotFound when the summary is absent or expired
	Get(ctx context.Context, id string) (*domain.GuidelineSummary, error)

	// Delete removes a summary
	Delete(ctx context.Context, id string) error
}
