package driven

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// DrugAPI is the drug side of the summarization backend
type DrugAPI interface {
	// GetDrugInfo returns the monograph for a drug
	GetDrugInfo(ctx context.Context, name, database string) (*domain.DrugInfo, error)

	// GetDrugLibrary lists the browsable drug library
	GetDrugLibrary(ctx context.Context, query domain.DrugLibraryQuery) ([]domain.DrugLibraryEntry, error)

	// EnhancedSearchDrugs resolves a query to a drug or a set of brand options
	EnhancedSearchDrugs(ctx context.Context, query, database string) (*domain.DrugSearchResult, error)
}
