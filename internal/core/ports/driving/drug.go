package driving

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// DrugService looks up drug monographs
type DrugService interface {
	// GetDrugInfo returns a monograph with its markdown rendered to HTML
	GetDrugInfo(ctx context.Context, name, country string) (*domain.DrugInfo, error)

	// GetDrugLibrary lists the drug library for a country
	GetDrugLibrary(ctx context.Context, country string, query domain.DrugLibraryQuery) ([]domain.DrugLibraryEntry, error)

	// EnhancedSearch resolves a query to a drug or brand options
	EnhancedSearch(ctx context.Context, query, country string) (*domain.DrugSearchResult, error)
}
