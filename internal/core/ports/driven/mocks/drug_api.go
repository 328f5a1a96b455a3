package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

var _ driven.DrugAPI = (*MockDrugAPI)(nil)

// MockDrugAPI is a testify mock of the drug backend
type MockDrugAPI struct {
	mock.Mock
}

func (m *MockDrugAPI) GetDrugInfo(ctx context.Context, name, database string) (*domain.DrugInfo, error) {
	args := m.Called(ctx, name, database)
	info, _ := args.Get(0).(*domain.DrugInfo)
	return info, args.Error(1)
}

func (m *MockDrugAPI) GetDrugLibrary(ctx context.Context, query domain.DrugLibraryQuery) ([]domain.DrugLibraryEntry, error) {
	args := m.Called(ctx, query)
	entries, _ := args.Get(0).([]domain.DrugLibraryEntry)
	return entries, args.Error(1)
}

func (m *MockDrugAPI) EnhancedSearchDrugs(ctx context.Context, query, database string) (*domain.DrugSearchResult, error) {
	args := m.Called(ctx, query, database)
	result, _ := args.Get(0).(*domain.DrugSearchResult)
	return result, args.Error(1)
}
