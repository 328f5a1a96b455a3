package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

var _ driven.GuidelineAPI = (*MockGuidelineAPI)(nil)

// MockGuidelineAPI is a testify mock of the guideline backend
type MockGuidelineAPI struct {
	mock.Mock
}

func (m *MockGuidelineAPI) Summarize(ctx context.Context, req domain.SummarizeRequest) (*driven.SummaryPayload, error) {
	args := m.Called(ctx, req)
	payload, _ := args.Get(0).(*driven.SummaryPayload)
	return payload, args.Error(1)
}

func (m *MockGuidelineAPI) Followup(ctx context.Context, req domain.FollowupRequest) (*driven.FollowupPayload, error) {
	args := m.Called(ctx, req)
	payload, _ := args.Get(0).(*driven.FollowupPayload)
	return payload, args.Error(1)
}

func (m *MockGuidelineAPI) Search(ctx context.Context, query, database string) ([]domain.GuidelineSearchResult, error) {
	args := m.Called(ctx, query, database)
	results, _ := args.Get(0).([]domain.GuidelineSearchResult)
	return results, args.Error(1)
}
