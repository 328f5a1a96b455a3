package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

var _ driven.SummaryCache = (*MockSummaryCache)(nil)

// MockSummaryCache is an unbounded in-memory summary cache
type MockSummaryCache struct {
	mu        sync.RWMutex
	summaries map[string]*domain.GuidelineSummary
}

// NewMockSummaryCache creates a new MockSummaryCache
func NewMockSummaryCache() *MockSummaryCache {
	return &MockSummaryCache{summaries: make(map[string]*domain.GuidelineSummary)}
}

func (m *MockSummaryCache) Put(ctx context.Context, summary *domain.GuidelineSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[summary.ID] = summary
	return nil
}

func (m *MockSummaryCache) Get(ctx context.Context, id string) (*domain.GuidelineSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.summaries[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockSummaryCache) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.summaries, id)
	return nil
}

// Len returns the number of cached summaries
func (m *MockSummaryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.summaries)
}
