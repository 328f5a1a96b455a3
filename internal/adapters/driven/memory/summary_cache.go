// Package memory holds single-instance, in-process adapters.
package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SummaryCache = (*SummaryCache)(nil)

// DefaultSummaryCacheSize bounds the number of summary units kept
const DefaultSummaryCacheSize = 1024

// SummaryCache is a bounded LRU of summary units with a per-entry TTL.
// Used when no Redis is configured.
type SummaryCache struct {
	lru *expirable.LRU[string, *domain.GuidelineSummary]
}

// NewSummaryCache creates a cache holding up to size units for ttl each.
// A non-positive size uses DefaultSummaryCacheSize; a zero ttl never expires.
func NewSummaryCache(size int, ttl time.Duration) *SummaryCache {
	if size <= 0 {
		size = DefaultSummaryCacheSize
	}
	return &SummaryCache{lru: expirable.NewLRU[string, *domain.GuidelineSummary](size, nil, ttl)}
}

func (c *SummaryCache) Put(_ context.Context, summary *domain.GuidelineSummary) error {
	c.lru.Add(summary.ID, summary)
	return nil
}

func (c *SummaryCache) Get(_ context.Context, id string) (*domain.GuidelineSummary, error) {
	summary, ok := c.lru.Get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return summary, nil
}

func (c *SummaryCache) Delete(_ context.Context, id string) error {
	c.lru.Remove(id)
	return nil
}

// Len returns the number of cached units
func (c *SummaryCache) Len() int {
	return c.lru.Len()
}
