package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SummaryCache = (*SummaryCache)(nil)

const summaryPrefix = keyPrefix + "summary:"

// DefaultSummaryTTL is how long a summary unit stays resolvable
const DefaultSummaryTTL = 24 * time.Hour

// SummaryCache stores summary units in Redis so every instance behind a
// load balancer can resolve citation clicks on them.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// summaryRecord carries the owner, which the domain type keeps out of JSON
type summaryRecord struct {
	OwnerID string                   `json:"owner_id"`
	Summary *domain.GuidelineSummary `json:"summary"`
}

// NewSummaryCache creates a Redis summary cache. A non-positive ttl uses
// DefaultSummaryTTL.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &SummaryCache{client: client, ttl: ttl}
}

func (c *SummaryCache) Put(ctx context.Context, summary *domain.GuidelineSummary) error {
	data, err := json.Marshal(summaryRecord{OwnerID: summary.OwnerID, Summary: summary})
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryPrefix+summary.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("put summary: %w", err)
	}
	return nil
}

func (c *SummaryCache) Get(ctx context.Context, id string) (*domain.GuidelineSummary, error) {
	data, err := c.client.Get(ctx, summaryPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}

	var rec summaryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	if rec.Summary == nil {
		return nil, domain.ErrNotFound
	}
	rec.Summary.OwnerID = rec.OwnerID
	return rec.Summary, nil
}

func (c *SummaryCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, summaryPrefix+id).Err()
}
