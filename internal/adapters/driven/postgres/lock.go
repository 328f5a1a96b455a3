package postgres

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*AdvisoryLock)(nil)

// AdvisoryLock implements DistributedLock with PostgreSQL advisory locks.
//
// Advisory locks are scoped to a connection rather than a TTL: the ttl
// argument is ignored, Extend is a no-op, and a lost connection releases
// the lock. Used only when no Redis is configured.
type AdvisoryLock struct {
	db *DB
}

// NewAdvisoryLock creates a new PostgreSQL advisory lock adapter
func NewAdvisoryLock(db *DB) *AdvisoryLock {
	return &AdvisoryLock{db: db}
}

// lockKey maps a lock name onto the 64-bit advisory lock key space
func lockKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("clinref:lock:" + name))
	return int64(h.Sum64())
}

// Acquire tries the lock without blocking
func (l *AdvisoryLock) Acquire(ctx context.Context, name string, _ time.Duration) (bool, error) {
	var acquired bool
	err := l.db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", lockKey(name)).Scan(&acquired)
	if err != nil {
		return false, err
	}
	return acquired, nil
}

// Release unlocks name. Releasing a lock that is not held is not an error.
func (l *AdvisoryLock) Release(ctx context.Context, name string) error {
	var released bool
	return l.db.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", lockKey(name)).Scan(&released)
}

// Extend is a no-op: advisory locks do not expire
func (l *AdvisoryLock) Extend(context.Context, string, time.Duration) error {
	return nil
}

// Ping checks if PostgreSQL is reachable
func (l *AdvisoryLock) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}
