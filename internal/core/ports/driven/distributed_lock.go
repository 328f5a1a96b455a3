package driven

import (
	"context"
	"time"
)

// DistributedLock guards work that exactly one replica may run, such as
// seeding the first admin account at startup.
type DistributedLock interface {
	// Acquire takes the named lock for ttl. A lock held elsewhere yields
	// false with a nil error.
	Acquire(ctx context.Context, name string, ttl time.Duration) (acquired bool, err error)

	// Release drops the named lock. Releasing an expired or foreign lock is a no-op.
	Release(ctx context.Context, name string) error

	// Extend pushes out the expiry of a lock this replica holds. Advisory
	// lock backends without expiry accept it without effect.
	Extend(ctx context.Context, name string, ttl time.Duration) error

	// Ping backs the readiness probe when Redis is configured.
	Ping(ctx context.Context) error
}
