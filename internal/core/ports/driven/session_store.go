package driven

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// SessionStore persists clinician sessions. Redis and Postgres both implement it.
type SessionStore interface {
	// Save stores a session until its ExpiresAt
	Save(ctx context.Context, session *domain.Session) error

	Get(ctx context.Context, id string) (*domain.Session, error)

	// GetByToken resolves the bearer token sent on API and websocket requests
	GetByToken(ctx context.Context, token string) (*domain.Session, error)

	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)

	Delete(ctx context.Context, id string) error

	// DeleteByToken ends the session on logout
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByUser revokes every session of a deleted user
	DeleteByUser(ctx context.Context, userID string) error

	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
}
