package driven

import "github.com/custodia-labs/clinref/internal/core/domain"

// AuthAdapter covers password hashing and token signing. Sessions are kept
// by SessionStore.
type AuthAdapter interface {
	// HashPassword returns a bcrypt hash for storage on the user row
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool

	// GenerateToken signs claims carrying the user's role and onboarding state
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
