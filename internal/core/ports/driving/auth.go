package driving

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// AuthService signs clinicians in and out. A failed token validation is what
// turns a protected citation click into a redirect to the login page.
type AuthService interface {
	// Authenticate checks credentials and opens a session
	Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken resolves a bearer or access_token value to the caller
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)

	RefreshToken(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error)

	// Logout ends one session. Open panels are closed by the HTTP layer.
	Logout(ctx context.Context, token string) error

	LogoutAll(ctx context.Context, userID string) error

	// ChangePassword rotates the password and revokes every session of the user
	ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error
}
