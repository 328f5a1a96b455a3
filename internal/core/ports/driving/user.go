package driving

import (
	"context"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

// CreateUserRequest is an admin request to create an account
type CreateUserRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

// UpdateUserRequest is an admin request to change an account
type UpdateUserRequest struct {
	Name   *string      `json:"name,omitempty"`
	Role   *domain.Role `json:"role,omitempty"`
	Active *bool        `json:"active,omitempty"`
}

// SetupRequest creates the initial admin user
type SetupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// UpdateProfileRequest carries the onboarding wizard fields. Nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	Profession   *string `json:"profession,omitempty"`
	Specialty    *string `json:"specialty,omitempty"`
	Country      *string `json:"country,omitempty"`
	Organization *string `json:"organization,omitempty"`
}

// UserService manages accounts and onboarding profiles
type UserService interface {
	// Setup creates the initial admin user (only works if no users exist)
	Setup(ctx context.Context, req SetupRequest) (*domain.User, error)

	// Register creates a clinician account through self sign-up
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)

	// Create creates a new user (admin only)
	Create(ctx context.Context, req CreateUserRequest) (*domain.User, error)

	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*domain.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*domain.User, error)

	// Update updates a user (admin only)
	Update(ctx context.Context, id string, req UpdateUserRequest) (*domain.User, error)

	// Delete deletes a user (admin only)
	Delete(ctx context.Context, id string) error

	// UpdateProfile applies onboarding profile fields
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*domain.User, error)

	// AcceptNDA records NDA acceptance; accepting twice keeps the first time
	AcceptNDA(ctx context.Context, id string) (*domain.User, error)

	// CompleteOnboarding marks the wizard done; requires an accepted NDA
	CompleteOnboarding(ctx context.Context, id string) (*domain.User, error)
}
