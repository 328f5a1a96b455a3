package domain

import "time"

// Role defines user permission level
type Role string

const (
	RoleAdmin     Role = "admin"     // Manage users
	RoleClinician Role = "clinician" // Full assistant access
	RoleViewer    Role = "viewer"    // Reference browsing only
)

// User represents an account holder of the assistant
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	Profile      Profile    `json:"profile"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Profile holds the data captured by the onboarding wizard
type Profile struct {
	Profession          string     `json:"profession,omitempty"`
	Specialty           string     `json:"specialty,omitempty"`
	Country             string     `json:"country,omitempty"`
	Organization        string     `json:"organization,omitempty"`
	NDAAcceptedAt       *time.Time `json:"nda_accepted_at,omitempty"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
}

// HasAcceptedNDA reports whether the NDA step was completed
func (p Profile) HasAcceptedNDA() bool {
	return p.NDAAcceptedAt != nil
}

// UserSummary provides a safe view of user data (no password hash)
type UserSummary struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	Active      bool       `json:"active"`
	Profile     Profile    `json:"profile"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToSummary converts a User to UserSummary
func (u *User) ToSummary() *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Active:      u.Active,
		Profile:     u.Profile,
		LastLoginAt: u.LastLoginAt,
	}
}

// IsAdmin checks if the user has admin privileges
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageUsers checks if the user can create/delete other users
func (u *User) CanManageUsers() bool {
	return u.Role == RoleAdmin
}

// CanAsk checks if the user can use the conversational assistant.
// The assistant is gated on an accepted NDA.
func (u *User) CanAsk() bool {
	if !u.Active || !u.Profile.HasAcceptedNDA() {
		return false
	}
	return u.Role == RoleAdmin || u.Role == RoleClinician
}

// ValidRole reports whether r is a known role
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleClinician, RoleViewer:
		return true
	}
	return false
}
