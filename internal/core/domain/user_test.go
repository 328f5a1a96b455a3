package domain

import (
	"testing"
	"time"
)

func TestUserToSummary(t *testing.T) {
	now := time.Now()
	user := &User{
		ID:           "user-123",
		Email:        "test@example.com",
		PasswordHash: "secret-hash",
		Name:         "Test User",
		Role:         RoleAdmin,
		Active:       true,
		Profile:      Profile{Country: "gb", Profession: "pharmacist"},
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  &now,
	}

	summary := user.ToSummary()

	if summary.ID != user.ID {
		t.Errorf("expected ID %s, got %s", user.ID, summary.ID)
	}
	if summary.Email != user.Email {
		t.Errorf("expected Email %s, got %s", user.Email, summary.Email)
	}
	if summary.Name != user.Name {
		t.Errorf("expected Name %s, got %s", user.Name, summary.Name)
	}
	if summary.Role != user.Role {
		t.Errorf("expected Role %s, got %s", user.Role, summary.Role)
	}
	if summary.Active != user.Active {
		t.Errorf("expected Active %v, got %v", user.Active, summary.Active)
	}
	if summary.Profile.Country != "gb" {
		t.Errorf("expected profile country gb, got %s", summary.Profile.Country)
	}
	if summary.LastLoginAt == nil {
		t.Error("expected LastLoginAt to be set")
	}
}

func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{RoleAdmin, true},
		{RoleClinician, false},
		{RoleViewer, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			user := &User{Role: tt.role}
			if user.IsAdmin() != tt.expected {
				t.Errorf("expected IsAdmin() = %v for role %s", tt.expected, tt.role)
			}
			if user.CanManageUsers() != tt.expected {
				t.Errorf("expected CanManageUsers() = %v for role %s", tt.expected, tt.role)
			}
		})
	}
}

func TestUserCanAsk(t *testing.T) {
	accepted := time.Now()

	tests := []struct {
		name     string
		role     Role
		active   bool
		nda      *time.Time
		expected bool
	}{
		{"active clinician with nda", RoleClinician, true, &accepted, true},
		{"active admin with nda", RoleAdmin, true, &accepted, true},
		{"viewer with nda", RoleViewer, true, &accepted, false},
		{"clinician without nda", RoleClinician, true, nil, false},
		{"inactive clinician", RoleClinician, false, &accepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Role: tt.role, Active: tt.active, Profile: Profile{NDAAcceptedAt: tt.nda}}
			if user.CanAsk() != tt.expected {
				t.Errorf("expected CanAsk() = %v", tt.expected)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleClinician, RoleViewer} {
		if !ValidRole(r) {
			t.Errorf("expected %s to be valid", r)
		}
	}
	if ValidRole("member") {
		t.Error("expected unknown role to be invalid")
	}
}
