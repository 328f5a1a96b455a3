package mocks

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

var _ driven.AuthAdapter = (*MockAuthAdapter)(nil)

// MockAuthAdapter stores passwords with a visible prefix and encodes tokens
// as base64 JSON. Test use only.
type MockAuthAdapter struct {
	// FailHash makes HashPassword return an error
	FailHash bool
}

// NewMockAuthAdapter creates a new MockAuthAdapter
func NewMockAuthAdapter() *MockAuthAdapter {
	return &MockAuthAdapter{}
}

const mockHashPrefix = "hashed:"

func (m *MockAuthAdapter) HashPassword(password string) (string, error) {
	if m.FailHash {
		return "", fmt.Errorf("hash failed")
	}
	return mockHashPrefix + password, nil
}

func (m *MockAuthAdapter) VerifyPassword(password, hash string) bool {
	return strings.TrimPrefix(hash, mockHashPrefix) == password
}

func (m *MockAuthAdapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	data, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func (m *MockAuthAdapter) ParseToken(token string) (*domain.TokenClaims, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	var claims domain.TokenClaims
	if err := json.Unmarshal(data, &claims); err != nil || claims.SessionID == "" {
		return nil, domain.ErrTokenInvalid
	}
	return &claims, nil
}
