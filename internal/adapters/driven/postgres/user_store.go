package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UserStore = (*UserStore)(nil)

const userColumns = `id, email, password_hash, name, role, active,
	profession, specialty, country, organization, nda_accepted_at, onboarding_completed,
	created_at, updated_at, last_login_at`

// uniqueViolation is the SQLSTATE for a unique constraint failure
const uniqueViolation = "23505"

// UserStore implements driven.UserStore using PostgreSQL
type UserStore struct {
	db *DB
}

// NewUserStore creates a new UserStore
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Save creates or updates a user. A second account with the same email
// reports domain.ErrAlreadyExists.
func (s *UserStore) Save(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			active = EXCLUDED.active,
			profession = EXCLUDED.profession,
			specialty = EXCLUDED.specialty,
			country = EXCLUDED.country,
			organization = EXCLUDED.organization,
			nda_accepted_at = EXCLUDED.nda_accepted_at,
			onboarding_completed = EXCLUDED.onboarding_completed,
			updated_at = EXCLUDED.updated_at,
			last_login_at = EXCLUDED.last_login_at
	`

	p := user.Profile
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		string(user.Role),
		user.Active,
		NullString(p.Profession),
		NullString(p.Specialty),
		NullString(p.Country),
		NullString(p.Organization),
		NullTime(p.NDAAcceptedAt),
		p.OnboardingCompleted,
		user.CreatedAt,
		user.UpdatedAt,
		NullTime(user.LastLoginAt),
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID
func (s *UserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail retrieves a user by email
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// List retrieves all users ordered by email
func (s *UserStore) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of users
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Delete deletes a user
func (s *UserStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// UpdateLastLogin updates the last login timestamp
func (s *UserStore) UpdateLastLogin(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = $1, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// UpdateProfile replaces the onboarding profile columns of a user
func (s *UserStore) UpdateProfile(ctx context.Context, id string, p domain.Profile) error {
	query := `
		UPDATE users SET
			profession = $1,
			specialty = $2,
			country = $3,
			organization = $4,
			nda_accepted_at = $5,
			onboarding_completed = $6,
			updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(ctx, query,
		NullString(p.Profession),
		NullString(p.Specialty),
		NullString(p.Country),
		NullString(p.Organization),
		NullTime(p.NDAAcceptedAt),
		p.OnboardingCompleted,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return expectRow(result)
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user                                         domain.User
		profession, specialty, country, organization sql.NullString
		ndaAcceptedAt, lastLoginAt                   sql.NullTime
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.Active,
		&profession,
		&specialty,
		&country,
		&organization,
		&ndaAcceptedAt,
		&user.Profile.OnboardingCompleted,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user.Profile.Profession = profession.String
	user.Profile.Specialty = specialty.String
	user.Profile.Country = country.String
	user.Profile.Organization = organization.String
	user.Profile.NDAAcceptedAt = TimePtr(ndaAcceptedAt)
	user.LastLoginAt = TimePtr(lastLoginAt)
	return &user, nil
}

// expectRow maps an update or delete that touched nothing to ErrNotFound
func expectRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
