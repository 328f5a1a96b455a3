package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
	"github.com/custodia-labs/clinref/internal/core/ports/driving"
)

// MinPasswordLength applies to sign-up, admin-created users and changes
const MinPasswordLength = 8

// Ensure userService implements UserService
var _ driving.UserService = (*userService)(nil)

type userService struct {
	userStore    driven.UserStore
	sessionStore driven.SessionStore
	authAdapter  driven.AuthAdapter
	logger       *zap.Logger
	now          func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(
	userStore driven.UserStore,
	sessionStore driven.SessionStore,
	authAdapter driven.AuthAdapter,
	logger *zap.Logger,
) driving.UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		userStore:    userStore,
		sessionStore: sessionStore,
		authAdapter:  authAdapter,
		logger:       logger,
		now:          time.Now,
	}
}

// Setup creates the initial admin user (only works if no users exist)
func (s *userService) Setup(ctx context.Context, req driving.SetupRequest) (*domain.User, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, domain.ErrInvalidInput
	}

	count, err := s.userStore.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, domain.ErrForbidden
	}

	user, err := s.Create(ctx, driving.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("initial admin created", zap.String("user_id", user.ID))
	return user, nil
}

// Register creates a clinician account. The account cannot use the
// assistant until the NDA is accepted.
func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	return s.Create(ctx, driving.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     domain.RoleClinician,
	})
}

// Create creates a new user
func (s *userService) Create(ctx context.Context, req driving.CreateUserRequest) (*domain.User, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	existing, err := s.userStore.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := s.authAdapter.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get retrieves a user by ID
func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.userStore.Get(ctx, id)
}

// List retrieves all users
func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userStore.List(ctx)
}

// Update updates a user. Deactivated users lose their sessions.
func (s *userService) Update(ctx context.Context, id string, req driving.UpdateUserRequest) (*domain.User, error) {
	user, err := s.userStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		if !domain.ValidRole(*req.Role) {
			return nil, domain.ErrInvalidInput
		}
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	user.UpdatedAt = s.now()

	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, err
	}
	if req.Active != nil && !*req.Active {
		_ = s.sessionStore.DeleteByUser(ctx, id)
	}
	return user, nil
}

// Delete deletes a user and their sessions
func (s *userService) Delete(ctx context.Context, id string) error {
	if _, err := s.userStore.Get(ctx, id); err != nil {
		return err
	}
	_ = s.sessionStore.DeleteByUser(ctx, id)
	return s.userStore.Delete(ctx, id)
}

// UpdateProfile applies the onboarding wizard fields
func (s *userService) UpdateProfile(ctx context.Context, id string, req driving.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.userStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := user.Profile
	if req.Profession != nil {
		profile.Profession = strings.TrimSpace(*req.Profession)
	}
	if req.Specialty != nil {
		profile.Specialty = strings.TrimSpace(*req.Specialty)
	}
	if req.Country != nil {
		profile.Country = strings.ToLower(strings.TrimSpace(*req.Country))
	}
	if req.Organization != nil {
		profile.Organization = strings.TrimSpace(*req.Organization)
	}

	return s.saveProfile(ctx, user, profile)
}

// AcceptNDA records NDA acceptance once
func (s *userService) AcceptNDA(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Profile.HasAcceptedNDA() {
		return user, nil
	}

	profile := user.Profile
	accepted := s.now()
	profile.NDAAcceptedAt = &accepted
	return s.saveProfile(ctx, user, profile)
}

// CompleteOnboarding marks the onboarding wizard done
func (s *userService) CompleteOnboarding(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Profile.HasAcceptedNDA() {
		return nil, domain.ErrForbidden
	}
	if user.Profile.Profession == "" || user.Profile.Country == "" {
		return nil, domain.ErrInvalidInput
	}

	profile := user.Profile
	profile.OnboardingCompleted = true
	return s.saveProfile(ctx, user, profile)
}

func (s *userService) saveProfile(ctx context.Context, user *domain.User, profile domain.Profile) (*domain.User, error) {
	if err := s.userStore.UpdateProfile(ctx, user.ID, profile); err != nil {
		return nil, err
	}
	user.Profile = profile
	user.UpdatedAt = s.now()
	return user, nil
}

func validateCreateRequest(req driving.CreateUserRequest) error {
	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		return domain.ErrInvalidInput
	}
	if len(req.Password) < MinPasswordLength {
		return domain.ErrInvalidInput
	}
	if strings.TrimSpace(req.Name) == "" {
		return domain.ErrInvalidInput
	}
	if !domain.ValidRole(req.Role) {
		return domain.ErrInvalidInput
	}
	return nil
}
