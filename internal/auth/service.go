package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"denialdesk.org/internal/ids"
	"denialdesk.org/internal/validate"
)

// Service provides account registration, credential checks and user
// administration on top of a UserStore.
type Service struct {
	store UserStore
	now   func() time.Time
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithServiceClock overrides the time source, for tests.
func WithServiceClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the user service.
func NewService(store UserStore, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: user store is required")
	}
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates a new account with the user role. Every failing field
// check is reported; nothing is persisted unless all pass.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	var fieldErrs validate.FieldErrors
	if ok, msg := validate.Username(username); !ok {
		fieldErrs = append(fieldErrs, msg)
	}
	if ok, msg := validate.Email(email); !ok {
		fieldErrs = append(fieldErrs, msg)
	}
	if ok, msg := validate.Password(password); !ok {
		fieldErrs = append(fieldErrs, msg)
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user := &User{
		ID:           ids.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials and returns the account on success.
// Inactive accounts are rejected the same way as bad credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrUnauthorized
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrUnauthorized
	}
	now := s.now().UTC()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return user, nil
}

// Find loads a single account.
func (s *Service) Find(ctx context.Context, id string) (*User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	return s.store.Find(ctx, id)
}

// ListUsers returns every account. Admin only.
func (s *Service) ListUsers(ctx context.Context, actor Principal) ([]*User, error) {
	if !actor.Role.Covers(RoleAdmin) {
		return nil, ErrForbidden
	}
	return s.store.List(ctx)
}

// ToggleActive flips the active flag on an account. Admin only, and an admin
// may never deactivate their own account through this path.
func (s *Service) ToggleActive(ctx context.Context, actor Principal, userID string) (*User, error) {
	if !actor.Role.Covers(RoleAdmin) {
		return nil, ErrForbidden
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrNotFound
	}
	if userID == actor.UserID {
		return nil, ErrForbidden
	}
	user, err := s.store.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetActive(ctx, user.ID, !user.Active); err != nil {
		return nil, err
	}
	user.Active = !user.Active
	user.UpdatedAt = s.now().UTC()
	return user, nil
}

// CreateAdmin provisions an administrator account if the username is free.
// Used by the bootstrap CLI, not exposed over HTTP.
func (s *Service) CreateAdmin(ctx context.Context, username, email, password string) (*User, error) {
	user, err := s.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	// Register always assigns the user role; promote in place.
	user.Role = RoleAdmin
	if err := s.store.SetRole(ctx, user.ID, RoleAdmin); err != nil {
		return nil, err
	}
	return user, nil
}
