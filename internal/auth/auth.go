// Package auth registers accounts and checks passwords.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/internal/repository"
)

var (
	ErrUsernameTaken      = errors.New("auth: username already taken")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
)

// dummyHash is compared against when the account is unknown, so both
// paths cost one bcrypt comparison.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserStore is the part of the user repository auth needs.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

// Service implements registration and login.
type Service struct {
	users UserStore
	cost  int
}

// Option configures a Service.
type Option func(*Service)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// NewService creates a Service.
func NewService(users UserStore, opts ...Option) *Service {
	s := &Service{users: users, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account. Username and email must be free.
func (s *Service) Register(ctx context.Context, username, email, password string, admin bool) (*models.User, error) {
	taken, err := s.users.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err = s.users.EmailTaken(ctx, email); err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	u := &models.User{Username: username, Email: email, PasswordHash: string(hash), IsAdmin: admin}

	// A concurrent registration can still win the race to the constraint.
	switch err := s.users.Create(ctx, u); {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return nil, ErrUsernameTaken
	case errors.Is(err, repository.ErrDuplicateEmail):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, err
	}
	return u, nil
}

// Authenticate returns the account matching email and password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if repository.IsNotFound(err) {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// UsernameTaken reports whether an account uses username.
func (s *Service) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.users.UsernameTaken(ctx, username)
}

// EmailTaken reports whether an account uses email.
func (s *Service) EmailTaken(ctx context.Context, email string) (bool, error) {
	return s.users.EmailTaken(ctx, email)
}
