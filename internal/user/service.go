// Package user handles account registration and password login.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("email and password are required")
)

// Seeded outside production so the dashboard can be tried without signing up.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "password123"
	DemoName     = "Demo User"
)

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	// Create stores a new user and returns ErrUserExists if the email is taken.
	Create(ctx context.Context, u *User) error
	// GetByEmail looks up a user by lower-cased email.
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type Service struct {
	repo Repository
	cost int
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// WithCost returns a copy of the service hashing with the given bcrypt cost.
// Tests use bcrypt.MinCost to stay fast.
func (s *Service) WithCost(cost int) *Service {
	c := *s
	c.cost = cost

	return &c
}

type RegisterParams struct {
	Email    string
	Password string
	Name     string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	email := normalizeEmail(params.Email)
	if email == "" || params.Password == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login checks the password and returns the user. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("loading user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// EnsureDemoUser creates the demo account unless it already exists.
func (s *Service) EnsureDemoUser(ctx context.Context) (*User, error) {
	u, err := s.Register(ctx, RegisterParams{Email: DemoEmail, Password: DemoPassword, Name: DemoName})
	if errors.Is(err, ErrUserExists) {
		return s.repo.GetByEmail(ctx, DemoEmail)
	}

	return u, err
}
