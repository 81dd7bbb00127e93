// Package auth issues and verifies the bearer tokens that identify API users.
package auth

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingHeader = errors.New("authorization header missing")
	ErrMissingToken  = errors.New("token missing")
	ErrInvalidToken  = errors.New("invalid token")
)

const (
	// MockTokenPrefix marks development tokens that skip signature checks.
	MockTokenPrefix = "mock_jwt_token_"
	MockUserID      = "123"
	MockEmail       = "dev@example.com"
)

// Identity is the authenticated caller.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Mock  bool   `json:"-"`
}

// Claims carries the user ID both in "sub" and in the legacy "id" claim that
// older clients read.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret    []byte
	ttl       time.Duration
	allowMock bool
	now       func() time.Time
}

// NewManager returns a manager signing HS256 tokens valid for ttl. allowMock
// enables mock tokens and must be false in production.
func NewManager(secret string, ttl time.Duration, allowMock bool) *Manager {
	return &Manager{
		secret:    []byte(secret),
		ttl:       ttl,
		allowMock: allowMock,
		now:       time.Now,
	}
}

func (m *Manager) WithClock(now func() time.Time) *Manager {
	c := *m
	c.now = now

	return &c
}

// Issue signs a token for the user and returns it with its expiry.
func (m *Manager) Issue(id, email, name string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)

	claims := Claims{
		UserID: id,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return signed, exp, nil
}

// Verify checks a raw token and returns the identity it carries.
func (m *Manager) Verify(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	if m.allowMock && strings.HasPrefix(token, MockTokenPrefix) {
		return mockIdentity(token), nil
	}

	var claims Claims

	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id := cmp.Or(claims.Subject, claims.UserID)
	if id == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	return &Identity{ID: id, Email: claims.Email, Name: claims.Name}, nil
}

// mockIdentity takes the user ID from the last "_" segment of the token.
func mockIdentity(token string) *Identity {
	id := token[strings.LastIndex(token, "_")+1:]

	return &Identity{ID: cmp.Or(id, MockUserID), Email: MockEmail, Mock: true}
}

// FromHeader extracts and verifies the token of an "Authorization: Bearer"
// header value.
func (m *Manager) FromHeader(header string) (*Identity, error) {
	if header == "" {
		return nil, ErrMissingHeader
	}

	fields := strings.Fields(header)
	if len(fields) < 2 {
		return nil, ErrMissingToken
	}

	return m.Verify(fields[1])
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}
