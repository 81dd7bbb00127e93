package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finlink/internal/auth"
)

var issuedAt = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

func manager(allowMock bool) *auth.Manager {
	return auth.NewManager("test-secret", time.Hour, allowMock).
		WithClock(func() time.Time { return issuedAt })
}

func TestManager_IssueVerify(t *testing.T) {
	m := manager(false)

	token, exp, err := m.Issue("user-1", "jane@example.com", "Jane")
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(time.Hour), exp)

	id, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, &auth.Identity{ID: "user-1", Email: "jane@example.com", Name: "Jane"}, id)

	var claims jwt.MapClaims
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["sub"])
	assert.Equal(t, "user-1", claims["id"])
}

func TestManager_Verify(t *testing.T) {
	valid, _, err := manager(false).Issue("user-1", "", "")
	require.NoError(t, err)

	otherSecret, _, err := auth.NewManager("other", time.Hour, false).Issue("user-1", "", "")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	type testCase struct {
		name     string
		m        *auth.Manager
		token    string
		wantID   string
		wantMock bool
		wantErr  error
	}

	tests := []testCase{
		{name: "Valid", m: manager(false), token: valid, wantID: "user-1"},
		{name: "Empty", m: manager(false), token: "", wantErr: auth.ErrMissingToken},
		{name: "Garbage", m: manager(false), token: "abc.def.ghi", wantErr: auth.ErrInvalidToken},
		{name: "WrongSecret", m: manager(false), token: otherSecret, wantErr: auth.ErrInvalidToken},
		{name: "AlgNone", m: manager(false), token: none, wantErr: auth.ErrInvalidToken},
		{
			name:    "Expired",
			m:       manager(false).WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) }),
			token:   valid,
			wantErr: auth.ErrInvalidToken,
		},
		{name: "MockDisabled", m: manager(false), token: "mock_jwt_token_42", wantErr: auth.ErrInvalidToken},
		{name: "MockWithID", m: manager(true), token: "mock_jwt_token_42", wantID: "42", wantMock: true},
		{name: "MockDefaultID", m: manager(true), token: "mock_jwt_token_", wantID: "123", wantMock: true},
		{name: "RealTokenWithMockEnabled", m: manager(true), token: valid, wantID: "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.m.Verify(tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
			assert.Equal(t, tt.wantMock, got.Mock)
		})
	}
}

func TestManager_FromHeader(t *testing.T) {
	m := manager(true)

	_, err := m.FromHeader("")
	assert.ErrorIs(t, err, auth.ErrMissingHeader)

	_, err = m.FromHeader("Bearer")
	assert.ErrorIs(t, err, auth.ErrMissingToken)

	id, err := m.FromHeader("Bearer mock_jwt_token_7")
	require.NoError(t, err)
	assert.Equal(t, "7", id.ID)
	assert.Equal(t, auth.MockEmail, id.Email)
}

func TestContext(t *testing.T) {
	_, ok := auth.FromContext(context.Background())
	assert.False(t, ok)

	ctx := auth.WithIdentity(context.Background(), &auth.Identity{ID: "u"})
	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u", got.ID)
}
