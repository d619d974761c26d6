package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsauschkin/payments-ledger/internal/common"
	"github.com/vsauschkin/payments-ledger/internal/config"
	"github.com/vsauschkin/payments-ledger/internal/models"
	"github.com/vsauschkin/payments-ledger/internal/token"
)

type stubUsers struct {
	users map[int64]*models.User
}

func (s *stubUsers) UserByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTokens(t *testing.T, expiry time.Duration) *token.Service {
	t.Helper()
	tokens, err := token.NewService(&config.Config{
		JWTSecret:     "test-secret",
		JWTAlgorithm:  "HS256",
		JWTExpiration: expiry,
	})
	require.NoError(t, err)
	return tokens
}

func TestProtected(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t, time.Hour)
	expiredTokens := newTokens(t, -time.Minute)

	valid, err := tokens.Issue(7)
	require.NoError(t, err)
	expired, err := expiredTokens.Issue(7)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantUserID int64
	}{
		{name: "no token", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", authHeader: "Bearer garbage", wantStatus: http.StatusUnauthorized},
		{name: "expired token", authHeader: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "valid token", authHeader: "Bearer " + valid, wantStatus: http.StatusOK, wantUserID: 7},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			invoked := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				invoked = true
				id, ok := UserID(r.Context())
				assert.True(t, ok)
				assert.Equal(t, tt.wantUserID, id)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			Protected(tokens, quietLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, invoked)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	t.Parallel()

	tokens := newTokens(t, time.Hour)
	users := &stubUsers{users: map[int64]*models.User{
		1: {ID: 1, Email: "admin@test.com", IsAdmin: true},
		2: {ID: 2, Email: "user@test.com"},
	}}

	adminToken, err := tokens.Issue(1)
	require.NoError(t, err)
	userToken, err := tokens.Issue(2)
	require.NoError(t, err)
	ghostToken, err := tokens.Issue(99)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "no token", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", authHeader: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "unknown user", authHeader: "Bearer " + ghostToken, wantStatus: http.StatusUnauthorized},
		{name: "non-admin user", authHeader: "Bearer " + userToken, wantStatus: http.StatusUnauthorized},
		{name: "admin user", authHeader: "Bearer " + adminToken, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			invoked := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				invoked = true
			})

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			AdminOnly(tokens, users, quietLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, invoked)
		})
	}
}
