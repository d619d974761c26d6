// Package middleware provides the request guards in front of the API:
// token verification, the admin gate and request logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/vsauschkin/payments-ledger/internal/models"
	"github.com/vsauschkin/payments-ledger/internal/token"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserID returns the verified user id placed in the request context by
// Protected or AdminOnly.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// UserSource loads a user inside the request's transaction scope. The
// service layer implements it.
type UserSource interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// Protected rejects requests without a valid token; on success the verified
// user id is available via UserID from the request context.
func Protected(tokens *token.Service, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractToken(r)
			if raw == "" {
				log.WithField("path", r.URL.Path).Info("rejected: missing token")
				http.Error(w, "You are unauthorized.", http.StatusUnauthorized)
				return
			}

			userID, err := tokens.Verify(raw)
			if err != nil {
				log.WithField("path", r.URL.Path).Infof("rejected: %v", err)
				http.Error(w, "You are unauthorized.", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly verifies the token and additionally requires the resolved user
// to exist and carry the admin flag. Both rejection causes answer 401 but
// are distinguished in the logs.
func AdminOnly(tokens *token.Service, users UserSource, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractToken(r)
			if raw == "" {
				log.WithField("path", r.URL.Path).Info("rejected: missing token")
				http.Error(w, "You are unauthorized.", http.StatusUnauthorized)
				return
			}

			userID, err := tokens.Verify(raw)
			if err != nil {
				log.WithField("path", r.URL.Path).Infof("rejected: %v", err)
				http.Error(w, "You are unauthorized.", http.StatusUnauthorized)
				return
			}

			user, err := users.UserByID(r.Context(), userID)
			if err != nil {
				log.WithFields(logrus.Fields{"path": r.URL.Path, "user_id": userID}).
					Infof("rejected: %v", err)
				http.Error(w, "You are unauthorized.", http.StatusUnauthorized)
				return
			}
			if !user.IsAdmin {
				log.WithFields(logrus.Fields{"path": r.URL.Path, "user_id": userID}).
					Info("rejected: not an admin")
				http.Error(w, "You are unauthorized as admin.", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
