// Package token issues and verifies the signed identity tokens used by the
// API. Tokens are self-contained: a user id plus issue/expiry timestamps,
// signed with a process-wide symmetric secret.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vsauschkin/payments-ledger/internal/common"
	"github.com/vsauschkin/payments-ledger/internal/config"
)

// Claims includes the registered claims plus the bound user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// Service signs and verifies tokens with a fixed method and secret.
type Service struct {
	secret []byte
	method jwt.SigningMethod
	expiry time.Duration
}

// NewService builds a token service from configuration. Only HMAC methods
// are accepted since the secret is symmetric.
func NewService(cfg *config.Config) (*Service, error) {
	method := jwt.GetSigningMethod(cfg.JWTAlgorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm: %s", cfg.JWTAlgorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("algorithm %s is not an HMAC method", cfg.JWTAlgorithm)
	}
	return &Service{
		secret: []byte(cfg.JWTSecret),
		method: method,
		expiry: cfg.JWTExpiration,
	}, nil
}

// Issue produces a signed token for the given user id.
func (s *Service) Issue(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(s.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature and expiry and returns the bound user id. Every
// failure mode maps to common.ErrInvalidToken.
func (s *Service) Verify(tokenString string) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, common.ErrInvalidToken
	}

	return claims.UserID, nil
}
