package token

import (
	"errors"
	"testing"
	"time"

	"github.com/vsauschkin/payments-ledger/internal/common"
	"github.com/vsauschkin/payments-ledger/internal/config"
)

func newTestService(t *testing.T, secret string, expiry time.Duration) *Service {
	t.Helper()
	svc, err := NewService(&config.Config{
		JWTSecret:     secret,
		JWTAlgorithm:  "HS256",
		JWTExpiration: expiry,
	})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return svc
}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "super-secret", time.Hour)

	tok, err := svc.Issue(42)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	userID, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if userID != 42 {
		t.Fatalf("userID mismatch: got %d want 42", userID)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "secret", -1*time.Second)

	tok, err := svc.Issue(1)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = svc.Verify(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := newTestService(t, "right-secret", time.Hour)
	verifier := newTestService(t, "wrong-secret", time.Hour)

	tok, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := verifier.Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerify_Tampered(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "secret", time.Hour)

	tok, err := svc.Issue(7)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	tampered := tok[:len(tok)-2] + "xx"
	if _, err := svc.Verify(tampered); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "k", time.Hour)
	if _, err := svc.Verify("not.a.jwt"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestNewService_RejectsNonHMAC(t *testing.T) {
	t.Parallel()

	_, err := NewService(&config.Config{
		JWTSecret:     "secret",
		JWTAlgorithm:  "RS256",
		JWTExpiration: time.Hour,
	})
	if err == nil {
		t.Fatal("expected error for non-HMAC algorithm")
	}

	_, err = NewService(&config.Config{
		JWTSecret:     "secret",
		JWTAlgorithm:  "bogus",
		JWTExpiration: time.Hour,
	})
	if err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}
