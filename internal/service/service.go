// Package service holds the business logic between the HTTP handlers and
// the store: authentication, user administration, ledger queries and
// webhook ingestion.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vsauschkin/payments-ledger/internal/common"
	"github.com/vsauschkin/payments-ledger/internal/config"
	"github.com/vsauschkin/payments-ledger/internal/models"
	"github.com/vsauschkin/payments-ledger/internal/repository"
	"github.com/vsauschkin/payments-ledger/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// CreditNotifier is notified after a payment has been committed.
// *mailer.Sender implements it.
type CreditNotifier interface {
	SendCreditNotification(to, fullName string, accountID int64, amount, balance float64) error
}

// Service handles business logic
type Service struct {
	store    repository.Store
	tokens   *token.Service
	notifier CreditNotifier
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service. notifier may be nil, which disables
// credit notifications.
func NewService(store repository.Store, tokens *token.Service, notifier CreditNotifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{store: store, tokens: tokens, notifier: notifier, log: log, config: cfg}
}

// Authenticate checks credentials and returns a signed token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	var user *models.User
	err := s.store.InTx(ctx, func(r repository.Repository) error {
		u, err := r.FindUserByEmail(ctx, email)
		user = u
		return err
	})
	if errors.Is(err, common.ErrNotFound) {
		return "", common.ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrInvalidCredentials
	}

	tokenString, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// UserByID loads one user; it also backs the admin middleware check.
func (s *Service) UserByID(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := s.store.InTx(ctx, func(r repository.Repository) error {
		u, err := r.FindUserByID(ctx, id)
		user = u
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
