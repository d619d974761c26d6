package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vsauschkin/payments-ledger/internal/common"
	"github.com/vsauschkin/payments-ledger/internal/models"
	"github.com/vsauschkin/payments-ledger/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// SeedTestData creates the configured admin and regular test users if they
// do not exist yet. The test user gets account 1 funded through a seed
// payment so the balance/payment-sum invariant holds from the start.
func (s *Service) SeedTestData(ctx context.Context) error {
	if err := s.seedUser(ctx, s.config.TestAdminEmail, s.config.TestAdminPassword, "Test Admin", true, 0); err != nil {
		return err
	}
	if err := s.seedUser(ctx, s.config.TestUserEmail, s.config.TestUserPassword, "Test User", false, 100.0); err != nil {
		return err
	}
	s.log.Info("Test data seeded")
	return nil
}

func (s *Service) seedUser(ctx context.Context, email, password, fullName string, isAdmin bool, initialBalance float64) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	return s.store.InTx(ctx, func(r repository.Repository) error {
		if _, err := r.FindUserByEmail(ctx, email); err == nil {
			return nil
		} else if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		user := &models.User{
			Email:        email,
			FullName:     fullName,
			PasswordHash: string(hashed),
			IsAdmin:      isAdmin,
		}
		if err := r.CreateUser(ctx, user); err != nil {
			return err
		}

		if initialBalance == 0 {
			return nil
		}

		if _, err := r.EnsureAccount(ctx, user.ID, 1); err != nil {
			return err
		}
		payment := &models.Payment{
			TransactionID: fmt.Sprintf("seed-%d-1", user.ID),
			UserID:        user.ID,
			AccountID:     1,
			Amount:        initialBalance,
		}
		if err := r.CreatePayment(ctx, payment); err != nil {
			return err
		}
		_, err := r.CreditAccount(ctx, user.ID, 1, initialBalance)
		return err
	})
}
