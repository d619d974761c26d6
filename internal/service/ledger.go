package service

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/vsauschkin/payments-ledger/internal/models"
	"github.com/vsauschkin/payments-ledger/internal/repository"
)

// UserAccounts returns all accounts owned by the user.
func (s *Service) UserAccounts(ctx context.Context, userID int64) ([]models.Account, error) {
	var accounts []models.Account
	err := s.store.InTx(ctx, func(r repository.Repository) error {
		a, err := r.FindAccountsByUser(ctx, userID)
		accounts = a
		return err
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// UserPayments returns all payments recorded for the user.
func (s *Service) UserPayments(ctx context.Context, userID int64) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.store.InTx(ctx, func(r repository.Repository) error {
		p, err := r.FindPaymentsByUser(ctx, userID)
		payments = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// Reconcile audits every account against the sum of its payments and logs
// any drift. Returns the number of mismatched accounts. Runs on a schedule
// from main.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	var totals []repository.AccountTotal
	err := s.store.InTx(ctx, func(r repository.Repository) error {
		t, err := r.AccountTotals(ctx)
		totals = t
		return err
	})
	if err != nil {
		return 0, err
	}

	mismatches := 0
	for _, t := range totals {
		if math.Abs(t.Balance-t.PaymentSum) > 1e-9 {
			mismatches++
			s.log.WithFields(logrus.Fields{
				"user_id":     t.UserID,
				"account_id":  t.AccountID,
				"balance":     t.Balance,
				"payment_sum": t.PaymentSum,
			}).Error("ledger reconciliation mismatch")
		}
	}

	s.log.Infof("Reconciliation finished: %d accounts checked, %d mismatches", len(totals), mismatches)
	return mismatches, nil
}
