package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vsauschkin/payments-ledger/internal/common"
	"github.com/vsauschkin/payments-ledger/internal/models"
	"github.com/vsauschkin/payments-ledger/internal/repository"
	"github.com/vsauschkin/payments-ledger/internal/signature"
)

type notification struct {
	UserID        int64
	AccountID     int64
	TransactionID string
	Amount        float64
}

// ProcessWebhook applies one provider notification: signature check first,
// then user lookup, account get-or-create, payment insert and balance
// credit — all inside one transaction scope. The unique constraint on the
// transaction id is the only duplicate check; a rejected insert rolls the
// whole scope back.
func (s *Service) ProcessWebhook(ctx context.Context, fields map[string]any) error {
	if !signature.Verify(fields, s.config.WebhookSecret) {
		s.log.Warn("webhook rejected: invalid signature")
		return common.ErrInvalidSignature
	}

	n, err := parseNotification(fields)
	if err != nil {
		return err
	}

	var balance float64
	var user *models.User
	err = s.store.InTx(ctx, func(r repository.Repository) error {
		u, err := r.FindUserByID(ctx, n.UserID)
		if err != nil {
			return err
		}
		user = u

		if _, err := r.EnsureAccount(ctx, n.UserID, n.AccountID); err != nil {
			return err
		}

		payment := &models.Payment{
			TransactionID: n.TransactionID,
			UserID:        n.UserID,
			AccountID:     n.AccountID,
			Amount:        n.Amount,
		}
		if err := r.CreatePayment(ctx, payment); err != nil {
			return err
		}

		balance, err = r.CreditAccount(ctx, n.UserID, n.AccountID, n.Amount)
		return err
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"transaction_id": n.TransactionID,
		"user_id":        n.UserID,
		"account_id":     n.AccountID,
		"amount":         n.Amount,
		"balance":        balance,
	}).Info("payment applied")

	if s.notifier != nil {
		// Best effort: the payment is committed, a failed mail only logs.
		go func() {
			_ = s.notifier.SendCreditNotification(user.Email, user.FullName, n.AccountID, n.Amount, balance)
		}()
	}

	return nil
}

func parseNotification(fields map[string]any) (*notification, error) {
	userID, err := intField(fields, "user_id")
	if err != nil {
		return nil, err
	}
	accountID, err := intField(fields, "account_id")
	if err != nil {
		return nil, err
	}
	transactionID, ok := fields["transaction_id"].(string)
	if !ok || transactionID == "" {
		return nil, fmt.Errorf("%w: missing transaction_id", common.ErrInvalidPayload)
	}
	amount, err := floatField(fields, "amount")
	if err != nil {
		return nil, err
	}

	return &notification{
		UserID:        userID,
		AccountID:     accountID,
		TransactionID: transactionID,
		Amount:        amount,
	}, nil
}

func intField(fields map[string]any, key string) (int64, error) {
	num, ok := fields[key].(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", common.ErrInvalidPayload, key)
	}
	v, err := num.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not an integer", common.ErrInvalidPayload, key)
	}
	return v, nil
}

func floatField(fields map[string]any, key string) (float64, error) {
	num, ok := fields[key].(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", common.ErrInvalidPayload, key)
	}
	v, err := num.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", common.ErrInvalidPayload, key)
	}
	return v, nil
}
