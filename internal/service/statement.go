package service

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/vsauschkin/payments-ledger/internal/models"
	"github.com/vsauschkin/payments-ledger/internal/repository"
)

// Statement renders an XML statement for one user: identity, accounts with
// balances and the full payment history.
func (s *Service) Statement(ctx context.Context, userID int64) ([]byte, error) {
	var user *models.User
	var accounts []models.Account
	var payments []models.Payment

	err := s.store.InTx(ctx, func(r repository.Repository) error {
		u, err := r.FindUserByID(ctx, userID)
		if err != nil {
			return err
		}
		user = u

		if accounts, err = r.FindAccountsByUser(ctx, userID); err != nil {
			return err
		}
		payments, err = r.FindPaymentsByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("statement")
	root.CreateAttr("generated", time.Now().Format(time.RFC3339))

	userEl := root.CreateElement("user")
	userEl.CreateAttr("id", fmt.Sprintf("%d", user.ID))
	userEl.CreateAttr("email", user.Email)
	userEl.CreateAttr("full_name", user.FullName)

	accountsEl := root.CreateElement("accounts")
	for _, acc := range accounts {
		accEl := accountsEl.CreateElement("account")
		accEl.CreateAttr("account_id", fmt.Sprintf("%d", acc.AccountID))
		accEl.CreateAttr("balance", fmt.Sprintf("%.2f", acc.Balance))
	}

	paymentsEl := root.CreateElement("payments")
	for _, p := range payments {
		pEl := paymentsEl.CreateElement("payment")
		pEl.CreateAttr("transaction_id", p.TransactionID)
		pEl.CreateAttr("account_id", fmt.Sprintf("%d", p.AccountID))
		pEl.CreateAttr("amount", fmt.Sprintf("%.2f", p.Amount))
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render statement: %w", err)
	}
	return out, nil
}
