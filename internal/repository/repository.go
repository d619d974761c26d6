// Package repository provides the ledger's persistence layer: user records,
// accounts and immutable payments, accessed through a per-request
// transaction scope.
package repository

import (
	"context"

	"github.com/vsauschkin/payments-ledger/internal/models"
)

// AccountTotal pairs an account's stored balance with the sum of its
// recorded payments, for reconciliation.
type AccountTotal struct {
	UserID     int64
	AccountID  int64
	Balance    float64
	PaymentSum float64
}

// Repository is the set of store operations available inside a transaction
// scope. Conflicts surface as sentinel errors from internal/common:
// ErrEmailTaken, ErrDuplicateTransaction, ErrUserHasPayments, ErrNotFound.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]models.User, error)

	FindAccountsByUser(ctx context.Context, userID int64) ([]models.Account, error)
	// EnsureAccount get-or-creates the account for (userID, accountID) with
	// zero initial balance. Safe under concurrent first-time credits.
	EnsureAccount(ctx context.Context, userID, accountID int64) (*models.Account, error)
	// CreditAccount atomically adds amount to the account's balance and
	// returns the new balance. Never read-modify-write.
	CreditAccount(ctx context.Context, userID, accountID int64, amount float64) (float64, error)

	// CreatePayment inserts a payment; the unique constraint on
	// transaction_id is the idempotency check, there is no prior lookup.
	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindPaymentsByUser(ctx context.Context, userID int64) ([]models.Payment, error)

	AccountTotals(ctx context.Context) ([]AccountTotal, error)
}

// Store hands out transaction scopes. All operations of one request run in
// one scope: committed if fn returns nil, rolled back otherwise.
type Store interface {
	InTx(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}
