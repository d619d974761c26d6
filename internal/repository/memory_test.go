package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsauschkin/payments-ledger/internal/common"
	"github.com/vsauschkin/payments-ledger/internal/models"
)

func createUser(t *testing.T, store Store, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, FullName: "Someone", PasswordHash: "x"}
	err := store.InTx(context.Background(), func(r Repository) error {
		return r.CreateUser(context.Background(), user)
	})
	require.NoError(t, err)
	return user
}

func TestMemory_UserCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemory()

	user := createUser(t, store, "a@test.com")
	require.NotZero(t, user.ID)

	err := store.InTx(ctx, func(r Repository) error {
		byEmail, err := r.FindUserByEmail(ctx, "a@test.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		byID, err := r.FindUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "a@test.com", byID.Email)

		_, err = r.FindUserByEmail(ctx, "missing@test.com")
		assert.ErrorIs(t, err, common.ErrNotFound)

		byID.FullName = "Renamed"
		require.NoError(t, r.UpdateUser(ctx, byID))

		again, err := r.FindUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", again.FullName)

		users, err := r.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)

		return r.DeleteUser(ctx, user.ID)
	})
	require.NoError(t, err)

	err = store.InTx(ctx, func(r Repository) error {
		_, err := r.FindUserByID(ctx, user.ID)
		return err
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemory_EmailConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemory()

	createUser(t, store, "a@test.com")
	second := createUser(t, store, "b@test.com")

	err := store.InTx(ctx, func(r Repository) error {
		return r.CreateUser(ctx, &models.User{Email: "a@test.com"})
	})
	assert.ErrorIs(t, err, common.ErrEmailTaken)

	err = store.InTx(ctx, func(r Repository) error {
		second.Email = "a@test.com"
		return r.UpdateUser(ctx, second)
	})
	assert.ErrorIs(t, err, common.ErrEmailTaken)
}

func TestMemory_DeleteUserWithPayments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemory()

	user := createUser(t, store, "a@test.com")

	err := store.InTx(ctx, func(r Repository) error {
		if _, err := r.EnsureAccount(ctx, user.ID, 1); err != nil {
			return err
		}
		return r.CreatePayment(ctx, &models.Payment{TransactionID: "tx1", UserID: user.ID, AccountID: 1, Amount: 10})
	})
	require.NoError(t, err)

	err = store.InTx(ctx, func(r Repository) error {
		return r.DeleteUser(ctx, user.ID)
	})
	assert.ErrorIs(t, err, common.ErrUserHasPayments)
}

func TestMemory_EnsureAccountIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemory()

	user := createUser(t, store, "a@test.com")

	var firstID int64
	err := store.InTx(ctx, func(r Repository) error {
		acc, err := r.EnsureAccount(ctx, user.ID, 5)
		require.NoError(t, err)
		assert.Zero(t, acc.Balance)
		firstID = acc.ID

		again, err := r.EnsureAccount(ctx, user.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, firstID, again.ID)

		accounts, err := r.FindAccountsByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, accounts, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestMemory_DuplicateTransaction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemory()

	user := createUser(t, store, "a@test.com")

	payment := models.Payment{TransactionID: "tx1", UserID: user.ID, AccountID: 1, Amount: 50}
	err := store.InTx(ctx, func(r Repository) error {
		if _, err := r.EnsureAccount(ctx, user.ID, 1); err != nil {
			return err
		}
		p := payment
		return r.CreatePayment(ctx, &p)
	})
	require.NoError(t, err)

	err = store.InTx(ctx, func(r Repository) error {
		p := payment
		return r.CreatePayment(ctx, &p)
	})
	assert.ErrorIs(t, err, common.ErrDuplicateTransaction)
}

func TestMemory_RollbackDiscardsWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemory()

	user := createUser(t, store, "a@test.com")
	boom := errors.New("boom")

	err := store.InTx(ctx, func(r Repository) error {
		if _, err := r.EnsureAccount(ctx, user.ID, 1); err != nil {
			return err
		}
		if err := r.CreatePayment(ctx, &models.Payment{TransactionID: "tx1", UserID: user.ID, AccountID: 1, Amount: 50}); err != nil {
			return err
		}
		if _, err := r.CreditAccount(ctx, user.ID, 1, 50); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing from the failed scope is visible.
	err = store.InTx(ctx, func(r Repository) error {
		accounts, err := r.FindAccountsByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, accounts)

		payments, err := r.FindPaymentsByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, payments)
		return nil
	})
	require.NoError(t, err)
}

func TestMemory_CreditAndTotals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemory()

	user := createUser(t, store, "a@test.com")

	err := store.InTx(ctx, func(r Repository) error {
		if _, err := r.EnsureAccount(ctx, user.ID, 1); err != nil {
			return err
		}
		balance, err := r.CreditAccount(ctx, user.ID, 1, 30)
		require.NoError(t, err)
		assert.Equal(t, 30.0, balance)

		balance, err = r.CreditAccount(ctx, user.ID, 1, 12.5)
		require.NoError(t, err)
		assert.Equal(t, 42.5, balance)

		_, err = r.CreditAccount(ctx, user.ID, 99, 1)
		assert.ErrorIs(t, err, common.ErrNotFound)

		return r.CreatePayment(ctx, &models.Payment{TransactionID: "tx1", UserID: user.ID, AccountID: 1, Amount: 42.5})
	})
	require.NoError(t, err)

	err = store.InTx(ctx, func(r Repository) error {
		totals, err := r.AccountTotals(ctx)
		require.NoError(t, err)
		require.Len(t, totals, 1)
		assert.Equal(t, 42.5, totals[0].Balance)
		assert.Equal(t, 42.5, totals[0].PaymentSum)
		return nil
	})
	require.NoError(t, err)
}
