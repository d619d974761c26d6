package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/vsauschkin/payments-ledger/internal/common"
	"github.com/vsauschkin/payments-ledger/internal/migrations"
	"github.com/vsauschkin/payments-ledger/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres is the production Store backed by database/sql + lib/pq.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens and pings the database.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Migrate applies the embedded goose migrations.
func (p *Postgres) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, p.db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// InTx runs fn inside a transaction. The rollback in the deferred call is a
// no-op after a successful commit.
func (p *Postgres) InTx(ctx context.Context, fn func(Repository) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// queries implements Repository over one transaction.
type queries struct {
	db DBTX
}

func (q *queries) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, full_name, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := q.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash, user.FullName, user.IsAdmin).
		Scan(&user.ID)
	if isUniqueViolation(err) {
		return common.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (q *queries) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, full_name, is_admin
		FROM users
		WHERE email = $1`
	err := q.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (q *queries) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, full_name, is_admin
		FROM users
		WHERE id = $1`
	err := q.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (q *queries) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, full_name = $4, is_admin = $5
		WHERE id = $1`
	res, err := q.db.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.FullName, user.IsAdmin)
	if isUniqueViolation(err) {
		return common.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (q *queries) DeleteUser(ctx context.Context, id int64) error {
	// Accounts cascade with the user; payments are history and block the
	// delete via their FK.
	res, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return common.ErrUserHasPayments
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (q *queries) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, email, password_hash, full_name, is_admin
		FROM users
		ORDER BY id`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.IsAdmin); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (q *queries) FindAccountsByUser(ctx context.Context, userID int64) ([]models.Account, error) {
	query := `
		SELECT id, account_id, user_id, balance
		FROM accounts
		WHERE user_id = $1
		ORDER BY account_id`
	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var acc models.Account
		if err := rows.Scan(&acc.ID, &acc.AccountID, &acc.UserID, &acc.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}
	return accounts, nil
}

func (q *queries) EnsureAccount(ctx context.Context, userID, accountID int64) (*models.Account, error) {
	// Two concurrent first-time credits race on the insert; the unique
	// constraint makes the loser a no-op and the select sees one row.
	insert := `
		INSERT INTO accounts (user_id, account_id, balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id, account_id) DO NOTHING`
	if _, err := q.db.ExecContext(ctx, insert, userID, accountID); err != nil {
		return nil, fmt.Errorf("failed to ensure account: %w", err)
	}

	acc := &models.Account{}
	query := `
		SELECT id, account_id, user_id, balance
		FROM accounts
		WHERE user_id = $1 AND account_id = $2`
	err := q.db.QueryRowContext(ctx, query, userID, accountID).
		Scan(&acc.ID, &acc.AccountID, &acc.UserID, &acc.Balance)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure account: %w", err)
	}
	return acc, nil
}

func (q *queries) CreditAccount(ctx context.Context, userID, accountID int64, amount float64) (float64, error) {
	var balance float64
	query := `
		UPDATE accounts
		SET balance = balance + $3
		WHERE user_id = $1 AND account_id = $2
		RETURNING balance`
	err := q.db.QueryRowContext(ctx, query, userID, accountID, amount).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, common.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit account: %w", err)
	}
	return balance, nil
}

func (q *queries) CreatePayment(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (transaction_id, user_id, account_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := q.db.QueryRowContext(ctx, query, payment.TransactionID, payment.UserID, payment.AccountID, payment.Amount).
		Scan(&payment.ID)
	if isUniqueViolation(err) {
		return common.ErrDuplicateTransaction
	}
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (q *queries) FindPaymentsByUser(ctx context.Context, userID int64) ([]models.Payment, error) {
	query := `
		SELECT id, transaction_id, user_id, account_id, amount
		FROM payments
		WHERE user_id = $1
		ORDER BY id`
	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.TransactionID, &p.UserID, &p.AccountID, &p.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to find payments: %w", err)
	}
	return payments, nil
}

func (q *queries) AccountTotals(ctx context.Context) ([]AccountTotal, error) {
	query := `
		SELECT a.user_id, a.account_id, a.balance, COALESCE(SUM(p.amount), 0)
		FROM accounts a
		LEFT JOIN payments p ON p.user_id = a.user_id AND p.account_id = a.account_id
		GROUP BY a.user_id, a.account_id, a.balance
		ORDER BY a.user_id, a.account_id`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query account totals: %w", err)
	}
	defer rows.Close()

	var totals []AccountTotal
	for rows.Next() {
		var t AccountTotal
		if err := rows.Scan(&t.UserID, &t.AccountID, &t.Balance, &t.PaymentSum); err != nil {
			return nil, fmt.Errorf("failed to scan account total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query account totals: %w", err)
	}
	return totals, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
