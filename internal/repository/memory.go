package repository

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/vsauschkin/payments-ledger/internal/common"
	"github.com/vsauschkin/payments-ledger/internal/models"
)

// Memory is an in-memory Store with the same conflict semantics as the
// postgres implementation. Scopes run serialized under one mutex against a
// cloned state, so a failed scope leaves nothing behind.
type Memory struct {
	mu    sync.Mutex
	state *memState
}

type accountKey struct {
	userID    int64
	accountID int64
}

type memState struct {
	users    map[int64]models.User
	accounts map[accountKey]models.Account
	payments map[string]models.Payment

	nextUserID    int64
	nextAccountID int64
	nextPaymentID int64
}

func (s *memState) clone() *memState {
	return &memState{
		users:         maps.Clone(s.users),
		accounts:      maps.Clone(s.accounts),
		payments:      maps.Clone(s.payments),
		nextUserID:    s.nextUserID,
		nextAccountID: s.nextAccountID,
		nextPaymentID: s.nextPaymentID,
	}
}

func NewMemory() *Memory {
	return &Memory{
		state: &memState{
			users:         map[int64]models.User{},
			accounts:      map[accountKey]models.Account{},
			payments:      map[string]models.Payment{},
			nextUserID:    1,
			nextAccountID: 1,
			nextPaymentID: 1,
		},
	}
}

func (m *Memory) InTx(ctx context.Context, fn func(Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	next := m.state.clone()
	if err := fn(&memQueries{s: next}); err != nil {
		return err
	}
	m.state = next
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close() error { return nil }

type memQueries struct {
	s *memState
}

func (q *memQueries) CreateUser(ctx context.Context, user *models.User) error {
	for _, u := range q.s.users {
		if u.Email == user.Email {
			return common.ErrEmailTaken
		}
	}
	user.ID = q.s.nextUserID
	q.s.nextUserID++
	q.s.users[user.ID] = *user
	return nil
}

func (q *memQueries) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range q.s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (q *memQueries) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := q.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (q *memQueries) UpdateUser(ctx context.Context, user *models.User) error {
	if _, ok := q.s.users[user.ID]; !ok {
		return common.ErrNotFound
	}
	for id, u := range q.s.users {
		if id != user.ID && u.Email == user.Email {
			return common.ErrEmailTaken
		}
	}
	q.s.users[user.ID] = *user
	return nil
}

func (q *memQueries) DeleteUser(ctx context.Context, id int64) error {
	if _, ok := q.s.users[id]; !ok {
		return common.ErrNotFound
	}
	for _, p := range q.s.payments {
		if p.UserID == id {
			return common.ErrUserHasPayments
		}
	}
	delete(q.s.users, id)
	for key := range q.s.accounts {
		if key.userID == id {
			delete(q.s.accounts, key)
		}
	}
	return nil
}

func (q *memQueries) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(q.s.users))
	for _, u := range q.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (q *memQueries) FindAccountsByUser(ctx context.Context, userID int64) ([]models.Account, error) {
	var accounts []models.Account
	for _, a := range q.s.accounts {
		if a.UserID == userID {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountID < accounts[j].AccountID })
	return accounts, nil
}

func (q *memQueries) EnsureAccount(ctx context.Context, userID, accountID int64) (*models.Account, error) {
	key := accountKey{userID: userID, accountID: accountID}
	if a, ok := q.s.accounts[key]; ok {
		return &a, nil
	}
	a := models.Account{
		ID:        q.s.nextAccountID,
		AccountID: accountID,
		UserID:    userID,
		Balance:   0,
	}
	q.s.nextAccountID++
	q.s.accounts[key] = a
	return &a, nil
}

func (q *memQueries) CreditAccount(ctx context.Context, userID, accountID int64, amount float64) (float64, error) {
	key := accountKey{userID: userID, accountID: accountID}
	a, ok := q.s.accounts[key]
	if !ok {
		return 0, common.ErrNotFound
	}
	a.Balance += amount
	q.s.accounts[key] = a
	return a.Balance, nil
}

func (q *memQueries) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if _, ok := q.s.payments[payment.TransactionID]; ok {
		return common.ErrDuplicateTransaction
	}
	payment.ID = q.s.nextPaymentID
	q.s.nextPaymentID++
	q.s.payments[payment.TransactionID] = *payment
	return nil
}

func (q *memQueries) FindPaymentsByUser(ctx context.Context, userID int64) ([]models.Payment, error) {
	var payments []models.Payment
	for _, p := range q.s.payments {
		if p.UserID == userID {
			payments = append(payments, p)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}

func (q *memQueries) AccountTotals(ctx context.Context) ([]AccountTotal, error) {
	sums := map[accountKey]float64{}
	for _, p := range q.s.payments {
		sums[accountKey{userID: p.UserID, accountID: p.AccountID}] += p.Amount
	}
	var totals []AccountTotal
	for key, a := range q.s.accounts {
		totals = append(totals, AccountTotal{
			UserID:     key.userID,
			AccountID:  key.accountID,
			Balance:    a.Balance,
			PaymentSum: sums[key],
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].UserID != totals[j].UserID {
			return totals[i].UserID < totals[j].UserID
		}
		return totals[i].AccountID < totals[j].AccountID
	})
	return totals, nil
}
