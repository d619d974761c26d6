package models

// Account represents one ledger account. AccountID is a per-ledger sequence
// number scoped to the owning user; (UserID, AccountID) is unique.
type Account struct {
	ID        int64   `json:"id"`
	AccountID int64   `json:"account_id"`
	UserID    int64   `json:"user_id"`
	Balance   float64 `json:"balance"`
}
