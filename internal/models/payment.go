package models

// Payment is an immutable record of one applied transaction. TransactionID
// is the provider's idempotency key, unique across the whole ledger.
type Payment struct {
	ID            int64   `json:"id"`
	TransactionID string  `json:"transaction_id"`
	UserID        int64   `json:"user_id"`
	AccountID     int64   `json:"account_id"`
	Amount        float64 `json:"amount"`
}
