// Package common defines sentinel errors shared across the repository,
// service and handler layers. Callers match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound             = errors.New("not found")
	ErrEmailTaken           = errors.New("email already taken")
	ErrDuplicateTransaction = errors.New("transaction already processed")
	ErrUserHasPayments      = errors.New("user has payments")

	// Auth errors.
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAdmin           = errors.New("admin privileges required")

	// Webhook errors.
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidPayload   = errors.New("invalid payload")
)
