package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vsauschkin/payments-ledger/internal/common"
	"github.com/vsauschkin/payments-ledger/internal/middleware"
	"github.com/vsauschkin/payments-ledger/internal/models"
	"github.com/vsauschkin/payments-ledger/internal/service"
)

type userSummary struct {
	UserID   int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type accountSummary struct {
	ID        int64   `json:"id"`
	AccountID int64   `json:"account_id"`
	Balance   float64 `json:"balance"`
}

type paymentSummary struct {
	TransactionID string  `json:"transaction_id"`
	AccountID     int64   `json:"account_id"`
	Payment       float64 `json:"payment"`
}

func accountSummaries(accounts []models.Account) []accountSummary {
	out := make([]accountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountSummary{ID: a.ID, AccountID: a.AccountID, Balance: a.Balance})
	}
	return out
}

func paymentSummaries(payments []models.Payment) []paymentSummary {
	out := make([]paymentSummary, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentSummary{TransactionID: p.TransactionID, AccountID: p.AccountID, Payment: p.Amount})
	}
	return out
}

// Me handles GET /api/users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "You are unauthorized.", http.StatusUnauthorized)
		return
	}

	user, err := h.svc.UserByID(r.Context(), userID)
	if errors.Is(err, common.ErrNotFound) {
		// Token outlived the user; an empty body, not an error.
		h.writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, userSummary{UserID: user.ID, FullName: user.FullName, Email: user.Email})
}

// MyAccounts handles GET /api/users/me/accounts.
func (h *Handler) MyAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "You are unauthorized.", http.StatusUnauthorized)
		return
	}
	h.respondAccounts(w, r, userID)
}

// MyPayments handles GET /api/users/me/payments.
func (h *Handler) MyPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "You are unauthorized.", http.StatusUnauthorized)
		return
	}
	h.respondPayments(w, r, userID)
}

func (h *Handler) respondAccounts(w http.ResponseWriter, r *http.Request, userID int64) {
	accounts, err := h.svc.UserAccounts(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if len(accounts) == 0 {
		h.writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	h.writeJSON(w, http.StatusOK, accountSummaries(accounts))
}

func (h *Handler) respondPayments(w http.ResponseWriter, r *http.Request, userID int64) {
	payments, err := h.svc.UserPayments(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if len(payments) == 0 {
		h.writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	h.writeJSON(w, http.StatusOK, paymentSummaries(payments))
}

type addUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_admin"`
}

// AddUser handles POST /api/users/add.
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "User exists"})
		return
	}

	user, err := h.svc.CreateUser(r.Context(), req.Email, req.Password, req.FullName, req.IsAdmin)
	if errors.Is(err, common.ErrEmailTaken) {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "User exists"})
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": user.ID})
}

type updateUserRequest struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_admin"`
}

// UpdateUser handles POST /api/users/update.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "User doesnt exists"})
		return
	}

	err := h.svc.UpdateUser(r.Context(), service.UpdateUserInput{
		ID:       req.ID,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		IsAdmin:  req.IsAdmin,
	})
	if errors.Is(err, common.ErrNotFound) {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "User doesnt exists"})
		return
	}
	if errors.Is(err, common.ErrEmailTaken) {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "User exists"})
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"success": "success"})
}

type deleteUserRequest struct {
	ID int64 `json:"id"`
}

// DeleteUser handles POST /api/users/delete.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "User doesnt exists"})
		return
	}

	err := h.svc.DeleteUser(r.Context(), req.ID)
	if errors.Is(err, common.ErrNotFound) {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "User doesnt exists"})
		return
	}
	if errors.Is(err, common.ErrUserHasPayments) {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "User has payments"})
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"success": "user deleted"})
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, map[string]any{"id": u.ID, "email": u.Email, "full_name": u.FullName})
	}
	h.writeJSON(w, http.StatusCreated, out)
}

// GetUser handles GET /api/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusOK, map[string]string{})
		return
	}

	user, err := h.svc.UserByID(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		h.writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, userSummary{UserID: user.ID, FullName: user.FullName, Email: user.Email})
}

// UserAccounts handles GET /api/users/{id}/accounts.
func (h *Handler) UserAccounts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	h.respondAccounts(w, r, id)
}

// UserPayments handles GET /api/users/{id}/payments.
func (h *Handler) UserPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	h.respondPayments(w, r, id)
}

// Statement handles GET /api/users/{id}/statement.
func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
		return
	}

	out, err := h.svc.Statement(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
