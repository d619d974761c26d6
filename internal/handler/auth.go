package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vsauschkin/payments-ledger/internal/common"
)

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Auth handles POST /api/auth.
func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}

	token, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, common.ErrInvalidCredentials) {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
