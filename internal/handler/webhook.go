package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/vsauschkin/payments-ledger/internal/common"
	"github.com/vsauschkin/payments-ledger/internal/signature"
)

// Webhook handles POST /api/webhook. The body is decoded preserving numeric
// literals so the signature covers exactly what the provider sent.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	fields, err := signature.Decode(body)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}

	err = h.svc.ProcessWebhook(r.Context(), fields)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusCreated, map[string]string{"status": "success"})
	case errors.Is(err, common.ErrInvalidSignature):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid signature"})
	case errors.Is(err, common.ErrInvalidPayload):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	case errors.Is(err, common.ErrDuplicateTransaction):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Transaction already processed"})
	case errors.Is(err, common.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
	default:
		h.internalError(w, r, err)
	}
}
