// Package handler exposes the service over HTTP and translates errors into
// the API's status taxonomy.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/vsauschkin/payments-ledger/internal/service"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

// internalError logs the cause and answers with a fixed body; internal
// detail never reaches the caller.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).
		Errorf("Unexpected error: %v", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
