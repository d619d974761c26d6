package handler

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/vsauschkin/payments-ledger/internal/middleware"
	"github.com/vsauschkin/payments-ledger/internal/token"
)

// NewRouter wires all /api routes with their guards. The /users/me
// subrouter must be registered before the admin /users subrouter so the
// more specific prefix wins.
func NewRouter(h *Handler, tokens *token.Service, users middleware.UserSource, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(log))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth", h.Auth).Methods("POST")
	api.HandleFunc("/webhook", h.Webhook).Methods("POST")

	me := api.PathPrefix("/users/me").Subrouter()
	me.Use(middleware.Protected(tokens, log))
	me.HandleFunc("", h.Me).Methods("GET")
	me.HandleFunc("/accounts", h.MyAccounts).Methods("GET")
	me.HandleFunc("/payments", h.MyPayments).Methods("GET")

	admin := api.PathPrefix("/users").Subrouter()
	admin.Use(middleware.AdminOnly(tokens, users, log))
	admin.HandleFunc("", h.ListUsers).Methods("GET")
	admin.HandleFunc("/add", h.AddUser).Methods("POST")
	admin.HandleFunc("/update", h.UpdateUser).Methods("POST")
	admin.HandleFunc("/delete", h.DeleteUser).Methods("POST")
	admin.HandleFunc("/{id:[0-9]+}", h.GetUser).Methods("GET")
	admin.HandleFunc("/{id:[0-9]+}/payments", h.UserPayments).Methods("GET")
	admin.HandleFunc("/{id:[0-9]+}/accounts", h.UserAccounts).Methods("GET")
	admin.HandleFunc("/{id:[0-9]+}/statement", h.Statement).Methods("GET")

	return r
}
