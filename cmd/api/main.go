package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"

	"github.com/vsauschkin/payments-ledger/internal/config"
	"github.com/vsauschkin/payments-ledger/internal/handler"
	"github.com/vsauschkin/payments-ledger/internal/mailer"
	"github.com/vsauschkin/payments-ledger/internal/repository"
	"github.com/vsauschkin/payments-ledger/internal/service"
	"github.com/vsauschkin/payments-ledger/internal/token"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database and schema
	store, err := repository.NewPostgres(cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(context.Background()); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize layers
	tokens, err := token.NewService(cfg)
	if err != nil {
		logger.Fatalf("Failed to create token service: %v", err)
	}
	var notifier service.CreditNotifier
	if cfg.SMTPHost != "" {
		notifier = mailer.NewSender(cfg, logger)
	}
	svc := service.NewService(store, tokens, notifier, logger, cfg)
	h := handler.NewHandler(svc, logger)

	if err := svc.SeedTestData(context.Background()); err != nil {
		logger.Fatalf("Failed to seed test data: %v", err)
	}

	// Nightly ledger audit
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@daily", func() {
		if _, err := svc.Reconcile(context.Background()); err != nil {
			logger.Errorf("Reconciliation failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule reconciliation: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router and start server
	r := handler.NewRouter(h, tokens, svc, logger)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
