// Package mailer sends credit notifications over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/vsauschkin/payments-ledger/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendCreditNotification notifies a user that a payment was applied to one
// of their accounts.
func (s *Sender) SendCreditNotification(to, fullName string, accountID int64, amount, balance float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Payment Received"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your account %d has been credited with %.2f.\n"+
			"Transaction time: %s\n"+
			"Current balance: %.2f\n"+
			"\nBest regards,\nPayments Ledger",
		fullName, accountID, amount, time.Now().Format("2006-01-02 15:04:05"), balance,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send credit notification to %s: %v", to, err)
		return fmt.Errorf("failed to send credit notification: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
