// Package email sends the run report over SMTP.
package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"paperwatch/internal/config"
	"paperwatch/internal/logger"
)

// Sender delivers reports to the configured recipients.
type Sender struct {
	cfg config.EmailConfig
}

func NewSender(cfg config.EmailConfig) *Sender {
	return &Sender{cfg: cfg}
}

// Send mails the report body with the markdown file attached. attachment
// may be empty to send body-only.
func (s *Sender) Send(subject, body, attachment string) error {
	if s.cfg.SMTPServer == "" || s.cfg.Sender == "" {
		return fmt.Errorf("email is not configured: smtp_server and sender are required")
	}
	if len(s.cfg.Recipients) == 0 {
		return fmt.Errorf("email is not configured: no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.Sender)
	m.SetHeader("To", s.cfg.Recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	if attachment != "" {
		m.Attach(attachment)
	}

	d := gomail.NewDialer(s.cfg.SMTPServer, s.cfg.SMTPPort, s.cfg.Sender, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("Email sent", "recipients", len(s.cfg.Recipients), "subject", subject)
	return nil
}
