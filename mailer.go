// mailer.go

package main

import (
	"fmt"
	"log/slog"
	"net/smtp"
)

// Mailer sends transactional mail. Delivery is fire-and-forget: callers log
// failures and move on.
type Mailer interface {
	Send(to, subject, body string) error
}

func NewMailer(cfg *Config) Mailer {
	if cfg.SMTPHost == "" {
		return &logMailer{}
	}
	return &smtpMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		auth: smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost),
		from: cfg.MailFrom,
	}
}

type smtpMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s", m.from, to, subject, body)
	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg))
}

// logMailer stands in when SMTP is not configured.
type logMailer struct{}

func (m *logMailer) Send(to, subject, body string) error {
	slog.Info("mail (smtp disabled)", "to", to, "subject", subject)
	return nil
}

// sendMailAsync delivers in the background so slow SMTP never blocks a request.
func sendMailAsync(to, subject, body string) {
	go func() {
		if err := mailer.Send(to, subject, body); err != nil {
			slog.Warn("mail delivery failed", "to", to, "subject", subject, "err", err)
		}
	}()
}
