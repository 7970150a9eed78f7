package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/usersvc/accounts-api/internal/core/ports"
)

// Config captures the SMTP settings for outbound mail.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer implements ports.Mailer over plain SMTP.
type SMTPMailer struct {
	cfg  Config
	addr string
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{
		cfg:  cfg,
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
}

// Send delivers one message synchronously. Callers that must not block on
// SMTP go through the queue dispatcher instead.
func (m *SMTPMailer) Send(job ports.EmailJob) error {
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{job.To}
	e.Subject = job.Subject
	e.Text = []byte(job.Body)

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
