package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender delivers transactional email
type Sender interface {
	SendPasswordReset(to, username, resetURL string) error
}

// Config holds SMTP settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender implements Sender over SMTP
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates an SMTPSender
func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendPasswordReset sends the password-reset link to the user
func (s *SMTPSender) SendPasswordReset(to, username, resetURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Reset your password")
	m.SetBody("text/html", fmt.Sprintf(
		`<p>Hi %s,</p>
<p>We received a request to reset your password. Click the link below to choose a new one. The link expires shortly.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not request this, you can safely ignore this email.</p>`,
		username, resetURL,
	))
	return s.dialer.DialAndSend(m)
}
