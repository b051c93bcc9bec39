package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"time"

	"github.com/flickster/flickster/backend/internal/config"
	"github.com/flickster/flickster/backend/pkg/logger"
)

// Mailer sends account emails. Delivery failure is never fatal to the flow
// that triggered it; callers report it as a secondary error.
type Mailer interface {
	SendWelcome(ctx context.Context, to, firstName string) error
	SendPasswordReset(ctx context.Context, to, firstName, resetLink string) error
}

const mailSendTimeout = 10 * time.Second

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<html><body>
<h1>Welcome to Flickster, {{.Name}}!</h1>
<p>Your account is ready. Grab some popcorn and start browsing the catalog.</p>
</body></html>`))

var restoreTemplate = template.Must(template.New("restore").Parse(`
<html><body>
<h1>Restore your password</h1>
<p>Hi {{.Name}}, a password reset was requested for your account.</p>
<p><a href="{{.LinkRestore}}">Reset your password</a></p>
<p>The link expires in 15 minutes. If you did not request this, ignore this email.</p>
</body></html>`))

type SMTPMailer struct {
	cfg          config.MailConfig
	isProduction bool
}

func NewSMTPMailer(cfg config.MailConfig, isProduction bool) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, isProduction: isProduction}
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, to, firstName string) error {
	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, struct{ Name string }{Name: firstName}); err != nil {
		return fmt.Errorf("render welcome email: %w", err)
	}
	return m.send(ctx, to, fmt.Sprintf("Success SignUp! %s", firstName), body.String())
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, firstName, resetLink string) error {
	var body bytes.Buffer
	err := restoreTemplate.Execute(&body, struct {
		Name        string
		LinkRestore string
	}{Name: firstName, LinkRestore: resetLink})
	if err != nil {
		return fmt.Errorf("render restore email: %w", err)
	}
	return m.send(ctx, to, "Restore Password", body.String())
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if m.cfg.Host == "" {
		if m.isProduction {
			return errors.New("SMTP_HOST is required in production")
		}
		// Development fallback: keep flows testable without SMTP.
		logger.Info().
			Str("component", "mailer").
			Str("to", to).
			Str("subject", subject).
			Msg("Email suppressed (SMTP_HOST not configured)")
		return nil
	}

	msg := []byte("From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" + htmlBody + "\r\n")

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	timeout := mailSendTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := sendSMTPMailWithTimeout(addr, m.cfg.Host, auth, m.cfg.From, []string{to}, msg, timeout); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

// sendSMTPMailWithTimeout performs a full SMTP conversation with a hard
// deadline on the connection, so a hung mail server cannot hold a request
// goroutine indefinitely.
func sendSMTPMailWithTimeout(
	addr, host string,
	auth smtp.Auth,
	from string,
	to []string,
	msg []byte,
	timeout time.Duration,
) error {
	if timeout <= 0 {
		timeout = mailSendTimeout
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return err
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}

	if auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return c.Quit()
}
