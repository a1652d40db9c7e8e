// Package notification delivers outgoing email.
package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"nexus/internal/pkg/logger"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
	Timeout  time.Duration
}

// SMTPMailer sends plain text mail through a single SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("smtp: message has no recipients")
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	dialer := &net.Dialer{Timeout: m.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp: connect %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(m.cfg.Timeout))
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp: handshake: %w", err)
	}
	defer func() { _ = client.Close() }()

	if m.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp: starttls: %w", err)
		}
	}
	if m.cfg.Username != "" && m.cfg.Password != "" {
		if err := client.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			return fmt.Errorf("smtp: auth: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp: sender: %w", err)
	}
	for _, to := range msg.To {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("smtp: recipient %s: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp: data: %w", err)
	}
	if _, err := w.Write([]byte(buildMessage(m.cfg.From, msg))); err != nil {
		return fmt.Errorf("smtp: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: close data: %w", err)
	}

	// The message is accepted once DATA closes.
	_ = client.Quit()
	return nil
}

func buildMessage(from string, msg Message) string {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return b.String()
}

// DevConsoleMailer writes mail to the log instead of sending it.
type DevConsoleMailer struct{}

func NewDevConsoleMailer() *DevConsoleMailer {
	return &DevConsoleMailer{}
}

func (m *DevConsoleMailer) Send(_ context.Context, msg Message) error {
	logger.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("[DEV-EMAIL]")
	return nil
}

// NewMailer picks SMTP when a host is configured and the console otherwise.
func NewMailer(cfg SMTPConfig) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		return NewDevConsoleMailer()
	}
	return NewSMTPMailer(cfg)
}

// WelcomeEmail is sent once after registration.
func WelcomeEmail(username, email string) Message {
	return Message{
		To:      []string{email},
		Subject: "Welcome to Nexus!",
		Body: fmt.Sprintf("Hi %s,\n\nThank you for registering at Nexus. "+
			"We are excited to have you on board!", username),
	}
}
