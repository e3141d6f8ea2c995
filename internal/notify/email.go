package notify

import (
	"context"
	"errors"
	"net"
	"net/smtp"
	"strings"
)

// EmailConfig holds the SMTP settings, all sourced from the environment.
type EmailConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string // envelope sender; defaults to User
	To       string
}

// Email sends notifications over SMTP. Host and To are required; anything
// less disables the transport.
type Email struct {
	cfg  EmailConfig
	auth smtp.Auth

	// send is swapped out in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmail(cfg EmailConfig) *Email {
	if cfg.Host == "" || cfg.To == "" {
		return nil
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	var auth smtp.Auth
	if cfg.User != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &Email{cfg: cfg, auth: auth, send: smtp.SendMail}
}

func (e *Email) Name() string { return "email" }

// Send delivers under the caller's context; a stalled SMTP exchange is
// abandoned when the context expires.
func (e *Email) Send(ctx context.Context, text string) error {
	if e == nil {
		return errors.New("email disabled")
	}
	msg := strings.Join([]string{
		"From: " + sanitizeHeader(e.cfg.From),
		"To: " + sanitizeHeader(e.cfg.To),
		"Subject: conn-mon notification",
		"",
		text,
	}, "\r\n")
	addr := net.JoinHostPort(e.cfg.Host, e.cfg.Port)

	done := make(chan error, 1)
	go func() {
		done <- e.send(addr, e.auth, e.cfg.From, []string{e.cfg.To}, []byte(msg))
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sanitizeHeader strips CR/LF so a config value cannot inject headers.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "")
}
