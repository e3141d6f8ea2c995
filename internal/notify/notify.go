package notify

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// Notifier delivers one rendered notification line. Failure reasons are
// opaque; the dispatcher only logs them.
type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// FromEnv builds the configured transports in delivery order: Discord
// first, email as the fallback. A transport missing its configuration is
// simply absent; running with no transports at all still persists every
// result to the event logs.
func FromEnv(logger *zap.Logger) []Notifier {
	var transports []Notifier

	if d := NewDiscord(os.Getenv("DISCORD_WEBHOOK_URL")); d != nil {
		transports = append(transports, d)
	} else {
		logger.Warn("discord_disabled", zap.String("reason", "DISCORD_WEBHOOK_URL not set"))
	}

	e := NewEmail(EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
		To:       os.Getenv("SMTP_TO"),
	})
	if e != nil {
		transports = append(transports, e)
	} else {
		logger.Warn("email_disabled", zap.String("reason", "SMTP_HOST or SMTP_TO not set"))
	}

	return transports
}
