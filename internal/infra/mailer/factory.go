package mailer

import (
	"fmt"
	"log/slog"
	"os"
)

// NewFromEnv selects a Deliverer implementation based on the MAILER_TYPE
// environment variable:
//   - "smtp": deliver through an SMTP relay (see LoadSMTPConfig)
//   - "noop": record deliveries without sending, for local runs
//
// The default is "noop" so a misconfigured environment never spams real
// mailboxes.
func NewFromEnv() (Deliverer, error) {
	mailerType := os.Getenv("MAILER_TYPE")
	if mailerType == "" {
		mailerType = "noop"
	}

	switch mailerType {
	case "smtp":
		cfg := LoadSMTPConfig()
		deliverer, err := NewSMTP(cfg)
		if err != nil {
			return nil, fmt.Errorf("NewFromEnv: %w", err)
		}
		slog.Info("using SMTP mailer",
			slog.String("host", cfg.Host),
			slog.Int("port", cfg.Port))
		return deliverer, nil
	case "noop":
		slog.Info("using noop mailer, deliveries will not be sent")
		return NewNoOp(), nil
	default:
		return nil, fmt.Errorf("NewFromEnv: unknown MAILER_TYPE %q (expected smtp or noop)", mailerType)
	}
}
