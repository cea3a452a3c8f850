package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"newsdigest/internal/domain/entity"
	"newsdigest/pkg/config"
)

// SMTPConfig contains configuration for SMTP delivery.
type SMTPConfig struct {
	// Host is the SMTP relay hostname.
	Host string

	// Port is the SMTP relay port.
	Port int

	// Username and Password authenticate against the relay. Leaving
	// Username empty disables authentication, for local relays.
	Username string
	Password string

	// From is the sender address on outgoing digests.
	From string

	// Timeout bounds one delivery attempt.
	Timeout time.Duration

	// MessagesPerSecond and Burst configure the send rate limit.
	MessagesPerSecond float64
	Burst             int
}

// LoadSMTPConfig loads SMTP settings from the environment.
//
// Environment variables:
//   - SMTP_HOST (default: "localhost")
//   - SMTP_PORT (default: 587)
//   - SMTP_USERNAME, SMTP_PASSWORD
//   - SMTP_FROM (default: "digest@localhost")
//   - SMTP_TIMEOUT (default: 30s)
//   - SMTP_RATE_PER_SECOND (default: 2), SMTP_RATE_BURST (default: 5)
func LoadSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:              config.GetEnvString("SMTP_HOST", "localhost"),
		Port:              config.GetEnvInt("SMTP_PORT", 587),
		Username:          config.GetEnvString("SMTP_USERNAME", ""),
		Password:          config.GetEnvString("SMTP_PASSWORD", ""),
		From:              config.GetEnvString("SMTP_FROM", "digest@localhost"),
		Timeout:           config.GetEnvDuration("SMTP_TIMEOUT", 30*time.Second),
		MessagesPerSecond: float64(config.GetEnvInt("SMTP_RATE_PER_SECOND", 2)),
		Burst:             config.GetEnvInt("SMTP_RATE_BURST", 5),
	}
}

// Validate checks the SMTPConfig fields.
func (c SMTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("smtp host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("smtp port %d out of range", c.Port)
	}
	if c.From == "" {
		return fmt.Errorf("smtp from address cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("smtp timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// SMTP delivers digests through an SMTP relay using go-mail. Each
// digest is sent as multipart/alternative with the Markdown source as
// the plain-text part and the rendered HTML as the rich part.
type SMTP struct {
	config      SMTPConfig
	client      *mail.Client
	rateLimiter *RateLimiter
}

// NewSMTP creates an SMTP deliverer from the given configuration.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewSMTP: %w", err)
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewSMTP: create client: %w", err)
	}

	return &SMTP{
		config:      cfg,
		client:      client,
		rateLimiter: NewRateLimiter(cfg.MessagesPerSecond, cfg.Burst),
	}, nil
}

// Deliver sends one digest to one recipient. It blocks on the rate
// limiter before dialing and classifies failures as transient or
// permanent for the caller's retry loop.
func (s *SMTP) Deliver(ctx context.Context, recipient string, subject string, digest entity.Digest) error {
	if err := s.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("Deliver: rate limit wait: %w", err)
	}

	msg, err := s.buildMessage(recipient, subject, digest)
	if err != nil {
		return &PermanentError{Message: "Deliver: build message", Err: err}
	}

	start := time.Now()
	err = s.client.DialAndSendWithContext(ctx, msg)
	duration := time.Since(start)

	if err != nil {
		classified := classifySendError(err)
		slog.Warn("digest delivery attempt failed",
			slog.String("recipient", recipient),
			slog.String("date", digest.DateKey()),
			slog.Duration("duration", duration),
			slog.Bool("retryable", IsRetryable(classified)),
			slog.Any("error", err))
		return classified
	}

	slog.Info("digest delivered",
		slog.String("recipient", recipient),
		slog.String("date", digest.DateKey()),
		slog.Duration("duration", duration))
	return nil
}

// buildMessage assembles the multipart message for one recipient.
func (s *SMTP) buildMessage(recipient, subject string, digest entity.Digest) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.config.From); err != nil {
		return nil, fmt.Errorf("set from %s: %w", s.config.From, err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("set recipient %s: %w", recipient, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, digest.Source)
	msg.AddAlternativeString(mail.TypeTextHTML, digest.HTML)
	return msg, nil
}

// classifySendError maps go-mail send failures onto the package error
// types. SMTP replies marked temporary by the server stay retryable;
// every other SendError is permanent for this message.
func classifySendError(err error) error {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		if sendErr.IsTemp() {
			return &TransientError{Message: "smtp relay temporary failure", Err: err}
		}
		return &PermanentError{Message: "smtp relay rejected message", Err: err}
	}

	// Dial and context errors are transient
	return &TransientError{Message: "smtp delivery failed", Err: err}
}
