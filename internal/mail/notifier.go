// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// SMTPConfig holds relay settings for outbound mail.
type SMTPConfig struct {
	// Host and Port locate the relay.
	Host string
	Port int

	// From is the envelope sender; the local part is replaced by the
	// per-message tag (for example NOREPLY@domain).
	From string

	// Username and Password enable PLAIN auth when non-empty.
	Username string
	Password string
}

// Addr returns the host:port dial address.
func (c SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// sendFunc matches smtp.SendMail, swapped out in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier delivers messages through a relay with bounded
// fibonacci-backoff retries.
type SMTPNotifier struct {
	cfg    SMTPConfig
	send   sendFunc
	logger *slog.Logger

	maxRetries    uint64
	firstInterval time.Duration
}

// NewSMTPNotifier creates an SMTPNotifier with a no-op logger.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	return NewSMTPNotifierWithLogger(cfg, slog.New(slog.DiscardHandler))
}

// NewSMTPNotifierWithLogger creates an SMTPNotifier with the given logger.
func NewSMTPNotifierWithLogger(cfg SMTPConfig, logger *slog.Logger) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("smtp host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, oops.Code("MAIL_CONFIG_INVALID").With("port", cfg.Port).Errorf("smtp port out of range")
	}
	if cfg.From == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("smtp sender is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &SMTPNotifier{
		cfg:           cfg,
		send:          smtp.SendMail,
		logger:        logger,
		maxRetries:    2,
		firstInterval: 500 * time.Millisecond,
	}, nil
}

// Send delivers one message to a single recipient. Transient relay
// failures are retried with fibonacci backoff before giving up.
func (n *SMTPNotifier) Send(ctx context.Context, fromTag, to, subject, body string) error {
	from := n.sender(fromTag)
	msg := []byte("From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	backoff := retry.WithMaxRetries(n.maxRetries, retry.NewFibonacci(n.firstInterval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := n.send(n.cfg.Addr(), auth, from, []string{to}, msg); err != nil {
			n.logger.Warn("mail delivery attempt failed",
				"event", "mail_retry",
				"relay", n.cfg.Addr(),
				"error", err.Error(),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.
			Code("MAIL_SEND_FAILED").
			With("relay", n.cfg.Addr()).
			With("subject", subject).
			Wrapf(err, "sending mail")
	}

	n.logger.Debug("mail delivered",
		"event", "mail_sent",
		"subject", subject,
	)
	return nil
}

// sender substitutes the tag for the configured sender's local part.
func (n *SMTPNotifier) sender(fromTag string) string {
	if fromTag == "" {
		return n.cfg.From
	}
	for i := 0; i < len(n.cfg.From); i++ {
		if n.cfg.From[i] == '@' {
			return fromTag + n.cfg.From[i:]
		}
	}
	return n.cfg.From
}

// LogNotifier writes messages to the log instead of a relay. Used when
// no SMTP relay is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) (*LogNotifier, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &LogNotifier{logger: logger}, nil
}

// Send logs the message and reports success.
func (n *LogNotifier) Send(_ context.Context, fromTag, to, subject, body string) error {
	n.logger.Info("mail suppressed, no relay configured",
		"event", "mail_logged",
		"from_tag", fromTag,
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
