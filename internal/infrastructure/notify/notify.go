// Package notify holds OTP notifiers that do not talk to a delivery provider.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-account-api/internal/domain"
)

// Notifier delivers a one-time passcode to an email address.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string, purpose domain.ChallengePurpose) error
}

// Log writes the code to the process log instead of delivering it.
// Only meant for development with mail delivery disabled.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) SendOTP(ctx context.Context, email, code string, purpose domain.ChallengePurpose) error {
	l.logger.InfoContext(ctx, "DEV OTP", "email", email, "purpose", purpose, "code", code)
	return nil
}

// Multi sends through every notifier and joins their errors.
type Multi []Notifier

func (m Multi) SendOTP(ctx context.Context, email, code string, purpose domain.ChallengePurpose) error {
	var errs []error
	for _, n := range m {
		if err := n.SendOTP(ctx, email, code, purpose); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
