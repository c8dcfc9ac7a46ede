package store

import (
	"context"
	"time"

	"github.com/denismitr/mversion/internal/retry"
	"github.com/pkg/errors"
)

const (
	DefaultConnectionAttempts    = 10
	DefaultConnectionTimeout     = 60 * time.Second
	DefaultConnectionAttemptStep = 2 * time.Second
)

type ConnectOptions struct {
	MaxAttempts int
	MaxTimeout  time.Duration
	RetryStep   time.Duration
}

func NewDefaultConnectOptions() *ConnectOptions {
	return &ConnectOptions{
		MaxAttempts: DefaultConnectionAttempts,
		MaxTimeout:  DefaultConnectionTimeout,
		RetryStep:   DefaultConnectionAttemptStep,
	}
}

// Connect waits until the database answers or the options are exhausted
func (s *Store) Connect(ctx context.Context, opts *ConnectOptions) error {
	if opts == nil {
		opts = NewDefaultConnectOptions()
	}

	ctx, cancel := context.WithTimeout(ctx, opts.MaxTimeout)
	defer cancel()

	return retry.Incremental(ctx, opts.RetryStep, opts.MaxAttempts, func(attempt int) error {
		if err := s.db.PingContext(ctx); err != nil {
			s.lg.Debugf("ping attempt %d failed: %s", attempt, err.Error())
			return retry.Retryable(errors.Wrap(err, "could not establish DB connection"), attempt)
		}

		var result int
		if err := s.db.QueryRowxContext(ctx, "SELECT 1").Scan(&result); err != nil {
			return errors.Wrap(err, "db ping failed")
		}

		return nil
	})
}
