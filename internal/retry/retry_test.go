package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIncremental(t *testing.T) {
	t.Run("single successful try", func(t *testing.T) {
		runs := 0

		err := Incremental(context.Background(), 2*time.Millisecond, 5, func(attempt int) error {
			runs++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, runs)
	})

	t.Run("success from the third time", func(t *testing.T) {
		runs := 0

		err := Incremental(context.Background(), 2*time.Millisecond, 4, func(attempt int) error {
			runs++
			if attempt < 3 {
				return Retryable(errors.New("connection refused"), attempt)
			}

			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 3, runs)
	})

	t.Run("fails when attempt limit is exhausted", func(t *testing.T) {
		runs := 0

		err := Incremental(context.Background(), 2*time.Millisecond, 4, func(attempt int) error {
			runs++
			return Retryable(errors.New("connection refused"), attempt)
		})

		assert.True(t, errors.Is(err, ErrTooManyAttempts))
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, 4, runs)
	})

	t.Run("stops on an error that is not retryable", func(t *testing.T) {
		runs := 0

		err := Incremental(context.Background(), 2*time.Millisecond, 4, func(attempt int) error {
			runs++
			return errors.New("access denied")
		})

		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrTooManyAttempts))
		assert.Equal(t, 1, runs)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		runs := 0

		err := Incremental(ctx, time.Second, 10, func(attempt int) error {
			runs++
			cancel()
			return Retryable(errors.New("connection refused"), attempt)
		})

		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, 1, runs)
	})
}
