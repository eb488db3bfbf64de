package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    slog.Level
		wantErr bool
	}{
		{name: "debug", input: "debug", want: slog.LevelDebug},
		{name: "info", input: "info", want: slog.LevelInfo},
		{name: "empty defaults to info", input: "", want: slog.LevelInfo},
		{name: "warn", input: "warn", want: slog.LevelWarn},
		{name: "error", input: "error", want: slog.LevelError},
		{name: "unknown", input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLogger_InvalidFormat(t *testing.T) {
	err := SetupLogger(slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("could not save receipts", inner)

	assert.Equal(t, "could not save receipts: disk full", err.Error())
	assert.ErrorIs(t, err, inner)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "could not save receipts", userErr.Message)

	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "busy database", err: fmt.Errorf("insert: %w", ErrDatabaseBusy), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "plain error", err: errors.New("locked"), want: false},
		{name: "not found", err: ErrNotFound, want: false},
		{name: "cancelled", err: context.Canceled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestBackoff_Wait(t *testing.T) {
	b := Backoff{Initial: 10 * time.Millisecond, Max: 50 * time.Millisecond}.normalized()

	assert.Equal(t, DefaultBackoff.Attempts, b.Attempts)
	assert.Equal(t, 10*time.Millisecond, b.wait(1))
	assert.Equal(t, 20*time.Millisecond, b.wait(2))
	assert.Equal(t, 40*time.Millisecond, b.wait(3))
	assert.Equal(t, 50*time.Millisecond, b.wait(4))
}

func TestWithRetry(t *testing.T) {
	fast := Backoff{Attempts: 3, Initial: time.Millisecond, Max: time.Millisecond}

	t.Run("succeeds after busy errors", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), fast, func() error {
			calls++
			if calls < 3 {
				return ErrDatabaseBusy
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-retryable error stops immediately", func(t *testing.T) {
		calls := 0
		boom := errors.New("constraint failed")
		err := WithRetry(context.Background(), fast, func() error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), fast, func() error {
			calls++
			return fmt.Errorf("insert: %w", ErrDatabaseBusy)
		})
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WithRetry(ctx, Backoff{Attempts: 5, Initial: time.Second}, func() error {
			return ErrDatabaseBusy
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
