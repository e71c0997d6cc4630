package dbretry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenlabs/unionwarden/internal/database/dbretry"
)

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "nil error", err: nil, retryable: false},
		{name: "plain error", err: errors.New("syntax error"), retryable: false},
		{name: "connection reset", err: errors.New("read tcp: connection reset by peer"), retryable: true},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), retryable: true},
		{name: "io timeout", err: errors.New("read tcp: i/o timeout"), retryable: true},
		{name: "unexpected EOF", err: errors.New("unexpected EOF"), retryable: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.retryable, dbretry.IsRetryableError(tt.err))
		})
	}
}

func TestOperationNonRetryableStopsImmediately(t *testing.T) {
	t.Parallel()

	opErr := errors.New("duplicate key value violates unique constraint")
	calls := 0

	_, err := dbretry.Operation(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, opErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, opErr)
	assert.Equal(t, 1, calls)
}

func TestOperationReturnsResult(t *testing.T) {
	t.Parallel()

	result, err := dbretry.Operation(context.Background(), func(context.Context) (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestOperationRecoversAfterTransientError(t *testing.T) {
	t.Parallel()

	calls := 0

	result, err := dbretry.Operation(context.Background(), func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("write tcp: broken pipe")
		}

		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 2, calls)
}

func TestNoResult(t *testing.T) {
	t.Parallel()

	err := dbretry.NoResult(context.Background(), func(context.Context) error {
		return nil
	})

	require.NoError(t, err)
}
