package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedHook(t *testing.T) (*Hook, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)

	return NewHook(zap.New(core)), logs
}

func TestHookLogsFailedQueryAtError(t *testing.T) {
	t.Parallel()

	hook, logs := newObservedHook(t)
	hook.AfterQuery(context.Background(), &bun.QueryEvent{
		Query:     "SELECT * FROM members",
		StartTime: time.Now(),
		Err:       errors.New("connection refused"),
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "Query failed", entries[0].Message)
	assert.Equal(t, "SELECT", entries[0].ContextMap()["operation"])
}

func TestHookLogsSlowQueryAtWarn(t *testing.T) {
	t.Parallel()

	hook, logs := newObservedHook(t)
	hook.AfterQuery(context.Background(), &bun.QueryEvent{
		Query:     "DELETE FROM cleanup_logs",
		StartTime: time.Now().Add(-2 * SlowQueryThreshold),
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "Slow query", entries[0].Message)
}

func TestHookLogsFastQueryAtDebug(t *testing.T) {
	t.Parallel()

	hook, logs := newObservedHook(t)
	hook.AfterQuery(context.Background(), &bun.QueryEvent{
		Query:     "SELECT 1",
		StartTime: time.Now(),
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "Query executed", entries[0].Message)
}
