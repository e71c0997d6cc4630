package core_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenlabs/unionwarden/internal/worker/core"
	"go.uber.org/zap"
)

func setupTest(t *testing.T) (*core.Monitor, func()) {
	t.Helper()
	// Start miniredis server
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Create Redis client
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	monitor := core.NewMonitor(client, zap.NewNop())

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return monitor, cleanup
}

func TestReportStatus(t *testing.T) {
	t.Parallel()
	monitor, cleanup := setupTest(t)
	defer cleanup()

	ctx := t.Context()
	status := core.Status{
		WorkerID:    "worker-1",
		WorkerType:  "reconcile",
		CurrentTask: "Scanning members",
		IsHealthy:   true,
	}

	err := monitor.ReportStatus(ctx, status)
	require.NoError(t, err)

	statuses, err := monitor.GetAllStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)

	assert.Equal(t, "worker-1", statuses[0].WorkerID)
	assert.Equal(t, "reconcile", statuses[0].WorkerType)
	assert.Equal(t, "Scanning members", statuses[0].CurrentTask)
	assert.True(t, statuses[0].IsHealthy)
	assert.False(t, statuses[0].LastSeen.IsZero())
}

func TestGetAllStatusesEmpty(t *testing.T) {
	t.Parallel()
	monitor, cleanup := setupTest(t)
	defer cleanup()

	statuses, err := monitor.GetAllStatuses(t.Context())
	require.NoError(t, err)
	assert.Empty(t, statuses)
}
