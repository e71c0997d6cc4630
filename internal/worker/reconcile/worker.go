package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/wardenlabs/unionwarden/internal/reconcile"
	"github.com/wardenlabs/unionwarden/internal/setup"
	"github.com/wardenlabs/unionwarden/internal/worker/core"
	"go.uber.org/zap"
)

// DefaultSweepInterval is used when the worker config does not set one.
const DefaultSweepInterval = 12 * time.Hour

// Worker runs the membership reconciliation sweep on a fixed interval.
type Worker struct {
	engine   *reconcile.Engine
	sink     *channelSink
	reporter *core.StatusReporter
	interval time.Duration
	logger   *zap.Logger
}

// New creates a new reconciliation worker.
func New(app *setup.App, logger *zap.Logger) *Worker {
	sink := newChannelSink(app.Discord, app.Oracle, app.Config.Worker.ReportChannelName, logger)
	engine := reconcile.New(
		&store{db: app.DB},
		app.Oracle,
		sink,
		app.Config.Worker.PresenceConcurrency,
		logger,
	)
	reporter := core.NewStatusReporter(app.StatusClient, "reconcile", logger)

	interval := time.Duration(app.Config.Worker.SweepIntervalHours) * time.Hour
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &Worker{
		engine:   engine,
		sink:     sink,
		reporter: reporter,
		interval: interval,
		logger:   logger.Named("reconcile_worker"),
	}
}

// Start begins the worker's main loop. It sweeps once immediately, then
// on every interval tick until the context is canceled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Reconciliation worker started",
		zap.String("workerID", w.reporter.GetWorkerID()),
		zap.Duration("interval", w.interval))

	w.reporter.Start(ctx)
	defer w.reporter.Stop()

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-ctx.Done():
			w.logger.Info("Reconciliation worker stopped")
			return
		}
	}
}

// sweep performs a single reconciliation pass.
func (w *Worker) sweep(ctx context.Context) {
	w.reporter.SetHealthy(true)
	w.reporter.UpdateStatus("Locating report channel")

	// Without a report channel the sweep does no work at all
	if !w.sink.Resolve(ctx) {
		w.reporter.UpdateStatus("Idle")
		w.logger.Debug("No report channel found, skipping sweep")

		return
	}

	w.reporter.UpdateStatus("Reconciling membership")

	summary, err := w.engine.Run(ctx)
	if err != nil {
		if errors.Is(err, reconcile.ErrRunInProgress) {
			w.logger.Warn("Previous sweep still running, skipping tick")
			return
		}

		w.reporter.SetHealthy(false)
		w.logger.Error("Reconciliation sweep failed", zap.Error(err))

		return
	}

	w.reporter.UpdateStatus("Idle")

	if summary == nil {
		return
	}

	if summary.CheckFailed > 0 || summary.PurgeFailed > 0 {
		w.reporter.SetHealthy(false)
	}
}
