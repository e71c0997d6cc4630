package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wardenlabs/unionwarden/internal/setup"
	"github.com/wardenlabs/unionwarden/internal/worker/core"
	"github.com/wardenlabs/unionwarden/internal/worker/reconcile"
)

// WorkerLogDir specifies where worker log files are stored.
const WorkerLogDir = "logs/worker_logs"

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cmd := &cli.Command{
		Name:  "worker",
		Usage: "Start the unionwarden workers",
		Commands: []*cli.Command{
			{
				Name:  "reconcile",
				Usage: "Start the membership reconciliation worker",
				Action: func(ctx context.Context, _ *cli.Command) error {
					runReconcileWorker(ctx)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "Show the status of all running workers",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return printWorkerStatuses(ctx)
				},
			},
		},
	}

	return cmd.Run(context.Background(), os.Args)
}

// runReconcileWorker runs the sweep loop until the process is
// interrupted.
func runReconcileWorker(ctx context.Context) {
	app, err := setup.InitializeApp(ctx, WorkerLogDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sc := make(chan os.Signal, 1)
		signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
		<-sc
		cancel()
	}()

	worker := reconcile.New(app, app.Logger)

	log.Println("Reconciliation worker started. Press Ctrl+C to stop.")
	worker.Start(runCtx)
}

// printWorkerStatuses lists every worker heartbeat still alive in Redis.
func printWorkerStatuses(ctx context.Context) error {
	app, err := setup.InitializeApp(ctx, WorkerLogDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup(ctx)

	monitor := core.NewMonitor(app.StatusClient, app.Logger)

	statuses, err := monitor.GetAllStatuses(ctx)
	if err != nil {
		return err
	}

	if len(statuses) == 0 {
		fmt.Println("No active workers.")
		return nil
	}

	for _, status := range statuses {
		health := "healthy"
		if !status.IsHealthy {
			health = "unhealthy"
		}

		fmt.Printf("%s %s  %s  %s  last seen %s\n",
			status.WorkerType, status.WorkerID, health,
			status.CurrentTask, status.LastSeen.Format(time.RFC3339))
	}

	return nil
}
