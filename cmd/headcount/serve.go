package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/headcount-lab/headcount/internal/aggregation"
	"github.com/headcount-lab/headcount/internal/cache"
	"github.com/headcount-lab/headcount/internal/ingestion"
	"github.com/headcount-lab/headcount/internal/projection"
	"github.com/headcount-lab/headcount/internal/server"
)

func newServeCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the nightly aggregation scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), flags)
		},
	}
}

func serve(parent context.Context, flags *rootFlags) error {
	// 1. Load Configuration
	cfg, err := loadConfig(flags)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return err
	}
	slog.Info("Loaded config",
		"database", cfg.Database.Type,
		"timezone", cfg.Location().String(),
		"mode", cfg.Server.Mode,
	)

	// 2. Initialize Storage
	st, err := openStores(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		return err
	}
	defer st.close()

	loc := cfg.Location()

	// 3. Response cache, shared by queries, ingestion and aggregation
	responses := cache.New(cfg.Cache.MaxEntries)

	// 4. Initialize Aggregation
	aggregator := aggregation.NewAggregator(st.raw, st.rollups, responses, aggregation.BatchJobParameter{
		MarkBatchSize: cfg.Aggregation.MarkBatchSize,
		Location:      loc,
	})
	scheduler, err := aggregation.NewScheduler(aggregator, nil, loc, cfg.Aggregation.RunAt, cfg.Aggregation.RunOnStart)
	if err != nil {
		slog.Error("Invalid aggregation schedule", "run_at", cfg.Aggregation.RunAt, "error", err)
		return err
	}

	// 5. Initialize Ingestion and Projection
	ingestionSvc := ingestion.NewService(st.raw, responses, cfg.Server.MaxBodySizeMB)
	projectionSvc := projection.NewService(st.raw, st.rollups, responses, cfg.Cache.Policy(), loc)

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), st.pinger, responses, cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine, cfg.Server.Mode == "debug")
	// Async triggers are queued only when the scheduler loop is running.
	var queue *aggregation.Scheduler
	if cfg.Aggregation.Enabled {
		queue = scheduler
	}
	aggregation.NewTrigger(aggregator, queue).RegisterRoutes(srv.Engine)

	// 7. Start Services
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if cfg.Aggregation.Enabled {
		slog.Info("Aggregation scheduler initialized",
			"run_at", cfg.Aggregation.RunAt,
			"run_on_start", cfg.Aggregation.RunOnStart,
			"mark_batch_size", cfg.Aggregation.MarkBatchSize,
		)
	} else {
		slog.Info("Aggregation scheduler disabled by config")
	}
	schedulerDone := startScheduler(ctx, scheduler, cfg.Aggregation.Enabled)

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(quit)
		select {
		case <-quit:
			slog.Info("Signal received, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// HTTP server blocks until ctx is cancelled.
	runErr := srv.Run(ctx)
	if runErr != nil {
		slog.Error("Server stopped with error", "error", runErr)
	}

	// The scheduler must be fully stopped before the deferred store close.
	cancel()
	slog.Info("Waiting for aggregation scheduler to stop...")
	<-schedulerDone

	slog.Info("Shutdown complete")
	return runErr
}

type backgroundTask interface {
	Start(ctx context.Context) error
}

// startScheduler runs task until ctx is cancelled. The returned channel is
// closed once it has returned, immediately when disabled.
func startScheduler(ctx context.Context, task backgroundTask, enabled bool) <-chan struct{} {
	done := make(chan struct{})
	if !enabled {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		if err := task.Start(ctx); err != nil {
			slog.Error("Scheduler stopped with error", "error", err)
		}
	}()
	return done
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
