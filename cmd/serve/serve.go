// Package serve provides the serve command, the full engine: datastore,
// background scheduler, metrics endpoint and the HTTP API.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitecast/bitecast-go/internal/api"
	v2 "github.com/bitecast/bitecast-go/internal/api/v2"
	"github.com/bitecast/bitecast-go/internal/astro"
	"github.com/bitecast/bitecast-go/internal/backup"
	"github.com/bitecast/bitecast-go/internal/backup/sources"
	"github.com/bitecast/bitecast-go/internal/backup/targets"
	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/forecast"
	"github.com/bitecast/bitecast-go/internal/learning"
	"github.com/bitecast/bitecast-go/internal/logging"
	"github.com/bitecast/bitecast-go/internal/marine"
	"github.com/bitecast/bitecast-go/internal/observability"
	"github.com/bitecast/bitecast-go/internal/scheduler"
	"github.com/bitecast/bitecast-go/internal/scorecache"
	"github.com/bitecast/bitecast-go/internal/snapshot"
	"github.com/bitecast/bitecast-go/internal/telemetry"
	"github.com/bitecast/bitecast-go/internal/tide"
	"github.com/bitecast/bitecast-go/internal/tips"
	"github.com/bitecast/bitecast-go/internal/weather"
)

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scoring engine and HTTP API",
		Long:  "Open the datastore, start the background ingest and scoring jobs, and serve the JSON API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(settings)
		},
	}
}

func runServe(settings *conf.Settings) error {
	logging.Init()
	if settings.Debug {
		logging.SetLevel(slog.LevelDebug)
	}
	logger := logging.ForService("serve")

	if err := telemetry.Init(settings); err != nil {
		logger.Warn("telemetry disabled", "error", err)
	}

	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("unsupported database type %q", settings.Output.Database.Type)
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logger.Error("failed to close datastore", "error", err)
		}
	}()

	metricsInstance, err := observability.NewMetrics()
	if err != nil {
		logger.Warn("metrics unavailable", "error", err)
		metricsInstance = nil
	}

	// Core services.
	tides := tide.NewService(ds, tide.NewClient(settings.Weather.UserAgent), settings.Tide)
	weatherSvc := weather.NewService(ds, settings)
	astroSvc := astro.NewService(ds, settings.Location.Latitude, settings.Location.Longitude)
	var marineSvc *marine.Service
	if settings.Marine.Enabled {
		marineSvc = marine.NewService(ds, settings)
	}
	capturer := snapshot.NewCapturer(ds, tides, astroSvc, settings.Scheduler)
	scores := scorecache.New(ds)
	learner := learning.New(ds)
	tipsGen := tips.New(ds)
	builder := forecast.NewBuilder(ds, tides, astroSvc, settings.Alerts, settings.Marine)

	var backupFn scheduler.JobFunc
	if settings.Backup.Enabled {
		manager, err := buildBackupManager(settings)
		if err != nil {
			return err
		}
		if manager != nil {
			backupFn = manager.RunBackup
		}
	}

	// Background jobs.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(nil)
	if metricsInstance != nil {
		sched = scheduler.New(metricsInstance.Scheduler)
	}
	jobs := scheduler.NewJobs(ds, tides, weatherSvc, astroSvc, marineSvc,
		capturer, scores, learner, tipsGen, builder, backupFn, metricsInstance)
	jobs.Register(sched, settings.Scheduler)
	sched.Start(ctx)

	// Prometheus endpoint.
	var wg sync.WaitGroup
	quit := make(chan struct{})
	if settings.Telemetry.Enabled && metricsInstance != nil {
		endpoint, err := observability.NewEndpoint(settings, metricsInstance)
		if err != nil {
			logger.Warn("metrics endpoint unavailable", "error", err)
		} else {
			endpoint.Start(&wg, quit)
		}
	}

	// HTTP API.
	serverOpts := []api.ServerOption{
		api.WithDataStore(ds),
		api.WithControllerOptions(
			v2.WithTides(tides),
			v2.WithWeather(weatherSvc),
			v2.WithAstro(astroSvc),
			v2.WithCapturer(capturer),
			v2.WithScores(scores),
			v2.WithLearner(learner),
			v2.WithTips(tipsGen),
		),
	}
	if marineSvc != nil {
		serverOpts = append(serverOpts, api.WithControllerOptions(v2.WithMarine(marineSvc)))
	}
	if metricsInstance != nil {
		serverOpts = append(serverOpts, api.WithMetrics(metricsInstance))
	}
	server, err := api.New(settings, serverOpts...)
	if err != nil {
		close(quit)
		wg.Wait()
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.Info("engine started",
		"location", settings.Location.Name,
		"port", settings.WebServer.Port,
		"version", settings.Version,
	)

	// Blocks until SIGINT or SIGTERM.
	err = server.StartWithGracefulShutdown()

	cancel()
	sched.Stop()
	close(quit)
	wg.Wait()
	telemetry.Flush(5 * time.Second)
	return err
}

// buildBackupManager assembles the backup manager from configuration.
// Returns nil when no target is enabled.
func buildBackupManager(settings *conf.Settings) (*backup.Manager, error) {
	manager := backup.NewManager(&settings.Backup, settings.Version)
	if err := manager.RegisterSource(sources.NewSQLiteSource(settings)); err != nil {
		return nil, err
	}
	for _, cfg := range settings.Backup.Targets {
		if !cfg.Enabled {
			continue
		}
		target, err := targets.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("backup target %s: %w", cfg.Type, err)
		}
		if err := manager.RegisterTarget(target); err != nil {
			return nil, err
		}
	}
	if manager.TargetCount() == 0 {
		return nil, nil
	}
	return manager, nil
}
