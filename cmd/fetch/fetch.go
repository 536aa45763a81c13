// Package fetch provides the fetch command: one ingestion cycle, then exit.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitecast/bitecast-go/internal/astro"
	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/forecast"
	"github.com/bitecast/bitecast-go/internal/learning"
	"github.com/bitecast/bitecast-go/internal/logging"
	"github.com/bitecast/bitecast-go/internal/marine"
	"github.com/bitecast/bitecast-go/internal/scheduler"
	"github.com/bitecast/bitecast-go/internal/scorecache"
	"github.com/bitecast/bitecast-go/internal/snapshot"
	"github.com/bitecast/bitecast-go/internal/tide"
	"github.com/bitecast/bitecast-go/internal/tips"
	"github.com/bitecast/bitecast-go/internal/weather"
)

const fetchTimeout = 5 * time.Minute

// Command creates the fetch command. It runs a single ingest and snapshot
// pass, useful for cron-style setups and smoke testing a fresh install.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Run one environment ingest cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(settings)
		},
	}
}

func runFetch(settings *conf.Settings) error {
	logging.Init()
	if settings.Debug {
		logging.SetLevel(slog.LevelDebug)
	}

	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("unsupported database type %q", settings.Output.Database.Type)
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer ds.Close()

	tides := tide.NewService(ds, tide.NewClient(settings.Weather.UserAgent), settings.Tide)
	weatherSvc := weather.NewService(ds, settings)
	astroSvc := astro.NewService(ds, settings.Location.Latitude, settings.Location.Longitude)
	var marineSvc *marine.Service
	if settings.Marine.Enabled {
		marineSvc = marine.NewService(ds, settings)
	}
	capturer := snapshot.NewCapturer(ds, tides, astroSvc, settings.Scheduler)
	builder := forecast.NewBuilder(ds, tides, astroSvc, settings.Alerts, settings.Marine)

	jobs := scheduler.NewJobs(ds, tides, weatherSvc, astroSvc, marineSvc,
		capturer, scorecache.New(ds), learning.New(ds), tips.New(ds), builder, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	if err := jobs.RunIngestAndForecast(ctx); err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	if err := jobs.RunSnapshot(ctx); err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}
	return nil
}
