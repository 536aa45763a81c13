package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bitecast/bitecast-go/internal/astro"
	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/forecast"
	"github.com/bitecast/bitecast-go/internal/learning"
	"github.com/bitecast/bitecast-go/internal/logging"
	"github.com/bitecast/bitecast-go/internal/marine"
	"github.com/bitecast/bitecast-go/internal/observability"
	"github.com/bitecast/bitecast-go/internal/rules"
	"github.com/bitecast/bitecast-go/internal/scorecache"
	"github.com/bitecast/bitecast-go/internal/snapshot"
	"github.com/bitecast/bitecast-go/internal/tide"
	"github.com/bitecast/bitecast-go/internal/tips"
	"github.com/bitecast/bitecast-go/internal/weather"
)

const (
	// activityWindow selects which (species, zone) pairs a recalc sweep
	// touches: anything with angler events this recent.
	activityWindow = 6 * time.Hour

	// recalcConcurrency bounds the parallel score recomputations.
	recalcConcurrency = 4

	// astroDaysAhead keeps a week of sun/moon rows ahead of now.
	astroDaysAhead = 7
)

// Jobs bundles the services the standard background jobs drive.
type Jobs struct {
	ds       datastore.Interface
	tides    *tide.Service
	weather  *weather.Service
	astro    *astro.Service
	marine   *marine.Service // nil when marine fetching is disabled
	capturer *snapshot.Capturer
	scores   *scorecache.Service
	learner  *learning.Service
	tips     *tips.Generator
	builder  *forecast.Builder
	backup   JobFunc // nil when backups are disabled
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewJobs wires the standard job set. marineSvc, backupFn and metrics may
// be nil.
func NewJobs(
	ds datastore.Interface,
	tides *tide.Service,
	weatherSvc *weather.Service,
	astroSvc *astro.Service,
	marineSvc *marine.Service,
	capturer *snapshot.Capturer,
	scores *scorecache.Service,
	learner *learning.Service,
	tipsGen *tips.Generator,
	builder *forecast.Builder,
	backupFn JobFunc,
	metrics *observability.Metrics,
) *Jobs {
	return &Jobs{
		ds:       ds,
		tides:    tides,
		weather:  weatherSvc,
		astro:    astroSvc,
		marine:   marineSvc,
		capturer: capturer,
		scores:   scores,
		learner:  learner,
		tips:     tipsGen,
		builder:  builder,
		backup:   backupFn,
		metrics:  metrics,
		logger:   logging.ForService("scheduler"),
	}
}

// Register adds the standard jobs to the scheduler with the configured
// intervals. Ingest and snapshot run immediately on startup so a fresh
// install has data before the first tick.
func (j *Jobs) Register(s *Scheduler, settings conf.SchedulerSettings) {
	s.AddJob("ingest", minutes(settings.FetchIntervalMinutes, 30), true, j.RunIngestAndForecast)
	s.AddJob("snapshot", minutes(settings.SnapshotIntervalMinutes, 10), true, j.RunSnapshot)
	s.AddJob("recalc", minutes(settings.RecalcIntervalMinutes, 30), false, j.RunRecalc)
	s.AddJob("learning-decay", 24*time.Hour, false, j.RunLearningDecay)
	if j.backup != nil {
		s.AddJob("backup", 24*time.Hour, false, j.backup)
	}
}

func minutes(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Minute
}

// RunIngestAndForecast pulls every upstream source and rebuilds the
// forecast windows. Each step is independent: a failure is logged and
// counted and the sequence continues, so one dead API cannot starve the
// rest of the pipeline.
func (j *Jobs) RunIngestAndForecast(ctx context.Context) error {
	failures := 0

	step := func(source string, fn func(context.Context) error) {
		start := time.Now()
		err := fn(ctx)
		elapsed := time.Since(start)
		if j.metrics != nil {
			j.metrics.Ingest.RecordFetchDuration(source, elapsed.Seconds())
			if err != nil {
				j.metrics.Ingest.RecordFetch(source, "error")
				j.metrics.Ingest.RecordFetchError(source, "fetch")
			} else {
				j.metrics.Ingest.RecordFetch(source, "success")
			}
		}
		if err != nil {
			failures++
			j.logger.Error("ingest step failed",
				"source", source, "duration", elapsed, "error", err)
		}
	}

	step("tide", j.tides.FetchAndStore)
	step("weather_forecast", j.weather.FetchForecast)
	step("astronomy", func(ctx context.Context) error {
		return j.astro.Refresh(ctx, astroDaysAhead)
	})
	step("observations", j.weather.StoreObservation)
	if j.marine != nil {
		step("marine", func(ctx context.Context) error {
			conditions := ""
			if w, err := j.ds.LatestWeather(); err == nil {
				conditions = w.Conditions
			}
			return j.marine.FetchAndStore(ctx, conditions)
		})
	}

	buildStart := time.Now()
	buildErr := j.builder.RebuildWindows(ctx, 0)
	if j.metrics != nil {
		status := "success"
		if buildErr != nil {
			status = "error"
		}
		j.metrics.Scoring.RecordWindowBuild(status, time.Since(buildStart).Seconds())
	}
	if buildErr != nil {
		failures++
		j.logger.Error("forecast window rebuild failed", "error", buildErr)
	} else if err := j.builder.RefreshAlerts(ctx); err != nil {
		failures++
		j.logger.Error("alert refresh failed", "error", err)
	}

	if failures > 0 {
		return fmt.Errorf("ingest finished with %d failed steps", failures)
	}
	return nil
}

// RunSnapshot captures the environment snapshot (skipped when a fresh one
// exists) and sweeps expired ones.
func (j *Jobs) RunSnapshot(ctx context.Context) error {
	if err := j.capturer.Capture(ctx, false); err != nil {
		return err
	}
	return j.capturer.Sweep(ctx)
}

// RunLearningDecay shrinks all learning bucket deltas toward zero.
func (j *Jobs) RunLearningDecay(ctx context.Context) error {
	return j.learner.DecayAll(ctx)
}

type scorePair struct {
	species string
	zoneID  string
}

// RunRecalc recomputes cached scores for the pairs with recent angler
// activity, falling back to the full Tier 1 sweep when the dock has been
// quiet. Bite pairs also get their tip refreshed.
func (j *Jobs) RunRecalc(ctx context.Context) error {
	since := time.Now().UTC().Add(-activityWindow)

	bitePairs, baitPairs, err := j.recalcPairs(since)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recalcConcurrency)

	for _, p := range bitePairs {
		g.Go(func() error {
			start := time.Now()
			err := j.scores.Recalculate(gctx, p.species, p.zoneID, false)
			j.recordRecompute("bite", start, err)
			if err != nil {
				j.logger.Error("bite recalc failed",
					"species", p.species, "zone", p.zoneID, "error", err)
				return nil // one bad pair must not cancel the sweep
			}
			j.tips.UpdateSpeciesZoneTip(gctx, p.species, p.zoneID)
			return nil
		})
	}
	for _, p := range baitPairs {
		g.Go(func() error {
			start := time.Now()
			err := j.scores.RecalculateBait(gctx, p.species, p.zoneID, false)
			j.recordRecompute("bait", start, err)
			if err != nil {
				j.logger.Error("bait recalc failed",
					"bait", p.species, "zone", p.zoneID, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	j.logger.Info("recalc sweep finished",
		"bite_pairs", len(bitePairs), "bait_pairs", len(baitPairs))
	return nil
}

// recalcPairs picks the sweep targets: pairs with catches in the activity
// window, prey species in zones with predator sightings, and baits logged
// recently. An idle dock falls back to every Tier 1 species in every zone.
func (j *Jobs) recalcPairs(since time.Time) (bitePairs, baitPairs []scorePair, err error) {
	seenBite := make(map[scorePair]bool)
	addBite := func(p scorePair) {
		if !seenBite[p] {
			seenBite[p] = true
			bitePairs = append(bitePairs, p)
		}
	}

	catches, err := j.ds.RecentCatches("", "", since)
	if err != nil {
		return nil, nil, fmt.Errorf("loading recent catches: %w", err)
	}
	for i := range catches {
		addBite(scorePair{catches[i].Species, catches[i].ZoneID})
	}

	predators, err := j.ds.GetPredatorLogs(100)
	if err != nil {
		return nil, nil, fmt.Errorf("loading predator logs: %w", err)
	}
	for i := range predators {
		if predators[i].Time.Before(since) {
			continue
		}
		for _, species := range rules.AllSpecies {
			if rules.IsPreySpecies(species) {
				addBite(scorePair{species, predators[i].Zone})
			}
		}
	}

	baitLogs, err := j.ds.RecentBaitLogs("", "", since)
	if err != nil {
		return nil, nil, fmt.Errorf("loading recent bait logs: %w", err)
	}
	seenBait := make(map[scorePair]bool)
	for i := range baitLogs {
		p := scorePair{baitLogs[i].BaitSpecies, baitLogs[i].ZoneID}
		if !seenBait[p] {
			seenBait[p] = true
			baitPairs = append(baitPairs, p)
		}
	}

	if len(bitePairs) == 0 {
		for _, species := range rules.Tier1Species {
			for _, zone := range rules.ZoneIDs {
				addBite(scorePair{species, fmt.Sprintf("%d", zone)})
			}
		}
	}
	return bitePairs, baitPairs, nil
}

func (j *Jobs) recordRecompute(kind string, start time.Time, err error) {
	if j.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	j.metrics.Scoring.RecordRecompute(kind, status)
	j.metrics.Scoring.RecordRecomputeDuration(kind, time.Since(start).Seconds())
}
