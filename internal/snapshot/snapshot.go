// Package snapshot captures periodic environment snapshots so the learner
// can see the conditions nobody caught fish in.
package snapshot

import (
	"context"
	"log/slog"
	"time"

	"github.com/bitecast/bitecast-go/internal/astro"
	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/logging"
	"github.com/bitecast/bitecast-go/internal/tide"
)

// minSnapshotSpacing suppresses near-duplicate captures.
const minSnapshotSpacing = 5 * time.Minute

// TideStater derives tide state from stored predictions.
type TideStater interface {
	StateAt(t time.Time) (tide.State, error)
}

// TimeOfDayer classifies a time into its band.
type TimeOfDayer interface {
	TimeOfDayAt(t time.Time) string
	MoonPhaseAt(t time.Time) (float64, string)
}

// Capturer assembles environment snapshots from the latest stored data.
type Capturer struct {
	ds        datastore.Interface
	tides     TideStater
	astro     TimeOfDayer
	retention int // days
	logger    *slog.Logger
}

// NewCapturer creates a snapshot Capturer.
func NewCapturer(ds datastore.Interface, tides TideStater, astroSvc TimeOfDayer, settings conf.SchedulerSettings) *Capturer {
	retention := settings.SnapshotRetentionDays
	if retention <= 0 {
		retention = 30
	}
	return &Capturer{
		ds:        ds,
		tides:     tides,
		astro:     astroSvc,
		retention: retention,
		logger:    logging.ForService("snapshot"),
	}
}

// Capture writes one snapshot row unless a recent one already exists.
// force bypasses the spacing check.
func (c *Capturer) Capture(ctx context.Context, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now().UTC()

	if !force {
		recent, err := c.ds.HasSnapshotSince(now.Add(-minSnapshotSpacing))
		if err != nil {
			return err
		}
		if recent {
			c.logger.Debug("skipping snapshot, recent one exists")
			return nil
		}
	}

	snap := datastore.EnvironmentSnapshot{Timestamp: now}
	snap.EnvSnapshot = c.assembleEnv(now)

	if err := c.ds.SaveEnvironmentSnapshot(&snap); err != nil {
		return err
	}
	c.logger.Info("captured environment snapshot",
		"tide_stage", snap.TideStage, "time_of_day", snap.TimeOfDay)
	return nil
}

// CurrentEnv assembles the environment block used when event rows (catches,
// bait logs) are stored without client-provided conditions.
func (c *Capturer) CurrentEnv(now time.Time) datastore.EnvSnapshot {
	return c.assembleEnv(now)
}

func (c *Capturer) assembleEnv(now time.Time) datastore.EnvSnapshot {
	env := datastore.EnvSnapshot{}

	if state, err := c.tides.StateAt(now); err == nil && state.HasHeight {
		height := state.Height
		env.TideHeight = &height
		env.TideStage = state.Stage
		rate := state.ChangeRate
		env.CurrentSpeed = &rate
	} else if err != nil {
		c.logger.Warn("tide state unavailable for snapshot", "error", err)
	}

	// Observations beat forecast rows; WeatherForTime prefers the closest
	// row of either kind, so pin to the latest observation first.
	weather, err := c.ds.LatestWeather()
	if err != nil || weather.IsForecast || now.Sub(weather.Timestamp) > 2*time.Hour {
		if w, werr := c.ds.WeatherForTime(now); werr == nil {
			weather = w
			err = nil
		}
	}
	if err == nil {
		airTemp := weather.Temperature
		env.AirTemp = &airTemp
		windSpeed := weather.WindSpeed
		env.WindSpeed = &windSpeed
		env.WindDirection = weather.WindDirection
		env.Weather = weather.Conditions
		if weather.Humidity > 0 {
			humidity := weather.Humidity
			env.Humidity = &humidity
		}
		if weather.Pressure > 0 {
			pressure := weather.Pressure
			env.BarometricPressure = &pressure
		}
		if weather.WaterTemperature != nil {
			waterTemp := *weather.WaterTemperature
			env.WaterTemp = &waterTemp
		}
	}

	env.TimeOfDay = c.astro.TimeOfDayAt(now)
	phase, _ := c.astro.MoonPhaseAt(now)
	env.MoonPhase = &phase
	env.DockLightsOn = astro.IsDark(env.TimeOfDay)

	return env
}

// Sweep deletes snapshots past the retention horizon.
func (c *Capturer) Sweep(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -c.retention)
	deleted, err := c.ds.DeleteSnapshotsBefore(cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		c.logger.Info("swept old environment snapshots", "deleted", deleted)
	}
	return nil
}
