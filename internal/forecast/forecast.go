// Package forecast builds the rolling 2-hour bite windows and the hot-bite
// alerts derived from them.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/logging"
	"github.com/bitecast/bitecast-go/internal/rules"
	"github.com/bitecast/bitecast-go/internal/scoring"
	"github.com/bitecast/bitecast-go/internal/tide"
)

const (
	windowLength          = 2 * time.Hour
	defaultHours          = 24
	maxHours              = 48
	runningFloor          = 0.1
	defaultLookaheadHours = 12
)

// TideStater derives tide state from stored predictions.
type TideStater interface {
	StateAt(t time.Time) (tide.State, error)
}

// TimeOfDayer classifies times and moon phases.
type TimeOfDayer interface {
	TimeOfDayAt(t time.Time) string
	MoonPhaseAt(t time.Time) (float64, string)
}

// Builder rebuilds forecast windows and refreshes alerts.
type Builder struct {
	ds     datastore.Interface
	tides  TideStater
	astro  TimeOfDayer
	alerts conf.AlertSettings
	marine conf.MarineSettings
	logger *slog.Logger
}

// NewBuilder creates a forecast builder.
func NewBuilder(ds datastore.Interface, tides TideStater, astroSvc TimeOfDayer, alerts conf.AlertSettings, marine conf.MarineSettings) *Builder {
	return &Builder{
		ds:     ds,
		tides:  tides,
		astro:  astroSvc,
		alerts: alerts,
		marine: marine,
		logger: logging.ForService("forecast"),
	}
}

// RebuildWindows recomputes the 2-hour windows for the coming hours and
// replaces the stored set in one transaction.
func (b *Builder) RebuildWindows(ctx context.Context, hours int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if hours <= 0 {
		hours = defaultHours
	}
	if hours > maxHours {
		hours = maxHours
	}

	safety := b.latestSafety()

	now := time.Now().UTC().Truncate(time.Hour)
	windows := make([]datastore.ForecastWindow, 0, hours/2)
	for offset := 0; offset < hours; offset += 2 {
		start := now.Add(time.Duration(offset) * time.Hour)
		windows = append(windows, b.buildWindow(start, safety))
	}

	if err := b.ds.ReplaceForecastWindows(windows); err != nil {
		return fmt.Errorf("replacing forecast windows: %w", err)
	}
	b.logger.Info("rebuilt forecast windows", "count", len(windows), "hours", hours)
	return nil
}

// marineSafety is the safety state applied to every window in a rebuild.
type marineSafety struct {
	level string
	score int
}

// latestSafety loads the newest marine condition. A missing row or a
// disabled marine feed means no penalty.
func (b *Builder) latestSafety() marineSafety {
	if !b.marine.Enabled {
		return marineSafety{}
	}
	mc, err := b.ds.LatestMarineCondition()
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			b.logger.Warn("marine condition unavailable", "error", err)
		}
		return marineSafety{}
	}
	return marineSafety{level: mc.SafetyLevel, score: mc.SafetyScore}
}

// buildWindow scores one window using the conditions at its midpoint.
func (b *Builder) buildWindow(start time.Time, safety marineSafety) datastore.ForecastWindow {
	end := start.Add(windowLength)
	mid := start.Add(windowLength / 2)

	window := datastore.ForecastWindow{
		StartTime:  start,
		EndTime:    end,
		TimeOfDay:  b.astro.TimeOfDayAt(mid),
		ComputedAt: time.Now().UTC(),
	}

	cond := scoring.Conditions{TimeOfDay: window.TimeOfDay}

	if state, err := b.tides.StateAt(mid); err == nil && state.HasHeight {
		window.TideState = state.Stage
		window.TideHeightAvg = state.Height
		cond.TideStage = state.Stage
		cond.TideChangeRate = state.ChangeRate
	} else if err != nil {
		b.logger.Warn("tide state unavailable for window", "start", start, "error", err)
	}

	if weather, err := b.ds.WeatherForTime(mid); err == nil {
		window.PressureTrend = weather.PressureTrend
		window.WindSpeed = weather.WindSpeed
		window.Temperature = weather.Temperature
		window.WaterTemperature = weather.WaterTemperature

		cond.WindSpeedMph = weather.WindSpeed
		cond.WindDirection = weather.WindDirection
		cond.AirTempF = weather.Temperature
		cond.PressureTrend = weather.PressureTrend
		cond.CloudCover = weather.CloudCover
		cond.Weather = weather.Conditions
		if weather.WaterTemperature != nil {
			cond.WaterTempF = *weather.WaterTemperature
			cond.HasWaterTemp = true
		}
	} else {
		b.logger.Warn("no weather for window", "start", start, "error", err)
	}

	phase, _ := b.astro.MoonPhaseAt(mid)
	cond.MoonPhase = phase

	sum := 0.0
	running := 0
	topSpecies := ""
	topScore := -1.0
	for _, species := range rules.AllSpecies {
		factor := rules.RunningFactor(species, mid)
		score := scoring.WindowScore(species, factor, cond)
		score = scoring.ApplySafetyPenalty(score, safety.level, safety.score, b.marine.Penalties)
		window.SpeciesForecasts = append(window.SpeciesForecasts, datastore.SpeciesForecast{
			Species:       species,
			IsRunning:     factor >= runningFloor,
			RunningFactor: factor,
			BiteScore:     score,
			BiteLabel:     scoring.BiteLabel(score),
		})
		if factor >= runningFloor {
			sum += score
			running++
		}
		if score > topScore {
			topScore = score
			topSpecies = species
		}
	}
	if running > 0 {
		window.OverallScore = sum / float64(running)
	}

	window.ConditionsSummary = scoring.ConditionsSummary(scoring.SummaryInput{
		TideScore:  scoring.TideSubScore(topSpecies, cond.TideStage, cond.TideChangeRate),
		WindScore:  scoring.WindSubScore(topSpecies, cond.WindSpeedMph, cond.Weather),
		TempScore:  scoring.TempSubScore(topSpecies, cond.AirTempF, cond.WaterTempF, cond.HasWaterTemp),
		BiteScore:  topScore,
		TideStage:  cond.TideStage,
		WindMph:    cond.WindSpeedMph,
		WindDir:    cond.WindDirection,
		AirTempF:   cond.AirTempF,
		WaterTempF: cond.WaterTempF,
	})

	return window
}

// RefreshAlerts scans the upcoming windows for species crossing their
// configured thresholds and maintains the active alert set.
func (b *Builder) RefreshAlerts(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !b.alerts.Enabled {
		return nil
	}

	now := time.Now().UTC()
	expired, err := b.ds.DeactivateExpiredAlerts(now)
	if err != nil {
		return fmt.Errorf("deactivating expired alerts: %w", err)
	}
	if expired > 0 {
		b.logger.Info("deactivated expired alerts", "count", expired)
	}

	lookahead := b.alerts.LookaheadHours
	if lookahead <= 0 {
		lookahead = defaultLookaheadHours
	}

	windows, err := b.ds.GetForecastWindows(now, now.Add(time.Duration(lookahead)*time.Hour))
	if err != nil {
		return fmt.Errorf("loading forecast windows: %w", err)
	}

	created := 0
	for _, w := range windows {
		for _, sf := range w.SpeciesForecasts {
			threshold, watched := b.alerts.Species[sf.Species]
			if !watched || sf.BiteScore < threshold {
				continue
			}
			if _, err := b.ds.FindActiveAlert(sf.Species, w.StartTime); err == nil {
				continue // already alerted for this window
			}

			alert := datastore.Alert{
				AlertID:     uuid.NewString(),
				Species:     sf.Species,
				WindowStart: w.StartTime,
				WindowEnd:   w.EndTime,
				BiteScore:   sf.BiteScore,
				Message:     alertMessage(sf.Species, sf.BiteScore, sf.BiteLabel, w.StartTime, w.EndTime),
				IsActive:    true,
				CreatedAt:   now,
			}
			if err := b.ds.SaveAlert(&alert); err != nil {
				b.logger.Error("alert save failed", "species", sf.Species, "error", err)
				continue
			}
			created++
		}
	}
	if created > 0 {
		b.logger.Info("created hot-bite alerts", "count", created)
	}
	return nil
}

func alertMessage(species string, score float64, label string, start, end time.Time) string {
	return fmt.Sprintf("HOT conditions for %s! Bite score: %.0f (%s). Window: %s - %s",
		rules.DisplayName(species), score, label,
		start.Format("03:04 PM"), end.Format("03:04 PM"))
}
