// Package scorecache owns the cached per-(species, zone) bite and bait
// scores. It is the only writer of those rows: everything else reads them
// through the datastore and asks this service to recalculate.
package scorecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/logging"
	"github.com/bitecast/bitecast-go/internal/rules"
	"github.com/bitecast/bitecast-go/internal/scoring"
)

const (
	recentCatchWindow = 6 * time.Hour
	predatorWindow    = 4 * time.Hour
	baitLogWindow     = 4 * time.Hour
)

var sentenceCaser = cases.Title(language.AmericanEnglish)

// keyedMutex serializes work per string key so the scheduler and
// event-driven recomputes never interleave on the same score row.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (km *keyedMutex) lock(key string) func() {
	km.mu.Lock()
	if km.locks == nil {
		km.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := km.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		km.locks[key] = lock
	}
	km.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Service recalculates and persists cached scores.
type Service struct {
	ds     datastore.Interface
	locks  keyedMutex
	logger *slog.Logger
}

// New creates a score cache service.
func New(ds datastore.Interface) *Service {
	return &Service{
		ds:     ds,
		logger: logging.ForService("scorecache"),
	}
}

// Recalculate recomputes the cached bite score for one (species, zone) pair.
// force skips smoothing and writes the raw score directly.
func (s *Service) Recalculate(ctx context.Context, species, zoneID string, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := s.locks.lock("bite:" + species + ":" + zoneID)
	defer unlock()

	now := time.Now().UTC()
	env := s.loadEnv(now)

	zoneNum, err := strconv.Atoi(zoneID)
	if err != nil {
		return fmt.Errorf("invalid zone id %q: %w", zoneID, err)
	}

	lifetime, err := s.ds.CountCatches(species, zoneID)
	if err != nil {
		return fmt.Errorf("counting catches for %s/%s: %w", species, zoneID, err)
	}

	input := scoring.ZoneScoreInput{
		Env:             env,
		LifetimeCatches: int(lifetime),
	}

	catches, err := s.ds.RecentCatches(species, zoneID, now.Add(-recentCatchWindow))
	if err != nil {
		return fmt.Errorf("loading recent catches for %s/%s: %w", species, zoneID, err)
	}
	for _, c := range catches {
		input.RecentCatches = append(input.RecentCatches, scoring.RecentCatch{
			HoursAgo: now.Sub(c.Timestamp).Hours(),
			Quantity: c.Quantity,
		})
	}

	if p, err := s.ds.LatestPredatorSince(zoneID, now.Add(-predatorWindow)); err == nil {
		input.Predators = []scoring.PredatorSighting{{
			HoursAgo: now.Sub(p.Time).Hours(),
			Predator: p.Predator,
		}}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("predator lookup failed", "error", err)
	}

	effects, err := s.ds.GetZoneConditionEffects(species, zoneID)
	if err != nil {
		return fmt.Errorf("loading zone condition effects for %s/%s: %w", species, zoneID, err)
	}
	for _, e := range effects {
		input.LearnedEffects = append(input.LearnedEffects, scoring.LearnedEffect{
			TideBand:    e.TideBand,
			ClarityBand: e.ClarityBand,
			WindBand:    e.WindBand,
			CurrentBand: e.CurrentBand,
			Weight:      e.Weight,
		})
	}

	result := scoring.ZoneBiteScore(species, zoneNum, now, input)
	raw := result.BiteScore

	score := raw
	if !force {
		if prior, err := s.ds.GetBiteScore(species, zoneID); err == nil {
			w := smoothingWeight(lifetime)
			score = prior.Score*(1-w) + raw*w
		}
	}

	breakdown, err := json.Marshal(map[string]float64{
		"seasonal_baseline":   result.SeasonalBaseline,
		"condition_match":     result.ConditionMatch,
		"structure_match":     result.StructureMatch,
		"clarity_salinity":    result.ClaritySalinity,
		"recent_activity":     result.RecentActivity,
		"predator_modifier":   result.PredatorModifier,
		"external_indicators": result.ExternalIndicators,
	})
	if err != nil {
		return fmt.Errorf("encoding score breakdown for %s/%s: %w", species, zoneID, err)
	}

	row := datastore.CachedBiteScore{
		Species:       species,
		ZoneID:        zoneID,
		Score:         score,
		RawScore:      raw,
		Rating:        ratingLabel(score),
		Confidence:    strings.ToLower(result.Confidence.Level),
		SampleCount:   lifetime,
		ReasonSummary: biteReason(species, zoneNum, env, result),
		Breakdown:     string(breakdown),
		LastUpdated:   now,
	}
	if err := s.ds.UpsertBiteScore(&row); err != nil {
		return err
	}

	s.logger.Debug("recalculated bite score",
		"species", species, "zone", zoneID,
		"raw", raw, "smoothed", score, "samples", lifetime)
	return nil
}

// RecalculateBait recomputes the cached bait activity score for one
// (bait, zone) pair.
func (s *Service) RecalculateBait(ctx context.Context, bait, zoneID string, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := s.locks.lock("bait:" + bait + ":" + zoneID)
	defer unlock()

	now := time.Now().UTC()
	env := s.loadEnv(now)

	zoneNum, err := strconv.Atoi(zoneID)
	if err != nil {
		return fmt.Errorf("invalid zone id %q: %w", zoneID, err)
	}

	allLogs, err := s.ds.GetBaitLogs(bait, zoneID, 0)
	if err != nil {
		return fmt.Errorf("loading bait logs for %s/%s: %w", bait, zoneID, err)
	}

	var recent []scoring.RecentBaitLog
	cutoff := now.Add(-baitLogWindow)
	for _, l := range allLogs {
		if l.Timestamp.Before(cutoff) {
			continue
		}
		recent = append(recent, scoring.RecentBaitLog{
			HoursAgo:         now.Sub(l.Timestamp).Hours(),
			QuantityEstimate: l.QuantityEstimate,
		})
	}

	result := scoring.BaitScore(bait, zoneNum, now, env, recent)
	raw := result.Rating

	score := raw
	if !force {
		if prior, err := s.ds.GetBaitScore(bait, zoneID); err == nil {
			w := smoothingWeight(int64(len(allLogs)))
			score = prior.Score*(1-w) + raw*w
		}
	}

	row := datastore.CachedBaitScore{
		BaitSpecies:   bait,
		ZoneID:        zoneID,
		Score:         score,
		RawScore:      raw,
		Rating:        ratingLabel(score),
		SampleCount:   int64(len(allLogs)),
		ReasonSummary: baitReason(bait, zoneNum, len(recent), result),
		LastUpdated:   now,
	}
	if err := s.ds.UpsertBaitScore(&row); err != nil {
		return err
	}

	s.logger.Debug("recalculated bait score",
		"bait", bait, "zone", zoneID, "raw", raw, "smoothed", score)
	return nil
}

// RecalculateAll recomputes every (species, zone) bite score. Failures are
// collected so one bad pair does not stop the sweep.
func (s *Service) RecalculateAll(ctx context.Context, force bool) error {
	var errs []error
	for _, species := range rules.AllSpecies {
		for _, zone := range rules.ZoneIDs {
			if err := ctx.Err(); err != nil {
				return err
			}
			zoneID := strconv.Itoa(zone)
			if err := s.Recalculate(ctx, species, zoneID, force); err != nil {
				s.logger.Error("bite score recalculation failed",
					"species", species, "zone", zoneID, "error", err)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecalculateAllBaits recomputes every (bait, zone) bait score.
func (s *Service) RecalculateAllBaits(ctx context.Context, force bool) error {
	var errs []error
	for _, bait := range rules.BaitSpecies {
		for _, zone := range rules.ZoneIDs {
			if err := ctx.Err(); err != nil {
				return err
			}
			zoneID := strconv.Itoa(zone)
			if err := s.RecalculateBait(ctx, bait, zoneID, force); err != nil {
				s.logger.Error("bait score recalculation failed",
					"bait", bait, "zone", zoneID, "error", err)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// loadEnv builds the scoring environment from the latest snapshot, falling
// back to neutral defaults when no snapshot exists yet.
func (s *Service) loadEnv(now time.Time) scoring.ZoneEnv {
	env := scoring.ZoneEnv{
		TideStage: "slack",
		TimeOfDay: fallbackTimeOfDay(now),
	}

	snap, err := s.ds.LatestEnvironmentSnapshot()
	if err == nil {
		if snap.TideStage != "" {
			env.TideStage = snap.TideStage
		}
		if snap.TimeOfDay != "" {
			env.TimeOfDay = snap.TimeOfDay
		}
		if snap.WaterTemp != nil {
			env.WaterTempF = *snap.WaterTemp
			env.HasWaterTemp = true
		}
		if snap.CurrentSpeed != nil {
			env.CurrentSpeed = *snap.CurrentSpeed
		}
		if snap.WindSpeed != nil {
			env.WindSpeedMph = *snap.WindSpeed
		}
		env.WindDirection = snap.WindDirection
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("snapshot lookup failed, scoring on defaults", "error", err)
	}

	if weather, err := s.ds.LatestWeather(); err == nil {
		env.PressureTrend = weather.PressureTrend
	}

	rainy := false
	if snap.Weather != "" {
		lower := strings.ToLower(snap.Weather)
		rainy = strings.Contains(lower, "rain") || strings.Contains(lower, "shower") ||
			strings.Contains(lower, "storm")
	}
	clarity := scoring.PredictWaterClarity(env.WindSpeedMph, env.CurrentSpeed, rainy)
	env.WaterClarity = scoring.ClarityProfileKey(clarity)

	return env
}

// smoothingWeight returns how much of the raw score feeds into the cached
// one. Sparse pairs move fast, data-rich pairs move slowly.
func smoothingWeight(samples int64) float64 {
	n := float64(samples)
	switch {
	case samples < 10:
		return math.Min(0.5, 0.4+n/100)
	case samples < 50:
		return 0.2 + (50-n)/400
	default:
		return 0.1 + (100-math.Min(n, 100))/1000
	}
}

func ratingLabel(score float64) string {
	switch {
	case score <= 20:
		return "Poor"
	case score <= 40:
		return "Fair"
	case score <= 60:
		return "Good"
	case score <= 80:
		return "Great"
	default:
		return "Excellent"
	}
}

// biteReason builds the one-line explanation for the cached score, most
// specific signal first.
func biteReason(species string, zoneNum int, env scoring.ZoneEnv, result scoring.ZoneScoreResult) string {
	zoneName := fmt.Sprintf("Zone %d", zoneNum)
	var parts []string

	recentCount := 0
	if result.RecentActivity > 0 {
		// The modifier only exists when catches landed inside the window.
		recentCount = int(math.Round(result.RecentActivity / 4))
		if recentCount < 1 {
			recentCount = 1
		}
	}
	if recentCount >= 3 {
		parts = append(parts, fmt.Sprintf("%d recent catches in %s", recentCount, zoneName))
	}

	switch {
	case result.ConditionMatch >= 5:
		desc := fmt.Sprintf("%s tide, %s water", env.TideStage, clarityWord(env.WaterClarity))
		if env.HasWaterTemp {
			desc += fmt.Sprintf(" %.0f°F", env.WaterTempF)
		}
		parts = append(parts, desc)
	case result.ConditionMatch <= -5:
		parts = append(parts, fmt.Sprintf("unfavorable conditions (%s tide)", env.TideStage))
	}

	if result.PredatorModifier <= -3 {
		parts = append(parts, "recent predator activity")
	}

	switch {
	case result.SeasonalBaseline >= 70:
		parts = append(parts, "peak season")
	case result.SeasonalBaseline <= 30:
		parts = append(parts, "off-season")
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Seasonal baseline for %s in %s", rules.DisplayName(species), zoneName)
	}
	return upperFirst(strings.Join(parts, "; "))
}

func baitReason(bait string, zoneNum, recentLogs int, result scoring.BaitScoreResult) string {
	zoneName := fmt.Sprintf("Zone %d", zoneNum)
	var parts []string

	if recentLogs > 0 && result.RecentLogsBonus > 0 {
		parts = append(parts, fmt.Sprintf("%d recent sightings in %s", recentLogs, zoneName))
	}
	if result.LightBonus > 0 {
		parts = append(parts, "drawn to the green light")
	}
	switch {
	case result.SeasonalBaseline >= 70:
		parts = append(parts, "peak season")
	case result.SeasonalBaseline <= 30:
		parts = append(parts, "off-season")
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Seasonal baseline for %s in %s", rules.DisplayName(bait), zoneName)
	}
	return upperFirst(strings.Join(parts, "; "))
}

func clarityWord(profileKey string) string {
	switch profileKey {
	case "clear":
		return "clear"
	case "muddy":
		return "muddy"
	default:
		return "stained"
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return sentenceCaser.String(s[:1]) + s[1:]
}

func fallbackTimeOfDay(t time.Time) string {
	switch hour := t.Hour(); {
	case hour < 6:
		return "night"
	case hour < 11:
		return "morning"
	case hour < 15:
		return "midday"
	case hour < 20:
		return "evening"
	default:
		return "night"
	}
}
