// Package learning turns logged catches into learned state: which rigs
// produce per zone, which condition bands produce per species, and the
// micro-adjustment buckets that nudge predictions toward observed results.
// Everything here is append-only; deleting a catch does not unlearn it.
package learning

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/logging"
	"github.com/bitecast/bitecast-go/internal/scoring"
)

const (
	deltaMin        = -0.3
	deltaMax        = 0.3
	microAdjustment = 0.02
	dailyDecay      = 0.98

	// Catches from crab traps and pots accumulate slowly: the trap was
	// soaking, so the conditions at log time barely describe the catch.
	trapMultiplier = 0.15

	minSamplesForConfidence = 5

	rigWeightCap       = 3.0
	conditionWeightCap = 4.0
)

// Service updates the learned tables after catches and serves the deltas.
type Service struct {
	ds     datastore.Interface
	logger *slog.Logger
}

// New creates a learning service.
func New(ds datastore.Interface) *Service {
	return &Service{ds: ds, logger: logging.ForService("learning")}
}

// TimeBlock classifies a time into the bucket blocks.
func TimeBlock(t time.Time) string {
	switch hour := t.Hour(); {
	case hour >= 6 && hour < 11:
		return "morning"
	case hour >= 11 && hour < 15:
		return "midday"
	case hour >= 15 && hour < 20:
		return "evening"
	default:
		return "night"
	}
}

// OnCatch processes a persisted catch for every learned table. Failures are
// logged and swallowed so learning can never fail the catch write.
func (s *Service) OnCatch(ctx context.Context, c *datastore.Catch, predictedTier string) {
	if err := ctx.Err(); err != nil {
		return
	}

	multiplier := 1.0
	if isTrapCatch(c) {
		multiplier = trapMultiplier
	}

	if err := s.updateRigEffect(c); err != nil {
		s.logger.Error("rig effect update failed",
			"species", c.Species, "zone", c.ZoneID, "error", err)
	}
	if err := s.updateZoneConditionEffect(c, multiplier); err != nil {
		s.logger.Error("zone condition effect update failed",
			"species", c.Species, "zone", c.ZoneID, "error", err)
	}
	if err := s.updateRigConditionEffect(c, multiplier); err != nil {
		s.logger.Error("rig condition effect update failed",
			"species", c.Species, "rig", c.RigType, "error", err)
	}
	if err := s.AdjustBucket(c.Species, c.ZoneID, bucketTideStage(c.TideStage),
		TimeBlock(c.Timestamp), predictedTier, catchQuantity(c)); err != nil {
		s.logger.Error("learning bucket update failed",
			"species", c.Species, "zone", c.ZoneID, "error", err)
	}
}

func isTrapCatch(c *datastore.Catch) bool {
	if c.Species != "blue_crab" {
		return false
	}
	rig := strings.ToLower(c.RigType)
	return strings.Contains(rig, "trap") || strings.Contains(rig, "pot")
}

func catchQuantity(c *datastore.Catch) int {
	if c.Quantity > 0 {
		return c.Quantity
	}
	return 1
}

// updateRigEffect increments the (species, zone, rig) success counter. Trap
// catches count fully here; the multiplier only softens condition effects.
func (s *Service) updateRigEffect(c *datastore.Catch) error {
	rig := strings.ToLower(c.RigType)
	if rig == "" || rig == "unknown" {
		return nil
	}

	effect, err := s.ds.GetOrCreateRigEffect(c.Species, c.ZoneID, rig)
	if err != nil {
		return err
	}
	effect.SuccessCount++
	effect.Weight = math.Min(rigWeightCap, math.Log(float64(effect.SuccessCount)+1))
	now := time.Now().UTC()
	effect.LastUsed = &now
	return s.ds.SaveRigEffect(&effect)
}

func (s *Service) updateZoneConditionEffect(c *datastore.Catch, multiplier float64) error {
	tide := scoring.TideBand(c.TideStage)
	if tide == "unknown" {
		return nil
	}

	key := datastore.ZoneConditionKey{
		Species:     c.Species,
		ZoneID:      c.ZoneID,
		TideBand:    tide,
		ClarityBand: catchClarityBand(c),
		WindBand:    scoring.WindBand(c.Species, c.WindDirection),
		CurrentBand: scoring.CurrentBand(derefOrZero(c.CurrentSpeed)),
	}
	effect, err := s.ds.GetOrCreateZoneConditionEffect(key)
	if err != nil {
		return err
	}
	effect.SuccessCount += multiplier
	effect.Weight = math.Min(conditionWeightCap, math.Log(effect.SuccessCount+1))
	return s.ds.SaveZoneConditionEffect(&effect)
}

func (s *Service) updateRigConditionEffect(c *datastore.Catch, multiplier float64) error {
	rig := strings.ToLower(c.RigType)
	if rig == "" || rig == "unknown" {
		return nil
	}
	tide := scoring.TideBand(c.TideStage)
	if tide == "unknown" {
		return nil
	}

	key := datastore.RigConditionKey{
		Species:     c.Species,
		RigType:     rig,
		TideBand:    tide,
		ClarityBand: catchClarityBand(c),
	}
	effect, err := s.ds.GetOrCreateRigConditionEffect(key)
	if err != nil {
		return err
	}
	effect.SuccessCount += multiplier
	effect.Weight = math.Min(conditionWeightCap, math.Log(effect.SuccessCount+1))
	return s.ds.SaveRigConditionEffect(&effect)
}

// catchClarityBand predicts the clarity band from the catch's environment
// block, since clarity itself is never measured at the dock.
func catchClarityBand(c *datastore.Catch) string {
	wind := derefOrZero(c.WindSpeed)
	current := derefOrZero(c.CurrentSpeed)
	weather := strings.ToLower(c.Weather)
	rainy := strings.Contains(weather, "rain") || strings.Contains(weather, "shower") ||
		strings.Contains(weather, "storm")
	return scoring.ClarityBand(scoring.PredictWaterClarity(wind, current, rainy))
}

func derefOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// bucketTideStage maps the snapshot stage onto the bucket vocabulary, where
// slack water is filed with low.
func bucketTideStage(stage string) string {
	switch strings.ToLower(stage) {
	case "slack", "":
		return "low"
	default:
		return strings.ToLower(stage)
	}
}

// AdjustBucket micro-adjusts the delta for one bucket: a good prediction
// that produced nothing drifts down, a poor prediction that produced fish
// drifts up. Either way the sample count and confidence grow.
func (s *Service) AdjustBucket(species, zone, tideStage, timeBlock, predictedTier string, caught int) error {
	bucket, err := s.ds.GetOrCreateLearningBucket(species, zone, tideStage, timeBlock)
	if err != nil {
		return err
	}

	switch {
	case (predictedTier == "HOT" || predictedTier == "DECENT") && caught == 0:
		bucket.Delta = math.Max(deltaMin, bucket.Delta-microAdjustment)
	case (predictedTier == "SLOW" || predictedTier == "UNLIKELY") && caught >= 1:
		bucket.Delta = math.Min(deltaMax, bucket.Delta+microAdjustment)
	}

	bucket.SampleCount++
	now := time.Now().UTC()
	bucket.LastAdjustment = &now

	if bucket.SampleCount < minSamplesForConfidence {
		bucket.Confidence = 0.3 + float64(bucket.SampleCount)/minSamplesForConfidence*0.4
	} else {
		bucket.Confidence = math.Min(0.9, 0.7+float64(bucket.SampleCount)/20*0.2)
	}

	return s.ds.SaveLearningBucket(&bucket)
}

// DecayAll shrinks every bucket delta toward zero. Runs daily so stale
// lessons fade unless fresh catches keep reinforcing them.
func (s *Service) DecayAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buckets, err := s.ds.AllLearningBuckets()
	if err != nil {
		return err
	}
	for i := range buckets {
		buckets[i].Delta *= dailyDecay
		if math.Abs(buckets[i].Delta) < 0.01 {
			buckets[i].Delta = 0
		}
		if err := s.ds.SaveLearningBucket(&buckets[i]); err != nil {
			return err
		}
	}
	s.logger.Info("applied daily decay to learning buckets", "count", len(buckets))
	return nil
}

// Delta is the learned adjustment for one condition bucket.
type Delta struct {
	Delta       float64    `json:"delta"`
	Confidence  float64    `json:"confidence"`
	SampleCount int        `json:"sample_count"`
	Explanation string     `json:"explanation"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// DeltaForPair returns the learned delta for a species/zone under the given
// tide stage and time block. Missing buckets return the neutral prior.
func (s *Service) DeltaForPair(species, zone, tideStage, timeBlock string) (Delta, error) {
	buckets, err := s.ds.GetLearningBuckets(species, zone)
	if err != nil {
		return Delta{}, err
	}
	for _, b := range buckets {
		if b.TideStage != tideStage || b.TimeOfDayBlock != timeBlock {
			continue
		}
		direction := "neutral"
		switch {
		case b.Delta > 0:
			direction = "improved"
		case b.Delta < 0:
			direction = "reduced"
		}
		return Delta{
			Delta:       b.Delta,
			Confidence:  b.Confidence,
			SampleCount: b.SampleCount,
			Explanation: fmt.Sprintf("Based on %d fishing sessions, this condition has %s bite rates by %.2f.",
				b.SampleCount, direction, math.Abs(b.Delta)),
			LastUpdated: b.LastAdjustment,
		}, nil
	}
	return Delta{
		Confidence:  0.5,
		Explanation: "No historical data for this condition combination yet.",
	}, nil
}

// ZoneSufficiency reports whether a zone has enough catches for reliable
// predictions.
type ZoneSufficiency struct {
	Zone       string `json:"zone"`
	Status     string `json:"status"` // UNKNOWN, PARTIAL, SUFFICIENT
	CatchCount int    `json:"catch_count"`
	Message    string `json:"message"`
}

// ZoneDataSufficiency bands a zone's catch history at 5 and 20 catches.
func (s *Service) ZoneDataSufficiency(zone string) (ZoneSufficiency, error) {
	count, err := s.ds.CountCatches("", zone)
	if err != nil {
		return ZoneSufficiency{}, err
	}

	out := ZoneSufficiency{Zone: zone, CatchCount: int(count)}
	switch {
	case count < 5:
		out.Status = "UNKNOWN"
		out.Message = "Insufficient data - using nearby zone averages"
	case count < 20:
		out.Status = "PARTIAL"
		out.Message = fmt.Sprintf("Zone has %d logged catches - patterns are forming", count)
	default:
		out.Status = "SUFFICIENT"
		out.Message = fmt.Sprintf("Zone has %d logged catches", count)
	}
	return out, nil
}

// nearbyZones lists which zones stand in for an unfished one.
var nearbyZones = map[string][]string{
	"1": {"2"},
	"2": {"1", "3"},
	"3": {"2", "4"},
	"4": {"3", "5"},
	"5": {"2", "3", "4"},
}

// UnfishedZoneDelta averages the deltas of nearby zones for the same bucket
// so an unfished zone still reacts to learned patterns around it.
func (s *Service) UnfishedZoneDelta(species, zone, tideStage, timeBlock string) (float64, error) {
	neighbors, ok := nearbyZones[zone]
	if !ok {
		neighbors = []string{"2", "3", "4"}
	}

	sum := 0.0
	count := 0
	for _, n := range neighbors {
		buckets, err := s.ds.GetLearningBuckets(species, n)
		if err != nil {
			return 0, err
		}
		for _, b := range buckets {
			if b.TideStage == tideStage && b.TimeOfDayBlock == timeBlock {
				sum += b.Delta
				count++
			}
		}
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}
