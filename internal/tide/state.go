// Package tide fetches NOAA CO-OPS tide predictions and derives the tide
// stage for any point in time.
package tide

import (
	"math"
	"sort"
	"time"
)

// Tide stage values.
const (
	StageIncoming = "incoming"
	StageOutgoing = "outgoing"
	StageHigh     = "high"
	StageLow      = "low"
	StageSlack    = "slack"
	StageUnknown  = "unknown"
)

// Sample is one tide prediction point.
type Sample struct {
	Time   time.Time
	Height float64
	Type   string // "H", "L" or empty
}

// State describes the tide at a moment.
type State struct {
	Height     float64
	HasHeight  bool
	Stage      string
	ChangeRate float64 // |ft/h| normalized against 2 ft/h, clamped to [0,1]
}

// Extreme is an upcoming high or low event.
type Extreme struct {
	Time   time.Time
	Height float64
	Type   string // "H" or "L"
}

// CurrentState is State plus the next high and low events.
type CurrentState struct {
	State
	NextHigh *Extreme
	NextLow  *Extreme
}

// Mobile Bay has a small tidal range, so the movement threshold sits well
// below a typical coastal value.
const (
	movementThresholdFt = 0.02
	maxChangeRateFtHr   = 2.0
	compareWindow       = 30 * time.Minute
)

// StateAt derives the tide state at t from prediction samples. The stage
// compares interpolated heights half an hour either side of t; flat
// movement resolves to high or low against the thresholds, otherwise
// slack.
func StateAt(samples []Sample, t time.Time, highThresholdFt, lowThresholdFt float64) State {
	if len(samples) == 0 {
		return State{Stage: StageUnknown}
	}
	sorted := sortedByTime(samples)

	height := interpolate(sorted, t)
	before := interpolate(sorted, t.Add(-compareWindow))
	after := interpolate(sorted, t.Add(compareWindow))

	delta := after - before
	hours := (2 * compareWindow).Hours()
	rate := math.Min(math.Abs(delta)/hours/maxChangeRateFtHr, 1.0)

	stage := StageSlack
	switch {
	case delta > movementThresholdFt:
		stage = StageIncoming
	case delta < -movementThresholdFt:
		stage = StageOutgoing
	case height >= highThresholdFt:
		stage = StageHigh
	case height <= lowThresholdFt:
		stage = StageLow
	}

	return State{
		Height:     math.Round(height*100) / 100,
		HasHeight:  true,
		Stage:      stage,
		ChangeRate: rate,
	}
}

// NextExtremes scans samples for the first high and low after t.
func NextExtremes(samples []Sample, t time.Time) (nextHigh, nextLow *Extreme) {
	sorted := sortedByTime(samples)
	for i := range sorted {
		s := sorted[i]
		if !s.Time.After(t) {
			continue
		}
		switch s.Type {
		case "H":
			if nextHigh == nil {
				nextHigh = &Extreme{Time: s.Time, Height: s.Height, Type: "H"}
			}
		case "L":
			if nextLow == nil {
				nextLow = &Extreme{Time: s.Time, Height: s.Height, Type: "L"}
			}
		}
		if nextHigh != nil && nextLow != nil {
			break
		}
	}
	return nextHigh, nextLow
}

// StateWithExtremes combines StateAt with the next high/low lookups.
func StateWithExtremes(samples []Sample, t time.Time, highThresholdFt, lowThresholdFt float64) CurrentState {
	state := StateAt(samples, t, highThresholdFt, lowThresholdFt)
	nextHigh, nextLow := NextExtremes(samples, t)
	return CurrentState{State: state, NextHigh: nextHigh, NextLow: nextLow}
}

// interpolate returns the linear height at t, clamping outside the sample
// range.
func interpolate(sorted []Sample, t time.Time) float64 {
	n := len(sorted)
	if t.Before(sorted[0].Time) {
		return sorted[0].Height
	}
	if !t.Before(sorted[n-1].Time) {
		return sorted[n-1].Height
	}

	idx := sort.Search(n, func(i int) bool { return !sorted[i].Time.Before(t) })
	after := sorted[idx]
	if after.Time.Equal(t) || idx == 0 {
		return after.Height
	}
	before := sorted[idx-1]

	span := after.Time.Sub(before.Time).Seconds()
	if span <= 0 {
		return before.Height
	}
	ratio := t.Sub(before.Time).Seconds() / span
	return before.Height + (after.Height-before.Height)*ratio
}

func sortedByTime(samples []Sample) []Sample {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })
	return sorted
}
