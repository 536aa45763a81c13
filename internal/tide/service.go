package tide

import (
	"context"
	"log/slog"
	"time"

	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/logging"
)

// fetchHorizon is how far ahead predictions are pulled on each refresh.
const fetchHorizon = 48 * time.Hour

// Service keeps the tide table fresh and answers stage queries from it.
type Service struct {
	ds       datastore.Interface
	client   *Client
	settings conf.TideSettings
	logger   *slog.Logger
}

// NewService creates a tide Service.
func NewService(ds datastore.Interface, client *Client, settings conf.TideSettings) *Service {
	return &Service{
		ds:       ds,
		client:   client,
		settings: settings,
		logger:   logging.ForService("tide"),
	}
}

// Client exposes the underlying CO-OPS client, for tests.
func (s *Service) Client() *Client { return s.client }

// FetchAndStore pulls 48 hours of six-minute predictions plus the hi/lo
// markers and replaces the stored range.
func (s *Service) FetchAndStore(ctx context.Context) error {
	now := time.Now().UTC().Truncate(time.Minute)
	end := now.Add(fetchHorizon)
	station := s.settings.PredictionStation

	samples, err := s.client.Predictions(ctx, station, now, end, IntervalSixMinute)
	if err != nil {
		return err
	}

	hiLo, err := s.client.Predictions(ctx, station, now, end, IntervalHiLo)
	if err != nil {
		// Predictions alone still give stage math something to work
		// with; the extremes just go missing until the next cycle.
		s.logger.Warn("hi/lo fetch failed, storing interval predictions only", "error", err)
		hiLo = nil
	}

	rows := mergeSamples(samples, hiLo, now, end)
	if err := s.ds.ReplaceTidePredictions(now, end, rows); err != nil {
		return err
	}

	s.logger.Info("stored tide predictions", "rows", len(rows), "station", station)
	return nil
}

// mergeSamples folds hi/lo markers into the interval predictions. A marker
// matching an existing timestamp tags that row; otherwise it becomes its
// own row. Markers outside the stored range are dropped.
func mergeSamples(samples, hiLo []Sample, start, end time.Time) []datastore.TideData {
	now := time.Now().UTC()

	byTime := make(map[time.Time]int, len(samples))
	rows := make([]datastore.TideData, 0, len(samples)+len(hiLo))
	for _, s := range samples {
		byTime[s.Time] = len(rows)
		rows = append(rows, datastore.TideData{
			Timestamp:    s.Time,
			Height:       s.Height,
			IsPrediction: true,
			FetchedAt:    now,
		})
	}

	for _, hl := range hiLo {
		if hl.Time.Before(start) || !hl.Time.Before(end) {
			continue
		}
		if idx, ok := byTime[hl.Time]; ok {
			rows[idx].TideType = hl.Type
			continue
		}
		rows = append(rows, datastore.TideData{
			Timestamp:    hl.Time,
			Height:       hl.Height,
			TideType:     hl.Type,
			IsPrediction: true,
			FetchedAt:    now,
		})
	}

	return rows
}

// StateAt derives the tide state at t from stored predictions.
func (s *Service) StateAt(t time.Time) (State, error) {
	rows, err := s.ds.GetTideAround(t, 2*time.Hour)
	if err != nil {
		return State{Stage: StageUnknown}, err
	}
	return StateAt(toSamples(rows), t, s.settings.HighThresholdFt, s.settings.LowThresholdFt), nil
}

// CurrentState derives the state now plus the next high and low events.
func (s *Service) CurrentState(now time.Time) (CurrentState, error) {
	rows, err := s.ds.GetTideAround(now, 2*time.Hour)
	if err != nil {
		return CurrentState{State: State{Stage: StageUnknown}}, err
	}
	state := StateAt(toSamples(rows), now, s.settings.HighThresholdFt, s.settings.LowThresholdFt)

	extremes, err := s.ds.NextTideExtremes(now, 4)
	if err != nil {
		return CurrentState{State: state}, err
	}
	nextHigh, nextLow := NextExtremes(toSamples(extremes), now)
	return CurrentState{State: state, NextHigh: nextHigh, NextLow: nextLow}, nil
}

func toSamples(rows []datastore.TideData) []Sample {
	samples := make([]Sample, 0, len(rows))
	for _, r := range rows {
		samples = append(samples, Sample{Time: r.Timestamp, Height: r.Height, Type: r.TideType})
	}
	return samples
}
