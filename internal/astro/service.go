package astro

import (
	"context"
	"log/slog"
	"time"

	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/errors"
	"github.com/bitecast/bitecast-go/internal/logging"
)

// Service maintains the per-day astronomical rows and answers time-of-day
// queries against them.
type Service struct {
	ds      datastore.Interface
	sunCalc *SunCalc
	logger  *slog.Logger
}

// NewService creates a Service for the dock coordinates.
func NewService(ds datastore.Interface, latitude, longitude float64) *Service {
	return &Service{
		ds:      ds,
		sunCalc: NewSunCalc(latitude, longitude),
		logger:  logging.ForService("astro"),
	}
}

// Refresh computes and upserts sun and moon data for today plus the given
// number of days ahead.
func (s *Service) Refresh(ctx context.Context, daysAhead int) error {
	if daysAhead < 1 {
		daysAhead = 7
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for i := 0; i < daysAhead; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		date := today.AddDate(0, 0, i)

		times, err := s.sunCalc.GetSunEventTimes(date)
		if err != nil {
			return errors.New(err).
				Component("astro").
				Category(errors.CategoryIngest).
				Context("operation", "sun_events").
				Context("date", date.Format("2006-01-02")).
				Build()
		}

		phase := MoonPhase(date)
		row := datastore.AstronomicalData{
			Date:          date,
			Sunrise:       times.Sunrise,
			Sunset:        times.Sunset,
			MoonPhase:     phase,
			MoonPhaseName: MoonPhaseName(phase),
			FetchedAt:     now,
		}
		if err := s.ds.UpsertAstronomicalData(&row); err != nil {
			return errors.New(err).
				Component("astro").
				Category(errors.CategoryDatabase).
				Context("operation", "upsert_astronomical_data").
				Build()
		}
	}

	s.logger.Info("stored astronomical data", "days", daysAhead)
	return nil
}

// TimeOfDayAt classifies t using the stored sun events for its date,
// falling back to clock hour when no row exists.
func (s *Service) TimeOfDayAt(t time.Time) string {
	row, err := s.ds.GetAstronomicalData(t)
	if err != nil {
		return FallbackTimeOfDay(t)
	}
	return TimeOfDay(t, row.Sunrise, row.Sunset)
}

// MoonPhaseAt returns the stored phase for t's date, computing it directly
// when no row exists.
func (s *Service) MoonPhaseAt(t time.Time) (float64, string) {
	row, err := s.ds.GetAstronomicalData(t)
	if err != nil {
		phase := MoonPhase(t)
		return phase, MoonPhaseName(phase)
	}
	return row.MoonPhase, row.MoonPhaseName
}

// SunTimes returns the day's sun events straight from the calculator.
func (s *Service) SunTimes(date time.Time) (SunEventTimes, error) {
	return s.sunCalc.GetSunEventTimes(date)
}
