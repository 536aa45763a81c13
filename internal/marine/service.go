package marine

import (
	"context"
	"log/slog"
	"time"

	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/logging"
)

// Service fetches, scores and stores marine conditions.
type Service struct {
	ds     datastore.Interface
	client *Client
	zone   string
	logger *slog.Logger
}

// NewService creates a marine Service.
func NewService(ds datastore.Interface, settings *conf.Settings) *Service {
	return &Service{
		ds:     ds,
		client: NewClient(settings.Weather.UserAgent),
		zone:   settings.Marine.Zone,
		logger: logging.ForService("marine"),
	}
}

// Client exposes the underlying NWS client, for tests.
func (s *Service) Client() *Client { return s.client }

// FetchAndStore pulls the zone forecast plus active alerts, scores safety
// and writes one MarineCondition row. A missing forecast still produces a
// row at CAUTION so scoring never reads an empty table as all-clear.
func (s *Service) FetchAndStore(ctx context.Context, weatherConditions string) error {
	now := time.Now().UTC()

	forecast, forecastErr := s.client.ZoneForecast(ctx, s.zone)

	alerts, err := s.client.ActiveAlerts(ctx, s.zone)
	if err != nil {
		s.logger.Warn("alert fetch failed, classifying without alerts", "zone", s.zone, "error", err)
		alerts = nil
	}
	hazards := ClassifyHazards(alerts)

	row := datastore.MarineCondition{
		Timestamp:           now,
		IsForecast:          true,
		FetchedAt:           now,
		HazardLevel:         hazards.Level,
		SmallCraftAdvisory:  hazards.SmallCraftAdvisory,
		GaleWarning:         hazards.GaleWarning,
		ThunderstormWarning: hazards.ThunderstormWarning,
		HazardRaw:           hazards.Raw,
	}

	if forecastErr != nil {
		s.logger.Warn("marine forecast unavailable, storing fallback row", "zone", s.zone, "error", forecastErr)
		row.MarineSummary = "Marine forecast unavailable"
		row.SafetyScore = 50
		row.SafetyLevel = SafetyCaution
		return s.ds.SaveMarineCondition(&row)
	}

	row.MarineSummary = forecast.Summary
	row.SeaState = forecast.SeaState
	if forecast.HasWaveHeight {
		wave := forecast.WaveHeightFt
		row.WaveHeight = &wave
		row.WaveHeightText = forecast.ShortForecast
	}
	if forecast.HasWindGust {
		gust := forecast.WindGustMph
		row.WindGust = &gust
	}

	safety := CalculateSafety(ScoreInput{
		WaveHeightFt:      forecast.WaveHeightFt,
		HasWaveHeight:     forecast.HasWaveHeight,
		SeaState:          forecast.SeaState,
		WindGustMph:       forecast.WindGustMph,
		HasWindGust:       forecast.HasWindGust,
		WeatherConditions: weatherConditions,
	}, hazards)
	row.SafetyScore = safety.Score
	row.SafetyLevel = safety.Level

	if err := s.ds.SaveMarineCondition(&row); err != nil {
		return err
	}

	s.logger.Info("stored marine conditions",
		"zone", s.zone, "safety_score", safety.Score, "safety_level", safety.Level,
		"hazard_level", hazards.Level)
	return nil
}

// Latest returns the freshest stored marine row.
func (s *Service) Latest() (datastore.MarineCondition, error) {
	return s.ds.LatestMarineCondition()
}
