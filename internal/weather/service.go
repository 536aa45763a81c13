package weather

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/logging"
)

// Cache freshness windows. Entries never expire out of the store so a
// failed refresh can still serve the stale value.
const (
	observationsTTL = 15 * time.Minute
	waterTempTTL    = 30 * time.Minute

	cacheKeyObservations = "observations"
	cacheKeyWaterTemp    = "water_temp"
)

// Service combines the NWS forecast and CO-OPS observation sources.
type Service struct {
	ds       datastore.Interface
	nws      *NWSClient
	coops    *CoopsClient
	location conf.LocationSettings
	primary  string // realtime CO-OPS station
	backup   string
	cache    *gocache.Cache
	logger   *slog.Logger
}

// NewService creates a weather Service.
func NewService(ds datastore.Interface, settings *conf.Settings) *Service {
	return &Service{
		ds:       ds,
		nws:      NewNWSClient(settings.Weather.UserAgent),
		coops:    NewCoopsClient(settings.Weather.UserAgent),
		location: settings.Location,
		primary:  settings.Tide.RealtimeStation,
		backup:   settings.Weather.BackupStation,
		cache:    gocache.New(gocache.NoExpiration, 10*time.Minute),
		logger:   logging.ForService("weather"),
	}
}

// NWS exposes the forecast client, for tests.
func (s *Service) NWS() *NWSClient { return s.nws }

// Coops exposes the observation client, for tests.
func (s *Service) Coops() *CoopsClient { return s.coops }

// FetchForecast pulls the hourly forecast and upserts it as forecast rows.
func (s *Service) FetchForecast(ctx context.Context) error {
	periods, err := s.nws.HourlyForecast(ctx, s.location.Latitude, s.location.Longitude)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rows := make([]datastore.WeatherData, 0, len(periods))
	for _, p := range periods {
		rows = append(rows, datastore.WeatherData{
			Timestamp:                p.StartTime,
			Temperature:              p.TemperatureF,
			WindSpeed:                p.WindSpeedMph,
			WindDirection:            p.WindDirection,
			PressureTrend:            p.PressureTrend,
			Humidity:                 p.Humidity,
			CloudCover:               p.CloudCover,
			PrecipitationProbability: p.PrecipitationProbability,
			Conditions:               p.Conditions,
			IsForecast:               true,
			FetchedAt:                now,
		})
	}
	if err := s.ds.SaveWeatherData(rows); err != nil {
		return err
	}

	s.logger.Info("stored weather forecast", "periods", len(rows))
	return nil
}

type cachedValue[T any] struct {
	value     T
	fetchedAt time.Time
}

// Observations returns fresh meteorological readings, trying the primary
// station then the backup, serving the cache inside its TTL and a stale
// copy when both stations fail.
func (s *Service) Observations(ctx context.Context) (Observations, error) {
	if entry, ok := s.cache.Get(cacheKeyObservations); ok {
		cached := entry.(cachedValue[Observations])
		if time.Since(cached.fetchedAt) < observationsTTL {
			return cached.value, nil
		}
	}

	obs, err := s.coops.Observations(ctx, s.primary)
	if err != nil && s.backup != "" {
		s.logger.Info("primary station unavailable, trying backup",
			"primary", s.primary, "backup", s.backup)
		obs, err = s.coops.Observations(ctx, s.backup)
	}
	if err != nil {
		if entry, ok := s.cache.Get(cacheKeyObservations); ok {
			s.logger.Warn("observation fetch failed, serving stale cache", "error", err)
			return entry.(cachedValue[Observations]).value, nil
		}
		return Observations{}, err
	}

	s.cache.Set(cacheKeyObservations, cachedValue[Observations]{value: obs, fetchedAt: time.Now()}, gocache.NoExpiration)
	return obs, nil
}

// WaterTemperature returns the latest water temperature with the same
// primary/backup and stale-cache behavior as Observations.
func (s *Service) WaterTemperature(ctx context.Context) (WaterTemp, error) {
	if entry, ok := s.cache.Get(cacheKeyWaterTemp); ok {
		cached := entry.(cachedValue[WaterTemp])
		if time.Since(cached.fetchedAt) < waterTempTTL {
			return cached.value, nil
		}
	}

	wt, err := s.coops.WaterTemperature(ctx, s.primary)
	if err != nil && s.backup != "" {
		s.logger.Info("primary station unavailable, trying backup",
			"primary", s.primary, "backup", s.backup)
		wt, err = s.coops.WaterTemperature(ctx, s.backup)
	}
	if err != nil {
		if entry, ok := s.cache.Get(cacheKeyWaterTemp); ok {
			s.logger.Warn("water temperature fetch failed, serving stale cache", "error", err)
			return entry.(cachedValue[WaterTemp]).value, nil
		}
		return WaterTemp{}, err
	}

	s.cache.Set(cacheKeyWaterTemp, cachedValue[WaterTemp]{value: wt, fetchedAt: time.Now()}, gocache.NoExpiration)
	return wt, nil
}

// StoreObservation persists the current observations and water temp as one
// observation row, for the scheduler's snapshot trail.
func (s *Service) StoreObservation(ctx context.Context) error {
	obs, err := s.Observations(ctx)
	if err != nil {
		return err
	}

	row := datastore.WeatherData{
		Timestamp:     time.Now().UTC().Truncate(time.Minute),
		IsForecast:    false,
		FetchedAt:     obs.FetchedAt,
		PressureTrend: TrendStable,
	}
	if obs.HasAirTemp {
		row.Temperature = obs.AirTempF
	}
	if obs.HasWind {
		row.WindSpeed = obs.WindSpeedMph
		row.WindDirection = obs.WindDirectionCardinal
		row.WindGust = obs.WindGustMph
	}
	if obs.HasPressure {
		row.Pressure = obs.PressureMb
	}
	if wt, err := s.WaterTemperature(ctx); err == nil {
		temp := wt.TempF
		row.WaterTemperature = &temp
	}

	return s.ds.SaveWeatherData([]datastore.WeatherData{row})
}
