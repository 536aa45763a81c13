// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/bitecast/bitecast-go/internal/conf"
)

// Interface abstracts the underlying database implementation and defines
// the operations the engine needs.
type Interface interface {
	Open() error
	Close() error

	// tide data
	ReplaceTidePredictions(start, end time.Time, rows []TideData) error
	GetTideRange(start, end time.Time) ([]TideData, error)
	GetTideAround(t time.Time, window time.Duration) ([]TideData, error)
	NextTideExtremes(after time.Time, limit int) ([]TideData, error)

	// weather data
	SaveWeatherData(rows []WeatherData) error
	WeatherForTime(t time.Time) (WeatherData, error)
	LatestWeather() (WeatherData, error)

	// astronomy
	UpsertAstronomicalData(day *AstronomicalData) error
	GetAstronomicalData(date time.Time) (AstronomicalData, error)

	// marine conditions
	SaveMarineCondition(mc *MarineCondition) error
	LatestMarineCondition() (MarineCondition, error)

	// forecast windows and alerts
	ReplaceForecastWindows(windows []ForecastWindow) error
	GetForecastWindows(from, to time.Time) ([]ForecastWindow, error)
	LatestForecastWindow() (ForecastWindow, error)
	ActiveAlerts(now time.Time) ([]Alert, error)
	FindActiveAlert(species string, windowStart time.Time) (Alert, error)
	SaveAlert(alert *Alert) error
	DismissAlert(alertID string) error
	DeactivateExpiredAlerts(now time.Time) (int64, error)

	// angler events
	SaveCatch(c *Catch) error
	GetCatch(id uint) (Catch, error)
	GetCatches(species, zoneID string, limit int) ([]Catch, error)
	DeleteCatch(id uint) error
	CountCatches(species, zoneID string) (int64, error)
	RecentCatches(species, zoneID string, since time.Time) ([]Catch, error)
	SaveBaitLog(b *BaitLog) error
	GetBaitLogs(baitSpecies, zoneID string, limit int) ([]BaitLog, error)
	DeleteBaitLog(id uint) error
	RecentBaitLogs(baitSpecies, zoneID string, since time.Time) ([]BaitLog, error)
	SavePredatorLog(p *PredatorLog) error
	GetPredatorLogs(limit int) ([]PredatorLog, error)
	DeletePredatorLog(id uint) error
	LatestPredatorSince(zone string, since time.Time) (PredatorLog, error)

	// environment snapshots
	SaveEnvironmentSnapshot(s *EnvironmentSnapshot) error
	LatestEnvironmentSnapshot() (EnvironmentSnapshot, error)
	HasSnapshotSince(t time.Time) (bool, error)
	DeleteSnapshotsBefore(t time.Time) (int64, error)

	// learning state
	GetOrCreateLearningBucket(species, zone, tideStage, timeBlock string) (LearningBucket, error)
	SaveLearningBucket(b *LearningBucket) error
	GetLearningBuckets(species, zone string) ([]LearningBucket, error)
	AllLearningBuckets() ([]LearningBucket, error)
	GetOrCreateRigEffect(species, zoneID, rigType string) (RigEffect, error)
	SaveRigEffect(e *RigEffect) error
	GetRigEffects(species, zoneID string) ([]RigEffect, error)
	GetOrCreateZoneConditionEffect(key ZoneConditionKey) (ZoneConditionEffect, error)
	SaveZoneConditionEffect(e *ZoneConditionEffect) error
	GetZoneConditionEffects(species, zoneID string) ([]ZoneConditionEffect, error)
	GetOrCreateRigConditionEffect(key RigConditionKey) (RigConditionEffect, error)
	SaveRigConditionEffect(e *RigConditionEffect) error
	GetRigConditionEffects(species string) ([]RigConditionEffect, error)

	// cached scores and tips
	GetBiteScore(species, zoneID string) (CachedBiteScore, error)
	UpsertBiteScore(s *CachedBiteScore) error
	AllBiteScores() ([]CachedBiteScore, error)
	GetBaitScore(baitSpecies, zoneID string) (CachedBaitScore, error)
	UpsertBaitScore(s *CachedBaitScore) error
	AllBaitScores() ([]CachedBaitScore, error)
	GetTip(species, zoneID string) (SpeciesZoneTip, error)
	UpsertTip(t *SpeciesZoneTip) error
	DeleteTip(species, zoneID string) error
	AllTips() ([]SpeciesZoneTip, error)

	// static configuration
	GetZones() ([]Zone, error)
	GetSpecies() ([]Species, error)
}

// ZoneConditionKey identifies a zone condition effect row.
type ZoneConditionKey struct {
	Species     string
	ZoneID      string
	TideBand    string
	ClarityBand string
	WindBand    string
	CurrentBand string
}

// RigConditionKey identifies a rig condition effect row.
type RigConditionKey struct {
	Species     string
	RigType     string
	TideBand    string
	ClarityBand string
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB
}

// New creates a store for whichever database backend is configured.
// Returns nil for an unknown type.
func New(settings *conf.Settings) Interface {
	switch settings.Output.Database.Type {
	case "sqlite":
		return &SQLiteStore{Settings: settings}
	case "mysql":
		return &MySQLStore{Settings: settings}
	default:
		return nil
	}
}
