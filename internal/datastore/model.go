// model.go: data model for raw environment readings, angler events and
// derived scoring state
package datastore

import "time"

// TideData is a single tide prediction or observation from NOAA CO-OPS.
type TideData struct {
	ID           uint      `gorm:"primaryKey"`
	Timestamp    time.Time `gorm:"index:idx_tide_timestamp;not null"`
	Height       float64   `gorm:"not null"` // feet relative to MLLW
	TideType     string    `gorm:"type:varchar(10)"` // "H", "L" or empty for interval points
	IsPrediction bool      `gorm:"default:true"`
	FetchedAt    time.Time
}

// WeatherData is an hourly weather observation or forecast row.
type WeatherData struct {
	ID                       uint      `gorm:"primaryKey"`
	Timestamp                time.Time `gorm:"index:idx_weather_timestamp;not null"`
	Temperature              float64   // air temperature, Fahrenheit
	WaterTemperature         *float64  // Fahrenheit, from the CO-OPS station
	WindSpeed                float64   // mph
	WindDirection            string    `gorm:"type:varchar(10)"`
	WindGust                 float64   // mph
	Pressure                 float64   // millibars
	PressureTrend            string    `gorm:"type:varchar(10)"` // rising, falling, stable
	Humidity                 float64   // percent
	CloudCover               string    `gorm:"type:varchar(20)"` // clear, partly_cloudy, overcast
	PrecipitationProbability float64   // percent
	Conditions               string    `gorm:"type:varchar(100)"` // short forecast text
	IsForecast               bool      `gorm:"default:false"`
	FetchedAt                time.Time
}

// AstronomicalData holds per-day sun events and moon phase.
type AstronomicalData struct {
	ID            uint      `gorm:"primaryKey"`
	Date          time.Time `gorm:"uniqueIndex:idx_astro_date;not null"`
	Sunrise       time.Time `gorm:"not null"`
	Sunset        time.Time `gorm:"not null"`
	MoonPhase     float64   // 0-1, 0=new, 0.5=full
	MoonPhaseName string    `gorm:"type:varchar(20)"`
	FetchedAt     time.Time
}

// ForecastWindow is a 2-hour forecast block with its environment summary.
type ForecastWindow struct {
	ID               uint      `gorm:"primaryKey"`
	StartTime        time.Time `gorm:"index:idx_window_start;not null"`
	EndTime          time.Time `gorm:"not null"`
	OverallScore     float64   // 0-100
	TideState        string    `gorm:"type:varchar(20)"` // incoming, outgoing, high, low, slack
	TideHeightAvg    float64
	TimeOfDay        string `gorm:"type:varchar(10)"` // astro band: night, dawn, morning, ...
	PressureTrend    string `gorm:"type:varchar(10)"`
	WindSpeed        float64
	Temperature      float64
	WaterTemperature *float64
	ConditionsSummary string `gorm:"type:text"`
	ComputedAt       time.Time

	SpeciesForecasts []SpeciesForecast `gorm:"foreignKey:WindowID;constraint:OnDelete:CASCADE"`
}

// SpeciesForecast is the per-species score inside a forecast window.
type SpeciesForecast struct {
	ID            uint    `gorm:"primaryKey"`
	WindowID      uint    `gorm:"index;not null"`
	Species       string  `gorm:"type:varchar(50);index:idx_spforecast_species;not null"`
	IsRunning     bool    // seasonally present
	RunningFactor float64 // 0-1
	BiteScore     float64 // 0-100
	BiteLabel     string  `gorm:"type:varchar(20)"` // Unlikely, Slow, Decent, Hot
}

// Alert is an active hot-bite alert for an upcoming window.
type Alert struct {
	ID          uint      `gorm:"primaryKey"`
	AlertID     string    `gorm:"type:varchar(40);uniqueIndex"` // stable UUID for dedupe and dismissal
	Species     string    `gorm:"type:varchar(50);index:idx_alert_species;not null"`
	WindowStart time.Time `gorm:"not null"`
	WindowEnd   time.Time `gorm:"not null"`
	BiteScore   float64
	Message     string `gorm:"type:text"`
	IsActive    bool   `gorm:"default:true"`
	CreatedAt   time.Time
	DismissedAt *time.Time
}

// Catch is a logged fish catch with the full environment snapshot taken at
// log time.
type Catch struct {
	ID        uint      `gorm:"primaryKey"`
	Timestamp time.Time `gorm:"index:idx_catch_timestamp;not null"`
	Species   string    `gorm:"type:varchar(50);index:idx_catch_species;not null"`

	ZoneID           string `gorm:"type:varchar(20);index:idx_catch_zone;not null"`
	DistanceFromDock string `gorm:"type:varchar(20)"` // at dock, 50-100 ft, 100-150 ft, 150+ ft
	DepthEstimate    string `gorm:"type:varchar(20)"` // shallow, medium, deep
	StructureType    string `gorm:"type:varchar(50)"` // pilings, grass edge, open water, channel edge

	SizeLengthIn int    // inches, 0 when not measured
	SizeBucket   string `gorm:"type:varchar(20)"` // small, keeper, big
	Quantity     int    `gorm:"default:1"`
	Kept         bool   `gorm:"default:false"`

	BaitUsed string `gorm:"type:varchar(100)"`
	RigType  string `gorm:"type:varchar(50)"` // popping_cork, jig, carolina_rig, bottom_rig, free_line, crab_trap

	PredatorSeenRecently bool `gorm:"default:false"`

	Notes string `gorm:"type:text"`

	// Days between setting and checking for trap methods.
	DaysSinceLastChecked int

	EnvSnapshot

	CreatedAt time.Time
}

// BaitLog is a bait catching session with its environment snapshot.
type BaitLog struct {
	ID               uint      `gorm:"primaryKey"`
	Timestamp        time.Time `gorm:"index:idx_baitlog_timestamp;not null"`
	BaitSpecies      string    `gorm:"type:varchar(50);index:idx_baitlog_species;not null"`
	Method           string    `gorm:"type:varchar(50);not null"` // cast net, trap
	QuantityEstimate string    `gorm:"type:varchar(20)"`          // none, few, plenty
	ZoneID           string    `gorm:"type:varchar(20);index:idx_baitlog_zone;not null"`
	StructureType    string    `gorm:"type:varchar(50)"`
	Notes            string    `gorm:"type:text"`

	DaysSinceLastChecked int

	EnvSnapshot

	CreatedAt time.Time
}

// PredatorLog records a predator sighting near the dock.
type PredatorLog struct {
	ID        uint      `gorm:"primaryKey"`
	Predator  string    `gorm:"type:varchar(20);index:idx_predator_species;not null"` // dolphin, shark, jack_crevalle, bull_redfish
	Zone      string    `gorm:"type:varchar(20);not null"`
	Time      time.Time `gorm:"index:idx_predator_time;not null"`
	Behavior  string    `gorm:"type:varchar(50);not null"` // cruising, feeding, chasing bait, busting surface
	Tide      string    `gorm:"type:varchar(20)"`          // low, rising, high, falling
	Notes     string    `gorm:"type:text"`
	CreatedAt time.Time
}

// EnvSnapshot is the shared environment block embedded into event rows.
type EnvSnapshot struct {
	WaterTemp          *float64
	AirTemp            *float64
	Humidity           *float64
	BarometricPressure *float64
	TideHeight         *float64
	TideStage          string `gorm:"type:varchar(20)"` // incoming, outgoing, slack, high, low
	CurrentSpeed       *float64
	CurrentDirection   string `gorm:"type:varchar(10)"`
	WindSpeed          *float64
	WindDirection      string `gorm:"type:varchar(10)"`
	Weather            string `gorm:"type:varchar(50)"`
	TimeOfDay          string `gorm:"type:varchar(20)"`
	MoonPhase          *float64
	DockLightsOn       bool `gorm:"default:false"`
}

// EnvironmentSnapshot is the standalone periodic snapshot used to learn
// no-bite conditions.
type EnvironmentSnapshot struct {
	ID        uint      `gorm:"primaryKey"`
	Timestamp time.Time `gorm:"index:idx_envsnap_timestamp;not null"`

	EnvSnapshot

	CreatedAt time.Time
}

// MarineCondition stores the parsed NWS marine forecast and safety scoring.
type MarineCondition struct {
	ID             uint      `gorm:"primaryKey"`
	Timestamp      time.Time `gorm:"index:idx_marine_timestamp;not null"`
	WaveHeight     *float64  // feet
	WaveHeightText string    `gorm:"type:varchar(50)"`
	SeaState       string    `gorm:"type:varchar(50)"` // calm, light chop, choppy...
	MarineSummary  string    `gorm:"type:text"`

	SafetyScore int    `gorm:"default:100"` // 0-100
	SafetyLevel string `gorm:"type:varchar(20);default:SAFE"` // SAFE, CAUTION, UNSAFE

	HazardLevel          string `gorm:"type:varchar(20);default:NONE"` // NONE, CAUTION, DANGEROUS
	SmallCraftAdvisory   bool   `gorm:"default:false"`
	GaleWarning          bool   `gorm:"default:false"`
	ThunderstormWarning  bool   `gorm:"default:false"`
	HazardRaw            string `gorm:"type:text"`

	WindGust   *float64
	Visibility *float64 // nautical miles

	IsForecast bool `gorm:"default:false"`
	FetchedAt  time.Time
}

// LearningBucket accumulates score adjustments per
// species/zone/tide/time-block combination.
type LearningBucket struct {
	ID             uint    `gorm:"primaryKey"`
	Species        string  `gorm:"type:varchar(50);index:idx_bucket_species;uniqueIndex:idx_bucket_key;not null"`
	Zone           string  `gorm:"type:varchar(20);index:idx_bucket_zone;uniqueIndex:idx_bucket_key;not null"`
	TideStage      string  `gorm:"type:varchar(20);uniqueIndex:idx_bucket_key;not null"` // low, rising, high, falling
	TimeOfDayBlock string  `gorm:"type:varchar(20);uniqueIndex:idx_bucket_key;not null"` // morning, midday, evening, night
	Delta          float64 `gorm:"default:0"` // bounded to [-0.3, 0.3]
	Confidence     float64 `gorm:"default:0.5"`
	SampleCount    int     `gorm:"default:0"`
	LastAdjustment *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CachedBiteScore is the cached, smoothed bite score per species and zone.
type CachedBiteScore struct {
	ID            uint      `gorm:"primaryKey"`
	Species       string    `gorm:"type:varchar(50);uniqueIndex:idx_bitescore_key;not null"`
	ZoneID        string    `gorm:"type:varchar(20);uniqueIndex:idx_bitescore_key;not null"`
	Score         float64   `gorm:"not null"`  // 0-100, smoothed
	RawScore      float64   `gorm:"default:0"` // last unsmoothed model output
	Rating        string    `gorm:"type:varchar(20);not null"` // Poor/Fair/Good/Great/Excellent
	Confidence    string    `gorm:"type:varchar(20);not null"` // low/medium/high
	SampleCount   int64     `gorm:"default:0"` // lifetime catches behind the smoothing weight
	ReasonSummary string    `gorm:"type:text"`
	Breakdown     string    `gorm:"type:text"` // JSON component map from the last recompute
	LastUpdated   time.Time `gorm:"not null"`
}

func (CachedBiteScore) TableName() string { return "bite_scores" }

// CachedBaitScore is the cached bait activity score per bait species and zone.
type CachedBaitScore struct {
	ID            uint      `gorm:"primaryKey"`
	BaitSpecies   string    `gorm:"type:varchar(50);uniqueIndex:idx_baitscore_key;not null"`
	ZoneID        string    `gorm:"type:varchar(20);uniqueIndex:idx_baitscore_key;not null"`
	Score         float64   `gorm:"not null"`
	RawScore      float64   `gorm:"default:0"`
	Rating        string    `gorm:"type:varchar(20);not null"`
	SampleCount   int64     `gorm:"default:0"`
	ReasonSummary string    `gorm:"type:text"`
	LastUpdated   time.Time `gorm:"not null"`
}

func (CachedBaitScore) TableName() string { return "bait_scores" }

// RigEffect tracks which rigs produce per species and zone.
type RigEffect struct {
	ID           uint    `gorm:"primaryKey"`
	Species      string  `gorm:"type:varchar(50);uniqueIndex:idx_rigeffect_key;not null"`
	ZoneID       string  `gorm:"type:varchar(20);uniqueIndex:idx_rigeffect_key;not null"`
	RigType      string  `gorm:"type:varchar(50);uniqueIndex:idx_rigeffect_key;not null"`
	SuccessCount int     `gorm:"default:0"`
	Weight       float64 `gorm:"default:0"` // 0-3, log-capped from success count
	LastUsed     *time.Time
}

// ZoneConditionEffect tracks condition-band effectiveness per species/zone.
type ZoneConditionEffect struct {
	ID           uint    `gorm:"primaryKey"`
	Species      string  `gorm:"type:varchar(50);uniqueIndex:idx_zonecond_key;not null"`
	ZoneID       string  `gorm:"type:varchar(20);uniqueIndex:idx_zonecond_key;not null"`
	TideBand     string  `gorm:"type:varchar(20);uniqueIndex:idx_zonecond_key;not null"` // incoming/outgoing/slack/high/low
	ClarityBand  string  `gorm:"type:varchar(20);uniqueIndex:idx_zonecond_key;not null"` // clean/stained/muddy
	WindBand     string  `gorm:"type:varchar(20);uniqueIndex:idx_zonecond_key;not null"` // favorable/neutral/unfavorable
	CurrentBand  string  `gorm:"type:varchar(20);uniqueIndex:idx_zonecond_key;not null"` // low/medium/high
	SuccessCount float64 `gorm:"default:0"` // fractional: trap catches count 0.15
	Weight       float64 `gorm:"default:0"` // 0-4, log-capped from success count
}

// RigConditionEffect tracks rig effectiveness under condition bands.
type RigConditionEffect struct {
	ID           uint    `gorm:"primaryKey"`
	Species      string  `gorm:"type:varchar(50);uniqueIndex:idx_rigcond_key;not null"`
	RigType      string  `gorm:"type:varchar(50);uniqueIndex:idx_rigcond_key;not null"`
	TideBand     string  `gorm:"type:varchar(20);uniqueIndex:idx_rigcond_key;not null"`
	ClarityBand  string  `gorm:"type:varchar(20);uniqueIndex:idx_rigcond_key;not null"`
	SuccessCount float64 `gorm:"default:0"` // fractional: trap catches count 0.15
	Weight       float64 `gorm:"default:0"` // 0-4, log-capped from success count
}

// SpeciesZoneTip is the generated recommendation per species and zone.
type SpeciesZoneTip struct {
	ID             uint      `gorm:"primaryKey"`
	Species        string    `gorm:"type:varchar(50);uniqueIndex:idx_tip_key;not null"`
	ZoneID         string    `gorm:"type:varchar(20);uniqueIndex:idx_tip_key;not null"`
	TipText        string    `gorm:"type:text;not null"`
	BasedOnCatches int       // recent catches that informed the tip
	LastUpdated    time.Time `gorm:"not null"`
}

// Zone is the static metadata row for each of the five dock zones.
type Zone struct {
	ID               string `gorm:"type:varchar(20);primaryKey"` // "1".."5"
	Name             string `gorm:"type:varchar(50);not null"`
	DepthBand        string `gorm:"type:varchar(20);not null"` // shallow/medium/deep
	HasPilings       bool   `gorm:"default:false"`
	HasCenterPilings bool   `gorm:"default:false"`
	HasRubble        bool   `gorm:"default:false"`
	HasLight         bool   `gorm:"default:false"`
	Description      string `gorm:"type:text"`
}

// Species is the species configuration row.
type Species struct {
	ID       string `gorm:"type:varchar(50);primaryKey"` // key like "speckled_trout"
	Name     string `gorm:"type:varchar(100);not null"`
	Tier     int    `gorm:"not null"`
	Category string `gorm:"type:varchar(20)"` // tier1_full, tier2_simplified, bait
}
