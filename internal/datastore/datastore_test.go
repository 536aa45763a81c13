package datastore

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestStore opens an in-memory SQLite database with the full schema.
func newTestStore(t *testing.T) *DataStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, performAutoMigration(db, false, "SQLite", ":memory:"))
	return &DataStore{DB: db}
}

func TestSeedStaticRows(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	zones, err := ds.GetZones()
	require.NoError(t, err)
	assert.Len(t, zones, 5)
	assert.Equal(t, "1", zones[0].ID)
	assert.True(t, zones[3].HasLight, "zone 4 carries the green light")

	species, err := ds.GetSpecies()
	require.NoError(t, err)
	assert.Len(t, species, 14)
}

func TestReplaceTidePredictions(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	first := []TideData{
		{Timestamp: base, Height: 0.8, IsPrediction: true},
		{Timestamp: base.Add(6 * time.Hour), Height: 1.6, TideType: "H", IsPrediction: true},
	}
	require.NoError(t, ds.ReplaceTidePredictions(base, base.Add(24*time.Hour), first))

	// A second replace for the same range must not leave stale rows behind.
	second := []TideData{
		{Timestamp: base.Add(time.Hour), Height: 0.9, IsPrediction: true},
	}
	require.NoError(t, ds.ReplaceTidePredictions(base, base.Add(24*time.Hour), second))

	rows, err := ds.GetTideRange(base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 0.9, rows[0].Height, 1e-9)
}

func TestNextTideExtremes(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []TideData{
		{Timestamp: base.Add(1 * time.Hour), Height: 1.1, IsPrediction: true},
		{Timestamp: base.Add(2 * time.Hour), Height: 1.7, TideType: "H", IsPrediction: true},
		{Timestamp: base.Add(8 * time.Hour), Height: 0.2, TideType: "L", IsPrediction: true},
	}
	require.NoError(t, ds.ReplaceTidePredictions(base, base.Add(24*time.Hour), rows))

	extremes, err := ds.NextTideExtremes(base, 5)
	require.NoError(t, err)
	require.Len(t, extremes, 2)
	assert.Equal(t, "H", extremes[0].TideType)
	assert.Equal(t, "L", extremes[1].TideType)
}

func TestSaveWeatherDataUpserts(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, ds.SaveWeatherData([]WeatherData{
		{Timestamp: ts, Temperature: 68, WindSpeed: 8, FetchedAt: ts},
	}))
	require.NoError(t, ds.SaveWeatherData([]WeatherData{
		{Timestamp: ts, Temperature: 71, WindSpeed: 10, FetchedAt: ts.Add(time.Hour)},
	}))

	var count int64
	require.NoError(t, ds.DB.Model(&WeatherData{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	row, err := ds.WeatherForTime(ts)
	require.NoError(t, err)
	assert.InDelta(t, 71, row.Temperature, 1e-9)
}

func TestWeatherForTimePicksNearest(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	early := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(2 * time.Hour)
	require.NoError(t, ds.SaveWeatherData([]WeatherData{
		{Timestamp: early, Temperature: 60},
		{Timestamp: late, Temperature: 70},
	}))

	row, err := ds.WeatherForTime(early.Add(30 * time.Minute))
	require.NoError(t, err)
	assert.InDelta(t, 60, row.Temperature, 1e-9)

	row, err = ds.WeatherForTime(early.Add(90 * time.Minute))
	require.NoError(t, err)
	assert.InDelta(t, 70, row.Temperature, 1e-9)
}

func TestUpsertAstronomicalData(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ds.UpsertAstronomicalData(&AstronomicalData{
		Date: day, Sunrise: day.Add(12 * time.Hour), Sunset: day.Add(23 * time.Hour),
		MoonPhase: 0.25, MoonPhaseName: "First Quarter",
	}))
	require.NoError(t, ds.UpsertAstronomicalData(&AstronomicalData{
		Date: day, Sunrise: day.Add(12 * time.Hour), Sunset: day.Add(23 * time.Hour),
		MoonPhase: 0.27, MoonPhaseName: "Waxing Gibbous",
	}))

	row, err := ds.GetAstronomicalData(day)
	require.NoError(t, err)
	assert.InDelta(t, 0.27, row.MoonPhase, 1e-9)

	var count int64
	require.NoError(t, ds.DB.Model(&AstronomicalData{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestForecastWindowsReplaceAll(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	start := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	windows := []ForecastWindow{
		{
			StartTime: start, EndTime: start.Add(2 * time.Hour), OverallScore: 62,
			SpeciesForecasts: []SpeciesForecast{
				{Species: "speckled_trout", IsRunning: true, RunningFactor: 0.8, BiteScore: 64, BiteLabel: "Decent"},
				{Species: "redfish", IsRunning: true, RunningFactor: 0.9, BiteScore: 72, BiteLabel: "Hot"},
			},
		},
	}
	require.NoError(t, ds.ReplaceForecastWindows(windows))
	require.NoError(t, ds.ReplaceForecastWindows(windows))

	got, err := ds.GetForecastWindows(start.Add(-time.Hour), start.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].SpeciesForecasts, 2)

	var orphans int64
	require.NoError(t, ds.DB.Model(&SpeciesForecast{}).Count(&orphans).Error)
	assert.Equal(t, int64(2), orphans)
}

func TestAlertLifecycle(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	alert := Alert{
		AlertID:     uuid.New().String(),
		Species:     "redfish",
		WindowStart: now.Add(2 * time.Hour),
		WindowEnd:   now.Add(4 * time.Hour),
		BiteScore:   78,
		Message:     "Hot bite window for Redfish",
		IsActive:    true,
	}
	require.NoError(t, ds.SaveAlert(&alert))

	found, err := ds.FindActiveAlert("redfish", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, alert.AlertID, found.AlertID)

	active, err := ds.ActiveAlerts(now)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, ds.DismissAlert(alert.AlertID))
	active, err = ds.ActiveAlerts(now)
	require.NoError(t, err)
	assert.Empty(t, active)

	// Dismissing again reports not found.
	assert.ErrorIs(t, ds.DismissAlert(alert.AlertID), gorm.ErrRecordNotFound)
}

func TestDeactivateExpiredAlerts(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := Alert{
		AlertID: uuid.New().String(), Species: "sheepshead",
		WindowStart: now.Add(-4 * time.Hour), WindowEnd: now.Add(-2 * time.Hour),
		IsActive: true,
	}
	current := Alert{
		AlertID: uuid.New().String(), Species: "redfish",
		WindowStart: now, WindowEnd: now.Add(2 * time.Hour),
		IsActive: true,
	}
	require.NoError(t, ds.SaveAlert(&expired))
	require.NoError(t, ds.SaveAlert(&current))

	n, err := ds.DeactivateExpiredAlerts(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	active, err := ds.ActiveAlerts(now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "redfish", active[0].Species)
}

func TestCatchCRUD(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	now := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	waterTemp := 64.0
	c := Catch{
		Timestamp: now, Species: "speckled_trout", ZoneID: "4",
		RigType: "popping_cork", BaitUsed: "live_shrimp", Quantity: 1,
		EnvSnapshot: EnvSnapshot{
			WaterTemp: &waterTemp, TideStage: "incoming",
			TimeOfDay: "dusk", DockLightsOn: true,
		},
	}
	require.NoError(t, ds.SaveCatch(&c))
	require.NotZero(t, c.ID)

	got, err := ds.GetCatch(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "speckled_trout", got.Species)
	require.NotNil(t, got.WaterTemp)
	assert.InDelta(t, 64.0, *got.WaterTemp, 1e-9)
	assert.True(t, got.DockLightsOn)

	count, err := ds.CountCatches("speckled_trout", "4")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = ds.CountCatches("redfish", "")
	require.NoError(t, err)
	assert.Zero(t, count)

	recent, err := ds.RecentCatches("speckled_trout", "", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	require.NoError(t, ds.DeleteCatch(c.ID))
	_, err = ds.GetCatch(c.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBaitAndPredatorLogs(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	now := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	b := BaitLog{
		Timestamp: now, BaitSpecies: "live_shrimp", Method: "cast net",
		QuantityEstimate: "plenty", ZoneID: "2",
	}
	require.NoError(t, ds.SaveBaitLog(&b))

	logs, err := ds.GetBaitLogs("live_shrimp", "2", 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	p := PredatorLog{
		Predator: "dolphin", Zone: "3", Time: now, Behavior: "feeding",
	}
	require.NoError(t, ds.SavePredatorLog(&p))

	latest, err := ds.LatestPredatorSince("3", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "dolphin", latest.Predator)

	// Sightings are scoped to their zone.
	_, err = ds.LatestPredatorSince("1", now.Add(-time.Hour))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = ds.LatestPredatorSince("3", now.Add(time.Hour))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEnvironmentSnapshotRetention(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := EnvironmentSnapshot{Timestamp: now.AddDate(0, 0, -31)}
	fresh := EnvironmentSnapshot{Timestamp: now.Add(-2 * time.Minute)}
	require.NoError(t, ds.SaveEnvironmentSnapshot(&old))
	require.NoError(t, ds.SaveEnvironmentSnapshot(&fresh))

	recent, err := ds.HasSnapshotSince(now.Add(-5 * time.Minute))
	require.NoError(t, err)
	assert.True(t, recent)

	deleted, err := ds.DeleteSnapshotsBefore(now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	latest, err := ds.LatestEnvironmentSnapshot()
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, latest.ID)
}

func TestLearningBucketGetOrCreate(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	b, err := ds.GetOrCreateLearningBucket("redfish", "3", "rising", "evening")
	require.NoError(t, err)
	assert.Zero(t, b.Delta)
	assert.Zero(t, b.SampleCount)

	b.Delta = 0.04
	b.SampleCount = 2
	require.NoError(t, ds.SaveLearningBucket(&b))

	again, err := ds.GetOrCreateLearningBucket("redfish", "3", "rising", "evening")
	require.NoError(t, err)
	assert.Equal(t, b.ID, again.ID)
	assert.InDelta(t, 0.04, again.Delta, 1e-9)

	all, err := ds.AllLearningBuckets()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRigAndConditionEffects(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	e, err := ds.GetOrCreateRigEffect("speckled_trout", "4", "popping_cork")
	require.NoError(t, err)
	e.SuccessCount = 3
	e.Weight = 1.39
	require.NoError(t, ds.SaveRigEffect(&e))

	effects, err := ds.GetRigEffects("speckled_trout", "4")
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.Equal(t, 3, effects[0].SuccessCount)

	zk := ZoneConditionKey{
		Species: "redfish", ZoneID: "3", TideBand: "incoming",
		ClarityBand: "stained", WindBand: "favorable", CurrentBand: "medium",
	}
	ze, err := ds.GetOrCreateZoneConditionEffect(zk)
	require.NoError(t, err)
	ze.SuccessCount = 1
	require.NoError(t, ds.SaveZoneConditionEffect(&ze))

	zs, err := ds.GetZoneConditionEffects("redfish", "3")
	require.NoError(t, err)
	assert.Len(t, zs, 1)

	rk := RigConditionKey{
		Species: "redfish", RigType: "carolina_rig",
		TideBand: "incoming", ClarityBand: "stained",
	}
	re, err := ds.GetOrCreateRigConditionEffect(rk)
	require.NoError(t, err)
	re.SuccessCount = 2
	require.NoError(t, ds.SaveRigConditionEffect(&re))

	rs, err := ds.GetRigConditionEffects("redfish")
	require.NoError(t, err)
	assert.Len(t, rs, 1)
}

func TestBiteScoreUpsert(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, ds.UpsertBiteScore(&CachedBiteScore{
		Species: "speckled_trout", ZoneID: "4", Score: 55,
		Rating: "Good", Confidence: "low", LastUpdated: now,
	}))
	require.NoError(t, ds.UpsertBiteScore(&CachedBiteScore{
		Species: "speckled_trout", ZoneID: "4", Score: 61,
		Rating: "Great", Confidence: "low", LastUpdated: now.Add(time.Hour),
	}))

	score, err := ds.GetBiteScore("speckled_trout", "4")
	require.NoError(t, err)
	assert.InDelta(t, 61, score.Score, 1e-9)
	assert.Equal(t, "Great", score.Rating)

	all, err := ds.AllBiteScores()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBaitScoreAndTips(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, ds.UpsertBaitScore(&CachedBaitScore{
		BaitSpecies: "live_shrimp", ZoneID: "2", Score: 70,
		Rating: "Great", LastUpdated: now,
	}))
	score, err := ds.GetBaitScore("live_shrimp", "2")
	require.NoError(t, err)
	assert.InDelta(t, 70, score.Score, 1e-9)

	require.NoError(t, ds.UpsertTip(&SpeciesZoneTip{
		Species: "redfish", ZoneID: "3",
		TipText: "Carolina rig near the pilings on the incoming tide", LastUpdated: now,
	}))
	tip, err := ds.GetTip("redfish", "3")
	require.NoError(t, err)
	assert.Contains(t, tip.TipText, "Carolina rig")

	require.NoError(t, ds.DeleteTip("redfish", "3"))
	_, err = ds.GetTip("redfish", "3")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Deleting an absent tip is fine.
	require.NoError(t, ds.DeleteTip("redfish", "3"))
}
