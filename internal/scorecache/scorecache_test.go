package scorecache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bitecast/bitecast-go/internal/datastore"
)

func newTestStore(t *testing.T) *datastore.SQLiteStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&datastore.EnvironmentSnapshot{},
		&datastore.WeatherData{},
		&datastore.Catch{},
		&datastore.BaitLog{},
		&datastore.PredatorLog{},
		&datastore.ZoneConditionEffect{},
		&datastore.CachedBiteScore{},
		&datastore.CachedBaitScore{},
	))
	store := &datastore.SQLiteStore{}
	store.DB = db
	return store
}

func seedSnapshot(t *testing.T, ds datastore.Interface) {
	t.Helper()
	waterTemp := 72.0
	current := 0.5
	wind := 8.0
	snap := datastore.EnvironmentSnapshot{Timestamp: time.Now().UTC()}
	snap.TideStage = "incoming"
	snap.TimeOfDay = "dawn"
	snap.WaterTemp = &waterTemp
	snap.CurrentSpeed = &current
	snap.WindSpeed = &wind
	snap.WindDirection = "SE"
	require.NoError(t, ds.SaveEnvironmentSnapshot(&snap))
}

func TestRecalculateWritesRow(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	seedSnapshot(t, ds)
	svc := New(ds)

	require.NoError(t, svc.Recalculate(context.Background(), "speckled_trout", "3", false))

	row, err := ds.GetBiteScore("speckled_trout", "3")
	require.NoError(t, err)
	assert.Greater(t, row.Score, 0.0)
	assert.LessOrEqual(t, row.Score, 100.0)
	assert.Equal(t, "low", row.Confidence)
	assert.NotEmpty(t, row.Rating)
	assert.NotEmpty(t, row.ReasonSummary)
	assert.False(t, row.LastUpdated.IsZero())

	// The additive components ride along for introspection.
	var breakdown map[string]float64
	require.NoError(t, json.Unmarshal([]byte(row.Breakdown), &breakdown))
	assert.Contains(t, breakdown, "seasonal_baseline")
	assert.Contains(t, breakdown, "structure_match")
}

func TestRecalculateSmoothsTowardRaw(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	seedSnapshot(t, ds)
	svc := New(ds)

	// Seed a prior row well below what current conditions produce.
	require.NoError(t, ds.UpsertBiteScore(&datastore.CachedBiteScore{
		Species: "speckled_trout", ZoneID: "3",
		Score: 10, Rating: "Poor", Confidence: "low",
		LastUpdated: time.Now().UTC().Add(-time.Hour),
	}))

	require.NoError(t, svc.Recalculate(context.Background(), "speckled_trout", "3", false))
	smoothed, err := ds.GetBiteScore("speckled_trout", "3")
	require.NoError(t, err)

	// With zero catches the weight is 0.4, so the score moves but does not
	// jump all the way to raw.
	assert.Greater(t, smoothed.Score, 10.0)
	assert.Less(t, smoothed.Score, 100.0)
	assert.InDelta(t, 10*0.6+smoothed.RawScore*0.4, smoothed.Score, 1e-6)
	assert.EqualValues(t, 0, smoothed.SampleCount)

	// force recomputes from raw, landing higher than the smoothed value.
	require.NoError(t, svc.Recalculate(context.Background(), "speckled_trout", "3", true))
	forced, err := ds.GetBiteScore("speckled_trout", "3")
	require.NoError(t, err)
	assert.Greater(t, forced.Score, smoothed.Score)
	assert.InDelta(t, forced.RawScore, forced.Score, 1e-6)
}

func TestRecalculatePredatorScopedToZone(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	seedSnapshot(t, ds)
	svc := New(ds)

	require.NoError(t, svc.Recalculate(context.Background(), "speckled_trout", "3", true))
	baseline, err := ds.GetBiteScore("speckled_trout", "3")
	require.NoError(t, err)

	// A dolphin in zone 1 must not touch zone 3.
	require.NoError(t, ds.SavePredatorLog(&datastore.PredatorLog{
		Predator: "dolphin", Zone: "1",
		Time: time.Now().UTC().Add(-30 * time.Minute), Behavior: "feeding",
	}))
	require.NoError(t, svc.Recalculate(context.Background(), "speckled_trout", "3", true))
	unaffected, err := ds.GetBiteScore("speckled_trout", "3")
	require.NoError(t, err)
	assert.InDelta(t, baseline.Score, unaffected.Score, 0.1)

	// The same sighting in zone 3 drags its score down.
	require.NoError(t, ds.SavePredatorLog(&datastore.PredatorLog{
		Predator: "dolphin", Zone: "3",
		Time: time.Now().UTC().Add(-30 * time.Minute), Behavior: "feeding",
	}))
	require.NoError(t, svc.Recalculate(context.Background(), "speckled_trout", "3", true))
	penalized, err := ds.GetBiteScore("speckled_trout", "3")
	require.NoError(t, err)
	assert.Less(t, penalized.Score, baseline.Score)
}

func TestRecalculateWithoutSnapshotUsesDefaults(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)

	require.NoError(t, svc.Recalculate(context.Background(), "redfish", "1", false))
	row, err := ds.GetBiteScore("redfish", "1")
	require.NoError(t, err)
	assert.Greater(t, row.Score, 0.0)
}

func TestRecalculateRejectsBadZone(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)
	assert.Error(t, svc.Recalculate(context.Background(), "redfish", "pier", false))
}

func TestRecalculateBait(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	seedSnapshot(t, ds)
	svc := New(ds)

	require.NoError(t, ds.SaveBaitLog(&datastore.BaitLog{
		Timestamp:        time.Now().UTC().Add(-30 * time.Minute),
		BaitSpecies:      "live_shrimp",
		Method:           "cast net",
		QuantityEstimate: "plenty",
		ZoneID:           "4",
	}))

	require.NoError(t, svc.RecalculateBait(context.Background(), "live_shrimp", "4", false))

	row, err := ds.GetBaitScore("live_shrimp", "4")
	require.NoError(t, err)
	assert.Greater(t, row.Score, 0.0)
	assert.Contains(t, row.ReasonSummary, "recent sightings")
}

func TestSmoothingWeight(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 0.40, smoothingWeight(0), 1e-9)
	assert.InDelta(t, 0.49, smoothingWeight(9), 1e-9)
	assert.InDelta(t, 0.30, smoothingWeight(10), 1e-9)
	assert.InDelta(t, 0.2025, smoothingWeight(49), 1e-9)
	assert.InDelta(t, 0.15, smoothingWeight(50), 1e-9)
	assert.InDelta(t, 0.10, smoothingWeight(100), 1e-9)
	assert.InDelta(t, 0.10, smoothingWeight(500), 1e-9)
}

func TestRatingLabel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Poor", ratingLabel(20))
	assert.Equal(t, "Fair", ratingLabel(40))
	assert.Equal(t, "Good", ratingLabel(60))
	assert.Equal(t, "Great", ratingLabel(80))
	assert.Equal(t, "Excellent", ratingLabel(81))
}

func TestBiteReasonFallback(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)

	// No snapshot, no catches: a neutral pair falls back to the seasonal
	// baseline sentence. Black drum at slack midday scores near zero on
	// condition match.
	require.NoError(t, svc.Recalculate(context.Background(), "mackerel", "2", false))
	row, err := ds.GetBiteScore("mackerel", "2")
	require.NoError(t, err)
	assert.NotEmpty(t, row.ReasonSummary)
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	t.Parallel()
	var km keyedMutex
	var counter int

	done := make(chan struct{})
	unlock := km.lock("a")
	go func() {
		inner := km.lock("a")
		counter++
		inner()
		close(done)
	}()

	// Different key proceeds immediately.
	other := km.lock("b")
	other()

	assert.Zero(t, counter, "same-key work must wait for the holder")
	unlock()
	<-done
	assert.Equal(t, 1, counter)
}
