package learning

import (
	"context"
	"math"
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
		&datastore.Catch{},
		&datastore.LearningBucket{},
		&datastore.RigEffect{},
		&datastore.ZoneConditionEffect{},
		&datastore.RigConditionEffect{},
	))
	store := &datastore.SQLiteStore{}
	store.DB = db
	return store
}

func testCatch() *datastore.Catch {
	wind := 6.0
	current := 0.5
	c := &datastore.Catch{
		Timestamp: time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC),
		Species:   "speckled_trout",
		ZoneID:    "3",
		Quantity:  2,
		RigType:   "popping_cork",
	}
	c.TideStage = "incoming"
	c.WindDirection = "SE"
	c.WindSpeed = &wind
	c.CurrentSpeed = &current
	return c
}

func TestTimeBlock(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "morning", TimeBlock(time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)))
	assert.Equal(t, "morning", TimeBlock(time.Date(2026, 1, 1, 10, 59, 0, 0, time.UTC)))
	assert.Equal(t, "midday", TimeBlock(time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC)))
	assert.Equal(t, "evening", TimeBlock(time.Date(2026, 1, 1, 19, 59, 0, 0, time.UTC)))
	assert.Equal(t, "night", TimeBlock(time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)))
	assert.Equal(t, "night", TimeBlock(time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)))
}

func TestOnCatchUpdatesAllTables(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)

	svc.OnCatch(context.Background(), testCatch(), "DECENT")

	rigs, err := ds.GetRigEffects("speckled_trout", "3")
	require.NoError(t, err)
	require.Len(t, rigs, 1)
	assert.Equal(t, "popping_cork", rigs[0].RigType)
	assert.Equal(t, 1, rigs[0].SuccessCount)
	assert.InDelta(t, math.Log(2), rigs[0].Weight, 1e-9)
	assert.NotNil(t, rigs[0].LastUsed)

	zces, err := ds.GetZoneConditionEffects("speckled_trout", "3")
	require.NoError(t, err)
	require.Len(t, zces, 1)
	assert.Equal(t, "incoming", zces[0].TideBand)
	assert.Equal(t, "clean", zces[0].ClarityBand)
	assert.Equal(t, "favorable", zces[0].WindBand)
	assert.Equal(t, "medium", zces[0].CurrentBand)
	assert.InDelta(t, 1.0, zces[0].SuccessCount, 1e-9)

	rces, err := ds.GetRigConditionEffects("speckled_trout")
	require.NoError(t, err)
	require.Len(t, rces, 1)
	assert.Equal(t, "popping_cork", rces[0].RigType)

	buckets, err := ds.GetLearningBuckets("speckled_trout", "3")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "incoming", buckets[0].TideStage)
	assert.Equal(t, "morning", buckets[0].TimeOfDayBlock)
	assert.Equal(t, 1, buckets[0].SampleCount)
	// Predicted DECENT and caught fish: no delta movement.
	assert.Zero(t, buckets[0].Delta)
}

func TestOnCatchRepeatGrowsWeightLogarithmically(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)

	for range 4 {
		svc.OnCatch(context.Background(), testCatch(), "DECENT")
	}

	rigs, err := ds.GetRigEffects("speckled_trout", "3")
	require.NoError(t, err)
	require.Len(t, rigs, 1)
	assert.Equal(t, 4, rigs[0].SuccessCount)
	assert.InDelta(t, math.Log(5), rigs[0].Weight, 1e-9)
	assert.Less(t, rigs[0].Weight, 3.0)
}

func TestCrabTrapMultiplier(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)

	c := testCatch()
	c.Species = "blue_crab"
	c.RigType = "crab_trap"
	svc.OnCatch(context.Background(), c, "DECENT")

	// Condition effects accrue at the soak multiplier.
	zces, err := ds.GetZoneConditionEffects("blue_crab", "3")
	require.NoError(t, err)
	require.Len(t, zces, 1)
	assert.InDelta(t, 0.15, zces[0].SuccessCount, 1e-9)
	assert.InDelta(t, math.Log(1.15), zces[0].Weight, 1e-9)

	// The rig table still counts the full catch.
	rigs, err := ds.GetRigEffects("blue_crab", "3")
	require.NoError(t, err)
	require.Len(t, rigs, 1)
	assert.Equal(t, 1, rigs[0].SuccessCount)
}

func TestOnCatchSkipsUnknownTide(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)

	c := testCatch()
	c.TideStage = ""
	svc.OnCatch(context.Background(), c, "DECENT")

	zces, err := ds.GetZoneConditionEffects("speckled_trout", "3")
	require.NoError(t, err)
	assert.Empty(t, zces)

	// The bucket still records the session, filed under low.
	buckets, err := ds.GetLearningBuckets("speckled_trout", "3")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "low", buckets[0].TideStage)
}

func TestAdjustBucketDirections(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)

	// Predicted HOT, caught nothing: delta drifts down.
	require.NoError(t, svc.AdjustBucket("redfish", "2", "rising", "morning", "HOT", 0))
	buckets, err := ds.GetLearningBuckets("redfish", "2")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.InDelta(t, -0.02, buckets[0].Delta, 1e-9)

	// Predicted SLOW, caught fish: delta drifts up past zero.
	require.NoError(t, svc.AdjustBucket("redfish", "2", "rising", "morning", "SLOW", 2))
	require.NoError(t, svc.AdjustBucket("redfish", "2", "rising", "morning", "SLOW", 1))
	buckets, err = ds.GetLearningBuckets("redfish", "2")
	require.NoError(t, err)
	assert.InDelta(t, 0.02, buckets[0].Delta, 1e-9)
	assert.Equal(t, 3, buckets[0].SampleCount)
}

func TestAdjustBucketDeltaBounds(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)

	for range 20 {
		require.NoError(t, svc.AdjustBucket("redfish", "2", "low", "evening", "SLOW", 1))
	}
	buckets, err := ds.GetLearningBuckets("redfish", "2")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.InDelta(t, 0.3, buckets[0].Delta, 1e-9)
	assert.InDelta(t, 0.9, buckets[0].Confidence, 1e-9)
}

func TestDecayAll(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)

	require.NoError(t, svc.AdjustBucket("redfish", "2", "rising", "morning", "SLOW", 1))
	require.NoError(t, svc.DecayAll(context.Background()))

	buckets, err := ds.GetLearningBuckets("redfish", "2")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.InDelta(t, 0.0196, buckets[0].Delta, 1e-9)

	// Deltas under the noise floor snap back to zero.
	bucket := buckets[0]
	bucket.Delta = 0.0099
	require.NoError(t, ds.SaveLearningBucket(&bucket))
	require.NoError(t, svc.DecayAll(context.Background()))
	buckets, err = ds.GetLearningBuckets("redfish", "2")
	require.NoError(t, err)
	assert.Zero(t, buckets[0].Delta)
}

func TestDeltaForPair(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)

	missing, err := svc.DeltaForPair("redfish", "2", "rising", "morning")
	require.NoError(t, err)
	assert.Zero(t, missing.Delta)
	assert.InDelta(t, 0.5, missing.Confidence, 1e-9)
	assert.Equal(t, "No historical data for this condition combination yet.", missing.Explanation)

	require.NoError(t, svc.AdjustBucket("redfish", "2", "rising", "morning", "SLOW", 1))
	got, err := svc.DeltaForPair("redfish", "2", "rising", "morning")
	require.NoError(t, err)
	assert.InDelta(t, 0.02, got.Delta, 1e-9)
	assert.Equal(t, 1, got.SampleCount)
	assert.Contains(t, got.Explanation, "improved")
}

func TestZoneDataSufficiency(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)

	empty, err := svc.ZoneDataSufficiency("3")
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", empty.Status)

	for i := range 6 {
		c := testCatch()
		c.Timestamp = c.Timestamp.Add(time.Duration(i) * time.Hour)
		require.NoError(t, ds.SaveCatch(c))
	}
	partial, err := svc.ZoneDataSufficiency("3")
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", partial.Status)
	assert.Equal(t, 6, partial.CatchCount)
}

func TestUnfishedZoneDelta(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	svc := New(ds)

	// Zone 5 averages zones 2, 3 and 4.
	require.NoError(t, svc.AdjustBucket("redfish", "2", "rising", "morning", "SLOW", 1))
	require.NoError(t, svc.AdjustBucket("redfish", "3", "rising", "morning", "SLOW", 1))

	avg, err := svc.UnfishedZoneDelta("redfish", "5", "rising", "morning")
	require.NoError(t, err)
	assert.InDelta(t, 0.02, avg, 1e-9)

	// Nothing learned nearby: neutral.
	avg, err = svc.UnfishedZoneDelta("flounder", "1", "rising", "morning")
	require.NoError(t, err)
	assert.Zero(t, avg)
}
