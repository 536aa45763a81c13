package tips

import (
	"context"
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
		&datastore.RigEffect{},
		&datastore.ZoneConditionEffect{},
		&datastore.CachedBiteScore{},
		&datastore.SpeciesZoneTip{},
	))
	store := &datastore.SQLiteStore{}
	store.DB = db
	return store
}

func seedScore(t *testing.T, ds datastore.Interface, species, zone string, score float64) {
	t.Helper()
	require.NoError(t, ds.UpsertBiteScore(&datastore.CachedBiteScore{
		Species: species, ZoneID: zone, Score: score,
		Rating: "Good", Confidence: "low", LastUpdated: time.Now().UTC(),
	}))
}

func TestTipSkippedForLowScore(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	g := New(ds)

	seedScore(t, ds, "redfish", "2", 45)
	g.UpdateSpeciesZoneTip(context.Background(), "redfish", "2")

	_, err := ds.GetTip("redfish", "2")
	assert.Error(t, err, "no tip expected below the score bar")
}

func TestTipDefaultsWhenNothingLearned(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	g := New(ds)

	seedScore(t, ds, "speckled_trout", "3", 60)
	g.UpdateSpeciesZoneTip(context.Background(), "speckled_trout", "3")

	tip, err := ds.GetTip("speckled_trout", "3")
	require.NoError(t, err)
	assert.Equal(t, "Try Zone 3. Fish a popping cork with live shrimp on moving tide.", tip.TipText)
}

func TestTipUsesLearnedRigBaitAndTide(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	g := New(ds)

	seedScore(t, ds, "speckled_trout", "3", 75)

	// A proven jig beats the popping cork default.
	rig, err := ds.GetOrCreateRigEffect("speckled_trout", "3", "jig")
	require.NoError(t, err)
	rig.SuccessCount = 5
	rig.Weight = 1.79
	require.NoError(t, ds.SaveRigEffect(&rig))

	// Incoming tide clearly outweighs the rest.
	in, err := ds.GetOrCreateZoneConditionEffect(datastore.ZoneConditionKey{
		Species: "speckled_trout", ZoneID: "3",
		TideBand: "incoming", ClarityBand: "clean", WindBand: "favorable", CurrentBand: "medium",
	})
	require.NoError(t, err)
	in.Weight = 2.0
	require.NoError(t, ds.SaveZoneConditionEffect(&in))

	out, err := ds.GetOrCreateZoneConditionEffect(datastore.ZoneConditionKey{
		Species: "speckled_trout", ZoneID: "3",
		TideBand: "outgoing", ClarityBand: "clean", WindBand: "favorable", CurrentBand: "medium",
	})
	require.NoError(t, err)
	out.Weight = 0.5
	require.NoError(t, ds.SaveZoneConditionEffect(&out))

	// Most common recent bait.
	for range 2 {
		require.NoError(t, ds.SaveCatch(&datastore.Catch{
			Timestamp: time.Now().UTC().Add(-time.Hour),
			Species:   "speckled_trout", ZoneID: "3",
			BaitUsed: "finger mullet", RigType: "jig",
		}))
	}

	g.UpdateSpeciesZoneTip(context.Background(), "speckled_trout", "3")

	tip, err := ds.GetTip("speckled_trout", "3")
	require.NoError(t, err)
	assert.Equal(t, "Zone 3 is your best bet. Fish a jig with finger mullet on incoming tide.", tip.TipText)
}

func TestTipRigTieBreaksOnRecency(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	g := New(ds)

	seedScore(t, ds, "speckled_trout", "3", 75)

	// Two rigs with identical weights; the carolina rig was fished last.
	older := time.Now().UTC().Add(-72 * time.Hour)
	newer := time.Now().UTC().Add(-time.Hour)

	jig, err := ds.GetOrCreateRigEffect("speckled_trout", "3", "jig")
	require.NoError(t, err)
	jig.SuccessCount = 4
	jig.Weight = 1.61
	jig.LastUsed = &older
	require.NoError(t, ds.SaveRigEffect(&jig))

	carolina, err := ds.GetOrCreateRigEffect("speckled_trout", "3", "carolina_rig")
	require.NoError(t, err)
	carolina.SuccessCount = 4
	carolina.Weight = 1.61
	carolina.LastUsed = &newer
	require.NoError(t, ds.SaveRigEffect(&carolina))

	g.UpdateSpeciesZoneTip(context.Background(), "speckled_trout", "3")

	tip, err := ds.GetTip("speckled_trout", "3")
	require.NoError(t, err)
	assert.Contains(t, tip.TipText, "carolina rig")
}

func TestTipZoneShapes(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	g := New(ds)

	seedScore(t, ds, "redfish", "1", 80)
	seedScore(t, ds, "sheepshead", "5", 80)

	g.UpdateSpeciesZoneTip(context.Background(), "redfish", "1")
	g.UpdateSpeciesZoneTip(context.Background(), "sheepshead", "5")

	z1, err := ds.GetTip("redfish", "1")
	require.NoError(t, err)
	assert.Equal(t,
		"Zone 1 is your best bet. Fish a jig with live shrimp around the rubble and north pilings on moving tide.",
		z1.TipText)

	z5, err := ds.GetTip("sheepshead", "5")
	require.NoError(t, err)
	assert.Equal(t,
		"Zone 5 is your best bet. Work a bottom rig with fiddler crab along the deep north piling line with center pilings on moving tide.",
		z5.TipText)
}

func TestTipDeletedWhenScoreDrops(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	g := New(ds)

	seedScore(t, ds, "flounder", "4", 65)
	g.UpdateSpeciesZoneTip(context.Background(), "flounder", "4")
	_, err := ds.GetTip("flounder", "4")
	require.NoError(t, err)

	seedScore(t, ds, "flounder", "4", 30)
	g.UpdateSpeciesZoneTip(context.Background(), "flounder", "4")
	_, err = ds.GetTip("flounder", "4")
	assert.Error(t, err)
}

func TestRegenerateAllCountsTips(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	g := New(ds)

	seedScore(t, ds, "speckled_trout", "3", 75)
	seedScore(t, ds, "redfish", "2", 60)
	seedScore(t, ds, "black_drum", "5", 20)

	assert.Equal(t, 2, g.RegenerateAll(context.Background()))
}
