package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/tide"
)

type fakeTides struct {
	state tide.State
	err   error
}

func (f fakeTides) StateAt(time.Time) (tide.State, error) { return f.state, f.err }

type fakeAstro struct {
	band  string
	phase float64
}

func (f fakeAstro) TimeOfDayAt(time.Time) string            { return f.band }
func (f fakeAstro) MoonPhaseAt(time.Time) (float64, string) { return f.phase, "Full" }

func newTestStore(t *testing.T) *datastore.SQLiteStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&datastore.EnvironmentSnapshot{}, &datastore.WeatherData{}))
	store := &datastore.SQLiteStore{}
	store.DB = db
	return store
}

func newCapturer(ds datastore.Interface, tides TideStater, astroSvc TimeOfDayer) *Capturer {
	return NewCapturer(ds, tides, astroSvc, conf.SchedulerSettings{SnapshotRetentionDays: 30})
}

func TestCaptureWritesSnapshot(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	waterTemp := 63.5
	require.NoError(t, ds.SaveWeatherData([]datastore.WeatherData{{
		Timestamp:        time.Now().UTC().Add(-10 * time.Minute),
		Temperature:      66,
		WindSpeed:        9,
		WindDirection:    "SE",
		Pressure:         1015,
		Humidity:         70,
		Conditions:       "Partly Cloudy",
		WaterTemperature: &waterTemp,
		IsForecast:       false,
	}}))

	c := newCapturer(ds,
		fakeTides{state: tide.State{Height: 1.2, HasHeight: true, Stage: tide.StageIncoming, ChangeRate: 0.3}},
		fakeAstro{band: "dusk", phase: 0.48})

	require.NoError(t, c.Capture(context.Background(), false))

	snap, err := ds.LatestEnvironmentSnapshot()
	require.NoError(t, err)
	assert.Equal(t, tide.StageIncoming, snap.TideStage)
	require.NotNil(t, snap.TideHeight)
	assert.InDelta(t, 1.2, *snap.TideHeight, 1e-9)
	require.NotNil(t, snap.WaterTemp)
	assert.InDelta(t, 63.5, *snap.WaterTemp, 1e-9)
	assert.Equal(t, "dusk", snap.TimeOfDay)
	assert.True(t, snap.DockLightsOn, "dusk turns the dock lights on")
	require.NotNil(t, snap.MoonPhase)
	assert.InDelta(t, 0.48, *snap.MoonPhase, 1e-9)
}

func TestCaptureSkipsRecentDuplicate(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	c := newCapturer(ds,
		fakeTides{state: tide.State{HasHeight: true, Stage: tide.StageSlack}},
		fakeAstro{band: "midday"})

	require.NoError(t, c.Capture(context.Background(), false))
	require.NoError(t, c.Capture(context.Background(), false))

	var count int64
	require.NoError(t, ds.DB.Model(&datastore.EnvironmentSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// force bypasses the spacing check
	require.NoError(t, c.Capture(context.Background(), true))
	require.NoError(t, ds.DB.Model(&datastore.EnvironmentSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestCaptureDayBandLeavesLightsOff(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)
	c := newCapturer(ds,
		fakeTides{state: tide.State{HasHeight: true, Stage: tide.StageOutgoing}},
		fakeAstro{band: "morning"})

	require.NoError(t, c.Capture(context.Background(), false))
	snap, err := ds.LatestEnvironmentSnapshot()
	require.NoError(t, err)
	assert.False(t, snap.DockLightsOn)
}

func TestSweepDeletesOldSnapshots(t *testing.T) {
	t.Parallel()
	ds := newTestStore(t)

	old := datastore.EnvironmentSnapshot{Timestamp: time.Now().UTC().AddDate(0, 0, -45)}
	require.NoError(t, ds.SaveEnvironmentSnapshot(&old))
	fresh := datastore.EnvironmentSnapshot{Timestamp: time.Now().UTC()}
	require.NoError(t, ds.SaveEnvironmentSnapshot(&fresh))

	c := newCapturer(ds, fakeTides{}, fakeAstro{band: "midday"})
	require.NoError(t, c.Sweep(context.Background()))

	var count int64
	require.NoError(t, ds.DB.Model(&datastore.EnvironmentSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
