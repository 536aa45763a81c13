package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bitecast/bitecast-go/internal/astro"
	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/learning"
	"github.com/bitecast/bitecast-go/internal/scorecache"
	"github.com/bitecast/bitecast-go/internal/snapshot"
	"github.com/bitecast/bitecast-go/internal/tide"
	"github.com/bitecast/bitecast-go/internal/tips"
)

func newTestStore(t *testing.T) *datastore.SQLiteStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&datastore.TideData{},
		&datastore.WeatherData{},
		&datastore.AstronomicalData{},
		&datastore.MarineCondition{},
		&datastore.ForecastWindow{},
		&datastore.SpeciesForecast{},
		&datastore.Alert{},
		&datastore.Catch{},
		&datastore.BaitLog{},
		&datastore.PredatorLog{},
		&datastore.EnvironmentSnapshot{},
		&datastore.LearningBucket{},
		&datastore.CachedBiteScore{},
		&datastore.CachedBaitScore{},
		&datastore.RigEffect{},
		&datastore.ZoneConditionEffect{},
		&datastore.RigConditionEffect{},
		&datastore.SpeciesZoneTip{},
	))
	store := &datastore.SQLiteStore{}
	store.DB = db
	return store
}

// newTestController wires the controller against an in-memory store with
// DB-backed services only, so no handler touches the network.
func newTestController(t *testing.T) (*echo.Echo, *Controller, *datastore.SQLiteStore) {
	t.Helper()
	ds := newTestStore(t)

	settings := &conf.Settings{}
	settings.Main.Timezone = "UTC"
	settings.Location.Name = "Dauphin Island, AL"
	settings.Version = "test"

	tides := tide.NewService(ds, tide.NewClient("test"), conf.TideSettings{
		HighThresholdFt: 1.2,
		LowThresholdFt:  0.3,
	})
	astroSvc := astro.NewService(ds, 30.25, -88.08)
	capturer := snapshot.NewCapturer(ds, tides, astroSvc, conf.SchedulerSettings{})

	e := echo.New()
	c := New(e, ds, settings,
		WithTides(tides),
		WithAstro(astroSvc),
		WithCapturer(capturer),
		WithScores(scorecache.New(ds)),
		WithLearner(learning.New(ds)),
		WithTips(tips.New(ds)),
	)
	t.Cleanup(c.Shutdown)
	return e, c, ds
}

func doRequest(t *testing.T, e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 && json.Valid(rec.Body.Bytes()) {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			payload = nil
		}
	}
	return rec, payload
}

func doRequestList(t *testing.T, e *echo.Echo, target string) (*httptest.ResponseRecorder, []any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var payload []any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

// seedWindow stores one forecast window starting now with per-species
// scores for the given species keys.
func seedWindow(t *testing.T, ds datastore.Interface, start time.Time, scores map[string]float64) {
	t.Helper()
	forecasts := make([]datastore.SpeciesForecast, 0, len(scores))
	for species, score := range scores {
		forecasts = append(forecasts, datastore.SpeciesForecast{
			Species:       species,
			IsRunning:     true,
			RunningFactor: 1.0,
			BiteScore:     score,
			BiteLabel:     "Decent",
		})
	}
	window := datastore.ForecastWindow{
		StartTime:         start,
		EndTime:           start.Add(2 * time.Hour),
		OverallScore:      55,
		TideState:         "incoming",
		TideHeightAvg:     0.9,
		TimeOfDay:         "morning",
		PressureTrend:     "steady",
		WindSpeed:         8,
		Temperature:       74,
		ConditionsSummary: "Steady conditions.",
		ComputedAt:        time.Now().UTC(),
		SpeciesForecasts:  forecasts,
	}
	require.NoError(t, ds.ReplaceForecastWindows([]datastore.ForecastWindow{window}))
}

func TestHealthNoData(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestController(t)

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no_data", payload["status"])
	assert.Nil(t, payload["last_forecast_update"])
	assert.Equal(t, "Dauphin Island, AL", payload["location"])
}

func TestHealthHealthy(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)
	seedWindow(t, ds, time.Now().UTC().Add(-time.Hour), map[string]float64{"speckled_trout": 60})

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", payload["status"])
	assert.NotEmpty(t, payload["last_forecast_update"])
}

func TestErrorResponseCorrelationID(t *testing.T) {
	t.Parallel()
	resp := NewErrorResponse(nil, "boom", http.StatusInternalServerError)
	assert.Len(t, resp.CorrelationID, 8)
	assert.Equal(t, "boom", resp.Error)
}

func TestStatusForErrorCategories(t *testing.T) {
	t.Parallel()
	assert.Equal(t, http.StatusBadRequest, statusForError(validationError("bad input")))
	assert.Equal(t, http.StatusNotFound, statusForError(notFoundError("missing")))
	assert.Equal(t, http.StatusNotFound, statusForError(gorm.ErrRecordNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusForError(assert.AnError))
}
