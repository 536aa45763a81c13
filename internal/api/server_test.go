package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&datastore.ForecastWindow{}, &datastore.SpeciesForecast{}))
	ds := &datastore.SQLiteStore{}
	ds.DB = db

	settings := &conf.Settings{}
	settings.Main.Timezone = "UTC"
	settings.Version = "test"
	settings.BuildDate = "today"
	settings.WebServer.Port = "0"

	s, err := New(settings, WithDataStore(ds))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func TestNewRequiresDataStore(t *testing.T) {
	t.Parallel()
	_, err := New(&conf.Settings{})
	assert.Error(t, err)
}

func TestRootHealthCheck(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "healthy", payload["status"])
	assert.Equal(t, "test", payload["version"])
	assert.Contains(t, payload, "uptime_seconds")
}

func TestServerMountsAPIController(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	require.NotNil(t, s.Controller())

	// A v2 route answers through the same Echo instance.
	req := httptest.NewRequest(http.MethodGet, "/api/v2/health", http.NoBody)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDefaultAddress(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	s := &Server{settings: settings}
	assert.Equal(t, ":8080", s.address())

	settings.WebServer.Port = "9090"
	assert.Equal(t, ":9090", s.address())
}
