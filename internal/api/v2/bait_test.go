package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitecast/bitecast-go/internal/rules"
)

func TestBaitForecastCoversCatchableBaits(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)
	seedEnvSnapshot(t, ds)

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/bait-forecast", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	forecasts := payload["bait_forecasts"].([]any)
	require.Len(t, forecasts, len(rules.CatchableBaits))

	// Sorted best first.
	var prev float64 = 101
	for _, raw := range forecasts {
		entry := raw.(map[string]any)
		score := entry["score"].(float64)
		assert.LessOrEqual(t, score, prev)
		prev = score
		assert.NotEmpty(t, entry["bait_key"])
		assert.NotEmpty(t, entry["display_name"])
		assert.NotEmpty(t, entry["tier"])
		assert.NotEmpty(t, entry["best_zone"])
	}

	conditions := payload["conditions"].(map[string]any)
	assert.Contains(t, conditions, "tide_stage")
	assert.Contains(t, conditions, "clarity")
	assert.NotEmpty(t, payload["updated_at"])
}

func TestBaitForecastCached(t *testing.T) {
	t.Parallel()
	e, c, _ := newTestController(t)

	rec, _ := doRequest(t, e, http.MethodGet, "/api/v2/bait-forecast", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Second hit comes from the response cache.
	_, found := c.responseCache.Get("/api/v2/bait-forecast")
	assert.True(t, found)
}

func TestBaitDetailUnknown(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestController(t)

	rec, _ := doRequest(t, e, http.MethodGet, "/api/v2/bait/plastic_worm", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBaitDetail(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)
	seedEnvSnapshot(t, ds)

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/bait/live_shrimp", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "live_shrimp", payload["bait_key"])
	assert.NotEmpty(t, payload["display_name"])
	assert.NotEmpty(t, payload["description"])
	assert.NotEmpty(t, payload["methods"])
	assert.NotEmpty(t, payload["how_to_catch"])
	assert.NotEmpty(t, payload["best_for"])
	assert.NotNil(t, payload["current_activity_score"])
	assert.NotEmpty(t, payload["current_tier"])
	assert.Contains(t, payload, "conditions")
}
