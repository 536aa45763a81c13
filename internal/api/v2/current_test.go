package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitecast/bitecast-go/internal/datastore"
)

func TestCurrentFallbackWithoutWindows(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestController(t)

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/current", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, payload["window_start"])
	assert.Equal(t, "unknown", payload["tide_state"])
	assert.Equal(t, "Conditions data unavailable.", payload["conditions_summary"])
	assert.Equal(t, fallbackClarity, payload["clarity"])
	assert.Equal(t, fallbackConfidence, payload["confidence"])
	assert.NotEmpty(t, payload["pro_tip"])
	assert.NotEmpty(t, payload["time_of_day"])
}

func TestCurrentWithWindow(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)
	seedWindow(t, ds, time.Now().UTC().Add(-30*time.Minute), map[string]float64{
		"speckled_trout": 75,
		"redfish":        55,
		"flounder":       30,
	})

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/current", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "incoming", payload["tide_state"])
	assert.NotEmpty(t, payload["window_start"])

	species, ok := payload["species"].([]any)
	require.True(t, ok)
	require.Len(t, species, 3)

	// Sorted by score, best first.
	first := species[0].(map[string]any)
	assert.Equal(t, "speckled_trout", first["key"])
	assert.Equal(t, 75.0, first["bite_score"])
	assert.Equal(t, "DECENT", first["tier"])

	top, ok := payload["top_species"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, top)
	assert.Equal(t, "speckled_trout", top[0].(map[string]any)["key"])

	assert.NotEmpty(t, payload["conditions_summary"])
	assert.Contains(t, payload, "sub_scores")
	assert.Contains(t, payload, "rig_of_moment")
	assert.Contains(t, payload, "best_zones")
	assert.Contains(t, payload, "moon_phase")
}

func TestCurrentAttachesMarineBlock(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)

	wave := 1.5
	require.NoError(t, ds.SaveMarineCondition(&datastore.MarineCondition{
		Timestamp:   time.Now().UTC(),
		WaveHeight:  &wave,
		SeaState:    "light chop",
		SafetyScore: 85,
		SafetyLevel: "safe",
		FetchedAt:   time.Now().UTC(),
	}))

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/current", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	marine, ok := payload["marine"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "light chop", marine["sea_state"])
	assert.Equal(t, 85.0, marine["safety_score"])
}
