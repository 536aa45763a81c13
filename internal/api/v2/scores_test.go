package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitecast/bitecast-go/internal/datastore"
)

func TestZoneBiteScoreComputedOnMiss(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)
	seedEnvSnapshot(t, ds)

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/zone-bite-scores?species=speckled_trout&zone_id=3", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "speckled_trout", payload["species"])
	assert.Equal(t, "Speckled Trout", payload["species_name"])
	assert.Equal(t, "3", payload["zone_id"])
	assert.Greater(t, payload["bite_score"].(float64), 0.0)
	assert.NotEmpty(t, payload["rating"])
	assert.NotEmpty(t, payload["confidence"])
	assert.Contains(t, payload, "reason_summary")
	assert.Equal(t, "cached", payload["data_source"])

	breakdown, ok := payload["breakdown"].(map[string]any)
	require.True(t, ok, "breakdown component map expected")
	assert.Contains(t, breakdown, "seasonal_baseline")
	assert.Contains(t, breakdown, "predator_modifier")

	// The computed row is now cached.
	_, err := ds.GetBiteScore("speckled_trout", "3")
	assert.NoError(t, err)
}

func TestZoneBiteScoreIncludesTip(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)
	seedEnvSnapshot(t, ds)

	require.NoError(t, ds.UpsertTip(&datastore.SpeciesZoneTip{
		Species: "redfish", ZoneID: "2",
		TipText:     "Work a gold spoon along the rocks.",
		LastUpdated: time.Now().UTC(),
	}))

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/zone-bite-scores?species=redfish&zone_id=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Work a gold spoon along the rocks.", payload["tip"])
}

func TestZoneBiteScoreAcceptsZoneVocabulary(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)
	seedEnvSnapshot(t, ds)

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/zone-bite-scores?species=speckled_trout&zone_id=Zone%203", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "3", payload["zone_id"], "zone input is canonicalized")

	// The computed row is stored under the bare zone number.
	_, err := ds.GetBiteScore("speckled_trout", "3")
	assert.NoError(t, err)
}

func TestZoneBiteScoreValidation(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestController(t)

	rec, _ := doRequest(t, e, http.MethodGet, "/api/v2/zone-bite-scores?species=kraken&zone_id=3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec2, _ := doRequest(t, e, http.MethodGet, "/api/v2/zone-bite-scores?species=redfish&zone_id=12", "")
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestZoneBiteScoresList(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)

	now := time.Now().UTC()
	require.NoError(t, ds.UpsertBiteScore(&datastore.CachedBiteScore{
		Species: "redfish", ZoneID: "1", Score: 62, Rating: "Good", Confidence: "medium", LastUpdated: now,
	}))
	require.NoError(t, ds.UpsertBiteScore(&datastore.CachedBiteScore{
		Species: "flounder", ZoneID: "4", Score: 35, Rating: "Fair", Confidence: "low", LastUpdated: now,
	}))

	rec, list := doRequestList(t, e, "/api/v2/zone-bite-scores")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list, 2)
}

func TestLearningDeltaRequiresParams(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestController(t)

	rec, _ := doRequest(t, e, http.MethodGet, "/api/v2/learning-delta", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec2, _ := doRequest(t, e, http.MethodGet, "/api/v2/learning-delta?species=redfish&zone_id=9", "")
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestLearningDeltaDefaultsContext(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestController(t)

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/learning-delta?species=redfish&zone_id=2", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "redfish", payload["species"])
	assert.Equal(t, "2", payload["zone_id"])
	assert.NotEmpty(t, payload["tide_stage"])
	assert.NotEmpty(t, payload["time_block"])

	delta, ok := payload["delta"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, delta, "delta")
	assert.Contains(t, delta, "confidence")
	assert.Contains(t, delta, "sample_count")
}

func TestZoneDataSufficiencyUnknownZone(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestController(t)

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/zone-data-sufficiency?zone=4", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "UNKNOWN", payload["status"])
	assert.Equal(t, 0.0, payload["catch_count"])

	rec2, _ := doRequest(t, e, http.MethodGet, "/api/v2/zone-data-sufficiency?zone=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}
