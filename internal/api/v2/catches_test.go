package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitecast/bitecast-go/internal/datastore"
)

func seedEnvSnapshot(t *testing.T, ds datastore.Interface) {
	t.Helper()
	waterTemp := 72.0
	wind := 8.0
	snap := datastore.EnvironmentSnapshot{Timestamp: time.Now().UTC()}
	snap.TideStage = "incoming"
	snap.TimeOfDay = "morning"
	snap.WaterTemp = &waterTemp
	snap.WindSpeed = &wind
	snap.WindDirection = "SE"
	require.NoError(t, ds.SaveEnvironmentSnapshot(&snap))
}

func TestCreateCatchStoresAndLearns(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)
	seedEnvSnapshot(t, ds)

	body := `{"species":"speckled_trout","zone_id":"3","bait_used":"live_shrimp","rig_type":"popping_cork","kept":true,"quantity":2}`
	rec, payload := doRequest(t, e, http.MethodPost, "/api/v2/catches", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "speckled_trout", payload["species_key"])
	assert.Equal(t, "3", payload["zone_id"])
	assert.NotZero(t, payload["id"])

	// Stored with the environment stamped in.
	catches, err := ds.GetCatches("speckled_trout", "3", 10)
	require.NoError(t, err)
	require.Len(t, catches, 1)
	assert.Equal(t, 2, catches[0].Quantity)
	assert.True(t, catches[0].Kept)

	// The learning pipeline ran: a bucket exists and the score cache has
	// a fresh row for the pair.
	buckets, err := ds.GetLearningBuckets("speckled_trout", "3")
	require.NoError(t, err)
	assert.NotEmpty(t, buckets)

	score, err := ds.GetBiteScore("speckled_trout", "3")
	require.NoError(t, err)
	assert.Greater(t, score.Score, 0.0)
}

func TestCreateCatchBlendsCachedScore(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)
	seedEnvSnapshot(t, ds)

	// A stale cached row at zero. Logging a catch must pull the score
	// toward the fresh model output, not replace it outright.
	require.NoError(t, ds.UpsertBiteScore(&datastore.CachedBiteScore{
		Species: "speckled_trout", ZoneID: "3",
		Score: 0, Rating: "Poor", Confidence: "low",
		LastUpdated: time.Now().UTC().Add(-time.Hour),
	}))

	body := `{"species":"speckled_trout","zone_id":"3","rig_type":"jig"}`
	rec, _ := doRequest(t, e, http.MethodPost, "/api/v2/catches", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	row, err := ds.GetBiteScore("speckled_trout", "3")
	require.NoError(t, err)
	require.Greater(t, row.RawScore, 0.0)
	// One lifetime catch gives a smoothing weight of 0.41.
	assert.InDelta(t, 0.41*row.RawScore, row.Score, 1e-6)
	assert.Less(t, row.Score, row.RawScore)
}

func TestCreateCatchValidation(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestController(t)

	cases := []struct {
		name string
		body string
	}{
		{"unknown species", `{"species":"kraken","zone_id":"3"}`},
		{"bad zone", `{"species":"redfish","zone_id":"9"}`},
		{"negative quantity", `{"species":"redfish","zone_id":"3","quantity":-2}`},
		{"oversized length", `{"species":"redfish","zone_id":"3","size_length_in":500}`},
		{"bad timestamp", `{"species":"redfish","zone_id":"3","timestamp":"yesterday"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := doRequest(t, e, http.MethodPost, "/api/v2/catches", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateCatchNormalizesZoneVocabulary(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)

	body := `{"species":"redfish","zone_id":"Zone 2"}`
	rec, payload := doRequest(t, e, http.MethodPost, "/api/v2/catches", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "2", payload["zone_id"])

	catches, err := ds.GetCatches("redfish", "2", 1)
	require.NoError(t, err)
	assert.Len(t, catches, 1)
}

func TestCreateCatchParsesLocalTimestamp(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)

	body := `{"species":"redfish","zone_id":"2","timestamp":"2026-08-20T06:30"}`
	rec, _ := doRequest(t, e, http.MethodPost, "/api/v2/catches", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	catches, err := ds.GetCatches("redfish", "2", 1)
	require.NoError(t, err)
	require.Len(t, catches, 1)
	assert.Equal(t, 2026, catches[0].Timestamp.UTC().Year())
}

func TestGetCatchesLimitAndFilter(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)

	now := time.Now().UTC()
	for i := range 5 {
		require.NoError(t, ds.SaveCatch(&datastore.Catch{
			Timestamp: now.Add(-time.Duration(i) * time.Hour),
			Species:   "redfish",
			ZoneID:    "2",
			Quantity:  1,
		}))
	}
	require.NoError(t, ds.SaveCatch(&datastore.Catch{
		Timestamp: now,
		Species:   "flounder",
		ZoneID:    "4",
		Quantity:  1,
	}))

	rec, list := doRequestList(t, e, "/api/v2/catches?limit=3")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list, 3)

	rec2, filtered := doRequestList(t, e, "/api/v2/catches?species=flounder")
	assert.Equal(t, http.StatusOK, rec2.Code)
	require.Len(t, filtered, 1)
	assert.Equal(t, "flounder", filtered[0].(map[string]any)["species_key"])
}

func TestDeleteCatch(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)

	catch := datastore.Catch{Timestamp: time.Now().UTC(), Species: "redfish", ZoneID: "2", Quantity: 1}
	require.NoError(t, ds.SaveCatch(&catch))

	rec, payload := doRequest(t, e, http.MethodDelete, "/api/v2/catches/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])

	rec2, _ := doRequest(t, e, http.MethodDelete, "/api/v2/catches/1", "")
	assert.Equal(t, http.StatusNotFound, rec2.Code)

	rec3, _ := doRequest(t, e, http.MethodDelete, "/api/v2/catches/not-a-number", "")
	assert.Equal(t, http.StatusBadRequest, rec3.Code)
}

func TestCatchStats(t *testing.T) {
	t.Parallel()
	e, _, ds := newTestController(t)

	now := time.Now().UTC()
	require.NoError(t, ds.SaveCatch(&datastore.Catch{
		Timestamp: now.Add(-time.Hour), Species: "speckled_trout", ZoneID: "3",
		Quantity: 3, Kept: true, BaitUsed: "live_shrimp", RigType: "popping_cork",
	}))
	require.NoError(t, ds.SaveCatch(&datastore.Catch{
		Timestamp: now.Add(-2 * time.Hour), Species: "redfish", ZoneID: "2",
		Quantity: 1, BaitUsed: "live_shrimp", RigType: "jig",
	}))
	// Outside the default 30-day window.
	require.NoError(t, ds.SaveCatch(&datastore.Catch{
		Timestamp: now.AddDate(0, 0, -40), Species: "flounder", ZoneID: "4", Quantity: 1,
	}))

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/catches/stats", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4.0, payload["total_catches"])
	assert.Equal(t, 3.0, payload["kept_count"])
	assert.Equal(t, 1.0, payload["released_count"])

	bySpecies := payload["by_species"].([]any)
	require.Len(t, bySpecies, 2)
	assert.Equal(t, "Speckled Trout", bySpecies[0].(map[string]any)["species_display"])

	baitSuccess := payload["bait_success"].(map[string]any)
	assert.Equal(t, 2.0, baitSuccess["live_shrimp"])
}

func TestCatchStatsEmpty(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestController(t)

	rec, payload := doRequest(t, e, http.MethodGet, "/api/v2/catches/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, payload["total_catches"])
	assert.NotEmpty(t, payload["message"])
}
