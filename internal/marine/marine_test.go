package marine

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractWaveHeight(t *testing.T) {
	t.Parallel()
	cases := []struct {
		text string
		want float64
		ok   bool
	}{
		{"Waves 2 to 3 feet.", 2, true},
		{"Seas 4 feet subsiding.", 4, true},
		{"3 ft waves near shore.", 3, true},
		{"Light winds, smooth water.", 0, false},
	}
	for _, tc := range cases {
		got, ok := ExtractWaveHeight(tc.text)
		assert.Equal(t, tc.ok, ok, tc.text)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, tc.text)
		}
	}
}

func TestExtractSeaState(t *testing.T) {
	t.Parallel()
	state, ok := ExtractSeaState("Bay waters choppy in the afternoon.")
	require.True(t, ok)
	assert.Equal(t, "Choppy", state)

	state, ok = ExtractSeaState("Seas very rough offshore.")
	require.True(t, ok)
	assert.Equal(t, "Very Rough", state)

	_, ok = ExtractSeaState("No descriptive text here.")
	assert.False(t, ok)
}

func TestExtractWindGust(t *testing.T) {
	t.Parallel()
	gust, ok := ExtractWindGust("15 to 20 mph with gusts up to 30 mph")
	require.True(t, ok)
	assert.InDelta(t, 30, gust, 1e-9)

	// Range high end stands in when no explicit gust.
	gust, ok = ExtractWindGust("10 to 15 mph")
	require.True(t, ok)
	assert.InDelta(t, 15, gust, 1e-9)

	_, ok = ExtractWindGust("calm")
	assert.False(t, ok)
}

func TestClassifyHazards(t *testing.T) {
	t.Parallel()

	none := ClassifyHazards(nil)
	assert.Equal(t, HazardNone, none.Level)

	sca := ClassifyHazards([]AlertInfo{
		{Event: "Small Craft Advisory", Headline: "Small Craft Advisory until 6 PM", Severity: "Minor"},
	})
	assert.True(t, sca.SmallCraftAdvisory)
	assert.Equal(t, HazardCaution, sca.Level)

	gale := ClassifyHazards([]AlertInfo{
		{Event: "Gale Warning", Headline: "Gale Warning in effect", Severity: "Moderate"},
	})
	assert.True(t, gale.GaleWarning)
	assert.Equal(t, HazardDangerous, gale.Level)

	severe := ClassifyHazards([]AlertInfo{
		{Event: "Special Marine Warning", Headline: "Waterspout possible", Severity: "Severe"},
	})
	assert.Equal(t, HazardDangerous, severe.Level)
	// "severe" in the text also flips the thunderstorm flag.
	assert.True(t, severe.ThunderstormWarning)
}

func TestCalculateSafetyCalm(t *testing.T) {
	t.Parallel()
	safety := CalculateSafety(ScoreInput{
		WaveHeightFt: 1, HasWaveHeight: true, SeaState: "Calm",
	}, Hazards{Level: HazardNone})
	assert.Equal(t, 100, safety.Score)
	assert.Equal(t, SafetySafe, safety.Level)
}

func TestCalculateSafetyDeductions(t *testing.T) {
	t.Parallel()
	safety := CalculateSafety(ScoreInput{
		WaveHeightFt: 5, HasWaveHeight: true, // -30
		SeaState:    "Choppy",               // -10
		WindGustMph: 26, HasWindGust: true,  // -25
	}, Hazards{Level: HazardNone})
	assert.Equal(t, 35, safety.Score)
	assert.Equal(t, SafetyUnsafe, safety.Level)
}

func TestCalculateSafetyDangerousForcesUnsafe(t *testing.T) {
	t.Parallel()
	safety := CalculateSafety(ScoreInput{}, Hazards{Level: HazardDangerous})
	assert.Equal(t, SafetyUnsafe, safety.Level)
	assert.LessOrEqual(t, safety.Score, 40)
}

func TestCalculateSafetyCautionHazardDowngradesSafe(t *testing.T) {
	t.Parallel()
	// No deductions except the hazard level itself.
	safety := CalculateSafety(ScoreInput{}, Hazards{Level: HazardCaution})
	assert.Equal(t, 100, safety.Score)
	assert.Equal(t, SafetyCaution, safety.Level)
}

func TestCalculateSafetyStormConditions(t *testing.T) {
	t.Parallel()
	safety := CalculateSafety(ScoreInput{WeatherConditions: "Severe Thunderstorms"}, Hazards{Level: HazardNone})
	assert.Equal(t, 80, safety.Score)
	assert.Equal(t, SafetySafe, safety.Level)
}

func newMockedClient(t *testing.T) *Client {
	t.Helper()
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	c := NewClient("bitecast-test")
	c.SetHTTPClient(httpClient)
	return c
}

func TestZoneForecast(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodGet, NWSBaseURL+"/zones/forecast/AMZ650/forecast",
		httpmock.NewStringResponder(http.StatusOK, `{
			"properties": {
				"periods": [
					{
						"detailedForecast": "South winds 10 to 15 mph. Waves 2 to 3 feet. Bay waters choppy.",
						"shortForecast": "Breezy",
						"windSpeed": "10 to 15 mph"
					}
				]
			}
		}`))

	forecast, err := c.ZoneForecast(context.Background(), "AMZ650")
	require.NoError(t, err)
	assert.True(t, forecast.HasWaveHeight)
	assert.InDelta(t, 2, forecast.WaveHeightFt, 1e-9)
	assert.Equal(t, "Choppy", forecast.SeaState)
	assert.True(t, forecast.HasWindGust)
	assert.InDelta(t, 15, forecast.WindGustMph, 1e-9)
}

func TestZoneForecastNoPeriods(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodGet, NWSBaseURL+"/zones/forecast/AMZ650/forecast",
		httpmock.NewStringResponder(http.StatusOK, `{"properties": {"periods": []}}`))

	_, err := c.ZoneForecast(context.Background(), "AMZ650")
	require.Error(t, err)
}

func TestActiveAlerts(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodGet, NWSBaseURL+"/alerts/active/zone/AMZ650",
		httpmock.NewStringResponder(http.StatusOK, `{
			"features": [
				{
					"properties": {
						"event": "Small Craft Advisory",
						"headline": "Small Craft Advisory until 7 PM CDT",
						"severity": "Minor"
					}
				}
			]
		}`))

	alerts, err := c.ActiveAlerts(context.Background(), "AMZ650")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Small Craft Advisory", alerts[0].Event)
	assert.Equal(t, "Minor", alerts[0].Severity)
}

func TestActiveAlertsEmpty(t *testing.T) {
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodGet, NWSBaseURL+"/alerts/active/zone/AMZ650",
		httpmock.NewStringResponder(http.StatusOK, `{"features": []}`))

	alerts, err := c.ActiveAlerts(context.Background(), "AMZ650")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
