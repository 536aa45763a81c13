package weather

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDegreesToCardinal(t *testing.T) {
	t.Parallel()
	cases := []struct {
		deg  float64
		want string
	}{
		{0, "N"},
		{11, "N"},
		{12, "NNE"},
		{45, "NE"},
		{90, "E"},
		{180, "S"},
		{270, "W"},
		{348, "NNW"},
		{359, "N"},
		{360, "N"},
		{-45, "NW"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DegreesToCardinal(tc.deg), "%.0f degrees", tc.deg)
	}
}

func TestParseWindSpeed(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 10, ParseWindSpeed("10 mph"), 1e-9)
	assert.InDelta(t, 7.5, ParseWindSpeed("5 to 10 mph"), 1e-9)
	assert.InDelta(t, 0, ParseWindSpeed(""), 1e-9)
	assert.InDelta(t, 0, ParseWindSpeed("breezy"), 1e-9)
}

func TestClassifyCloudCover(t *testing.T) {
	t.Parallel()
	assert.Equal(t, CloudClear, ClassifyCloudCover("Sunny"))
	assert.Equal(t, CloudClear, ClassifyCloudCover("Clear"))
	assert.Equal(t, CloudPartlyCloudy, ClassifyCloudCover("Partly Cloudy"))
	assert.Equal(t, CloudPartlyCloudy, ClassifyCloudCover("Mostly Sunny"))
	assert.Equal(t, CloudOvercast, ClassifyCloudCover("Mostly Cloudy"))
	assert.Equal(t, CloudOvercast, ClassifyCloudCover("Overcast"))
	assert.Equal(t, CloudPartlyCloudy, ClassifyCloudCover("Patchy Fog"))
}

func TestInferPressureTrend(t *testing.T) {
	t.Parallel()
	assert.Equal(t, TrendFalling, InferPressureTrend("Thunderstorms approaching"))
	assert.Equal(t, TrendFalling, InferPressureTrend("Scattered Storms"))
	assert.Equal(t, TrendRising, InferPressureTrend("Clearing skies"))
	assert.Equal(t, TrendStable, InferPressureTrend("Partly Cloudy"))
}

func newMockedNWS(t *testing.T) *NWSClient {
	t.Helper()
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	c := NewNWSClient("bitecast-test")
	c.SetHTTPClient(httpClient)
	return c
}

func TestHourlyForecast(t *testing.T) {
	c := newMockedNWS(t)

	httpmock.RegisterResponder(http.MethodGet, `=~^https://api\.weather\.gov/points/`,
		httpmock.NewStringResponder(http.StatusOK, `{
			"properties": {"forecastHourly": "https://api.weather.gov/gridpoints/MOB/20,10/forecast/hourly"}
		}`))
	httpmock.RegisterResponder(http.MethodGet, "https://api.weather.gov/gridpoints/MOB/20,10/forecast/hourly",
		httpmock.NewStringResponder(http.StatusOK, `{
			"properties": {
				"periods": [
					{
						"startTime": "2026-03-01T12:00:00-06:00",
						"temperature": 68,
						"windSpeed": "5 to 10 mph",
						"windDirection": "SSE",
						"shortForecast": "Mostly Sunny",
						"relativeHumidity": {"value": 65},
						"probabilityOfPrecipitation": {"value": 10}
					},
					{
						"startTime": "2026-03-01T13:00:00-06:00",
						"temperature": 70,
						"windSpeed": "10 mph",
						"windDirection": "S",
						"shortForecast": "Scattered Thunderstorms",
						"relativeHumidity": {"value": 70},
						"probabilityOfPrecipitation": {"value": 60}
					}
				]
			}
		}`))

	periods, err := c.HourlyForecast(context.Background(), 30.2486, -88.0772)
	require.NoError(t, err)
	require.Len(t, periods, 2)

	assert.InDelta(t, 7.5, periods[0].WindSpeedMph, 1e-9)
	assert.Equal(t, CloudPartlyCloudy, periods[0].CloudCover)
	assert.Equal(t, TrendStable, periods[0].PressureTrend)
	assert.Equal(t, "SSE", periods[0].WindDirection)

	assert.Equal(t, TrendFalling, periods[1].PressureTrend)
	assert.InDelta(t, 60, periods[1].PrecipitationProbability, 1e-9)

	// Second call reuses the cached grid URL.
	_, err = c.HourlyForecast(context.Background(), 30.2486, -88.0772)
	require.NoError(t, err)
	pointsCalls := 0
	for key, count := range httpmock.GetCallCountInfo() {
		if key != "GET https://api.weather.gov/gridpoints/MOB/20,10/forecast/hourly" {
			pointsCalls += count
		}
	}
	assert.Equal(t, 1, pointsCalls, "points endpoint should be resolved once")
}

func newMockedCoops(t *testing.T) *CoopsClient {
	t.Helper()
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	c := NewCoopsClient("bitecast-test")
	c.SetHTTPClient(httpClient)
	return c
}

func TestCoopsObservations(t *testing.T) {
	c := newMockedCoops(t)

	httpmock.RegisterResponder(http.MethodGet, CoopsBaseURL,
		func(req *http.Request) (*http.Response, error) {
			switch req.URL.Query().Get("product") {
			case "air_temperature":
				return httpmock.NewStringResponse(http.StatusOK,
					`{"data": [{"t": "2026-03-01 11:54", "v": "64.2"}, {"t": "2026-03-01 12:00", "v": "64.8"}]}`), nil
			case "wind":
				return httpmock.NewStringResponse(http.StatusOK,
					`{"data": [{"t": "2026-03-01 12:00", "s": "11.5", "d": "350.0", "g": "16.2"}]}`), nil
			case "air_pressure":
				return httpmock.NewStringResponse(http.StatusOK,
					`{"data": [{"t": "2026-03-01 12:00", "v": "1016.3"}]}`), nil
			default:
				return httpmock.NewStringResponse(http.StatusOK, `{"data": []}`), nil
			}
		})

	obs, err := c.Observations(context.Background(), "8736897")
	require.NoError(t, err)
	assert.True(t, obs.HasAirTemp)
	assert.InDelta(t, 64.8, obs.AirTempF, 1e-9, "latest reading wins")
	assert.True(t, obs.HasWind)
	assert.Equal(t, "N", obs.WindDirectionCardinal)
	assert.InDelta(t, 16.2, obs.WindGustMph, 1e-9)
	assert.True(t, obs.HasPressure)
	assert.InDelta(t, 1016.3, obs.PressureMb, 1e-9)
}

func TestCoopsObservationsAllProductsEmpty(t *testing.T) {
	c := newMockedCoops(t)

	httpmock.RegisterResponder(http.MethodGet, CoopsBaseURL,
		httpmock.NewStringResponder(http.StatusOK, `{"data": []}`))

	_, err := c.Observations(context.Background(), "8736897")
	require.Error(t, err)
}

func TestCoopsWaterTemperature(t *testing.T) {
	c := newMockedCoops(t)

	httpmock.RegisterResponder(http.MethodGet, CoopsBaseURL,
		httpmock.NewStringResponder(http.StatusOK,
			`{"data": [{"t": "2026-03-01 06:00", "v": "61.0"}, {"t": "2026-03-01 12:00", "v": "62.4"}]}`))

	wt, err := c.WaterTemperature(context.Background(), "8736897")
	require.NoError(t, err)
	assert.InDelta(t, 62.4, wt.TempF, 1e-9)
	assert.Equal(t, "8736897", wt.StationID)
}

func TestCoopsWaterTemperatureError(t *testing.T) {
	c := newMockedCoops(t)

	httpmock.RegisterResponder(http.MethodGet, CoopsBaseURL,
		httpmock.NewStringResponder(http.StatusOK,
			`{"error": {"message": "No data was found."}}`))

	_, err := c.WaterTemperature(context.Background(), "0000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data was found")
}
