package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitecast/bitecast-go/internal/errors"
	"github.com/bitecast/bitecast-go/internal/logging"
)

// NWSBaseURL is the National Weather Service API root.
const NWSBaseURL = "https://api.weather.gov"

// forecastHorizonPeriods caps how many hourly periods get stored.
const forecastHorizonPeriods = 48

// ForecastPeriod is one parsed hour of the NWS forecast.
type ForecastPeriod struct {
	StartTime                time.Time
	TemperatureF             float64
	WindSpeedMph             float64
	WindDirection            string
	Humidity                 float64
	PrecipitationProbability float64
	CloudCover               string
	PressureTrend            string
	Conditions               string
}

// NWSClient fetches the hourly forecast for a point. The grid resolution
// from /points is cached for the process lifetime.
type NWSClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger

	gridMu            sync.Mutex
	forecastHourlyURL string
}

// NewNWSClient creates an NWS client for the configured coordinates.
func NewNWSClient(userAgent string) *NWSClient {
	return &NWSClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    NWSBaseURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(1), 2),
		logger:     logging.ForService("weather"),
	}
}

// SetBaseURL overrides the endpoint and clears the cached grid, for tests.
func (c *NWSClient) SetBaseURL(u string) {
	c.gridMu.Lock()
	defer c.gridMu.Unlock()
	c.baseURL = u
	c.forecastHourlyURL = ""
}

// SetHTTPClient swaps the underlying HTTP client, for tests.
func (c *NWSClient) SetHTTPClient(hc *http.Client) { c.httpClient = hc }

type pointsResponse struct {
	Properties struct {
		ForecastHourly string `json:"forecastHourly"`
	} `json:"properties"`
}

type hourlyForecastResponse struct {
	Properties struct {
		Periods []struct {
			StartTime        string `json:"startTime"`
			Temperature      float64 `json:"temperature"`
			WindSpeed        string `json:"windSpeed"`
			WindDirection    string `json:"windDirection"`
			ShortForecast    string `json:"shortForecast"`
			RelativeHumidity struct {
				Value float64 `json:"value"`
			} `json:"relativeHumidity"`
			ProbabilityOfPrecipitation struct {
				Value float64 `json:"value"`
			} `json:"probabilityOfPrecipitation"`
		} `json:"periods"`
	} `json:"properties"`
}

// HourlyForecast resolves the grid for the coordinates and returns up to
// 48 parsed periods.
func (c *NWSClient) HourlyForecast(ctx context.Context, lat, lon float64) ([]ForecastPeriod, error) {
	forecastURL, err := c.resolveGrid(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, forecastURL)
	if err != nil {
		return nil, err
	}

	var response hourlyForecastResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.New(err).
			Component("weather").
			Category(errors.CategoryValidation).
			Context("operation", "unmarshal_hourly_forecast").
			Build()
	}

	periods := response.Properties.Periods
	if len(periods) == 0 {
		return nil, errors.Newf("no periods in hourly forecast").
			Component("weather").
			Category(errors.CategoryIngest).
			Build()
	}
	if len(periods) > forecastHorizonPeriods {
		periods = periods[:forecastHorizonPeriods]
	}

	parsed := make([]ForecastPeriod, 0, len(periods))
	for _, p := range periods {
		start, err := time.Parse(time.RFC3339, p.StartTime)
		if err != nil {
			c.logger.Warn("skipping forecast period with bad start time", "value", p.StartTime, "error", err)
			continue
		}
		parsed = append(parsed, ForecastPeriod{
			StartTime:                start.UTC(),
			TemperatureF:             p.Temperature,
			WindSpeedMph:             ParseWindSpeed(p.WindSpeed),
			WindDirection:            p.WindDirection,
			Humidity:                 p.RelativeHumidity.Value,
			PrecipitationProbability: p.ProbabilityOfPrecipitation.Value,
			CloudCover:               ClassifyCloudCover(p.ShortForecast),
			PressureTrend:            InferPressureTrend(p.ShortForecast),
			Conditions:               p.ShortForecast,
		})
	}
	return parsed, nil
}

// resolveGrid turns lat/lon into the hourly forecast URL, caching the
// answer.
func (c *NWSClient) resolveGrid(ctx context.Context, lat, lon float64) (string, error) {
	c.gridMu.Lock()
	defer c.gridMu.Unlock()
	if c.forecastHourlyURL != "" {
		return c.forecastHourlyURL, nil
	}

	pointsURL := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)
	body, err := c.get(ctx, pointsURL)
	if err != nil {
		return "", err
	}

	var response pointsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", errors.New(err).
			Component("weather").
			Category(errors.CategoryValidation).
			Context("operation", "unmarshal_points").
			Build()
	}
	if response.Properties.ForecastHourly == "" {
		return "", errors.Newf("points response missing forecastHourly URL").
			Component("weather").
			Category(errors.CategoryIngest).
			Build()
	}

	c.forecastHourlyURL = response.Properties.ForecastHourly
	return c.forecastHourlyURL, nil
}

func (c *NWSClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, errors.New(err).
				Component("weather").
				Category(errors.CategoryNetwork).
				Context("operation", "create_http_request").
				Build()
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		req.Header.Set("Accept", "application/geo+json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			if closeErr := resp.Body.Close(); closeErr != nil {
				c.logger.Debug("failed to close response body", "error", closeErr)
			}
			switch {
			case readErr != nil:
				lastErr = readErr
			case resp.StatusCode == http.StatusOK:
				return body, nil
			case resp.StatusCode >= 500:
				lastErr = fmt.Errorf("nws returned status %d", resp.StatusCode)
			default:
				return nil, errors.Newf("nws returned status %d", resp.StatusCode).
					Component("weather").
					Category(errors.CategoryNetwork).
					Context("status_code", strconv.Itoa(resp.StatusCode)).
					Context("url", reqURL).
					Build()
			}
		}

		if attempt < 2 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}

	return nil, errors.New(lastErr).
		Component("weather").
		Category(errors.CategoryNetwork).
		Context("operation", "fetch_forecast").
		Context("url", reqURL).
		Build()
}
