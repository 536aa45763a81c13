package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitecast/bitecast-go/internal/errors"
	"github.com/bitecast/bitecast-go/internal/logging"
)

// CoopsBaseURL is the NOAA CO-OPS data retrieval endpoint.
const CoopsBaseURL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"

const (
	requestTimeout = 10 * time.Second
	retryDelay     = 2 * time.Second
)

// Observations holds the latest meteorological readings from a station.
type Observations struct {
	AirTempF              float64
	HasAirTemp            bool
	WindSpeedMph          float64
	WindDirectionDeg      float64
	WindDirectionCardinal string
	WindGustMph           float64
	HasWind               bool
	PressureMb            float64
	HasPressure           bool
	StationID             string
	FetchedAt             time.Time
}

// WaterTemp is the latest water temperature reading from a station.
type WaterTemp struct {
	TempF     float64
	Timestamp time.Time
	StationID string
	FetchedAt time.Time
}

// CoopsClient fetches meteorological observations from CO-OPS stations.
type CoopsClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewCoopsClient creates a CO-OPS observation client.
func NewCoopsClient(userAgent string) *CoopsClient {
	return &CoopsClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    CoopsBaseURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(1), 2),
		logger:     logging.ForService("weather"),
	}
}

// SetBaseURL overrides the endpoint, for tests.
func (c *CoopsClient) SetBaseURL(u string) { c.baseURL = u }

// SetHTTPClient swaps the underlying HTTP client, for tests.
func (c *CoopsClient) SetHTTPClient(hc *http.Client) { c.httpClient = hc }

// Met products return rows as strings. Wind rows use s/d/g instead of v.
type coopsDataResponse struct {
	Data []struct {
		T string `json:"t"`
		V string `json:"v"`
		S string `json:"s"`
		D string `json:"d"`
		G string `json:"g"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Observations collects air temperature, wind and pressure from the last
// two hours at the station. Products failing individually are skipped;
// an Observations with nothing set at all is an error.
func (c *CoopsClient) Observations(ctx context.Context, station string) (Observations, error) {
	end := time.Now().UTC()
	begin := end.Add(-2 * time.Hour)

	obs := Observations{StationID: station, FetchedAt: end}

	if rows, err := c.product(ctx, station, "air_temperature", begin, end); err != nil {
		c.logger.Warn("air temperature fetch failed", "station", station, "error", err)
	} else if latest, ok := lastRow(rows); ok {
		if v, err := strconv.ParseFloat(latest.V, 64); err == nil {
			obs.AirTempF = v
			obs.HasAirTemp = true
		}
	}

	if rows, err := c.product(ctx, station, "wind", begin, end); err != nil {
		c.logger.Warn("wind fetch failed", "station", station, "error", err)
	} else if latest, ok := lastRow(rows); ok {
		speed, errS := strconv.ParseFloat(latest.S, 64)
		deg, errD := strconv.ParseFloat(latest.D, 64)
		if errS == nil && errD == nil {
			obs.WindSpeedMph = speed
			obs.WindDirectionDeg = deg
			obs.WindDirectionCardinal = DegreesToCardinal(deg)
			obs.HasWind = true
			if latest.G != "" {
				if gust, err := strconv.ParseFloat(latest.G, 64); err == nil {
					obs.WindGustMph = gust
				}
			}
		}
	}

	if rows, err := c.product(ctx, station, "air_pressure", begin, end); err != nil {
		c.logger.Warn("air pressure fetch failed", "station", station, "error", err)
	} else if latest, ok := lastRow(rows); ok {
		if v, err := strconv.ParseFloat(latest.V, 64); err == nil {
			obs.PressureMb = v
			obs.HasPressure = true
		}
	}

	if !obs.HasAirTemp && !obs.HasWind && !obs.HasPressure {
		return Observations{}, errors.Newf("no observations available from station %s", station).
			Component("weather").
			Category(errors.CategoryIngest).
			Context("station", station).
			Build()
	}
	return obs, nil
}

// WaterTemperature returns the freshest reading within the last 24 hours.
func (c *CoopsClient) WaterTemperature(ctx context.Context, station string) (WaterTemp, error) {
	end := time.Now().UTC()
	begin := end.Add(-24 * time.Hour)

	rows, err := c.product(ctx, station, "water_temperature", begin, end)
	if err != nil {
		return WaterTemp{}, err
	}
	latest, ok := lastRow(rows)
	if !ok {
		return WaterTemp{}, errors.Newf("no water temperature data from station %s", station).
			Component("weather").
			Category(errors.CategoryIngest).
			Context("station", station).
			Build()
	}

	temp, err := strconv.ParseFloat(latest.V, 64)
	if err != nil {
		return WaterTemp{}, errors.New(err).
			Component("weather").
			Category(errors.CategoryValidation).
			Context("operation", "parse_water_temperature").
			Context("station", station).
			Build()
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04", latest.T, time.UTC)
	if err != nil {
		ts = end
	}

	return WaterTemp{TempF: temp, Timestamp: ts, StationID: station, FetchedAt: end}, nil
}

type coopsRow struct {
	T, V, S, D, G string
}

func lastRow(rows []coopsRow) (coopsRow, bool) {
	if len(rows) == 0 {
		return coopsRow{}, false
	}
	return rows[len(rows)-1], true
}

func (c *CoopsClient) product(ctx context.Context, station, product string, begin, end time.Time) ([]coopsRow, error) {
	params := url.Values{}
	params.Set("product", product)
	params.Set("application", "bitecast")
	params.Set("begin_date", begin.Format("20060102 15:04"))
	params.Set("end_date", end.Format("20060102 15:04"))
	params.Set("station", station)
	params.Set("time_zone", "gmt")
	params.Set("units", "english")
	params.Set("format", "json")

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var response coopsDataResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.New(err).
			Component("weather").
			Category(errors.CategoryValidation).
			Context("operation", "unmarshal_"+product).
			Context("station", station).
			Build()
	}
	if response.Error != nil {
		return nil, errors.Newf("datagetter error for %s: %s", product, response.Error.Message).
			Component("weather").
			Category(errors.CategoryIngest).
			Context("station", station).
			Build()
	}

	rows := make([]coopsRow, 0, len(response.Data))
	for _, d := range response.Data {
		rows = append(rows, coopsRow{T: d.T, V: d.V, S: d.S, D: d.D, G: d.G})
	}
	return rows, nil
}

func (c *CoopsClient) get(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + "?" + params.Encode()
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
				lastErr = fmt.Errorf("datagetter returned status %d", resp.StatusCode)
			default:
				return nil, errors.Newf("datagetter returned status %d", resp.StatusCode).
					Component("weather").
					Category(errors.CategoryIngest).
					Context("status_code", strconv.Itoa(resp.StatusCode)).
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
		Context("operation", "fetch_observations").
		Build()
}
