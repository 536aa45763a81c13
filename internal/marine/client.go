package marine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/antonholmquist/jason"
	"golang.org/x/time/rate"

	"github.com/bitecast/bitecast-go/internal/errors"
	"github.com/bitecast/bitecast-go/internal/logging"
)

// NWSBaseURL is the National Weather Service API root.
const NWSBaseURL = "https://api.weather.gov"

const (
	requestTimeout = 10 * time.Second
	retryDelay     = 2 * time.Second
)

// Forecast is the parsed current period of the marine zone forecast.
type Forecast struct {
	Summary       string
	ShortForecast string
	WaveHeightFt  float64
	HasWaveHeight bool
	SeaState      string
	WindGustMph   float64
	HasWindGust   bool
}

// Client fetches the marine zone forecast and active alerts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a marine NWS client.
func NewClient(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    NWSBaseURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(1), 2),
		logger:     logging.ForService("marine"),
	}
}

// SetBaseURL overrides the endpoint, for tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// SetHTTPClient swaps the underlying HTTP client, for tests.
func (c *Client) SetHTTPClient(hc *http.Client) { c.httpClient = hc }

// ZoneForecast fetches the current period of the zone forecast and parses
// waves, sea state and gusts out of its text.
func (c *Client) ZoneForecast(ctx context.Context, zone string) (Forecast, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/zones/forecast/%s/forecast", c.baseURL, zone))
	if err != nil {
		return Forecast{}, err
	}

	root, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return Forecast{}, errors.New(err).
			Component("marine").
			Category(errors.CategoryValidation).
			Context("operation", "parse_zone_forecast").
			Context("zone", zone).
			Build()
	}

	periods, err := root.GetObjectArray("properties", "periods")
	if err != nil || len(periods) == 0 {
		return Forecast{}, errors.Newf("no forecast periods for zone %s", zone).
			Component("marine").
			Category(errors.CategoryIngest).
			Context("zone", zone).
			Build()
	}
	current := periods[0]

	detailed, _ := current.GetString("detailedForecast")
	short, _ := current.GetString("shortForecast")
	windText, _ := current.GetString("windSpeed")

	forecast := Forecast{Summary: detailed, ShortForecast: short}
	forecast.WaveHeightFt, forecast.HasWaveHeight = ExtractWaveHeight(detailed)
	if state, ok := ExtractSeaState(detailed); ok {
		forecast.SeaState = state
	}
	forecast.WindGustMph, forecast.HasWindGust = ExtractWindGust(windText)
	if !forecast.HasWindGust {
		forecast.WindGustMph, forecast.HasWindGust = ExtractWindGust(detailed)
	}

	return forecast, nil
}

// ActiveAlerts fetches active alerts for the zone. A fetch failure returns
// the error; callers decide whether to proceed without alert data.
func (c *Client) ActiveAlerts(ctx context.Context, zone string) ([]AlertInfo, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/alerts/active/zone/%s", c.baseURL, zone))
	if err != nil {
		return nil, err
	}

	root, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return nil, errors.New(err).
			Component("marine").
			Category(errors.CategoryValidation).
			Context("operation", "parse_alerts").
			Context("zone", zone).
			Build()
	}

	features, err := root.GetObjectArray("features")
	if err != nil {
		return nil, nil
	}

	alerts := make([]AlertInfo, 0, len(features))
	for _, feature := range features {
		props, err := feature.GetObject("properties")
		if err != nil {
			continue
		}
		event, _ := props.GetString("event")
		headline, _ := props.GetString("headline")
		severity, _ := props.GetString("severity")
		alerts = append(alerts, AlertInfo{Event: event, Headline: headline, Severity: severity})
	}
	return alerts, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, errors.New(err).
				Component("marine").
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
					Component("marine").
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
		Component("marine").
		Category(errors.CategoryNetwork).
		Context("operation", "fetch_marine").
		Context("url", reqURL).
		Build()
}
