package tide

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

// DataGetterURL is the NOAA CO-OPS data retrieval endpoint.
const DataGetterURL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"

// Prediction intervals the client knows how to request.
const (
	IntervalSixMinute = "6"
	IntervalHiLo      = "hilo"
)

const (
	requestTimeout = 10 * time.Second
	retryDelay     = 2 * time.Second
)

// Client fetches tide predictions from the CO-OPS datagetter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a CO-OPS client. The rate limiter keeps the engine a
// polite API citizen across the scheduler's fetch bursts.
func NewClient(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    DataGetterURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(1), 2),
		logger:     logging.ForService("tide"),
	}
}

// SetBaseURL overrides the endpoint, for tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// SetHTTPClient swaps the underlying HTTP client, for tests.
func (c *Client) SetHTTPClient(hc *http.Client) { c.httpClient = hc }

// datagetter predictions payload. Heights come back as strings.
type predictionsResponse struct {
	Predictions []struct {
		T    string `json:"t"`
		V    string `json:"v"`
		Type string `json:"type"`
	} `json:"predictions"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Predictions fetches tide predictions for a station. The hi/lo product
// only accepts whole dates, so begin/end are truncated for that interval.
func (c *Client) Predictions(ctx context.Context, station string, begin, end time.Time, interval string) ([]Sample, error) {
	params := url.Values{}
	params.Set("station", station)
	params.Set("product", "predictions")
	params.Set("datum", "MLLW")
	params.Set("time_zone", "gmt")
	params.Set("units", "english")
	params.Set("interval", interval)
	params.Set("format", "json")
	if interval == IntervalHiLo {
		params.Set("begin_date", begin.UTC().Format("20060102"))
		params.Set("end_date", end.UTC().Format("20060102"))
	} else {
		params.Set("begin_date", begin.UTC().Format("20060102 15:04"))
		params.Set("end_date", end.UTC().Format("20060102 15:04"))
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var response predictionsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.New(err).
			Component("tide").
			Category(errors.CategoryValidation).
			Context("operation", "unmarshal_predictions").
			Context("station", station).
			Build()
	}
	if response.Error != nil {
		return nil, errors.Newf("datagetter error: %s", response.Error.Message).
			Component("tide").
			Category(errors.CategoryIngest).
			Context("station", station).
			Build()
	}

	samples := make([]Sample, 0, len(response.Predictions))
	for _, p := range response.Predictions {
		ts, err := time.ParseInLocation("2006-01-02 15:04", p.T, time.UTC)
		if err != nil {
			c.logger.Warn("skipping prediction with bad timestamp", "value", p.T, "error", err)
			continue
		}
		height, err := strconv.ParseFloat(p.V, 64)
		if err != nil {
			c.logger.Warn("skipping prediction with bad height", "value", p.V, "error", err)
			continue
		}
		samples = append(samples, Sample{Time: ts, Height: height, Type: p.Type})
	}
	return samples, nil
}

// get performs the rate-limited request with one retry on transient
// failures.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + "?" + params.Encode()
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, errors.New(err).
				Component("tide").
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
			c.logger.Warn("tide request failed", "attempt", attempt, "error", err)
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
				c.logger.Warn("tide request returned server error", "attempt", attempt, "status", resp.StatusCode)
			default:
				return nil, errors.Newf("datagetter returned status %d", resp.StatusCode).
					Component("tide").
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
		Component("tide").
		Category(errors.CategoryNetwork).
		Context("operation", "fetch_predictions").
		Build()
}
