package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantdesk/quantdesk-go/internal/config"
)

const defaultFredBaseURL = "https://api.stlouisfed.org/fred"

// FredObservation is one raw observation as returned by the FRED API. Value
// is a string because FRED reports missing observations as ".".
type FredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// SeriesFetcher supplies raw observations for an economic series.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, seriesID, start, end string) ([]FredObservation, error)
}

// FredClient fetches economic series observations from the FRED API.
type FredClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// NewFredClient creates a client for the configured FRED endpoint.
func NewFredClient(cfg config.FredConfig, logger *logrus.Logger) *FredClient {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultFredBaseURL
	}
	return &FredClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// FetchSeries returns the observations of one series over [start, end], both
// dates formatted YYYY-MM-DD.
func (c *FredClient) FetchSeries(ctx context.Context, seriesID, start, end string) ([]FredObservation, error) {
	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	params.Set("observation_start", start)
	params.Set("observation_end", end)

	endpoint := c.baseURL + "/series/observations?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create FRED request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FRED request for %s failed: %w", seriesID, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WithError(err).Warn("Error closing FRED response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read FRED response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("FRED error (%d) for %s: %s", resp.StatusCode, seriesID, string(body))
	}

	var payload struct {
		Observations []FredObservation `json:"observations"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal FRED response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"series_id":    seriesID,
		"observations": len(payload.Observations),
	}).Debug("Fetched FRED series")

	return payload.Observations, nil
}
