package opendata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/parking-schedule-service/internal/domain"
)

// Client downloads the parking regulation dataset as a GeoJSON feature
// collection. It implements pipeline.Extractor.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a dataset client for the given export URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Extract fetches and decodes every feature of the dataset.
func (c *Client) Extract(ctx context.Context) ([]domain.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset API error: status %d: %s", resp.StatusCode, body)
	}

	records, skipped, err := Decode(resp.Body)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.logger.Warn("features without a point geometry skipped", "skipped", skipped)
	}
	c.logger.Debug("dataset fetched", "records", len(records), "url", c.url)
	return records, nil
}
