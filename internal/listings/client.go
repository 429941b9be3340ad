package listings

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"compscope/server/internal/models"
)

// Client talks to the external apartment-listings provider.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

// NewClient creates a listings client for the given provider base URL.
func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// SearchEndpoint returns the search path used for sync-log audit rows.
func (c *Client) SearchEndpoint() string {
	return c.baseURL + "/properties/search"
}

// SearchProperties fetches candidate properties within radiusMiles of a
// point, up to limit results. Provider failures are returned to the caller
// untouched; the syncer owns the audit logging.
func (c *Client) SearchProperties(lat, lon, radiusMiles float64, limit int) ([]models.CandidateProperty, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("radius", strconv.FormatFloat(radiusMiles, 'f', -1, 64))
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequest("GET", c.SearchEndpoint()+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CompScope Market Engine/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listings request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read listings response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listings provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var candidates []models.CandidateProperty
	if err := json.Unmarshal(body, &candidates); err != nil {
		return nil, fmt.Errorf("failed to parse listings response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"latitude":  lat,
		"longitude": lon,
		"radius":    radiusMiles,
		"count":     len(candidates),
	}).Debug("Fetched candidate properties")

	return candidates, nil
}
