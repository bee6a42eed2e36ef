// Package mirror relays ledger events to an optional remote logging
// endpoint. The tracker never depends on the mirror being reachable.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	cache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hexabet/internal/models"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultRateLimit = 5.0 // requests per second
	readCacheTTL     = 30 * time.Second
)

// Config holds mirror client settings.
type Config struct {
	BaseURL    string
	MaxRetries int
	RateLimit  float64
	Timeout    time.Duration
}

// Client talks to the remote ledger-logging endpoint with retries and a
// rate limit. Read endpoints are cached briefly because the remote side
// only changes when this process writes to it.
type Client struct {
	baseURL string
	client  *retryablehttp.Client
	limiter *rate.Limiter
	reads   *cache.Cache
	logger  *logrus.Logger
}

// NewClient creates a mirror client.
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = nil

	return &Client{
		baseURL: cfg.BaseURL,
		client:  rc,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		reads:   cache.New(readCacheTTL, readCacheTTL*2),
		logger:  logger,
	}
}

// LogEvent posts a settled event record to the remote ledger.
func (c *Client) LogEvent(ctx context.Context, rec models.EventRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logEvent", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to mirror event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("mirror rejected event: status %d", resp.StatusCode)
	}

	// Writes invalidate the read caches.
	c.reads.Flush()

	c.logger.WithField("event_id", rec.ID).Debug("Event mirrored to remote ledger")
	return nil
}

// GetHistory fetches the remote cumulative totals.
func (c *Client) GetHistory(ctx context.Context) (*models.BettingHistory, error) {
	var history models.BettingHistory
	if err := c.getJSON(ctx, "/getHistory", &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// GetTrustWeights fetches the remote per-bucket statistics.
func (c *Client) GetTrustWeights(ctx context.Context) (*models.BucketStatsSet, error) {
	var set models.BucketStatsSet
	if err := c.getJSON(ctx, "/getTrustWeights", &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// roiPayload mirrors the remote ROI response, which reports money amounts
// as strings to avoid float truncation in transit.
type roiPayload struct {
	Profit   string `json:"profit"`
	Invested string `json:"invested"`
	ROI      string `json:"roi"`
}

// GetROI fetches the remote realized ROI as a percentage.
func (c *Client) GetROI(ctx context.Context) (float64, error) {
	var payload roiPayload
	if err := c.getJSON(ctx, "/getROI", &payload); err != nil {
		return 0, err
	}

	if payload.ROI != "" {
		roi, err := decimal.NewFromString(payload.ROI)
		if err != nil {
			return 0, fmt.Errorf("failed to parse remote ROI %q: %w", payload.ROI, err)
		}
		return roi.InexactFloat64(), nil
	}

	profit, err := decimal.NewFromString(payload.Profit)
	if err != nil {
		return 0, fmt.Errorf("failed to parse remote profit %q: %w", payload.Profit, err)
	}
	invested, err := decimal.NewFromString(payload.Invested)
	if err != nil {
		return 0, fmt.Errorf("failed to parse remote invested %q: %w", payload.Invested, err)
	}
	if invested.IsZero() {
		return 0, nil
	}
	return profit.Div(invested).Mul(decimal.NewFromInt(100)).InexactFloat64(), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	if cached, found := c.reads.Get(path); found {
		return json.Unmarshal(cached.([]byte), out)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote ledger returned status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response for %s: %w", path, err)
	}

	c.reads.Set(path, body, cache.DefaultExpiration)
	return json.Unmarshal(body, out)
}
