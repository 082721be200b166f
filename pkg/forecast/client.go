// Package forecast is the client for the demand forecast model service.
//
// The model service owns the forecast models and per-zone demand trends;
// GridScope only reads them and switches the active model. All GETs retry
// with backoff. Model selection is intentionally not retried: the POST is
// not idempotent from the service's point of view and a duplicate select
// after a timeout could override a newer selection.
package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/gridscope/gridscope/pkg/common"
	"github.com/gridscope/gridscope/pkg/log"
	"github.com/gridscope/gridscope/pkg/types"
	"github.com/levenlabs/go-lflag"
	"github.com/maypok86/otter/v2"
)

// errNoRetry marks request failures that retrying cannot fix (4xx responses).
var errNoRetry = errors.New("request cannot be retried")

// Client talks to the forecast model service.
type Client struct {
	baseURL  string
	client   *http.Client
	trendTTL time.Duration

	trendCache *otter.Cache[string, types.DemandTrend]

	// selectMu serializes SelectModel so two overlapping selections cannot
	// interleave their read-compare-POST sequences.
	selectMu sync.Mutex

	// mu guards the cached current model id.
	mu           sync.Mutex
	currentModel string
	haveCurrent  bool
}

// Configured sets up the forecast client based on flags.
// It uses lflag to register command-line flags for configuration.
func Configured() *Client {
	c := &Client{}

	apiBase := lflag.String("forecast-api-base", "http://localhost:8001", "Base URL of the forecast model service")
	timeout := lflag.Duration("forecast-timeout", 10*time.Second, "Timeout for forecast model service requests")
	trendTTL := lflag.Duration("forecast-trend-cache-ttl", 30*time.Second, "TTL for cached per-zone demand trends")

	lflag.Do(func() {
		c.baseURL = *apiBase
		c.client = common.HTTPClient(*timeout)
		c.trendTTL = *trendTTL
		c.initCache()
	})

	return c
}

// New creates a client directly, bypassing flag registration. Used by the
// CLI and tests.
func New(baseURL string, timeout time.Duration, trendTTL time.Duration) *Client {
	c := &Client{
		baseURL:  baseURL,
		client:   common.HTTPClient(timeout),
		trendTTL: trendTTL,
	}
	c.initCache()
	return c
}

func (c *Client) initCache() {
	c.trendCache = otter.Must(&otter.Options[string, types.DemandTrend]{
		MaximumSize:      128,
		ExpiryCalculator: otter.ExpiryWriting[string, types.DemandTrend](c.trendTTL),
	})
}

// Validate ensures the configuration is valid.
func (c *Client) Validate() error {
	if c.baseURL == "" {
		return fmt.Errorf("forecast-api-base is required")
	}
	if _, err := url.Parse(c.baseURL); err != nil {
		return fmt.Errorf("failed to parse forecast api base (%s): %w", c.baseURL, err)
	}
	return nil
}

// getJSON issues a GET against the service and decodes the JSON response,
// retrying network errors and 5xx responses with backoff.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	u := c.baseURL + path
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return fmt.Errorf("failed to build request (%s): %w", u, errNoRetry)
			}
			resp, err := c.client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed (%s): %w", u, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode >= http.StatusInternalServerError {
				return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, u)
			}
			if resp.StatusCode >= http.StatusBadRequest {
				return fmt.Errorf("unexpected status %d from %s: %w", resp.StatusCode, u, errNoRetry)
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("failed to decode response from %s: %w", u, errNoRetry)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(250*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, errNoRetry)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).WarnContext(ctx, "retrying forecast service request",
				slog.String("url", u),
				slog.Uint64("attempt", uint64(n)+1),
				slog.Any("error", err))
		}),
	)
}

// Models returns all available forecast models.
func (c *Client) Models(ctx context.Context) ([]types.ModelInfo, error) {
	var models []types.ModelInfo
	if err := c.getJSON(ctx, "/models", &models); err != nil {
		return nil, err
	}
	return models, nil
}

// CurrentModel returns the id of the active forecast model.
func (c *Client) CurrentModel(ctx context.Context) (string, error) {
	var resp struct {
		CurrentModel string `json:"current_model"`
	}
	if err := c.getJSON(ctx, "/models/current", &resp); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.currentModel = resp.CurrentModel
	c.haveCurrent = true
	c.mu.Unlock()

	return resp.CurrentModel, nil
}

// SelectModel makes the given model active. It returns false without issuing
// a request when the model is already active. Overlapping calls are
// serialized so the last call to return reflects the service's final state.
func (c *Client) SelectModel(ctx context.Context, modelID string) (bool, error) {
	if modelID == "" {
		return false, fmt.Errorf("modelID is required")
	}

	c.selectMu.Lock()
	defer c.selectMu.Unlock()

	c.mu.Lock()
	current, known := c.currentModel, c.haveCurrent
	c.mu.Unlock()
	if !known {
		var err error
		current, err = c.CurrentModel(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to get current model: %w", err)
		}
	}
	if current == modelID {
		return false, nil
	}

	u := c.baseURL + "/models/select/" + url.PathEscape(modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request (%s): %w", u, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to select model %s: %w", modelID, err)
	}
	defer resp.Body.Close()
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return false, fmt.Errorf("unexpected status %d selecting model %s", resp.StatusCode, modelID)
	}

	c.mu.Lock()
	c.currentModel = modelID
	c.haveCurrent = true
	c.mu.Unlock()

	return true, nil
}

// CurrentMetrics returns the error metrics for the active model.
func (c *Client) CurrentMetrics(ctx context.Context) (types.ModelMetrics, error) {
	var m types.ModelMetrics
	if err := c.getJSON(ctx, "/models/current/metrics", &m); err != nil {
		return types.ModelMetrics{}, err
	}
	return m, nil
}

// DemandTrend returns the demand trend for a zone, served from a short-lived
// cache so dashboard refreshes don't hammer the model service.
func (c *Client) DemandTrend(ctx context.Context, zone string) (types.DemandTrend, error) {
	if t, ok := c.trendCache.GetIfPresent(zone); ok {
		return t, nil
	}

	var t types.DemandTrend
	if err := c.getJSON(ctx, "/demand/trend?zone="+url.QueryEscape(zone), &t); err != nil {
		return types.DemandTrend{}, err
	}
	c.trendCache.Set(zone, t)
	return t, nil
}
