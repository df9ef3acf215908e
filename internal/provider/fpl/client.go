// Package fpl provides the HTTP client for the public Fantasy Premier League
// API. No key is required. Responses are cached in a cache.Store and
// concurrent misses for the same path share one upstream request.
package fpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/albapepper/pitchside/internal/cache"
)

// DefaultBaseURL is the public FPL API root.
const DefaultBaseURL = "https://fantasy.premierleague.com/api"

const (
	pathBootstrap = "/bootstrap-static/"
	pathFixtures  = "/fixtures/"
)

// Client is the FPL HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	cache      cache.Store
	flight     singleflight.Group
	logger     *slog.Logger
}

// NewClient creates an FPL client with rate limiting. store may be nil to
// disable caching.
func NewClient(baseURL string, requestsPerMinute int, store cache.Store, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if store == nil {
		store = cache.NewMemory(false)
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 5),
		cache:      store,
		logger:     logger,
	}
}

// Bootstrap returns the static snapshot (teams, players, gameweeks).
func (c *Client) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	var b Bootstrap
	if err := c.getJSON(ctx, pathBootstrap, cache.TTLBootstrap, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Fixtures returns every fixture of the season.
func (c *Client) Fixtures(ctx context.Context) ([]Fixture, error) {
	var f []Fixture
	if err := c.getJSON(ctx, pathFixtures, cache.TTLFixtures, &f); err != nil {
		return nil, err
	}
	return f, nil
}

// Players returns bootstrap elements joined with their teams.
func (c *Client) Players(ctx context.Context) ([]Player, error) {
	b, err := c.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	return b.Players(), nil
}

// Injuries returns players that are not fully available.
func (c *Client) Injuries(ctx context.Context) ([]Player, error) {
	b, err := c.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	return b.Injuries(), nil
}

// PlayerSummary returns a player's fixtures, history and past seasons as
// raw JSON.
func (c *Client) PlayerSummary(ctx context.Context, playerID int) (json.RawMessage, error) {
	data, err := c.getRaw(ctx, "/element-summary/"+strconv.Itoa(playerID)+"/", cache.TTLPlayerSummary)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// EventLive returns live player stats for a gameweek.
func (c *Client) EventLive(ctx context.Context, event int) (*EventLive, error) {
	var live EventLive
	if err := c.getJSON(ctx, "/event/"+strconv.Itoa(event)+"/live/", cache.TTLLive, &live); err != nil {
		return nil, err
	}
	return &live, nil
}

// Warm refetches bootstrap and fixtures concurrently, replacing whatever is
// cached. It fails if either request fails.
func (c *Client) Warm(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.refresh(gctx, pathBootstrap, cache.TTLBootstrap)
		return err
	})
	g.Go(func() error {
		_, err := c.refresh(gctx, pathFixtures, cache.TTLFixtures)
		return err
	})
	return g.Wait()
}

// --------------------------------------------------------------------------
// Transport
// --------------------------------------------------------------------------

func (c *Client) getJSON(ctx context.Context, path string, ttl time.Duration, v interface{}) error {
	data, err := c.getRaw(ctx, path, ttl)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// getRaw serves path from cache, or fetches it once for all concurrent
// callers and caches the body.
func (c *Client) getRaw(ctx context.Context, path string, ttl time.Duration) ([]byte, error) {
	if data, _, ok := c.cache.Get(ctx, cacheKey(path)); ok {
		return data, nil
	}
	return c.refresh(ctx, path, ttl)
}

func (c *Client) refresh(ctx context.Context, path string, ttl time.Duration) ([]byte, error) {
	ch := c.flight.DoChan(path, func() (interface{}, error) {
		// Shared by every waiter, so it must not die with the first caller.
		shared := context.WithoutCancel(ctx)
		data, err := c.fetch(shared, path)
		if err != nil {
			return nil, err
		}
		c.cache.Set(shared, cacheKey(path), data, ttl)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// fetch performs a rate-limited GET request to an FPL endpoint.
func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pitchside/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FPL %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	c.logger.Debug("FPL fetch", "path", path, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}

func cacheKey(path string) string { return "fpl:" + path }

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
