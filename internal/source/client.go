package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fplcentral/analytics-api/internal/models"
)

// ErrSnapshotUnavailable marks an initialization failure: the upstream feed
// could not be reached and no pipeline run can start. Fatal to the run,
// never partially recovered.
var ErrSnapshotUnavailable = errors.New("source snapshot unavailable")

const (
	defaultBaseURL  = "https://fantasy.premierleague.com/api"
	defaultTimeout  = 20 * time.Second
	defaultCacheTTL = 5 * time.Minute

	cacheKeyBootstrap = "source:bootstrap"
	cacheKeyFixtures  = "source:fixtures"
)

// ClientConfig configures the upstream feed client.
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration
	Redis     *redis.Client // optional; nil disables response caching
	Logger    *zap.Logger
}

// Client fetches season data from the upstream fantasy API and materializes
// immutable snapshots. Responses are cached in Redis so repeated pipeline
// runs inside the TTL reuse one upstream fetch.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	cacheTTL  time.Duration
	redis     *redis.Client
	logger    *zap.SugaredLogger
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "fplcentral-analytics/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		cacheTTL:  cfg.CacheTTL,
		redis:     cfg.Redis,
		logger:    cfg.Logger.Sugar(),
	}
}

// Snapshot fetches bootstrap and fixture data and builds one immutable
// snapshot. Any fetch or decode failure wraps ErrSnapshotUnavailable.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	bootstrapBody, err := c.fetch(ctx, "/bootstrap-static/", cacheKeyBootstrap)
	if err != nil {
		return nil, fmt.Errorf("%w: bootstrap: %v", ErrSnapshotUnavailable, err)
	}
	var bootstrap bootstrapResponse
	if err := json.Unmarshal(bootstrapBody, &bootstrap); err != nil {
		return nil, fmt.Errorf("%w: decode bootstrap: %v", ErrSnapshotUnavailable, err)
	}

	fixturesBody, err := c.fetch(ctx, "/fixtures/", cacheKeyFixtures)
	if err != nil {
		return nil, fmt.Errorf("%w: fixtures: %v", ErrSnapshotUnavailable, err)
	}
	var fixtureDTOs []fixtureDTO
	if err := json.Unmarshal(fixturesBody, &fixtureDTOs); err != nil {
		return nil, fmt.Errorf("%w: decode fixtures: %v", ErrSnapshotUnavailable, err)
	}

	now := time.Now().UTC()
	currentRound := currentRoundOf(bootstrap.Events)
	roundsElapsed := currentRound
	if roundsElapsed < 1 {
		roundsElapsed = 1
	}

	competitors := make([]models.Competitor, 0, len(bootstrap.Elements))
	for _, e := range bootstrap.Elements {
		competitors = append(competitors, convertElement(e, roundsElapsed, now))
	}
	teams := make([]models.Team, 0, len(bootstrap.Teams))
	for _, t := range bootstrap.Teams {
		teams = append(teams, models.Team{ID: t.ID, Name: t.Name, ShortName: t.ShortName})
	}
	fixtures := make([]models.Fixture, 0, len(fixtureDTOs))
	for _, f := range fixtureDTOs {
		fixtures = append(fixtures, convertFixture(f))
	}

	c.logger.Infow("Season snapshot fetched",
		"currentRound", currentRound,
		"competitors", len(competitors),
		"fixtures", len(fixtures),
	)

	return NewSnapshot(now, currentRound, competitors, teams, fixtures), nil
}

// fetch returns the response body for path, preferring the Redis cache.
// Cache outages degrade to a direct fetch and are logged, never fatal.
func (c *Client) fetch(ctx context.Context, path, cacheKey string) ([]byte, error) {
	if c.redis != nil {
		body, err := c.redis.Get(ctx, cacheKey).Bytes()
		if err == nil && len(body) > 0 {
			return body, nil
		}
		if err != nil && err != redis.Nil {
			c.logger.Warnw("Snapshot cache read failed, fetching upstream", "key", cacheKey, "error", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}

	if c.redis != nil {
		if err := c.redis.Set(ctx, cacheKey, body, c.cacheTTL).Err(); err != nil {
			c.logger.Warnw("Snapshot cache write failed", "key", cacheKey, "error", err)
		}
	}
	return body, nil
}
