// Package roster fetches the robot roster from the remote task service. A
// fetch failure is a degraded mode, not an error: the caller falls back to
// the built-in fleet.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hospigo/fleetd/core/logger"
	"github.com/hospigo/fleetd/core/model"
)

// Config holds the remote task-service endpoint settings.
type Config struct {
	// URL is the tasks endpoint; the all_robots query flag is appended.
	URL string `json:"url"`
	// TimeoutSeconds bounds one fetch attempt.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// SetDefaults applies a conservative request timeout.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Client retrieves the fleet roster over HTTP.
type Client struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
}

// NewClient creates a roster client.
func NewClient(cfg Config, log logger.Logger) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:    log,
	}
}

type rosterResponse struct {
	Robots []model.Robot `json:"robots"`
}

// Fetch returns the remote roster. On any failure it logs and returns an
// empty roster so the registry switches to the built-in fleet.
func (c *Client) Fetch(ctx context.Context) []model.Robot {
	if c.cfg.URL == "" {
		c.log.Warnf("no roster url configured, using built-in fleet")
		return nil
	}
	robots, err := c.fetch(ctx)
	if err != nil {
		c.log.Errorf("roster fetch failed, using built-in fleet: %v", err)
		return nil
	}
	c.log.Infof("fetched roster of %d robots", len(robots))
	return robots
}

func (c *Client) fetch(ctx context.Context) ([]model.Robot, error) {
	url := c.cfg.URL + "?all_robots=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	var body rosterResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return body.Robots, nil
}
