package connection

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries everything needed to reach the hosted backend.
type Config struct {
	// BaseURL is the data service root, e.g. https://api.example.com.
	BaseURL string `env:"LIVECACHE_BASE_URL,required"`

	// FeedURL is the realtime feed endpoint. When empty it is derived from
	// BaseURL by swapping the scheme to websocket and appending /feed.
	FeedURL string `env:"LIVECACHE_FEED_URL"`

	// Token authenticates both transports, sent as a bearer token.
	Token string `env:"LIVECACHE_TOKEN"`

	// Namespace scopes all collections, letting one backend host several
	// deployments.
	Namespace string `env:"LIVECACHE_NAMESPACE" envDefault:"default"`

	// Timeout bounds each remote call, including transport retries.
	Timeout time.Duration `env:"LIVECACHE_TIMEOUT" envDefault:"30s"`

	// RetryMaxElapsed bounds how long a failing call is retried before the
	// error is surfaced. Retrying is transport-level only; the engine never
	// re-runs a settled mutation on its own.
	RetryMaxElapsed time.Duration `env:"LIVECACHE_RETRY_MAX_ELAPSED" envDefault:"10s"`
}

// ParseConfig loads Config from the environment.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing livecache config: %w", err)
	}
	return cfg, nil
}

func (c Config) feedURL() string {
	if c.FeedURL != "" {
		return c.FeedURL
	}
	url := c.BaseURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return strings.TrimSuffix(url, "/") + "/feed"
}
