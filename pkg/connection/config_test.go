package connection

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Setenv("LIVECACHE_BASE_URL", "https://api.example.com")
	t.Setenv("LIVECACHE_TOKEN", "secret")
	t.Setenv("LIVECACHE_TIMEOUT", "5s")

	cfg, err := ParseConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, "default", cfg.Namespace)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 10*time.Second, cfg.RetryMaxElapsed)
}

func TestParseConfigRequiresBaseURL(t *testing.T) {
	t.Setenv("LIVECACHE_BASE_URL", "placeholder")
	os.Unsetenv("LIVECACHE_BASE_URL")
	_, err := ParseConfig()
	require.Error(t, err)
}

func TestFeedURLDerivation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit", Config{BaseURL: "https://api.example.com", FeedURL: "wss://feed.example.com/live"}, "wss://feed.example.com/live"},
		{"https", Config{BaseURL: "https://api.example.com"}, "wss://api.example.com/feed"},
		{"http", Config{BaseURL: "http://localhost:8080"}, "ws://localhost:8080/feed"},
		{"trailing slash", Config{BaseURL: "https://api.example.com/"}, "wss://api.example.com/feed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.feedURL())
		})
	}
}
