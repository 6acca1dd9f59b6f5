package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortloop/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "ee", cfg.DefaultSource)
	assert.Equal(t, 15, cfg.QueueSize)
	assert.False(t, cfg.Deduplicate)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout.Duration)
	assert.Equal(t, "https://r.jina.ai/", cfg.ProxyBase)
	assert.Equal(t, "#000000", cfg.DefaultBackground)
	assert.Empty(t, cfg.MirrorDir)

	ee, ok := cfg.LocalFeed("ee")
	require.True(t, ok)
	assert.Equal(t, "data/ee-shorts.json", ee.Path)
	assert.NotEmpty(t, ee.Background)

	marco, ok := cfg.ChannelFeed("marcopolo")
	require.True(t, ok)
	assert.Contains(t, marco.URL, "youtube.com")
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shortloop.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_source = "house"
queue_size = 5
deduplicate = true
fetch_timeout = "3s"
mirror_dir = "site"

[[local_feeds]]
token = "house"
path = "data/house.json"
background = "#abcdef"

[[channel_feeds]]
token = "other"
url = "https://www.youtube.com/@Other"
`), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "house", cfg.DefaultSource)
	assert.Equal(t, 5, cfg.QueueSize)
	assert.True(t, cfg.Deduplicate)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout.Duration)
	assert.Equal(t, "site", cfg.MirrorDir)

	// Untouched keys keep their defaults
	assert.Equal(t, "https://r.jina.ai/", cfg.ProxyBase)

	house, ok := cfg.LocalFeed("house")
	require.True(t, ok)
	assert.Equal(t, "#abcdef", house.Background)

	other, ok := cfg.ChannelFeed("OTHER")
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/@Other", other.URL)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`queue_size = "many"`), 0o644))

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`fetch_timeout = "soon"`), 0o644))

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}

func TestAliasLookupIsCaseInsensitive(t *testing.T) {
	cfg := config.Default()

	_, ok := cfg.LocalFeed("EE")
	assert.True(t, ok)

	_, ok = cfg.ChannelFeed("MarcoPolo")
	assert.True(t, ok)

	_, ok = cfg.LocalFeed("unknown")
	assert.False(t, ok)
}
