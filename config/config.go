package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// LocalFeed maps a short token to a JSON feed file on disk. The file is a
// JSON array of {id, url} objects, normally produced by the scrape command.
type LocalFeed struct {
	Token      string `toml:"token"`
	Path       string `toml:"path"`
	Background string `toml:"background,omitempty"`
}

// ChannelFeed maps a short token to a full channel URL. The resolver rewrites
// the token to this URL and then fetches it like any other channel source.
type ChannelFeed struct {
	Token string `toml:"token"`
	URL   string `toml:"url"`
}

// Duration wraps time.Duration so it can be written as "10s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// Config is the immutable alias table and the resolver's tunables. It is
// built once at startup and passed into the resolver, never mutated.
type Config struct {
	DefaultSource     string   `toml:"default_source"`
	QueueSize         int      `toml:"queue_size"`
	Deduplicate       bool     `toml:"deduplicate"`
	FetchTimeout      Duration `toml:"fetch_timeout"`
	ProxyBase         string   `toml:"proxy_base"`
	DefaultBackground string   `toml:"default_background"`

	// MirrorDir is a snapshot tree produced by the mirror command. When set,
	// the server mounts it under /mirror.
	MirrorDir string `toml:"mirror_dir"`

	LocalFeeds   []LocalFeed   `toml:"local_feeds"`
	ChannelFeeds []ChannelFeed `toml:"channel_feeds"`
}

// Default returns the built-in configuration, including the alias table the
// player ships with. Every command works without a config file.
func Default() *Config {
	return &Config{
		DefaultSource:     "ee",
		QueueSize:         15,
		Deduplicate:       false,
		FetchTimeout:      Duration{10 * time.Second},
		ProxyBase:         "https://r.jina.ai/",
		DefaultBackground: "#000000",
		LocalFeeds: []LocalFeed{
			{Token: "ee", Path: "data/ee-shorts.json", Background: "#1c8178"},
		},
		ChannelFeeds: []ChannelFeed{
			{Token: "marcopolo", URL: "https://www.youtube.com/@MarcoPoloTV"},
		},
	}
}

// LoadConfig reads a TOML config file on top of the built-in defaults, so a
// partial file only overrides what it names.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if config.QueueSize <= 0 {
		config.QueueSize = Default().QueueSize
	}
	if config.FetchTimeout.Duration <= 0 {
		config.FetchTimeout = Default().FetchTimeout
	}

	return config, nil
}

// LocalFeed looks up a local-feed alias by token, case-insensitively.
func (c *Config) LocalFeed(token string) (LocalFeed, bool) {
	for _, feed := range c.LocalFeeds {
		if strings.EqualFold(feed.Token, token) {
			return feed, true
		}
	}
	return LocalFeed{}, false
}

// ChannelFeed looks up a channel-rewrite alias by token, case-insensitively.
func (c *Config) ChannelFeed(token string) (ChannelFeed, bool) {
	for _, feed := range c.ChannelFeeds {
		if strings.EqualFold(feed.Token, token) {
			return feed, true
		}
	}
	return ChannelFeed{}, false
}
