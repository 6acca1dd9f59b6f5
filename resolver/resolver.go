package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"shortloop/config"
	"shortloop/models"
	"shortloop/scraper"
)

var (
	resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortloop_resolutions_total",
		Help: "The total number of source resolutions by strategy",
	}, []string{"source"})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortloop_fetch_failures_total",
		Help: "The total number of queue fetches that degraded to an empty queue",
	}, []string{"source"})
)

// Source is the resolved retrieval strategy for one page load. Exactly one
// variant is produced per resolution.
type Source interface {
	Kind() string
}

// LocalFeed reads a JSON feed file from disk. No network I/O.
type LocalFeed struct {
	Path       string
	Background string
}

// APIFetch lists a channel's shorts through the Data API with a caller key.
type APIFetch struct {
	Channel string
	Key     string
}

// ProxyFetch pulls the channel page through the text-rendering proxy and
// runs the embedded-payload extraction over the response body.
type ProxyFetch struct {
	URL string
}

func (LocalFeed) Kind() string  { return "local" }
func (APIFetch) Kind() string   { return "api" }
func (ProxyFetch) Kind() string { return "proxy" }

// Resolver turns source tokens into playback queues.
type Resolver struct {
	cfg    *config.Config
	client *http.Client
}

func New(cfg *config.Config) *Resolver {
	return &Resolver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout.Duration},
	}
}

// Resolve picks the retrieval strategy for a raw source token.
func (r *Resolver) Resolve(token, apiKey string) Source {
	if token == "" {
		token = r.cfg.DefaultSource
	}

	if feed, ok := r.cfg.LocalFeed(token); ok {
		return LocalFeed{Path: feed.Path, Background: feed.Background}
	}

	// Channel aliases rewrite the token and fall through to the channel path
	if channel, ok := r.cfg.ChannelFeed(token); ok {
		token = channel.URL
	}

	if apiKey != "" {
		return APIFetch{Channel: token, Key: apiKey}
	}
	return ProxyFetch{URL: r.cfg.ProxyBase + token}
}

// Fetch executes one retrieval strategy, returning up to queue_size IDs in
// source order.
func (r *Resolver) Fetch(ctx context.Context, src Source) ([]string, error) {
	switch s := src.(type) {
	case LocalFeed:
		return r.fetchLocal(s)
	case APIFetch:
		return r.fetchAPI(ctx, s)
	case ProxyFetch:
		return r.fetchProxy(ctx, s)
	}
	return nil, fmt.Errorf("unknown source %T", src)
}

// Queue is the full resolution contract: pick a strategy, execute it, clamp
// the result, and degrade every failure to an empty queue so the page always
// renders. The second return is the background for the resolved source.
func (r *Resolver) Queue(ctx context.Context, token, apiKey string) ([]string, string) {
	src := r.Resolve(token, apiKey)
	resolutions.WithLabelValues(src.Kind()).Inc()

	background := r.cfg.DefaultBackground
	if local, ok := src.(LocalFeed); ok && local.Background != "" {
		background = NormalizeBackground(local.Background, r.cfg.DefaultBackground)
	}

	ids, err := r.Fetch(ctx, src)
	if err != nil {
		fetchFailures.WithLabelValues(src.Kind()).Inc()
		log.WithFields(log.Fields{
			"source": src.Kind(),
			"error":  err,
		}).Warn("Queue fetch failed, serving empty queue")
		return []string{}, background
	}

	if r.cfg.Deduplicate {
		ids = lo.Uniq(ids)
	}
	if len(ids) > r.cfg.QueueSize {
		ids = ids[:r.cfg.QueueSize]
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, background
}

func (r *Resolver) fetchLocal(src LocalFeed) ([]string, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("read feed file: %w", err)
	}

	var entries []models.ShortEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse feed file %s: %w", src.Path, err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if len(ids) >= r.cfg.QueueSize {
			break
		}
		ids = append(ids, entry.ID)
	}
	return ids, nil
}

func (r *Resolver) fetchProxy(ctx context.Context, src ProxyFetch) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build proxy request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", src.URL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.URL, err)
	}

	payload, err := scraper.ExtractInitialData(string(body))
	if err != nil {
		return nil, err
	}
	root, err := scraper.DecodeValue(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scraper.ErrMalformedPayload, err)
	}
	return scraper.CollectVideoIDs(root, r.cfg.QueueSize), nil
}
