package mirror

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

var (
	mirroredPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortloop_mirrored_pages_total",
		Help: "The total number of pages written to a snapshot tree",
	})
	mirroredAssets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortloop_mirrored_assets_total",
		Help: "The total number of assets downloaded into a snapshot tree",
	})
	mirrorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortloop_mirror_failures_total",
		Help: "The total number of fetches skipped during a snapshot run",
	}, []string{"stage"})
)

// Mirror captures a site into a local directory tree that can be served as
// static files. Pages are crawled breadth-first from a start URL; tag assets
// are downloaded and every rewritten reference is relative, so the tree works
// from any mount point.
type Mirror struct {
	client *http.Client

	// OutputRoot is the directory the captured tree is written under.
	OutputRoot string

	// MaxPages bounds how many pages a single run fetches.
	MaxPages int

	// FollowPrefix restricts which same-site links are crawled. Empty
	// follows every same-site link.
	FollowPrefix string

	// LocalizeHosts are the hosts whose URLs inside style rules and meta
	// content are downloaded and rewritten. Tag assets are always
	// localized regardless of host.
	LocalizeHosts []string

	assetCache map[string]string
}

func New(timeout time.Duration, outputRoot string) *Mirror {
	return &Mirror{
		client:     &http.Client{Timeout: timeout},
		OutputRoot: outputRoot,
		MaxPages:   30,
		assetCache: make(map[string]string),
	}
}

// Run crawls from startURL until the queue drains or the page budget is
// spent, and returns the number of pages written. Individual page and asset
// failures are logged and skipped; only an unusable start URL fails the run.
func (m *Mirror) Run(ctx context.Context, startURL string) (int, error) {
	start, ok := Canonicalize(startURL, startURL)
	if !ok {
		return 0, fmt.Errorf("invalid start url %q", startURL)
	}
	site, err := url.Parse(start)
	if err != nil {
		return 0, fmt.Errorf("invalid start url %q: %w", startURL, err)
	}

	queue := []string{start}
	visited := map[string]struct{}{}

	for len(queue) > 0 && len(visited) < m.MaxPages {
		current := queue[0]
		queue = queue[1:]
		if _, seen := visited[current]; seen {
			continue
		}

		body, err := m.get(ctx, current)
		if err != nil {
			mirrorFailures.WithLabelValues("page").Inc()
			log.WithFields(log.Fields{
				"url":   current,
				"error": err,
			}).Warn("Page fetch failed, skipping")
			continue
		}
		visited[current] = struct{}{}

		links, err := m.processPage(ctx, site.Host, current, body)
		if err != nil {
			mirrorFailures.WithLabelValues("page").Inc()
			log.WithFields(log.Fields{
				"url":   current,
				"error": err,
			}).Warn("Page rewrite failed, skipping")
			continue
		}

		for _, link := range links {
			if _, seen := visited[link]; !seen {
				queue = append(queue, link)
			}
		}
	}

	return len(visited), nil
}

func (m *Mirror) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// download fetches an asset once per run and returns its local path, or ""
// when the fetch failed, in which case the reference keeps its remote URL.
func (m *Mirror) download(ctx context.Context, canon string) string {
	if local, ok := m.assetCache[canon]; ok {
		return local
	}

	body, err := m.get(ctx, canon)
	if err != nil {
		mirrorFailures.WithLabelValues("asset").Inc()
		log.WithFields(log.Fields{
			"url":   canon,
			"error": err,
		}).Warn("Asset fetch failed, keeping remote URL")
		return ""
	}

	local := LocalPath(canon, m.OutputRoot)
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		log.WithFields(log.Fields{"path": local, "error": err}).Warn("Could not create asset directory")
		return ""
	}
	if err := os.WriteFile(local, body, 0o644); err != nil {
		log.WithFields(log.Fields{"path": local, "error": err}).Warn("Could not write asset")
		return ""
	}

	m.assetCache[canon] = local
	mirroredAssets.Inc()
	return local
}

func (m *Mirror) shouldLocalize(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	for _, h := range m.LocalizeHosts {
		if sameHost(u.Host, h) {
			return true
		}
	}
	return false
}
