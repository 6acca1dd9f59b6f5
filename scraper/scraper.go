package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"shortloop/models"
)

const (
	defaultBase = "https://www.youtube.com"

	// YouTube serves the full server-rendered document, ytInitialData
	// included, to curl. Browser-like agents get a script-driven shell
	// that carries no payload worth parsing.
	userAgent = "curl/7.88.1"
)

var (
	scrapeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortloop_scrape_runs_total",
		Help: "The total number of scrape runs by outcome",
	}, []string{"outcome"})

	scrapedIDs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortloop_scraped_ids_total",
		Help: "The total number of unique video IDs extracted by the scraper",
	})
)

// Scraper downloads a channel's shorts tab and extracts its video listing.
type Scraper struct {
	client *http.Client
	limit  int

	// Base overrides the YouTube origin. Used by tests.
	Base string
}

// New returns a scraper that records at most limit unique shorts per run.
func New(timeout time.Duration, limit int) *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: timeout},
		limit:  limit,
		Base:   defaultBase,
	}
}

// NormalizeHandle prepends @ when it is missing.
func NormalizeHandle(handle string) string {
	if !strings.HasPrefix(handle, "@") {
		return "@" + handle
	}
	return handle
}

// FetchPage downloads the raw HTML of the shorts tab for a channel handle.
func (s *Scraper) FetchPage(ctx context.Context, handle string) (string, error) {
	url := fmt.Sprintf("%s/%s/shorts", s.Base, NormalizeHandle(handle))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}

// ExtractEntries runs payload extraction and the listing walk over a page.
func (s *Scraper) ExtractEntries(html string) ([]models.ShortEntry, error) {
	payload, err := ExtractInitialData(html)
	if err != nil {
		return nil, err
	}

	root, err := DecodeValue(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	ids := CollectVideoIDs(root, s.limit)
	if len(ids) == 0 {
		return nil, ErrNoShorts
	}

	return lo.Map(ids, func(id string, _ int) models.ShortEntry {
		return models.NewShortEntry(id)
	}), nil
}

// Scrape runs the full pipeline: fetch the shorts tab, extract the listing,
// synthesize entries. Every failure is fatal to the run.
func (s *Scraper) Scrape(ctx context.Context, handle string) ([]models.ShortEntry, error) {
	html, err := s.FetchPage(ctx, handle)
	if err != nil {
		scrapeRuns.WithLabelValues("fetch_error").Inc()
		return nil, err
	}

	entries, err := s.ExtractEntries(html)
	if err != nil {
		scrapeRuns.WithLabelValues("extract_error").Inc()
		return nil, err
	}

	scrapeRuns.WithLabelValues("ok").Inc()
	scrapedIDs.Add(float64(len(entries)))
	log.WithFields(log.Fields{
		"handle": NormalizeHandle(handle),
		"count":  len(entries),
	}).Info("Scraped shorts listing")

	return entries, nil
}

// WriteFeed persists entries as an indented JSON array. The data is written
// to a temp file in the target directory and renamed over the target, so a
// failed run never leaves a partial file behind.
func WriteFeed(path string, entries []models.ShortEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace feed: %w", err)
	}
	return nil
}
