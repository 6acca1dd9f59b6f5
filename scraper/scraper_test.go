package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortloop/scraper"
)

func fixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "shorts_page.html"))
	require.NoError(t, err)
	return string(data)
}

func TestExtractEntriesFromFixture(t *testing.T) {
	s := scraper.New(time.Second, 50)

	entries, err := s.ExtractEntries(fixture(t))
	require.NoError(t, err)

	// The fixture carries four unique IDs plus one duplicate
	require.Len(t, entries, 4)
	assert.Equal(t, "AAAAAAAAAA1", entries[0].ID)
	assert.Equal(t, "BBBBBBBBBB2", entries[1].ID)
	assert.Equal(t, "CCCCCCCCCC3", entries[2].ID)
	assert.Equal(t, "DDDDDDDDDD4", entries[3].ID)

	for _, entry := range entries {
		assert.NoError(t, entry.Validate())
		assert.Contains(t, entry.URL, entry.ID)
	}
}

func TestExtractEntriesLimit(t *testing.T) {
	s := scraper.New(time.Second, 2)

	entries, err := s.ExtractEntries(fixture(t))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "AAAAAAAAAA1", entries[0].ID)
	assert.Equal(t, "BBBBBBBBBB2", entries[1].ID)
}

func TestExtractEntriesNoMarker(t *testing.T) {
	s := scraper.New(time.Second, 50)

	_, err := s.ExtractEntries(`<html><body>nothing embedded here</body></html>`)
	assert.ErrorIs(t, err, scraper.ErrPayloadNotFound)
}

func TestExtractEntriesNoShorts(t *testing.T) {
	s := scraper.New(time.Second, 50)

	_, err := s.ExtractEntries(`<script>var ytInitialData = {"contents":{}};</script>`)
	assert.ErrorIs(t, err, scraper.ErrNoShorts)
}

func TestScrapeAgainstFixtureServer(t *testing.T) {
	page := fixture(t)

	var gotPath, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	s := scraper.New(time.Second, 50)
	s.Base = srv.URL

	entries, err := s.Scrape(context.Background(), "fixturechannel")
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	// Handle normalization and the curl agent are part of the contract
	assert.Equal(t, "/@fixturechannel/shorts", gotPath)
	assert.Contains(t, gotAgent, "curl/")
}

func TestScrapeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := scraper.New(time.Second, 50)
	s.Base = srv.URL

	_, err := s.Scrape(context.Background(), "@whoever")
	assert.Error(t, err)
}

func TestWriteFeedRoundTrip(t *testing.T) {
	s := scraper.New(time.Second, 50)
	entries, err := s.ExtractEntries(fixture(t))
	require.NoError(t, err)

	dir := t.TempDir()
	out := filepath.Join(dir, "feed.json")

	require.NoError(t, scraper.WriteFeed(out, entries))
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	// Re-running against the same page must produce byte-identical output
	require.NoError(t, scraper.WriteFeed(out, entries))
	second, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// No stray temp files left behind
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFailedScrapeWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>no payload</body></html>`))
	}))
	defer srv.Close()

	s := scraper.New(time.Second, 50)
	s.Base = srv.URL

	dir := t.TempDir()
	out := filepath.Join(dir, "feed.json")

	entries, err := s.Scrape(context.Background(), "@whoever")
	require.ErrorIs(t, err, scraper.ErrPayloadNotFound)
	require.Nil(t, entries)

	// The caller never reaches WriteFeed on error; the output must not exist
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNormalizeHandle(t *testing.T) {
	assert.Equal(t, "@EEUK", scraper.NormalizeHandle("EEUK"))
	assert.Equal(t, "@EEUK", scraper.NormalizeHandle("@EEUK"))
}
