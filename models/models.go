package models

import (
	"fmt"
	"regexp"
	"strings"
)

const shortURLTemplate = "https://www.youtube.com/shorts/%s"

// videoIDPattern matches the fixed 11-character YouTube video identifier.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ShortEntry is one playable short in a feed file.
type ShortEntry struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// NewShortEntry builds an entry with the canonical watch URL for the ID.
func NewShortEntry(id string) ShortEntry {
	return ShortEntry{ID: id, URL: ShortURL(id)}
}

// ShortURL returns the canonical watch URL for a video ID.
func ShortURL(id string) string {
	return fmt.Sprintf(shortURLTemplate, id)
}

// ValidID reports whether id is a well-formed video identifier.
func ValidID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// Validate checks the feed-file invariants: the ID is well formed and the
// URL embeds it verbatim.
func (e ShortEntry) Validate() error {
	if !ValidID(e.ID) {
		return fmt.Errorf("invalid video id %q", e.ID)
	}
	if !strings.Contains(e.URL, e.ID) {
		return fmt.Errorf("url %q does not embed video id %q", e.URL, e.ID)
	}
	return nil
}

// FeedResponse is the payload handed to the player page.
type FeedResponse struct {
	Videos     []string `json:"videos"`
	Background string   `json:"background"`
}
