package scraper

import (
	"errors"
	"strings"
)

const payloadMarker = "var ytInitialData = "

var (
	// ErrPayloadNotFound means the page carries no ytInitialData assignment.
	ErrPayloadNotFound = errors.New("could not locate ytInitialData in page")

	// ErrMalformedPayload means the payload was located but never closes or
	// does not parse as JSON.
	ErrMalformedPayload = errors.New("malformed ytInitialData payload")

	// ErrNoShorts means the payload parsed but contained no shorts entries.
	ErrNoShorts = errors.New("no shorts were discovered in the channel page")
)

// ExtractInitialData returns the JSON object assigned to the ytInitialData
// variable in a channel page.
//
// The payload is a JavaScript object literal embedded in raw HTML, so there
// is no parser boundary to hand off to: the end is found by matching braces
// over the text. Braces inside quoted strings must not count, including
// after escaped quotes, so the scan tracks string state and backslash
// escapes byte by byte.
func ExtractInitialData(html string) (string, error) {
	start := strings.Index(html, payloadMarker)
	if start == -1 {
		return "", ErrPayloadNotFound
	}

	open := strings.IndexByte(html[start:], '{')
	if open == -1 {
		return "", ErrMalformedPayload
	}
	open += start

	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(html); i++ {
		c := html[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return html[open : i+1], nil
			}
		}
	}
	return "", ErrMalformedPayload
}
