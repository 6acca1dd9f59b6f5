package scraper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortloop/scraper"
)

func mustDecode(t *testing.T, data string) *scraper.Value {
	t.Helper()
	v, err := scraper.DecodeValue(data)
	require.NoError(t, err)
	return v
}

func TestCollectVideoIDs(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		limit    int
		expected []string
	}{
		{
			name:     "empty object",
			json:     `{}`,
			limit:    10,
			expected: nil,
		},
		{
			name:     "single entry",
			json:     `{"reelWatchEndpoint":{"videoId":"AAAAAAAAAA1"}}`,
			limit:    10,
			expected: []string{"AAAAAAAAAA1"},
		},
		{
			name: "document order across nesting",
			json: `{"a":[{"reelWatchEndpoint":{"videoId":"AAAAAAAAAA1"}}],` +
				`"b":{"c":{"reelWatchEndpoint":{"videoId":"BBBBBBBBBB2"}}},` +
				`"d":{"reelWatchEndpoint":{"videoId":"CCCCCCCCCC3"}}}`,
			limit:    10,
			expected: []string{"AAAAAAAAAA1", "BBBBBBBBBB2", "CCCCCCCCCC3"},
		},
		{
			name: "duplicates keep first occurrence",
			json: `[{"reelWatchEndpoint":{"videoId":"AAAAAAAAAA1"}},` +
				`{"reelWatchEndpoint":{"videoId":"BBBBBBBBBB2"}},` +
				`{"reelWatchEndpoint":{"videoId":"AAAAAAAAAA1"}},` +
				`{"reelWatchEndpoint":{"videoId":"CCCCCCCCCC3"}}]`,
			limit:    10,
			expected: []string{"AAAAAAAAAA1", "BBBBBBBBBB2", "CCCCCCCCCC3"},
		},
		{
			name: "limit bounds unique ids",
			json: `[{"reelWatchEndpoint":{"videoId":"AAAAAAAAAA1"}},` +
				`{"reelWatchEndpoint":{"videoId":"AAAAAAAAAA1"}},` +
				`{"reelWatchEndpoint":{"videoId":"BBBBBBBBBB2"}},` +
				`{"reelWatchEndpoint":{"videoId":"CCCCCCCCCC3"}}]`,
			limit:    2,
			expected: []string{"AAAAAAAAAA1", "BBBBBBBBBB2"},
		},
		{
			name:     "malformed ids are skipped",
			json:     `[{"reelWatchEndpoint":{"videoId":"short"}},{"reelWatchEndpoint":{"videoId":"AAAAAAAAAA1"}}]`,
			limit:    10,
			expected: []string{"AAAAAAAAAA1"},
		},
		{
			name:     "endpoint without videoId",
			json:     `{"reelWatchEndpoint":{"params":"CAs"}}`,
			limit:    10,
			expected: nil,
		},
		{
			name: "zero limit is unbounded",
			json: `[{"reelWatchEndpoint":{"videoId":"AAAAAAAAAA1"}},` +
				`{"reelWatchEndpoint":{"videoId":"BBBBBBBBBB2"}}]`,
			limit:    0,
			expected: []string{"AAAAAAAAAA1", "BBBBBBBBBB2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := scraper.CollectVideoIDs(mustDecode(t, tt.json), tt.limit)
			assert.Equal(t, tt.expected, ids)
		})
	}
}
