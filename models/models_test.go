package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shortloop/models"
)

func TestValidID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected bool
	}{
		{
			name:     "typical id",
			id:       "dQw4w9WgXcQ",
			expected: true,
		},
		{
			name:     "underscore and dash",
			id:       "a_b-c_d-e_f",
			expected: true,
		},
		{
			name:     "too short",
			id:       "dQw4w9WgXc",
			expected: false,
		},
		{
			name:     "too long",
			id:       "dQw4w9WgXcQQ",
			expected: false,
		},
		{
			name:     "illegal character",
			id:       "dQw4w9WgX.Q",
			expected: false,
		},
		{
			name:     "empty",
			id:       "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, models.ValidID(tt.id))
		})
	}
}

func TestNewShortEntry(t *testing.T) {
	entry := models.NewShortEntry("dQw4w9WgXcQ")
	assert.Equal(t, "dQw4w9WgXcQ", entry.ID)
	assert.Equal(t, "https://www.youtube.com/shorts/dQw4w9WgXcQ", entry.URL)
	assert.NoError(t, entry.Validate())
}

func TestValidate(t *testing.T) {
	assert.Error(t, models.ShortEntry{ID: "bad", URL: "https://example.com"}.Validate())

	// URL must embed the ID verbatim
	assert.Error(t, models.ShortEntry{
		ID:  "dQw4w9WgXcQ",
		URL: "https://www.youtube.com/shorts/something",
	}.Validate())
}
