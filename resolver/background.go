package resolver

import (
	"regexp"
	"strings"
)

var hexColorPattern = regexp.MustCompile(`^#?([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// NormalizeBackground expands a 3- or 6-digit hex color, with or without a
// leading #, to lowercase #rrggbb form. Anything else yields the fallback.
func NormalizeBackground(param, fallback string) string {
	m := hexColorPattern.FindStringSubmatch(strings.TrimSpace(param))
	if m == nil {
		return fallback
	}

	hex := strings.ToLower(m[1])
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return "#" + hex
}
