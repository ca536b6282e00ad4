package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString trims surrounding whitespace and caps length without
// splitting a multi-byte rune at the cut.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 || len(trimmed) <= maxLen {
		return trimmed
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	return trimmed[:cut]
}
