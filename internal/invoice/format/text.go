package format

import "strings"

const (
	Ellipsis        = "..."
	PlaceholderDash = "-"
)

// Truncate caps name at limit runes. Longer names keep the first limit-3
// runes followed by an ellipsis so the result is exactly limit runes long.
// It does not look for word boundaries.
func Truncate(name string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	if limit <= len(Ellipsis) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(Ellipsis)]) + Ellipsis
}

// Placeholder returns the trimmed value, or a dash when it is blank.
func Placeholder(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return PlaceholderDash
	}
	return trimmed
}
