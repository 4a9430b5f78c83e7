package tui

import (
	"fmt"
	"strings"
)

// truncateEnd shortens s to at most limit runes, ending in an ellipsis
// when cut.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// truncateMiddle keeps both ends of s, which suits URLs.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	n := len(r)
	if n <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left
	return string(r[:left]) + "…" + string(r[n-right:])
}

// formatCount renders counters the way feeds usually show them: 999,
// 1.2K, 3.4M.
func formatCount(n int64) string {
	switch {
	case n < 0:
		return "0"
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 1_000_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1000)) + "K"
	default:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000_000)) + "M"
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}

// sanitizeQuery trims, bounds, and collapses whitespace in a search query.
func sanitizeQuery(input string) string {
	if len(input) > 256 {
		input = input[:256]
	}
	return strings.Join(strings.Fields(input), " ")
}
