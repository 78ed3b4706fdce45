package careers

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText applies NFKC normalisation, trims surrounding whitespace and
// drops control characters other than newlines and tabs.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.TrimSpace(normed)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
}

// foldText prepares text for case-insensitive substring matching.
func foldText(text string) string {
	return strings.ToLower(NormalizeText(text))
}
