package dialog

import (
	"strings"
	"time"
	"unicode"
)

// DateLayout is the calendar date pattern event time strings must match.
const DateLayout = "02.01.2006"

// NoLinkSentinel skips a link step, recording an empty link.
const NoLinkSentinel = "no"

// IsAlpha reports whether text consists of letters and spaces only. Any
// alphabet counts, not just ASCII.
func IsAlpha(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// IsValidDate reports whether text parses as a DD.MM.YYYY date.
func IsValidDate(text string) bool {
	_, err := time.Parse(DateLayout, text)
	return err == nil
}

// IsTelegramLink reports whether text looks like a t.me link.
func IsTelegramLink(text string) bool {
	return strings.HasPrefix(text, "https://t.me/") || strings.HasPrefix(text, "t.me/")
}

// IsNoLink reports whether text is the case-insensitive "no link" sentinel.
func IsNoLink(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), NoLinkSentinel)
}
