package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AddDigit appends a keypad key to the amount display. "0" is replaced by the
// first digit; "." (or ",") is accepted once and at most two decimals are kept.
// Any other key is ignored.
func AddDigit(display, key string) string {
	if display == "" {
		display = "0"
	}
	if key == "," {
		key = "."
	}

	switch {
	case key == ".":
		if strings.Contains(display, ".") {
			return display
		}
		return display + "."
	case len(key) == 1 && key[0] >= '0' && key[0] <= '9':
		if _, frac, ok := strings.Cut(display, "."); ok && len(frac) >= 2 {
			return display
		}
		if display == "0" {
			return key
		}
		return display + key
	default:
		return display
	}
}

// RemoveDigit drops the last character, falling back to "0".
func RemoveDigit(display string) string {
	if len(display) > 1 {
		return display[:len(display)-1]
	}
	return "0"
}

// ParseAmount reads a keypad display or form value ("12,5" or "12.5").
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	s = strings.TrimSuffix(s, ".")
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\u202f' {
			return -1
		}
		return r
	}, s)
	return decimal.NewFromString(s)
}
