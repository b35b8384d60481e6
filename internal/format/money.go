package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// groupSep is the fr-FR thousands separator (narrow no-break space).
	groupSep = "\u202f"
	// currencySep sits between the amount and the euro sign (no-break space).
	currencySep = "\u00a0"
)

// Money renders an amount the fr-FR way: "1 250,50 €".
func Money(d decimal.Decimal) string {
	return Number(d) + currencySep + "€"
}

// Number renders an amount with two decimals and fr-FR separators, without currency.
func Number(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.Round(2).IsZero() {
		s = "0.00"
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(groupSep)
		}
		b.WriteRune(r)
	}
	b.WriteString(",")
	b.WriteString(frac)
	return b.String()
}
