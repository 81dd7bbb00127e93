package importer

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errEmptyAmount = errors.New("empty amount")

// parseAmount parses a statement amount. US amounts look like "1,234.56",
// European ones like "1.234,56". Currency symbols are ignored and accounting
// parentheses "(12.00)" mean negative.
func parseAmount(s string, decimalComma bool) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '¥', ' ', '\u00a0':
			return -1
		}

		return r
	}, strings.TrimSpace(s))

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}

	if decimalComma {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	if clean == "" {
		return decimal.Zero, errEmptyAmount
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, err
	}

	if negative {
		d = d.Neg()
	}

	return d, nil
}
