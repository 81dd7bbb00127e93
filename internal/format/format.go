// Package format renders amounts, dates and labels for display.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultCurrency = "USD"

	UnknownDate = "Unknown date"
	InvalidDate = "Invalid date"
)

var printer = message.NewPrinter(language.AmericanEnglish)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Currency formats amount in the given ISO 4217 currency using en-US grouping,
// e.g. 1250.45 -> "$1,250.45" and -450.75 -> "-$450.75".
// An empty code is treated as USD; unknown codes are rendered as a prefix.
func Currency(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}

	scale := 2
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}

	d := decimal.NewFromFloat(amount).Round(int32(scale))

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}

	digits := printer.Sprintf(fmt.Sprintf("%%.%df", scale), d.Abs().InexactFloat64())

	symbol, ok := symbols[code]
	if !ok {
		symbol = code + " "
	}

	return sign + symbol + digits
}

// USD is shorthand for Currency(amount, "USD").
func USD(amount float64) string {
	return Currency(amount, DefaultCurrency)
}

// Date renders an ISO date ("2006-01-02") or RFC 3339 timestamp as "Jan 2, 2006".
func Date(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownDate
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return InvalidDate
		}
	}

	return t.Format("Jan 2, 2006")
}

// Number formats v with grouping and at most decimals fraction digits.
// Trailing zeros are dropped: Number(1234.50, 2) == "1,234.5".
func Number(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}

	d := decimal.NewFromFloat(v).Round(int32(decimals))

	frac := 0
	if s := d.String(); strings.Contains(s, ".") {
		frac = len(s) - strings.IndexByte(s, '.') - 1
	}

	return printer.Sprintf(fmt.Sprintf("%%.%df", frac), d.InexactFloat64())
}

// Percentage formats a ratio as a percentage: Percentage(0.1234, 2) == "12.34%".
func Percentage(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}

	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).StringFixed(int32(decimals)) + "%"
}

// Truncate shortens s to length runes, appending "..." when it was cut.
func Truncate(s string, length int) string {
	if utf8.RuneCountInString(s) <= length {
		return s
	}

	runes := []rune(s)

	return string(runes[:length]) + "..."
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}

// LargeNumber abbreviates big values: 1500 -> "1.5K", 2300000 -> "2.3M".
func LargeNumber(v float64) string {
	switch {
	case v >= 1e9:
		return decimal.NewFromFloat(v/1e9).StringFixed(1) + "B"
	case v >= 1e6:
		return decimal.NewFromFloat(v/1e6).StringFixed(1) + "M"
	case v >= 1e3:
		return decimal.NewFromFloat(v/1e3).StringFixed(1) + "K"
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}
