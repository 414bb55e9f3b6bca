// =============================================================================
// Sheet Consolidator - Value Coercion
// =============================================================================
//
// This package turns loosely typed cells into the canonical amount and date
// types. Every function is total: it returns a (value, ok) pair and never
// panics, so callers decide which default to apply on failure.
//
// ACCEPTED AMOUNTS:
//   - Spreadsheet numbers
//   - Text such as "1,234.50", "$99", "€12", "(45.00)", "-3", "1e3"
//
// ACCEPTED DATES:
//   - Spreadsheet dates and date-styled serial numbers
//   - Text in the common layouts listed in dateLayouts, then any other
//     form dateparse recognises (month-first)
//   - YYYYMMDD integers
//
// =============================================================================

package coerce

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

// numericPattern matches a plain signed decimal with an optional exponent.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// maxAmountExponent bounds the decimal magnitude of a parsed amount to the
// float64 range. Exponents far outside it make decimal arithmetic unbounded.
const maxAmountExponent = 308

// currencyReplacer strips currency symbols and thousands separators.
var currencyReplacer = strings.NewReplacer(
	"$", "",
	"€", "", // Euro
	"£", "", // Pound
	"¥", "", // Yen
	",", "",
)

// Amount parses a cell as an exact decimal amount.
//
// PARAMETERS:
//   - v: any cell value
//
// RETURNS:
//   - The amount and true on success.
//   - decimal.Zero and false for null cells, dates, non-finite numbers and
//     text that is not a number or lies outside the float64 range.
func Amount(v types.Value) (decimal.Decimal, bool) {
	switch v.Kind() {
	case types.KindNumber:
		f, _ := v.Number()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(f), true

	case types.KindString:
		s, _ := v.Str()
		return AmountText(s)

	default:
		return decimal.Zero, false
	}
}

// AmountText parses numeric text with the usual separators.
func AmountText(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	// Accounting negatives: "(123.45)"
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.TrimSpace(currencyReplacer.Replace(s))
	if negative {
		s = "-" + s
	}

	if !numericPattern.MatchString(s) {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if !inRange(d) {
		return decimal.Zero, false
	}
	return d, true
}

// inRange reports whether d is representable as a float64-sized amount.
func inRange(d decimal.Decimal) bool {
	if d.IsZero() {
		return d.Exponent() >= -maxAmountExponent
	}
	exp := int64(d.Exponent())
	if exp < -2*maxAmountExponent {
		return false
	}
	return int64(d.NumDigits())+exp <= maxAmountExponent+1
}
