// =============================================================================
// Sheet Consolidator - Shared Types
// =============================================================================
//
// This package contains the value types shared by every stage of the
// consolidation pipeline. Types defined here are used by:
//   - csvparser / xlsxparser (building RawTables)
//   - coerce (turning cell values into amounts and dates)
//   - pipeline (reconcile, clean, dedupe, aggregate)
//   - xlsxwriter / parquetio (persisting the canonical dataset)
//
// =============================================================================

package types

import (
	"strconv"
)

// =============================================================================
// CELL VALUES
// =============================================================================

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindNull is an empty or missing cell.
	KindNull Kind = iota

	// KindString is free text as it appeared in the source.
	KindString

	// KindNumber is a numeric cell (spreadsheet number, never CSV text).
	KindNumber

	// KindDate is a calendar date recognised by the loader.
	KindDate
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a single tabular cell: null, string, number or date.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	date Date
}

// NullValue returns the null cell.
func NullValue() Value {
	return Value{}
}

// StringValue wraps text exactly as read, without trimming.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue wraps a numeric cell.
func NumberValue(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// DateValue wraps a calendar date. An invalid date becomes null.
func DateValue(d Date) Value {
	if !d.Valid() {
		return Value{}
	}
	return Value{kind: KindDate, date: d}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is the null cell.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Str returns the text of a string value.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Number returns the float of a number value.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Date returns the date of a date value.
func (v Value) Date() (Date, bool) {
	return v.date, v.kind == KindDate
}

// Text renders the value the way it would have been typed into a cell.
//
// RETURNS:
//   - "" for null
//   - the exact source text for strings
//   - the shortest decimal form for numbers ("1500", "12.5")
//   - YYYY-MM-DD for dates
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return v.date.String()
	default:
		return ""
	}
}
