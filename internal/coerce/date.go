package coerce

import (
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

// Slash and dash dates are month-first: "03/04/2024" is always March 4th.
var (
	dateLayouts = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
		"2006.01.02",
		"1/2/2006",
		"01/02/2006",
		"1-2-2006",
		"01-02-2006",
		"1.2.2006",
		"01.02.2006",
		"1/2/2006 15:04",
		"1/2/2006 15:04:05",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"2 January 2006",
		"02-Jan-2006",
		"20060102",
	}

	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06", "02-Jan-06",
	}
)

// twoDigitYearPivot is how many years into the future a two-digit year may
// land before it is moved back a century.
const twoDigitYearPivot = 20

// Serial-number range Excel can display as a date (1900-01-01 .. 9999-12-31).
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// Date parses a cell as a calendar date.
//
// PARAMETERS:
//   - v: any cell value
//
// RETURNS:
//   - The date and true on success.
//   - types.InvalidDate and false otherwise. No date is ever guessed.
func Date(v types.Value) (types.Date, bool) {
	switch v.Kind() {
	case types.KindDate:
		d, _ := v.Date()
		return d, d.Valid()

	case types.KindNumber:
		f, _ := v.Number()
		return DateNumber(f)

	case types.KindString:
		s, _ := v.Str()
		return DateText(s)

	default:
		return types.InvalidDate, false
	}
}

// DateText parses date text. The layouts above are tried first, four-digit
// years before two-digit ones; anything else goes to dateparse, month-first.
func DateText(s string) (types.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.InvalidDate, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return types.DateOf(t), true
		}
	}

	pivotYear := time.Now().Year() + twoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return types.DateOf(t), true
		}
	}

	return parseAny(s)
}

// parseAny hands free-form text to dateparse. Bare digit runs are refused:
// dateparse reads them as years or epoch seconds, which would invent dates
// out of amounts and IDs.
func parseAny(s string) (d types.Date, ok bool) {
	if strings.Trim(s, "0123456789") == "" {
		return types.InvalidDate, false
	}

	defer func() {
		if r := recover(); r != nil {
			d, ok = types.InvalidDate, false
		}
	}()

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return types.InvalidDate, false
	}
	return types.DateOf(t), true
}

// DateNumber interprets a numeric cell as a date: an eight-digit integer is
// read as YYYYMMDD, anything else in range as an Excel serial (1900 system).
func DateNumber(f float64) (types.Date, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return types.InvalidDate, false
	}

	if f == math.Trunc(f) && f >= 10000101 && f <= 99991231 {
		return yyyymmdd(int(f))
	}

	if f < minExcelSerial || f >= maxExcelSerial+1 {
		return types.InvalidDate, false
	}

	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return types.InvalidDate, false
	}
	return types.DateOf(t), true
}

func yyyymmdd(n int) (types.Date, bool) {
	y, m, d := n/10000, time.Month(n/100%100), n%100
	if m < time.January || m > time.December || d < 1 || d > 31 {
		return types.InvalidDate, false
	}
	date := types.NewDate(y, m, d)
	// Reject rollovers such as 20230230.
	if date.Time().Day() != d {
		return types.InvalidDate, false
	}
	return date, true
}
