package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sheet-consolidator/internal/coerce"
	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

// CleanStats counts how many cells fell back to a default. Individual rows
// are never reported.
type CleanStats struct {
	// UnknownNames is the number of null names replaced by "Unknown".
	UnknownNames int

	// UnknownDepartments is the number of null departments replaced by "Unknown".
	UnknownDepartments int

	// ZeroAmounts is the number of amounts that did not parse and became 0.
	ZeroAmounts int

	// InvalidDates is the number of dates that did not parse.
	InvalidDates int
}

// Clean converts a reconciled table into canonical records, one per row.
//
// DEFAULTS:
//   - name, department: null becomes "Unknown"; any other value keeps its
//     exact text
//   - amount: anything that is not a number becomes 0
//   - date: anything that is not a date becomes types.InvalidDate
//
// The table must come from Reconcile. Clean never drops a row.
func Clean(table *types.RawTable) ([]types.CanonicalRecord, CleanStats) {
	var stats CleanStats

	records := make([]types.CanonicalRecord, len(table.Rows))
	for i, row := range table.Rows {
		rec := types.CanonicalRecord{
			Name:       label(row[0], &stats.UnknownNames),
			Department: label(row[1], &stats.UnknownDepartments),
		}

		amount, ok := coerce.Amount(row[2])
		if !ok {
			amount = decimal.Zero
			stats.ZeroAmounts++
		}
		rec.Amount = amount

		date, ok := coerce.Date(row[3])
		if !ok {
			date = types.InvalidDate
			stats.InvalidDates++
		}
		rec.Date = date

		records[i] = rec
	}

	return records, stats
}

func label(v types.Value, defaulted *int) string {
	if v.IsNull() {
		*defaulted++
		return types.UnknownLabel
	}
	return v.Text()
}
