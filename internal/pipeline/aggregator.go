package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

// Summarize totals the amount per department.
//
// Departments are grouped by exact text ("Unknown" is a department like any
// other). Rows are sorted by total, largest first; equal totals keep the
// order in which their departments first appeared. An empty dataset gives
// an empty, non-nil summary.
func Summarize(records []types.CanonicalRecord) []types.SummaryRow {
	index := make(map[string]int)
	summary := make([]types.SummaryRow, 0)

	for _, r := range records {
		i, ok := index[r.Department]
		if !ok {
			i = len(summary)
			index[r.Department] = i
			summary = append(summary, types.SummaryRow{Department: r.Department, TotalAmount: decimal.Zero})
		}
		summary[i].TotalAmount = summary[i].TotalAmount.Add(r.Amount)
	}

	sort.SliceStable(summary, func(a, b int) bool {
		return summary[a].TotalAmount.GreaterThan(summary[b].TotalAmount)
	})

	return summary
}
