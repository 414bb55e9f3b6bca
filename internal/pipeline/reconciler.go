package pipeline

import (
	"github.com/ginjaninja78/sheet-consolidator/internal/logging"
	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

// Reconcile restricts a table to exactly the canonical columns, in canonical
// order.
//
// RULES:
//   1. Headers are compared after trimming and lowercasing.
//   2. When several headers normalise to the same name, only the first is kept.
//   3. A canonical column that is absent is synthesized as all-null (warning).
//   4. A canonical column whose every cell is null is dropped and then
//      re-synthesized as all-null (warning), so it still exists on output.
//
// Reconcile never fails and does not modify table.
func Reconcile(table *types.RawTable, obs logging.Observer) *types.RawTable {
	// First occurrence of each normalised header.
	firstIndex := make(map[string]int, len(table.Columns))
	for i, col := range table.Columns {
		norm := types.NormalizeHeader(col)
		if _, dup := firstIndex[norm]; dup {
			obs.Warn("Dropping duplicate column", "column", col, "normalized", norm, "table", table.Source)
			continue
		}
		firstIndex[norm] = i
	}

	out := types.NewRawTable(table.Source, types.CanonicalColumns)
	out.Rows = make([][]types.Value, len(table.Rows))
	for r := range out.Rows {
		out.Rows[r] = make([]types.Value, len(types.CanonicalColumns))
	}

	for c, name := range types.CanonicalColumns {
		src, ok := firstIndex[name]
		if !ok {
			obs.Warn("Missing column, creating it", "column", name, "table", table.Source)
			continue
		}

		if allNull(table, src) {
			if table.Len() > 0 {
				obs.Warn("Column has no values, recreating it empty", "column", name, "table", table.Source)
			}
			continue
		}

		for r, row := range table.Rows {
			out.Rows[r][c] = row[src]
		}
	}

	return out
}

func allNull(table *types.RawTable, col int) bool {
	for _, row := range table.Rows {
		if !row[col].IsNull() {
			return false
		}
	}
	return true
}
