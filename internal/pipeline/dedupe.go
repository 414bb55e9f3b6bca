package pipeline

import "github.com/ginjaninja78/sheet-consolidator/internal/types"

// recordKey compares amounts by value, so 100 and 100.00 are the same amount.
type recordKey struct {
	name       string
	department string
	amount     string
	date       types.Date
}

func keyOf(r types.CanonicalRecord) recordKey {
	return recordKey{
		name:       r.Name,
		department: r.Department,
		amount:     r.Amount.String(),
		date:       r.Date,
	}
}

// Deduplicate removes records equal on all four fields to an earlier one.
// Two invalid dates are equal. The first occurrence keeps its position.
//
// RETURNS:
//   - The unique records in first-occurrence order.
//   - How many records were removed.
func Deduplicate(records []types.CanonicalRecord) ([]types.CanonicalRecord, int) {
	seen := make(map[recordKey]struct{}, len(records))
	unique := make([]types.CanonicalRecord, 0, len(records))

	for _, r := range records {
		k := keyOf(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, r)
	}

	return unique, len(records) - len(unique)
}
