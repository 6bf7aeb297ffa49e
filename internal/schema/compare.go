package schema

import "github.com/arkilian/tableschema/internal/datum"

// CompareRow orders two rows by their first numKeyColumns values and returns
// -1, 0 or +1. Both rows must carry comparable values of the same kind at
// every key position; a mismatch is a programming error and panics.
func CompareRow(numKeyColumns int, lhs, rhs datum.RowView) int {
	for i := 0; i < numKeyColumns; i++ {
		if c := lhs.ColumnByIndex(i).Compare(rhs.ColumnByIndex(i)); c != 0 {
			return c
		}
	}
	return 0
}
