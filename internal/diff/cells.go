package diff

import (
	"strings"

	"github.com/tordrt/tablediff/internal/table"
)

// CellDiffEntry is one differing value for one matched key
type CellDiffEntry struct {
	Key    string `json:"key"`
	ValueA string `json:"value_a"`
	ValueB string `json:"value_b"`
}

// CellDiffs is the result of DiffCells
type CellDiffs struct {
	MatchingCount int `json:"matching_count"`
	TotalInA      int `json:"total_in_a"`
	TotalInB      int `json:"total_in_b"`

	// Columns lists the compared columns in A's header order
	Columns       []string                   `json:"columns"`
	DiffsByColumn map[string][]CellDiffEntry `json:"diffs_by_column"`

	// TotalMismatches is the sum of the retained entries only
	TotalMismatches int `json:"total_mismatches"`

	// Suppressed counts mismatches dropped past the per-column cap
	Suppressed      map[string]int `json:"suppressed,omitempty"`
	TotalSuppressed int            `json:"total_suppressed"`

	DuplicateKeysB int `json:"duplicate_keys_b"`
}

// DiffCells compares every non-key column of A against the row in B with
// the same key. Rows of A whose key is missing from B are skipped; DiffRows
// reports those. Columns that exist only in B are never compared.
func DiffCells(a, b *table.Table, opts Options) CellDiffs {
	res := CellDiffs{
		Columns:       []string{},
		DiffsByColumn: map[string][]CellDiffEntry{},
		Suppressed:    map[string]int{},
	}
	key := opts.KeyColumn
	if key == "" || a == nil {
		return res
	}

	indexB := IndexByKey(b, key, opts.Duplicates)
	res.DuplicateKeysB = indexB.Duplicates()
	res.TotalInA = a.Len()
	res.TotalInB = b.Len()

	for _, col := range a.Headers {
		if col == key {
			continue
		}
		if _, seen := res.DiffsByColumn[col]; seen {
			continue
		}
		res.Columns = append(res.Columns, col)
		res.DiffsByColumn[col] = []CellDiffEntry{}
	}

	for _, rowA := range a.Rows {
		k := rowA.Get(key)
		rowB, ok := indexB.Lookup(k)
		if !ok {
			continue
		}
		res.MatchingCount++

		for _, col := range res.Columns {
			va := strings.TrimSpace(rowA.Get(col))
			vb := strings.TrimSpace(rowB.Get(col))
			if va == vb {
				continue
			}
			if len(res.DiffsByColumn[col]) >= opts.MaxDiffsPerColumn {
				res.Suppressed[col]++
				res.TotalSuppressed++
				continue
			}
			res.DiffsByColumn[col] = append(res.DiffsByColumn[col], CellDiffEntry{
				Key:    k,
				ValueA: va,
				ValueB: vb,
			})
			res.TotalMismatches++
		}
	}

	return res
}
