package diff

import (
	"github.com/tordrt/tablediff/internal/table"
)

// KeyIndex maps a key value to the single row holding it
type KeyIndex struct {
	rows       map[string]table.Row
	duplicates int
}

// IndexByKey builds a lookup over t keyed by the value of column. Rows
// without the column index under "". Repeated keys are resolved with policy
// and counted, never rejected.
func IndexByKey(t *table.Table, column string, policy DuplicatePolicy) *KeyIndex {
	idx := &KeyIndex{rows: make(map[string]table.Row, t.Len())}
	if t == nil {
		return idx
	}
	for _, row := range t.Rows {
		key := row.Get(column)
		if _, exists := idx.rows[key]; exists {
			idx.duplicates++
			if policy == DuplicateFirst {
				continue
			}
		}
		idx.rows[key] = row
	}
	return idx
}

// Lookup returns the row for key
func (k *KeyIndex) Lookup(key string) (table.Row, bool) {
	row, ok := k.rows[key]
	return row, ok
}

// Contains reports whether key is indexed
func (k *KeyIndex) Contains(key string) bool {
	_, ok := k.rows[key]
	return ok
}

// Len returns the number of distinct keys
func (k *KeyIndex) Len() int {
	return len(k.rows)
}

// Duplicates returns how many rows repeated an already indexed key
func (k *KeyIndex) Duplicates() int {
	return k.duplicates
}

// MissingRows holds rows whose key is absent from the other table
type MissingRows struct {
	OnlyInA []table.Row `json:"only_in_a"`
	OnlyInB []table.Row `json:"only_in_b"`
}

// DiffRows finds rows of each table whose key value does not occur in the
// other. Both sets are empty when column is empty.
func DiffRows(a, b *table.Table, column string) MissingRows {
	m := MissingRows{OnlyInA: []table.Row{}, OnlyInB: []table.Row{}}
	if column == "" {
		return m
	}

	keysA := keySet(a, column)
	keysB := keySet(b, column)
	m.OnlyInA = rowsMissingFrom(a, column, keysB)
	m.OnlyInB = rowsMissingFrom(b, column, keysA)
	return m
}

func keySet(t *table.Table, column string) map[string]struct{} {
	set := make(map[string]struct{}, t.Len())
	if t == nil {
		return set
	}
	for _, row := range t.Rows {
		set[row.Get(column)] = struct{}{}
	}
	return set
}

func rowsMissingFrom(t *table.Table, column string, other map[string]struct{}) []table.Row {
	out := []table.Row{}
	if t == nil {
		return out
	}
	for _, row := range t.Rows {
		if _, ok := other[row.Get(column)]; !ok {
			out = append(out, row)
		}
	}
	return out
}
