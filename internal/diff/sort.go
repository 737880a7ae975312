package diff

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tordrt/tablediff/internal/table"
)

// Direction is a sort order
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts "asc", "desc" or "" (asc)
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("invalid sort direction %q (must be 'asc' or 'desc')", s)
	}
}

// Entry fields accepted by SortEntries
const (
	FieldKey    = "key"
	FieldValueA = "a"
	FieldValueB = "b"
)

// SortRows returns a stably sorted copy of rows ordered by the plain string
// value of column. Missing values sort as "".
func SortRows(rows []table.Row, column string, dir Direction) []table.Row {
	out := slices.Clone(rows)
	if column == "" {
		return out
	}
	slices.SortStableFunc(out, func(x, y table.Row) int {
		return directed(strings.Compare(x.Get(column), y.Get(column)), dir)
	})
	return out
}

// SortEntries returns a stably sorted copy of entries ordered by field,
// which is one of FieldKey, FieldValueA or FieldValueB.
func SortEntries(entries []CellDiffEntry, field string, dir Direction) ([]CellDiffEntry, error) {
	var get func(CellDiffEntry) string
	switch field {
	case "", FieldKey:
		get = func(e CellDiffEntry) string { return e.Key }
	case FieldValueA:
		get = func(e CellDiffEntry) string { return e.ValueA }
	case FieldValueB:
		get = func(e CellDiffEntry) string { return e.ValueB }
	default:
		return nil, fmt.Errorf("invalid sort field %q (must be %q, %q or %q)", field, FieldKey, FieldValueA, FieldValueB)
	}

	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(x, y CellDiffEntry) int {
		return directed(strings.Compare(get(x), get(y)), dir)
	})
	return out, nil
}

// Page returns the window [offset, offset+limit) of items. A limit <= 0
// means no limit. Out of range offsets yield an empty slice.
func Page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}

func directed(c int, dir Direction) int {
	if dir == Descending {
		return -c
	}
	return c
}
