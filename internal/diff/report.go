package diff

import (
	"fmt"
	"time"

	"github.com/tordrt/tablediff/internal/table"
)

// Report is the complete result of comparing two tables on a key column.
// Treat it as read-only; rows in MissingRows are shared with the input
// tables.
type Report struct {
	KeyColumn   string    `json:"key_column"`
	GeneratedAt time.Time `json:"generated_at"`
	HeadersA    []string  `json:"headers_a"`
	HeadersB    []string  `json:"headers_b"`

	ColumnDiff  ColumnDiff  `json:"column_diff"`
	MissingRows MissingRows `json:"missing_rows"`
	CellDiffs

	DuplicateKeysA    int `json:"duplicate_keys_a"`
	MaxDiffsPerColumn int `json:"max_diffs_per_column"`
}

// Configured reports whether a key column was selected
func (r *Report) Configured() bool {
	return r.KeyColumn != ""
}

// Truncated reports whether any column hit the mismatch cap
func (r *Report) Truncated() bool {
	return r.TotalSuppressed > 0
}

// Compare runs all three comparisons. A non-empty key column must appear in
// both header lists.
func Compare(a, b *table.Table, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if a == nil {
		a = table.Empty()
	}
	if b == nil {
		b = table.Empty()
	}
	if opts.KeyColumn != "" && (!a.HasColumn(opts.KeyColumn) || !b.HasColumn(opts.KeyColumn)) {
		return nil, fmt.Errorf("%w: %q", ErrKeyColumnNotShared, opts.KeyColumn)
	}

	r := &Report{
		KeyColumn:   opts.KeyColumn,
		GeneratedAt: time.Now().UTC(),
		HeadersA:    append([]string{}, a.Headers...),
		HeadersB:    append([]string{}, b.Headers...),
		ColumnDiff:  DiffColumns(a.Headers, b.Headers),
		MissingRows: DiffRows(a, b, opts.KeyColumn),
		CellDiffs:   DiffCells(a, b, opts),

		MaxDiffsPerColumn: opts.MaxDiffsPerColumn,
	}
	if opts.KeyColumn != "" {
		r.DuplicateKeysA = IndexByKey(a, opts.KeyColumn, opts.Duplicates).Duplicates()
	}
	return r, nil
}
