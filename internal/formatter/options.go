package formatter

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/tordrt/tablediff/internal/diff"
	"github.com/tordrt/tablediff/internal/table"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
	formatHTML     = "html"
	formatJSON     = "json"
)

// Formats lists the accepted output format names
var Formats = []string{formatText, formatMarkdown, formatHTML, formatJSON}

// DefaultPreviewRows matches the row limit of the interactive report
const DefaultPreviewRows = 100

// Options controls ordering and truncation of rendered tables
type Options struct {
	// PreviewRows limits rows shown per table; 0 shows everything
	PreviewRows int

	// RowSort orders missing-row tables; empty means the key column
	RowSort string

	// EntrySort orders mismatch tables: diff.FieldKey, FieldValueA or FieldValueB
	EntrySort string

	Direction diff.Direction
}

// DefaultOptions sorts by key ascending and shows DefaultPreviewRows rows
func DefaultOptions() Options {
	return Options{PreviewRows: DefaultPreviewRows, EntrySort: diff.FieldKey}
}

// Formatter writes a report somewhere
type Formatter interface {
	Format(r *diff.Report) error
}

func (o Options) missingRows(r *diff.Report, rows []table.Row) ([]table.Row, int) {
	col := o.RowSort
	if col == "" {
		col = r.KeyColumn
	}
	return preview(diff.SortRows(rows, col, o.Direction), o.PreviewRows)
}

func (o Options) entries(entries []diff.CellDiffEntry) ([]diff.CellDiffEntry, int, error) {
	sorted, err := diff.SortEntries(entries, o.EntrySort, o.Direction)
	if err != nil {
		return nil, 0, err
	}
	shown, more := preview(sorted, o.PreviewRows)
	return shown, more, nil
}

// preview returns at most n items and how many were left out
func preview[T any](items []T, n int) ([]T, int) {
	if n <= 0 || len(items) <= n {
		return items, 0
	}
	return items[:n], len(items) - n
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func rowsLabel(n int) string {
	if n == 1 {
		return "1 row"
	}
	return count(n) + " rows"
}

func moreLabel(n int) string {
	return fmt.Sprintf("+%s more rows...", count(n))
}

// columnsWithDiffs returns compared columns that have retained or
// suppressed mismatches, in report order
func columnsWithDiffs(r *diff.Report) []string {
	var out []string
	for _, col := range r.Columns {
		if len(r.DiffsByColumn[col]) > 0 || r.Suppressed[col] > 0 {
			out = append(out, col)
		}
	}
	return out
}

// New returns the single-writer formatter for format
func New(format string, w io.Writer, opts Options) (Formatter, error) {
	switch format {
	case formatText:
		return NewTextFormatter(w, opts), nil
	case formatMarkdown:
		return NewMarkdownFormatter(w, opts), nil
	case formatHTML:
		return NewHTMLFormatter(w, opts), nil
	case formatJSON:
		return NewJSONFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid format: %s (must be 'text', 'markdown', 'html' or 'json')", format)
	}
}
