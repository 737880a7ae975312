package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/tablediff/internal/diff"
	"github.com/tordrt/tablediff/internal/table"
)

// TextFormatter formats a report as compact plain text
type TextFormatter struct {
	writer io.Writer
	opts   Options
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer, opts Options) *TextFormatter {
	return &TextFormatter{writer: w, opts: opts}
}

// Format writes the report in compact text format
func (f *TextFormatter) Format(r *diff.Report) error {
	f.writeColumns(r)

	if !r.Configured() {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "No key column selected: row and value comparison skipped")
		return nil
	}

	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintf(f.writer, "KEY %s\n", r.KeyColumn)
	_, _ = fmt.Fprintf(f.writer, "  rows A: %s  rows B: %s  matched: %s\n",
		count(r.TotalInA), count(r.TotalInB), count(r.MatchingCount))
	_, _ = fmt.Fprintf(f.writer, "  only in A: %s  only in B: %s  mismatches: %s\n",
		count(len(r.MissingRows.OnlyInA)), count(len(r.MissingRows.OnlyInB)), count(r.TotalMismatches))
	f.writeWarnings(r)

	f.writeMissing("ONLY IN A", r, r.MissingRows.OnlyInA, r.HeadersA)
	f.writeMissing("ONLY IN B", r, r.MissingRows.OnlyInB, r.HeadersB)

	for _, col := range columnsWithDiffs(r) {
		if err := f.writeColumnDiffs(r, col); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) writeColumns(r *diff.Report) {
	cd := r.ColumnDiff
	if cd.Identical {
		_, _ = fmt.Fprintf(f.writer, "COLUMNS identical (%d)\n", len(cd.Common))
		return
	}
	_, _ = fmt.Fprintln(f.writer, "COLUMNS differ")
	if len(cd.OnlyA) > 0 {
		_, _ = fmt.Fprintf(f.writer, "  only in A: %s\n", strings.Join(cd.OnlyA, ", "))
	}
	if len(cd.OnlyB) > 0 {
		_, _ = fmt.Fprintf(f.writer, "  only in B: %s\n", strings.Join(cd.OnlyB, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "  common: %s\n", strings.Join(cd.Common, ", "))
}

func (f *TextFormatter) writeWarnings(r *diff.Report) {
	if r.DuplicateKeysA > 0 || r.DuplicateKeysB > 0 {
		_, _ = fmt.Fprintf(f.writer, "  WARNING duplicate keys: A %s, B %s\n",
			count(r.DuplicateKeysA), count(r.DuplicateKeysB))
	}
	if r.Truncated() {
		_, _ = fmt.Fprintf(f.writer, "  WARNING %s mismatches suppressed (cap %s per column)\n",
			count(r.TotalSuppressed), count(r.MaxDiffsPerColumn))
	}
}

func (f *TextFormatter) writeMissing(title string, r *diff.Report, rows []table.Row, headers []string) {
	if len(rows) == 0 {
		return
	}
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintf(f.writer, "%s (%s)\n", title, rowsLabel(len(rows)))

	shown, more := f.opts.missingRows(r, rows)
	for _, row := range shown {
		parts := make([]string, 0, len(headers))
		for _, h := range headers {
			parts = append(parts, h+"="+row.Get(h))
		}
		_, _ = fmt.Fprintf(f.writer, "  %s\n", strings.Join(parts, " "))
	}
	if more > 0 {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", moreLabel(more))
	}
}

func (f *TextFormatter) writeColumnDiffs(r *diff.Report, col string) error {
	entries := r.DiffsByColumn[col]
	shown, more, err := f.opts.entries(entries)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintf(f.writer, "COLUMN %s (%s differences)\n", col, count(len(entries)))
	for _, e := range shown {
		_, _ = fmt.Fprintf(f.writer, "  %s: %q → %q\n", e.Key, e.ValueA, e.ValueB)
	}
	if more > 0 {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", moreLabel(more))
	}
	if n := r.Suppressed[col]; n > 0 {
		_, _ = fmt.Fprintf(f.writer, "  (%s more suppressed)\n", count(n))
	}
	return nil
}
