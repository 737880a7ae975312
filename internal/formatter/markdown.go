package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/tablediff/internal/diff"
	"github.com/tordrt/tablediff/internal/table"
)

// MarkdownFormatter formats a report as markdown
type MarkdownFormatter struct {
	writer io.Writer
	opts   Options
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer, opts Options) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w, opts: opts}
}

// Format writes the report in markdown format
func (f *MarkdownFormatter) Format(r *diff.Report) error {
	_, _ = fmt.Fprintln(f.writer, "# Comparison Report")
	_, _ = fmt.Fprintln(f.writer)

	f.FormatSummary(r)
	f.FormatColumnDiff(r.ColumnDiff)

	if !r.Configured() {
		return nil
	}

	f.FormatMissing("Only in Table A", r, r.MissingRows.OnlyInA, r.HeadersA)
	f.FormatMissing("Only in Table B", r, r.MissingRows.OnlyInB, r.HeadersB)

	cols := columnsWithDiffs(r)
	if len(cols) == 0 {
		return nil
	}
	_, _ = fmt.Fprintln(f.writer, "## Value Differences")
	_, _ = fmt.Fprintln(f.writer)
	for _, col := range cols {
		if err := f.FormatColumn(r, col); err != nil {
			return err
		}
	}
	return nil
}

// FormatSummary writes the headline counts (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatSummary(r *diff.Report) {
	if !r.Configured() {
		_, _ = fmt.Fprintln(f.writer, "_No key column selected: row and value comparison skipped._")
		_, _ = fmt.Fprintln(f.writer)
		return
	}

	_, _ = fmt.Fprintf(f.writer, "- **Key column:** %s\n", escapeCell(r.KeyColumn))
	_, _ = fmt.Fprintf(f.writer, "- **Rows:** A %s, B %s\n", count(r.TotalInA), count(r.TotalInB))
	_, _ = fmt.Fprintf(f.writer, "- **Matched keys:** %s\n", count(r.MatchingCount))
	_, _ = fmt.Fprintf(f.writer, "- **Only in A:** %s, **only in B:** %s\n",
		count(len(r.MissingRows.OnlyInA)), count(len(r.MissingRows.OnlyInB)))
	_, _ = fmt.Fprintf(f.writer, "- **Mismatches:** %s\n", count(r.TotalMismatches))

	if r.Truncated() {
		_, _ = fmt.Fprintf(f.writer, "- **Suppressed:** %s (cap %s per column)\n",
			count(r.TotalSuppressed), count(r.MaxDiffsPerColumn))
	}
	if r.DuplicateKeysA > 0 || r.DuplicateKeysB > 0 {
		_, _ = fmt.Fprintf(f.writer, "- **Duplicate keys:** A %s, B %s\n",
			count(r.DuplicateKeysA), count(r.DuplicateKeysB))
	}
	_, _ = fmt.Fprintln(f.writer)
}

// FormatColumnDiff writes the header comparison
func (f *MarkdownFormatter) FormatColumnDiff(cd diff.ColumnDiff) {
	_, _ = fmt.Fprintln(f.writer, "## Columns")
	_, _ = fmt.Fprintln(f.writer)

	if cd.Identical {
		_, _ = fmt.Fprintf(f.writer, "Both tables have the same columns (%d).\n\n", len(cd.Common))
		return
	}
	if len(cd.OnlyA) > 0 {
		_, _ = fmt.Fprintf(f.writer, "- Only in A: %s\n", mdCodeList(cd.OnlyA))
	}
	if len(cd.OnlyB) > 0 {
		_, _ = fmt.Fprintf(f.writer, "- Only in B: %s\n", mdCodeList(cd.OnlyB))
	}
	_, _ = fmt.Fprintf(f.writer, "- Common: %s\n", mdCodeList(cd.Common))
	_, _ = fmt.Fprintln(f.writer)
}

// FormatMissing writes one missing-row table
func (f *MarkdownFormatter) FormatMissing(title string, r *diff.Report, rows []table.Row, headers []string) {
	if len(rows) == 0 {
		return
	}
	_, _ = fmt.Fprintf(f.writer, "## %s (%s)\n\n", title, rowsLabel(len(rows)))

	shown, more := f.opts.missingRows(r, rows)
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = escapeCell(h)
	}
	f.writeRow(cells)
	f.writeSeparator(len(headers))
	for _, row := range shown {
		for i, h := range headers {
			cells[i] = escapeCell(row.Get(h))
		}
		f.writeRow(cells)
	}
	if more > 0 {
		_, _ = fmt.Fprintf(f.writer, "\n_%s_\n", moreLabel(more))
	}
	_, _ = fmt.Fprintln(f.writer)
}

// FormatColumn writes the mismatch table of one column
func (f *MarkdownFormatter) FormatColumn(r *diff.Report, col string) error {
	entries := r.DiffsByColumn[col]
	shown, more, err := f.opts.entries(entries)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(f.writer, "### %s (%s differences)\n\n", escapeCell(col), count(len(entries)))
	f.writeRow([]string{escapeCell(r.KeyColumn), "Table A", "Table B"})
	f.writeSeparator(3)
	for _, e := range shown {
		f.writeRow([]string{escapeCell(e.Key), escapeCell(e.ValueA), escapeCell(e.ValueB)})
	}
	if more > 0 {
		_, _ = fmt.Fprintf(f.writer, "\n_%s_\n", moreLabel(more))
	}
	if n := r.Suppressed[col]; n > 0 {
		_, _ = fmt.Fprintf(f.writer, "\n_%s more suppressed by the per-column cap_\n", count(n))
	}
	_, _ = fmt.Fprintln(f.writer)
	return nil
}

func (f *MarkdownFormatter) writeRow(cells []string) {
	_, _ = fmt.Fprintf(f.writer, "| %s |\n", strings.Join(cells, " | "))
}

func (f *MarkdownFormatter) writeSeparator(n int) {
	_, _ = fmt.Fprintf(f.writer, "|%s\n", strings.Repeat(" --- |", n))
}

func escapeCell(s string) string {
	if s == "" {
		return "(empty)"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func mdCodeList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, ", ")
}
