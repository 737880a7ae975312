package formatter

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/tordrt/tablediff/internal/diff"
	"github.com/tordrt/tablediff/internal/table"
)

//go:generate templ generate

// HTMLFormatter renders a report as a standalone HTML page
type HTMLFormatter struct {
	writer io.Writer
	opts   Options
}

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter(w io.Writer, opts Options) *HTMLFormatter {
	return &HTMLFormatter{writer: w, opts: opts}
}

// Format writes the report page
func (f *HTMLFormatter) Format(r *diff.Report) error {
	return ReportPage(r, f.opts).Render(context.Background(), f.writer)
}

// ReportPage returns the full report as a templ component, so the HTTP
// server can stream it with the request context
func ReportPage(r *diff.Report, opts Options) templ.Component {
	v, err := newReportView(r, opts)
	if err != nil {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return err
		})
	}
	return reportPage(v)
}

// reportView is the report with previews, sorting and labels applied, in
// the shape the templates render
type reportView struct {
	Generated  string
	Columns    diff.ColumnDiff
	Configured bool
	KeyColumn  string
	Summary    []summaryLine
	Missing    []rowsView
	Diffs      []entriesView
}

type summaryLine struct {
	Text    string
	Warning bool
}

type rowsView struct {
	Heading string
	Headers []string
	Rows    [][]string
	More    string
}

type entriesView struct {
	Heading    string
	Entries    []diff.CellDiffEntry
	More       string
	Suppressed string
}

func newReportView(r *diff.Report, opts Options) (reportView, error) {
	v := reportView{
		Generated:  r.GeneratedAt.Format(time.RFC1123),
		Columns:    r.ColumnDiff,
		Configured: r.Configured(),
		KeyColumn:  r.KeyColumn,
	}
	if !v.Configured {
		return v, nil
	}

	v.Summary = summaryLines(r)
	for _, side := range []struct {
		title   string
		rows    []table.Row
		headers []string
	}{
		{"Only in Table A", r.MissingRows.OnlyInA, r.HeadersA},
		{"Only in Table B", r.MissingRows.OnlyInB, r.HeadersB},
	} {
		if len(side.rows) > 0 {
			v.Missing = append(v.Missing, newRowsView(opts, r, side.title, side.rows, side.headers))
		}
	}

	for _, col := range columnsWithDiffs(r) {
		ev, err := newEntriesView(opts, r, col)
		if err != nil {
			return reportView{}, err
		}
		v.Diffs = append(v.Diffs, ev)
	}
	return v, nil
}

func summaryLines(r *diff.Report) []summaryLine {
	lines := []summaryLine{
		{Text: "Key column: " + r.KeyColumn},
		{Text: fmt.Sprintf("Rows: A %s, B %s", count(r.TotalInA), count(r.TotalInB))},
		{Text: "Matched keys: " + count(r.MatchingCount)},
		{Text: fmt.Sprintf("Only in A: %s, only in B: %s",
			count(len(r.MissingRows.OnlyInA)), count(len(r.MissingRows.OnlyInB)))},
		{Text: "Mismatches: " + count(r.TotalMismatches)},
	}
	if r.Truncated() {
		lines = append(lines, summaryLine{
			Text:    fmt.Sprintf("%s mismatches suppressed (cap %s per column)", count(r.TotalSuppressed), count(r.MaxDiffsPerColumn)),
			Warning: true,
		})
	}
	if r.DuplicateKeysA > 0 || r.DuplicateKeysB > 0 {
		lines = append(lines, summaryLine{
			Text:    fmt.Sprintf("Duplicate keys: A %s, B %s", count(r.DuplicateKeysA), count(r.DuplicateKeysB)),
			Warning: true,
		})
	}
	return lines
}

func newRowsView(opts Options, r *diff.Report, title string, rows []table.Row, headers []string) rowsView {
	shown, more := opts.missingRows(r, rows)
	v := rowsView{
		Heading: fmt.Sprintf("%s (%s)", title, rowsLabel(len(rows))),
		Headers: headers,
		Rows:    make([][]string, len(shown)),
	}
	for i, row := range shown {
		cells := make([]string, len(headers))
		for j, h := range headers {
			cells[j] = orEmpty(row.Get(h))
		}
		v.Rows[i] = cells
	}
	if more > 0 {
		v.More = moreLabel(more)
	}
	return v
}

func newEntriesView(opts Options, r *diff.Report, col string) (entriesView, error) {
	entries := r.DiffsByColumn[col]
	shown, more, err := opts.entries(entries)
	if err != nil {
		return entriesView{}, err
	}

	v := entriesView{
		Heading: fmt.Sprintf("%s (%s differences)", col, count(len(entries))),
		Entries: make([]diff.CellDiffEntry, len(shown)),
	}
	for i, e := range shown {
		v.Entries[i] = diff.CellDiffEntry{Key: e.Key, ValueA: orEmpty(e.ValueA), ValueB: orEmpty(e.ValueB)}
	}
	if more > 0 {
		v.More = moreLabel(more)
	}
	if n := r.Suppressed[col]; n > 0 {
		v.Suppressed = count(n) + " more suppressed by the per-column cap"
	}
	return v, nil
}

func orEmpty(s string) string {
	if s == "" {
		return "(empty)"
	}
	return s
}
