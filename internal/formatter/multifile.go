package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tordrt/tablediff/internal/diff"
)

// MultiFileFormatter writes a report to a directory: an overview, one file
// per side with missing rows, and one file per column with mismatches
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
	Options      Options
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string, opts Options) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
		Options:      opts,
	}
}

// Format writes the report to multiple files
func (f *MultiFileFormatter) Format(r *diff.Report) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := f.plan(r)

	if err := f.writeFile("_overview", func(w io.Writer) error {
		return f.writeOverview(w, r, files)
	}); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	if len(r.MissingRows.OnlyInA) > 0 {
		if err := f.writeFile("only_in_a", func(w io.Writer) error {
			f.writeMissing(w, r, "A")
			return nil
		}); err != nil {
			return fmt.Errorf("failed to write missing rows of A: %w", err)
		}
	}
	if len(r.MissingRows.OnlyInB) > 0 {
		if err := f.writeFile("only_in_b", func(w io.Writer) error {
			f.writeMissing(w, r, "B")
			return nil
		}); err != nil {
			return fmt.Errorf("failed to write missing rows of B: %w", err)
		}
	}

	for _, col := range columnsWithDiffs(r) {
		if err := f.writeFile(files[col], func(w io.Writer) error {
			return f.writeColumn(w, r, col)
		}); err != nil {
			return fmt.Errorf("failed to write column file for %s: %w", col, err)
		}
	}

	return nil
}

// plan assigns a unique file name to every column with mismatches. Names
// are compared case-folded so they stay distinct on case-insensitive
// filesystems.
func (f *MultiFileFormatter) plan(r *diff.Report) map[string]string {
	files := make(map[string]string)
	used := make(map[string]bool)
	for _, col := range columnsWithDiffs(r) {
		base := "column_" + safeFileName(col)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[strings.ToLower(name)] = true
		files[col] = name
	}
	return files
}

func (f *MultiFileFormatter) writeFile(base string, write func(io.Writer) error) error {
	filename := filepath.Join(f.OutputDir, base+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	return write(file)
}

func (f *MultiFileFormatter) writeOverview(w io.Writer, r *diff.Report, files map[string]string) error {
	ext := f.getFileExtension()
	generated := r.GeneratedAt.Format(time.RFC3339)

	if f.OutputFormat == formatMarkdown {
		md := NewMarkdownFormatter(w, f.Options)
		_, _ = fmt.Fprintf(w, "# Comparison Overview\n\n")
		_, _ = fmt.Fprintf(w, "Generated %s\n\n", generated)
		md.FormatSummary(r)
		md.FormatColumnDiff(r.ColumnDiff)
		if len(files) > 0 {
			_, _ = fmt.Fprintf(w, "## Column files\n\n")
			for _, col := range columnsWithDiffs(r) {
				_, _ = fmt.Fprintf(w, "- **%s**: `%s%s` (%s differences)\n",
					escapeCell(col), files[col], ext, count(len(r.DiffsByColumn[col])))
			}
			_, _ = fmt.Fprintln(w)
		}
		return nil
	}

	_, _ = fmt.Fprintf(w, "COMPARISON OVERVIEW\n")
	_, _ = fmt.Fprintf(w, "Generated %s\n\n", generated)
	txt := NewTextFormatter(w, f.Options)
	txt.writeColumns(r)
	if r.Configured() {
		_, _ = fmt.Fprintf(w, "\nKEY %s matched: %s mismatches: %s\n",
			r.KeyColumn, count(r.MatchingCount), count(r.TotalMismatches))
		txt.writeWarnings(r)
	}
	for _, col := range columnsWithDiffs(r) {
		_, _ = fmt.Fprintf(w, "%s%s (%s)\n", files[col], ext, col)
	}
	return nil
}

func (f *MultiFileFormatter) writeMissing(w io.Writer, r *diff.Report, side string) {
	rows, headers := r.MissingRows.OnlyInA, r.HeadersA
	if side == "B" {
		rows, headers = r.MissingRows.OnlyInB, r.HeadersB
	}

	if f.OutputFormat == formatMarkdown {
		NewMarkdownFormatter(w, f.Options).FormatMissing("Only in Table "+side, r, rows, headers)
		return
	}
	NewTextFormatter(w, f.Options).writeMissing("ONLY IN "+side, r, rows, headers)
}

func (f *MultiFileFormatter) writeColumn(w io.Writer, r *diff.Report, col string) error {
	if f.OutputFormat == formatMarkdown {
		return NewMarkdownFormatter(w, f.Options).FormatColumn(r, col)
	}
	return NewTextFormatter(w, f.Options).writeColumnDiffs(r, col)
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".txt"
}

// safeFileName keeps letters, digits, dash, underscore and dot
func safeFileName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
