package formatter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tordrt/tablediff/internal/diff"
	"github.com/tordrt/tablediff/internal/table"
)

func sampleReport(t *testing.T, key string) *diff.Report {
	t.Helper()

	a := table.Parse("id,name,city\n1,x,Oslo\n2,y,Bergen\n3,a|b,Tromsø")
	b := table.Parse("id,name,zip\n1,X,0150\n3,ab,9000\n4,z,5003")

	r, err := diff.Compare(a, b, diff.DefaultOptions(key))
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	return r
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		name   string
		format string
		key    string
		want   []string
		absent []string
	}{
		{
			name:   "text",
			format: formatText,
			key:    "id",
			want:   []string{"COLUMNS differ", "only in A: city", "only in B: zip", "KEY id", "ONLY IN A (1 row)", "id=2 name=y city=Bergen", "COLUMN name (2 differences)", `1: "x" → "X"`},
		},
		{
			name:   "text unconfigured",
			format: formatText,
			key:    "",
			want:   []string{"COLUMNS differ", "No key column selected"},
			absent: []string{"KEY"},
		},
		{
			name:   "markdown",
			format: formatMarkdown,
			key:    "id",
			want:   []string{"# Comparison Report", "- **Key column:** id", "## Only in Table B (1 row)", "| id | name | zip |", "### name (2 differences)", `| 3 | a\|b | ab |`, "### city (2 differences)", "| 1 | Oslo | (empty) |"},
		},
		{
			name:   "html",
			format: formatHTML,
			key:    "id",
			want:   []string{"<h1>Comparison Report</h1>", "<code>city</code>", "Only in Table A (1 row)", `<td class="value-b">X</td>`, "Tromsø"},
		},
		{
			name:   "json",
			format: formatJSON,
			key:    "id",
			want:   []string{`"key_column": "id"`, `"total_mismatches": 4`, `"only_in_b"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f, err := New(tt.format, &buf, DefaultOptions())
			if err != nil {
				t.Fatalf("New(%q) failed: %v", tt.format, err)
			}
			if err := f.Format(sampleReport(t, tt.key)); err != nil {
				t.Fatalf("Format failed: %v", err)
			}

			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("Expected output to contain %q\n%s", want, output)
				}
			}
			for _, absent := range tt.absent {
				if strings.Contains(output, absent) {
					t.Errorf("Expected output not to contain %q\n%s", absent, output)
				}
			}
		})
	}
}

func TestNewInvalidFormat(t *testing.T) {
	if _, err := New("pdf", &bytes.Buffer{}, DefaultOptions()); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestHTMLEscapes(t *testing.T) {
	a := table.Parse("id,v\n1,<script>")
	b := table.Parse("id,v\n1,ok")
	r, err := diff.Compare(a, b, diff.DefaultOptions("id"))
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	var buf bytes.Buffer
	if err := NewHTMLFormatter(&buf, DefaultOptions()).Format(r); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Error("Expected value to be escaped")
	}
	if !strings.Contains(buf.String(), "&lt;script&gt;") {
		t.Error("Expected escaped value in output")
	}
}

func TestHTMLReportPage(t *testing.T) {
	r := sampleReport(t, "id")

	var buf bytes.Buffer
	opts := Options{PreviewRows: 1, EntrySort: diff.FieldKey, Direction: diff.Descending}
	if err := ReportPage(r, opts).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	output := buf.String()
	for _, want := range []string{
		"<!doctype html>",
		"<li>Key column: id</li>",
		"<h3>name (2 differences)</h3>",
		`<td>3</td><td class="value-a">a|b</td><td class="value-b">ab</td>`,
		`<p class="more">+1 more rows...</p>`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q\n%s", want, output)
		}
	}

	opts.EntrySort = "nonsense"
	if err := ReportPage(r, opts).Render(context.Background(), &bytes.Buffer{}); err == nil {
		t.Error("Expected error for invalid entry sort")
	}
}

func TestPreviewAndSort(t *testing.T) {
	a := table.Parse("id,v\n1,a\n2,a\n3,a\n4,a")
	b := table.Parse("id,v\n1,d\n2,c\n3,b\n4,e")
	r, err := diff.Compare(a, b, diff.DefaultOptions("id"))
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	opts := Options{PreviewRows: 2, EntrySort: diff.FieldValueB, Direction: diff.Descending}
	var buf bytes.Buffer
	if err := NewTextFormatter(&buf, opts).Format(r); err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	output := buf.String()
	first := strings.Index(output, `4: "a" → "e"`)
	second := strings.Index(output, `1: "a" → "d"`)
	if first < 0 || second < 0 || first > second {
		t.Errorf("Expected entries sorted by B descending\n%s", output)
	}
	if strings.Contains(output, `2: "a" → "c"`) {
		t.Errorf("Expected preview to stop after 2 rows\n%s", output)
	}
	if !strings.Contains(output, "+2 more rows...") {
		t.Errorf("Expected more-rows marker\n%s", output)
	}

	opts.EntrySort = "nonsense"
	if err := NewTextFormatter(&bytes.Buffer{}, opts).Format(r); err == nil {
		t.Error("Expected error for invalid entry sort")
	}
}

func TestSuppressedWarning(t *testing.T) {
	a := table.Parse("id,v\n1,a\n2,a")
	b := table.Parse("id,v\n1,b\n2,b")
	opts := diff.DefaultOptions("id")
	opts.MaxDiffsPerColumn = 1
	r, err := diff.Compare(a, b, opts)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	var buf bytes.Buffer
	if err := NewMarkdownFormatter(&buf, DefaultOptions()).Format(r); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(buf.String(), "**Suppressed:** 1 (cap 1 per column)") {
		t.Errorf("Expected suppression notice\n%s", buf.String())
	}
}

func TestJSONRoundTripFields(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).Format(sampleReport(t, "id")); err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded["matching_count"] != float64(2) {
		t.Errorf("matching_count = %v, want 2", decoded["matching_count"])
	}
}

func TestMultiFileFormatter(t *testing.T) {
	tests := []struct {
		format    string
		wantFiles []string
		contains  map[string]string
	}{
		{
			format:    formatMarkdown,
			wantFiles: []string{"_overview.md", "only_in_a.md", "only_in_b.md", "column_name.md", "column_city.md"},
			contains: map[string]string{
				"_overview.md":   "`column_name.md`",
				"column_name.md": "### name (2 differences)",
			},
		},
		{
			format:    formatText,
			wantFiles: []string{"_overview.txt", "only_in_a.txt", "only_in_b.txt", "column_name.txt"},
			contains: map[string]string{
				"_overview.txt":   "COMPARISON OVERVIEW",
				"only_in_b.txt":   "id=4 name=z zip=5003",
				"column_city.txt": "COLUMN city",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "report")
			f := NewMultiFileFormatter(dir, tt.format, DefaultOptions())
			if err := f.Format(sampleReport(t, "id")); err != nil {
				t.Fatalf("Format failed: %v", err)
			}

			for _, name := range tt.wantFiles {
				if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
					t.Errorf("Expected %s to be created", name)
				}
			}
			for name, want := range tt.contains {
				content, err := os.ReadFile(filepath.Join(dir, name))
				if err != nil {
					t.Fatalf("Failed to read %s: %v", name, err)
				}
				if !strings.Contains(string(content), want) {
					t.Errorf("Expected %s to contain %q\n%s", name, want, content)
				}
			}
		})
	}
}

func TestMultiFilePlanUniqueNames(t *testing.T) {
	a := table.Parse("id,a b,a_b,a_b_2,Name,name\n1,x,x,x,x,x")
	b := table.Parse("id,a b,a_b,a_b_2,Name,name\n1,y,y,y,y,y")
	r, err := diff.Compare(a, b, diff.DefaultOptions("id"))
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	files := NewMultiFileFormatter(t.TempDir(), formatText, DefaultOptions()).plan(r)

	want := map[string]string{
		"a b":   "column_a_b",
		"a_b":   "column_a_b_2",
		"a_b_2": "column_a_b_2_2",
		"Name":  "column_Name",
		"name":  "column_name_2",
	}
	for col, name := range want {
		if files[col] != name {
			t.Errorf("plan[%q] = %q, want %q", col, files[col], name)
		}
	}

	seen := make(map[string]string)
	for col, name := range files {
		if prev, ok := seen[strings.ToLower(name)]; ok {
			t.Errorf("columns %q and %q share file %q", prev, col, name)
		}
		seen[strings.ToLower(name)] = col
	}
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"name", "name"},
		{"first name", "first_name"},
		{"a/b\\c", "a_b_c"},
		{"", "_"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := safeFileName(tt.in); got != tt.want {
				t.Errorf("safeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
