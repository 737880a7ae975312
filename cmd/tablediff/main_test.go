package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tordrt/tablediff/internal/diff"
)

const (
	fileA = "id,name,qty\n1,apple,3\n2,pear,5\n3,plum,7\n"
	fileB = "id,name,qty\n1,apple,4\n2,pear,5\n4,fig,1\n"
)

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	if err := os.WriteFile(a, []byte(fileA), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte(fileB), 0644); err != nil {
		t.Fatal(err)
	}
	return a, b
}

// execute runs the command tree with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompareText(t *testing.T) {
	a, b := writeFixtures(t)

	for _, args := range [][]string{
		{a, b, "-k", "id"},
		{"compare", a, b, "--key", "id"},
	} {
		out, err := execute(t, "", args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		for _, want := range []string{"KEY id", "ONLY IN A", "ONLY IN B", "qty"} {
			if !strings.Contains(out, want) {
				t.Errorf("%v: output missing %q:\n%s", args, want, out)
			}
		}
	}
}

func TestCompareJSON(t *testing.T) {
	a, b := writeFixtures(t)

	out, err := execute(t, "", a, b, "-k", "id", "-f", "json", "--max-diffs", "0")
	if err != nil {
		t.Fatal(err)
	}

	var r diff.Report
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if r.MatchingCount != 2 {
		t.Errorf("MatchingCount = %d, want 2", r.MatchingCount)
	}
	if r.MaxDiffsPerColumn != 0 || r.TotalMismatches != 0 || r.Suppressed["qty"] != 1 {
		t.Errorf("cap not applied: max=%d mismatches=%d suppressed=%v", r.MaxDiffsPerColumn, r.TotalMismatches, r.Suppressed)
	}
}

func TestCompareStdin(t *testing.T) {
	_, b := writeFixtures(t)

	out, err := execute(t, fileA, "-", b, "-k", "id", "-f", "markdown")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "qty") {
		t.Errorf("markdown output missing qty column:\n%s", out)
	}
}

func TestCompareOutputDir(t *testing.T) {
	a, b := writeFixtures(t)
	dir := filepath.Join(t.TempDir(), "report")

	if _, err := execute(t, "", a, b, "-k", "id", "-d", dir); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	got := strings.Join(names, ",")
	for _, want := range []string{"_overview", "only_in_a", "only_in_b", "column_qty"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in %v", want, names)
		}
	}
}

func TestCompareErrors(t *testing.T) {
	a, b := writeFixtures(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"one source", []string{a}, "accepts 2 arg(s)"},
		{"unknown key", []string{a, b, "-k", "colour"}, "key column"},
		{"both outputs", []string{a, b, "-o", "x.txt", "-d", "out"}, "--output-dir"},
		{"bad direction", []string{a, b, "--dir", "up"}, "invalid sort direction"},
		{"bad sort field", []string{a, b, "--sort", "c"}, "invalid sort field"},
		{"bad format", []string{a, b, "-f", "pdf"}, "invalid format"},
		{"negative cap", []string{a, b, "-k", "id", "--max-diffs", "-1"}, "TABLEDIFF_MAX_DIFFS_PER_COLUMN"},
		{"two stdin sources", []string{"-", "-"}, "standard input"},
		{"unsupported scheme", []string{"ftp://host/a.csv", b}, "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestColumnsCommand(t *testing.T) {
	a, b := writeFixtures(t)

	out, err := execute(t, "", "columns", a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "COLUMNS identical (3)") || !strings.Contains(out, "KEY CANDIDATES id name qty") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestWriteColumns(t *testing.T) {
	differ := diff.DiffColumns([]string{"id", "a"}, []string{"id", "b"})

	tests := []struct {
		name       string
		format     string
		cd         diff.ColumnDiff
		candidates []string
		want       []string
		wantErr    bool
	}{
		{
			name:       "text differ",
			format:     "text",
			cd:         differ,
			candidates: []string{"id"},
			want:       []string{"COLUMNS differ", "only in A: a", "only in B: b", "KEY CANDIDATES id"},
		},
		{
			name:   "text no candidates",
			format: "text",
			cd:     diff.DiffColumns([]string{"a"}, []string{"b"}),
			want:   []string{"KEY CANDIDATES (none)"},
		},
		{
			name:       "markdown",
			format:     "markdown",
			cd:         differ,
			candidates: []string{"id"},
			want:       []string{"**Key candidates:** id"},
		},
		{
			name:       "json",
			format:     "json",
			cd:         differ,
			candidates: []string{"id"},
			want:       []string{`"key_candidates": [`, `"only_a": [`},
		},
		{
			name:    "invalid",
			format:  "yaml",
			cd:      differ,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeColumns(&buf, tt.format, tt.cd, tt.candidates)
			if (err != nil) != tt.wantErr {
				t.Fatalf("writeColumns() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}
