package formatter

import (
	"encoding/json"
	"io"

	"github.com/tordrt/tablediff/internal/diff"
)

// JSONFormatter writes the complete report as indented JSON. Preview and
// sort options do not apply; consumers get every retained entry.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// Format encodes the report
func (f *JSONFormatter) Format(r *diff.Report) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
