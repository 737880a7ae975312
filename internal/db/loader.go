// Package db loads tables from SQL databases so they can be compared with
// delimited-text sources.
//
// Every value is read in its text form and trimmed, so a database table and
// a CSV export of it compare equal.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tordrt/tablediff/internal/table"
)

// Loader reads one table or query result into memory
type Loader interface {
	// LoadTable accepts a table name or a SELECT/WITH query
	LoadTable(ctx context.Context, source string) (*table.Table, error)
}

var (
	_ Loader = (*PostgresClient)(nil)
	_ Loader = (*MySQLClient)(nil)
	_ Loader = (*SQLiteClient)(nil)
)

// IsQuery reports whether source is a query rather than a table name
func IsQuery(source string) bool {
	s := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(s, "select ") || strings.HasPrefix(s, "with ") ||
		strings.HasPrefix(s, "select\n") || strings.HasPrefix(s, "with\n")
}

// buildQuery returns source unchanged if it is a query, otherwise selects
// every column from the quoted table name
func buildQuery(source string, quote func(string) string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", fmt.Errorf("table name or query is required")
	}
	if IsQuery(source) {
		return source, nil
	}
	return "SELECT * FROM " + quote(source), nil
}

// rowBuilder assembles a table with the same rules as the text tokenizer:
// values are trimmed and a repeated column name keeps the last value
type rowBuilder struct {
	t *table.Table
}

func newRowBuilder(headers []string) *rowBuilder {
	return &rowBuilder{t: &table.Table{Headers: headers, Rows: []table.Row{}}}
}

func (b *rowBuilder) add(values []string) {
	row := make(table.Row, len(b.t.Headers))
	for i, h := range b.t.Headers {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		row[h] = strings.TrimSpace(v)
	}
	b.t.Rows = append(b.t.Rows, row)
}

// scanSQLRows drains database/sql rows; NULL becomes ""
func scanSQLRows(rows *sql.Rows) (*table.Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	b := newRowBuilder(columns)
	cells := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		values := make([]string, len(cells))
		for i, c := range cells {
			values[i] = c.String
		}
		b.add(values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return b.t, nil
}
