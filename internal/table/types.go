package table

// Table represents a parsed tabular dataset
type Table struct {
	// Headers in first-seen order. May contain duplicates.
	Headers []string
	Rows    []Row
}

// Row maps a column name to its value
type Row map[string]string

// Get returns the value for column, or "" when the row has no such field
func (r Row) Get(column string) string {
	return r[column]
}

// Empty returns a table with no headers and no rows
func Empty() *Table {
	return &Table{Headers: []string{}, Rows: []Row{}}
}

// Len returns the number of data rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether name appears in the header list
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}
