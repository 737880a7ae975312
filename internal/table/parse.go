// Package table holds the parsed form of a delimited-text source and the
// tokenizer that produces it.
//
// The tokenizer is deliberately forgiving: blank lines are skipped, short
// records are padded with empty strings and extra fields are dropped. It never
// returns an error.
package table

import (
	"strings"
)

// Tokenizer splits comma separated text into a Table.
//
// The zero value reproduces the historical behaviour where a doubled quote
// ("") inside a quoted field toggles the quote state twice and disappears from
// the output. Set DoubledQuoteLiteral to keep one literal quote instead.
type Tokenizer struct {
	DoubledQuoteLiteral bool
}

// Parse tokenizes text with the default Tokenizer
func Parse(text string) *Table {
	return Tokenizer{}.Parse(text)
}

// Parse converts text into headers and rows. The first non-blank line is the
// header line.
func (tk Tokenizer) Parse(text string) *Table {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return Empty()
	}

	headers := tk.SplitLine(lines[0])
	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := tk.SplitLine(line)
		row := make(Row, len(headers))
		for i, h := range headers {
			value := ""
			if i < len(fields) {
				value = fields[i]
			}
			// duplicate header names collapse, last assignment wins
			row[h] = strings.TrimSpace(value)
		}
		rows = append(rows, row)
	}

	return &Table{Headers: headers, Rows: rows}
}

// SplitLine splits a single record into its fields
func (tk Tokenizer) SplitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if tk.DoubledQuoteLiteral && inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, tk.cleanField(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(fields, tk.cleanField(current.String()))
}

// cleanField trims whitespace, then strips at most one leading and one
// trailing quote left over after trimming. Literal quotes are kept intact.
func (tk Tokenizer) cleanField(s string) string {
	s = strings.TrimSpace(s)
	if tk.DoubledQuoteLiteral {
		return s
	}
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

func nonBlankLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
