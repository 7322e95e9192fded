// Package tagsheet renders a tag catalogue into a multi-sheet tag creation
// workbook for human review.
//
// Sheets are first built as plain tables (see Sheet) and only then
// serialised, so section content can be tested without opening a workbook.
package tagsheet

import "strconv"

// CellKind distinguishes how a cell is encoded.
type CellKind int

const (
	KindText CellKind = iota
	KindNumber
	// KindHeading is a bold label row inside a free-form sheet.
	KindHeading
)

// Cell is one typed value in a row.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// Text returns a string cell.
func Text(s string) Cell { return Cell{Kind: KindText, Text: s} }

// Int returns a numeric cell.
func Int(n int) Cell { return Cell{Kind: KindNumber, Number: float64(n)} }

// Heading returns a section heading cell.
func Heading(s string) Cell { return Cell{Kind: KindHeading, Text: s} }

// String renders the cell as text.
func (c Cell) String() string {
	if c.Kind == KindNumber {
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	}
	return c.Text
}

// Row is an ordered list of cells.
type Row []Cell

// Column describes one header cell and its display width.
type Column struct {
	Header string
	Width  float64
}

// Sheet is a format-neutral named table.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    []Row
	// Tabular sheets get a frozen header row and an auto filter.
	Tabular bool
}

// Headers returns the column headers in order.
func (s Sheet) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Header
	}
	return out
}

// Column returns the cells of the named column, or nil if the sheet has no
// such header.
func (s Sheet) Column(header string) []Cell {
	idx := -1
	for i, c := range s.Columns {
		if c.Header == header {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]Cell, 0, len(s.Rows))
	for _, r := range s.Rows {
		if idx < len(r) {
			out = append(out, r[idx])
		} else {
			out = append(out, Text(""))
		}
	}
	return out
}

// pair is a two-column label/value row, used by the free-form sheets.
func pair(label string, value Cell) Row {
	return Row{Text(label), value}
}
