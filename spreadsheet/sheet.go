// Package spreadsheet turns uploaded Excel workbooks into typed rows.
package spreadsheet

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

type CellKind int

const (
	CellNull CellKind = iota
	CellText
	CellNumber
)

// Cell is one spreadsheet value: null, text, or a finite number. Number cells keep their source text.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// ParseCell types a raw cell value. Blank cells are null; anything that parses as a finite float is a number.
func ParseCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cell{}
	}
	if f, err := cast.ToFloat64E(s); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Cell{Kind: CellNumber, Text: s, Number: f}
	}
	return Cell{Kind: CellText, Text: s}
}

func (c Cell) IsNull() bool {
	return c.Kind == CellNull
}

// String returns the cell as text, "" for null.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		if c.Text != "" {
			return c.Text
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	}
	return ""
}

// Float returns the numeric value of a number cell.
func (c Cell) Float() (float64, bool) {
	if c.Kind != CellNumber {
		return 0, false
	}
	return c.Number, true
}

// Row maps column names to cells. Line is the 1-based row number in the source sheet.
type Row struct {
	Line  int
	Cells map[string]Cell
}

// Get returns the named cell, null when the row has no such column.
func (r Row) Get(column string) Cell {
	return r.Cells[column]
}

type Sheet struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NewSheet builds a sheet from raw records. The first record is the header; header cells are trimmed,
// blank headers are dropped and repeated headers keep their first position. Rows with no values are skipped.
func NewSheet(name string, records [][]string) *Sheet {
	sheet := &Sheet{Name: name}
	if len(records) == 0 {
		return sheet
	}

	index := make(map[int]string)
	seen := make(map[string]bool)
	for i, h := range records[0] {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		index[i] = h
		sheet.Columns = append(sheet.Columns, h)
	}

	for n, record := range records[1:] {
		row := Row{Line: n + 2, Cells: make(map[string]Cell, len(index))}
		empty := true
		for i, raw := range record {
			col, ok := index[i]
			if !ok {
				continue
			}
			cell := ParseCell(raw)
			if !cell.IsNull() {
				empty = false
			}
			row.Cells[col] = cell
		}
		if !empty {
			sheet.Rows = append(sheet.Rows, row)
		}
	}
	return sheet
}

// MissingColumns returns the required columns that the sheet header does not contain, in the order given.
func (s *Sheet) MissingColumns(required ...string) []string {
	have := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		have[c] = true
	}
	var missing []string
	for _, c := range required {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}
