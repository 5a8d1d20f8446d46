package importer

import (
	"strconv"
	"strings"
	"time"
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDateTime
)

// Cell is one grid cell with its recognized value kind. Raw keeps the
// untrimmed sheet text so whitespace-only cells stay distinguishable from
// truly empty ones.
type Cell struct {
	Raw    string
	Text   string
	Kind   CellKind
	Number float64
	Clock  time.Time
}

// Sheet is one workbook tab loaded as a row-major cell grid.
type Sheet struct {
	Name string
	Rows [][]Cell
}

// Cell returns the cell at (row, col), or an empty cell when the grid is
// ragged and the coordinate falls outside a row.
func (s Sheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.Rows) {
		return Cell{}
	}
	cells := s.Rows[row]
	if col < 0 || col >= len(cells) {
		return Cell{}
	}
	return cells[col]
}

// clock layouts excelize commonly renders for time and datetime cells.
var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04:05 PM",
	"01-02-06 15:04",
	"1/2/06 15:04",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// NewCell classifies a raw sheet value into a typed cell.
func NewCell(raw string) Cell {
	cell := Cell{Raw: raw, Text: strings.TrimSpace(raw)}
	if cell.Text == "" {
		return cell
	}

	for _, layout := range clockLayouts {
		if parsed, err := time.ParseInLocation(layout, cell.Text, time.Local); err == nil {
			cell.Kind = CellDateTime
			cell.Clock = parsed
			return cell
		}
	}

	if number, err := strconv.ParseFloat(cell.Text, 64); err == nil {
		cell.Kind = CellNumber
		cell.Number = number
		return cell
	}

	cell.Kind = CellText
	return cell
}

func newRow(values []string) []Cell {
	cells := make([]Cell, len(values))
	for i, value := range values {
		cells[i] = NewCell(value)
	}
	return cells
}
