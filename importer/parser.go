package importer

import (
	"fmt"
	"strings"
)

const boothHeaderPrefix = "booth:"

// boothColumn is a grid column headed by a "Booth: <physicalId>" cell.
type boothColumn struct {
	col        int
	physicalID string
}

// sessionBlock is a contiguous row range [startRow, endRow) anchored by a
// non-empty first-column cell.
type sessionBlock struct {
	startRow int
	endRow   int
	anchor   Cell
}

// findHeaderRow returns the first row containing a booth header cell.
func findHeaderRow(sheet Sheet) (int, bool) {
	for row := range sheet.Rows {
		for _, cell := range sheet.Rows[row] {
			if hasBoothPrefix(cell.Text) {
				return row, true
			}
		}
	}
	return 0, false
}

// collectBoothColumns gathers every booth header cell in the header row.
// Headers with a blank physical id are reported and dropped.
func collectBoothColumns(sheet Sheet, headerRow int) ([]boothColumn, []string) {
	columns := make([]boothColumn, 0, 4)
	problems := make([]string, 0)

	for col, cell := range sheet.Rows[headerRow] {
		if !hasBoothPrefix(cell.Text) {
			continue
		}
		physicalID := strings.TrimSpace(cell.Text[len(boothHeaderPrefix):])
		if physicalID == "" {
			problems = append(problems, fmt.Sprintf(
				"sheet %q row %d: booth header without a physical id", sheet.Name, headerRow+1))
			continue
		}
		columns = append(columns, boothColumn{col: col, physicalID: physicalID})
	}

	if len(columns) == 0 {
		problems = append(problems, fmt.Sprintf(
			"sheet %q: header row %d has no usable booth columns", sheet.Name, headerRow+1))
	}

	return columns, problems
}

// segmentBlocks splits the grid below the header row into session blocks.
// Anchors whose text trims to nothing are reported and produce no block.
func segmentBlocks(sheet Sheet, headerRow int) ([]sessionBlock, []string) {
	blocks := make([]sessionBlock, 0, 8)
	problems := make([]string, 0)

	anchorRows := make([]int, 0, 8)
	for row := headerRow + 1; row < len(sheet.Rows); row++ {
		if sheet.Cell(row, 0).Raw != "" {
			anchorRows = append(anchorRows, row)
		}
	}

	for i, row := range anchorRows {
		endRow := len(sheet.Rows)
		if i+1 < len(anchorRows) {
			endRow = anchorRows[i+1]
		}

		anchor := sheet.Cell(row, 0)
		if anchor.Text == "" {
			problems = append(problems, fmt.Sprintf(
				"sheet %q row %d: session cell is blank; block skipped", sheet.Name, row+1))
			continue
		}

		blocks = append(blocks, sessionBlock{startRow: row, endRow: endRow, anchor: anchor})
	}

	return blocks, problems
}

func hasBoothPrefix(text string) bool {
	return len(text) >= len(boothHeaderPrefix) &&
		strings.EqualFold(text[:len(boothHeaderPrefix)], boothHeaderPrefix)
}
