package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type WorkbookReader interface {
	Read(path string) ([]Sheet, error)
}

type ExcelReader struct{}

func (r *ExcelReader) Read(path string) ([]Sheet, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer file.Close()

	names := file.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %s", path)
	}

	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		rows, err := file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read rows from sheet %s: %w", name, err)
		}

		grid := make([][]Cell, len(rows))
		for i, row := range rows {
			grid[i] = newRow(row)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: grid})
	}

	return sheets, nil
}
