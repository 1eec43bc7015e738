package frames

import (
	"fmt"
	"io"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteCSV writes df with a header row. Missing values are written as NaN,
// which ReadCSV reads back as missing.
func WriteCSV(w io.Writer, df dataframe.DataFrame) error {
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w)
}

// ReadCSV parses a CSV written by WriteCSV.
func ReadCSV(r io.Reader) dataframe.DataFrame {
	return dataframe.ReadCSV(r)
}

// WriteXLSX writes df to a single-sheet workbook. Missing values are left
// as blank cells.
func WriteXLSX(w io.Writer, df dataframe.DataFrame, sheetName string) error {
	if df.Err != nil {
		return df.Err
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	colNames := df.Names()
	for i, name := range colNames {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
	}

	for colIdx, colName := range colNames {
		s := df.Col(colName)
		for rowIdx := 0; rowIdx < s.Len(); rowIdx++ {
			val := s.Val(rowIdx)
			if val == nil {
				continue
			}
			if fv, ok := val.(float64); ok && math.IsNaN(fv) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
