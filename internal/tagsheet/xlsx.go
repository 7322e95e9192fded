package tagsheet

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// WriteXLSX serialises sheets, in order, into an xlsx workbook.
func WriteXLSX(sheets []Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E78"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	headingStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create heading style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", s.Name, err)
		}
		if err := writeSheet(f, s, headerStyle, headingStyle); err != nil {
			return nil, fmt.Errorf("failed to write sheet %s: %w", s.Name, err)
		}
	}
	if len(sheets) > 0 {
		f.SetActiveSheet(0)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s Sheet, headerStyle, headingStyle int) error {
	if len(s.Columns) == 0 {
		return nil
	}

	// Header row
	for col, c := range s.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(s.Name, cell, c.Header); err != nil {
			return err
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if c.Width > 0 {
			if err := f.SetColWidth(s.Name, name, name, c.Width); err != nil {
				return err
			}
		}
	}
	last, err := excelize.CoordinatesToCellName(len(s.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.Name, "A1", last, headerStyle); err != nil {
		return err
	}

	// Body
	for r, row := range s.Rows {
		for col, c := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := setCell(f, s.Name, cell, c); err != nil {
				return err
			}
			if c.Kind == KindHeading {
				if err := f.SetCellStyle(s.Name, cell, cell, headingStyle); err != nil {
					return err
				}
			}
		}
	}

	if !s.Tabular {
		return nil
	}
	if err := f.SetPanes(s.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(s.Columns), len(s.Rows)+1)
	if err != nil {
		return err
	}
	return f.AutoFilter(s.Name, "A1:"+end, nil)
}

func setCell(f *excelize.File, sheet, cell string, c Cell) error {
	switch c.Kind {
	case KindNumber:
		if c.Number == math.Trunc(c.Number) {
			return f.SetCellValue(sheet, cell, int64(c.Number))
		}
		return f.SetCellValue(sheet, cell, c.Number)
	default:
		if c.Text == "" {
			return nil
		}
		return f.SetCellValue(sheet, cell, c.Text)
	}
}
