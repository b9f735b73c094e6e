package export

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/LinkSort/internal/core"
	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize creates in a new workbook.
const defaultSheet = "Sheet1"

// Header row of every platform sheet.
var sheetHeader = []any{"Username", "Link"}

// WriteXLSX writes one sheet per non-empty platform, in platform order, each
// with a Username/Link header row followed by the links in discovery order.
// An empty result produces a workbook holding only a blank default sheet.
func WriteXLSX(w io.Writer, res *core.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, p := range res.Platforms() {
		sheet := p.String()
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("add sheet %s: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, res.Links(p), bold); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, links []core.Link, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &sheetHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	for i, l := range links {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{l.Username, l.URL}); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "B", 60)
}
