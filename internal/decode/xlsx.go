// Package decode turns uploaded Office Open XML files into the cells and text
// the core pipeline works on.
package decode

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/LinkSort/internal/core"
	"github.com/xuri/excelize/v2"
)

// Spreadsheet decodes .xlsx workbooks with excelize.
type Spreadsheet struct {
	// UnzipSizeLimit caps the uncompressed workbook size. Zero uses the
	// excelize default.
	UnzipSizeLimit int64
}

// DecodeCells returns every non-empty cell of every sheet, sheets in workbook
// order and cells in row-major order.
func (s Spreadsheet) DecodeCells(ctx context.Context, r io.Reader) ([]core.Cell, error) {
	opts := excelize.Options{}
	if s.UnzipSizeLimit > 0 {
		opts.UnzipSizeLimit = s.UnzipSizeLimit
		opts.UnzipXMLSizeLimit = s.UnzipSizeLimit
	}

	f, err := excelize.OpenReader(r, opts)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var cells []core.Cell
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		for ri, row := range rows {
			for ci, value := range row {
				if value == "" {
					continue
				}
				name, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				if err != nil {
					return nil, err
				}
				typ, err := f.GetCellType(sheet, name)
				if err != nil {
					return nil, fmt.Errorf("cell %s!%s: %w", sheet, name, err)
				}
				cells = append(cells, core.Cell{
					Sheet: sheet,
					Row:   ri + 1,
					Col:   ci + 1,
					Value: value,
					Text:  isTextual(typ),
				})
			}
		}
	}

	return cells, nil
}

// isTextual reports whether a cell stores a string: shared and inline strings,
// and formulas whose cached result is a string.
func isTextual(t excelize.CellType) bool {
	switch t {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return true
	default:
		return false
	}
}
