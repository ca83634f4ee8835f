package procedure

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/NLight-n/IRLog/internal/domain/settings"
	"github.com/NLight-n/IRLog/pkg/columns"
)

// ReportMeta is the header block of an exported report.
type ReportMeta struct {
	Title            string
	Subtitle         string
	RangeDescription string
}

const (
	metaRows      = 3
	headerRowIdx  = 4 // zero-based: three meta rows, one blank row, then headers
	firstColWidth = 10
	widthPadding  = 2
)

// BuildGrid lays out the export: three report-header rows, a blank separator,
// the column-header row, then one row per record restricted to the visible
// columns in order.
func BuildGrid(records []*Log, visible []columns.Column, meta ReportMeta, st *settings.Settings) [][]string {
	grid := [][]string{
		{meta.Title},
		{meta.Subtitle},
		{meta.RangeDescription},
		{},
	}
	header := make([]string, len(visible))
	for i, col := range visible {
		header[i] = col.Label
	}
	grid = append(grid, header)
	for _, p := range records {
		row := make([]string, len(visible))
		for i, col := range visible {
			row[i] = CellValue(p, col.Key, st)
		}
		grid = append(grid, row)
	}
	return grid
}

// columnWidths sizes each column to its longest cell plus padding. The first
// column keeps a fixed width.
func columnWidths(grid [][]string) []float64 {
	if len(grid) <= headerRowIdx {
		return nil
	}
	n := len(grid[headerRowIdx])
	widths := make([]float64, n)
	for c := 0; c < n; c++ {
		if c == 0 {
			widths[c] = firstColWidth
			continue
		}
		maxLen := 0
		for _, row := range grid {
			if c < len(row) && len(row[c]) > maxLen {
				maxLen = len(row[c])
			}
		}
		widths[c] = float64(maxLen + widthPadding)
	}
	return widths
}

// WriteXLSX renders the grid as a spreadsheet: report-header rows merged
// across the table width, bold centered styling on those rows and the column
// header row, and computed column widths.
func WriteXLSX(w io.Writer, grid [][]string) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "ProcedureLogs"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for r, row := range grid {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}

	colCount := 0
	if len(grid) > headerRowIdx {
		colCount = len(grid[headerRowIdx])
	}
	if colCount > 0 {
		lastCol, err := excelize.ColumnNumberToName(colCount)
		if err != nil {
			return err
		}
		for r := 1; r <= metaRows; r++ {
			if err := f.MergeCell(sheet, fmt.Sprintf("A%d", r), fmt.Sprintf("%s%d", lastCol, r)); err != nil {
				return err
			}
		}

		styleID, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return err
		}
		for _, r := range []int{1, 2, 3, headerRowIdx + 1} {
			if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", r), fmt.Sprintf("%s%d", lastCol, r), styleID); err != nil {
				return err
			}
		}

		for c, width := range columnWidths(grid) {
			name, err := excelize.ColumnNumberToName(c + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet, name, name, width); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
