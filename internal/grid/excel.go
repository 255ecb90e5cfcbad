// =============================================================================
// Ledger Reconcile - Excelize Workbook Adapter
// =============================================================================
//
// ExcelWorkbook backs the grid contract with an .xlsx file via excelize.
//
// Two adapter-level decisions matter for correctness:
//
//   - Cell reads use RawCellValue. Formatted reads would round quantities
//     through their display format ("#,##0") and render dates as text,
//     which corrupts balance arithmetic and change detection. Raw reads
//     return stored numbers verbatim and dates as serial numbers; the
//     parsing helpers handle the serial form.
//
//   - Style writes are read-modify-write. Fill, font and number format
//     share a single style id per cell, so each marker operation loads the
//     cell's current style, mutates one facet and registers the result.
//
// =============================================================================

package grid

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Fill marker colors (ARGB hex without alpha, as stored in the sheet).
var fillColors = map[Fill]string{
	FillAttention: "FFFF00",
	FillChanged:   "C6EFCE",
	FillHead:      "D9D9D9",
}

// =============================================================================
// WORKBOOK
// =============================================================================

// ExcelWorkbook is the excelize-backed Workbook implementation.
type ExcelWorkbook struct {
	f *excelize.File

	// defaultSheet is the sheet excelize seeds into a fresh file. It is
	// dropped once a real sheet is created, so new reports do not carry an
	// empty "Sheet1".
	defaultSheet string
}

// NewWorkbook creates an empty in-memory workbook.
func NewWorkbook() *ExcelWorkbook {
	f := excelize.NewFile()
	return &ExcelWorkbook{f: f, defaultSheet: f.GetSheetName(0)}
}

// OpenWorkbook opens an existing workbook from disk.
func OpenWorkbook(path string) (*ExcelWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &ExcelWorkbook{f: f}, nil
}

// Sheet returns the named grid, reporting whether it exists.
func (w *ExcelWorkbook) Sheet(name string) (Grid, bool) {
	if !w.HasSheet(name) {
		return nil, false
	}
	return &excelSheet{f: w.f, name: name}, true
}

// EnsureSheet returns the named grid, creating it when absent.
func (w *ExcelWorkbook) EnsureSheet(name string) Grid {
	if !w.HasSheet(name) {
		w.f.NewSheet(name)
		w.dropDefaultSheet(name)
	}
	return &excelSheet{f: w.f, name: name}
}

// HasSheet reports whether the named sheet exists.
func (w *ExcelWorkbook) HasSheet(name string) bool {
	idx, err := w.f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// Save writes the workbook to path.
func (w *ExcelWorkbook) Save(path string) error {
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Close releases the underlying file resources.
func (w *ExcelWorkbook) Close() error {
	return w.f.Close()
}

func (w *ExcelWorkbook) dropDefaultSheet(keep string) {
	if w.defaultSheet == "" || w.defaultSheet == keep {
		return
	}
	rows, err := w.f.GetRows(w.defaultSheet)
	if err == nil && len(rows) == 0 {
		w.f.DeleteSheet(w.defaultSheet)
	}
	w.defaultSheet = ""
}

// =============================================================================
// SHEET
// =============================================================================

type excelSheet struct {
	f    *excelize.File
	name string
}

func (s *excelSheet) axis(row, col int) string {
	ref, _ := excelize.CoordinatesToCellName(col, row)
	return ref
}

func (s *excelSheet) GetCell(row, col int) string {
	v, err := s.f.GetCellValue(s.name, s.axis(row, col), excelize.Options{RawCellValue: true})
	if err != nil {
		return ""
	}
	return v
}

func (s *excelSheet) SetCell(row, col int, value any) {
	s.f.SetCellValue(s.name, s.axis(row, col), value)
}

func (s *excelSheet) SetFormula(row, col int, formula string) {
	s.f.SetCellFormula(s.name, s.axis(row, col), strings.TrimPrefix(formula, "="))
}

func (s *excelSheet) GetFormula(row, col int) string {
	v, err := s.f.GetCellFormula(s.name, s.axis(row, col))
	if err != nil || v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "=") {
		v = "=" + v
	}
	return v
}

func (s *excelSheet) InsertRows(at, count int) error {
	if err := s.f.InsertRows(s.name, at, count); err != nil {
		return fmt.Errorf("failed to insert %d row(s) at %d: %w", count, at, err)
	}
	return nil
}

func (s *excelSheet) DeleteRows(at, count int) error {
	// excelize removes one row per call; repeated removal at the same
	// position deletes a contiguous range.
	for i := 0; i < count; i++ {
		if err := s.f.RemoveRow(s.name, at); err != nil {
			return fmt.Errorf("failed to delete row %d: %w", at, err)
		}
	}
	return nil
}

func (s *excelSheet) MaxRow() int {
	rows, err := s.f.GetRows(s.name)
	if err != nil {
		return 0
	}
	return len(rows)
}

func (s *excelSheet) MaxCol() int {
	rows, err := s.f.GetRows(s.name)
	if err != nil {
		return 0
	}
	max := 0
	for _, row := range rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

func (s *excelSheet) SetRowHeight(row int, height float64) {
	s.f.SetRowHeight(s.name, row, height)
}

func (s *excelSheet) HideColumn(col int) {
	s.f.SetColVisible(s.name, ColumnName(col), false)
}

func (s *excelSheet) SetFill(row, col int, fill Fill) {
	s.mutateStyle(row, col, func(st *excelize.Style) {
		if fill == FillNone {
			st.Fill = excelize.Fill{}
			return
		}
		st.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{fillColors[fill]},
		}
	})
}

func (s *excelSheet) GetFill(row, col int) Fill {
	id, err := s.f.GetCellStyle(s.name, s.axis(row, col))
	if err != nil {
		return FillNone
	}
	st, err := s.f.GetStyle(id)
	if err != nil || st == nil {
		return FillNone
	}
	if st.Fill.Type != "pattern" || len(st.Fill.Color) == 0 {
		return FillNone
	}
	color := strings.ToUpper(st.Fill.Color[0])
	for fill, code := range fillColors {
		if strings.HasSuffix(color, code) {
			return fill
		}
	}
	return FillNone
}

func (s *excelSheet) SetFont(row, col int, font Font) {
	s.mutateStyle(row, col, func(st *excelize.Style) {
		if st.Font == nil {
			st.Font = &excelize.Font{}
		}
		switch font {
		case FontBold:
			st.Font.Bold = true
		case FontItalic:
			st.Font.Italic = true
		}
	})
}

func (s *excelSheet) SetNumberFormat(row, col int, format string) {
	s.mutateStyle(row, col, func(st *excelize.Style) {
		st.CustomNumFmt = &format
	})
}

// mutateStyle rewrites one facet of a cell's style while preserving the
// rest. Style errors are dropped; a marker that fails to apply degrades the
// report cosmetically but never the data.
func (s *excelSheet) mutateStyle(row, col int, mutate func(*excelize.Style)) {
	axis := s.axis(row, col)

	var st *excelize.Style
	if id, err := s.f.GetCellStyle(s.name, axis); err == nil {
		st, _ = s.f.GetStyle(id)
	}
	if st == nil {
		st = &excelize.Style{}
	}

	mutate(st)

	id, err := s.f.NewStyle(st)
	if err != nil {
		return
	}
	s.f.SetCellStyle(s.name, axis, axis, id)
}
