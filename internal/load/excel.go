package load

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/mbenitez-dev/cashlog/internal/extract"
	"github.com/mbenitez-dev/cashlog/internal/extract/grid"
)

// OpenExcel reads a workbook from disk, one Sheet per workbook sheet in
// workbook order.
func OpenExcel(path string) (extract.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return extract.Document{}, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()
	return readWorkbook(f, filepath.Base(path), path)
}

// OpenExcelReader reads a workbook from a stream; name is used for
// document identity and type routing.
func OpenExcelReader(name string, r io.Reader) (extract.Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return extract.Document{}, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	defer f.Close()
	return readWorkbook(f, name, name)
}

func readWorkbook(f *excelize.File, name, path string) (extract.Document, error) {
	doc := extract.Document{Name: name, Path: path}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return extract.Document{}, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, name, err)
		}
		g := make(grid.Grid, 0, len(rows))
		for _, r := range rows {
			g = append(g, grid.Row(r))
		}
		doc.Sheets = append(doc.Sheets, extract.Sheet{Name: sheet, Grid: g})
	}
	return doc, nil
}
