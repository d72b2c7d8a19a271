package consolidate

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/mbenitez-dev/cashlog/internal/extract"
	"github.com/mbenitez-dev/cashlog/internal/extract/normalize"
)

// outputNames maps each document kind to its consolidated file base name.
var outputNames = map[extract.DocType]string{
	extract.DocECATM:       "PROSEGUR_EFECT_ATM",
	extract.DocECBanco:     "PROSEGUR_EFECT_BANCO",
	extract.DocBultosATM:   "PROSEGUR_BULTOS_ATM",
	extract.DocBultosBanco: "PROSEGUR_BULTOS_BANCO",
	extract.DocInvATM:      "PROSEGUR_INV_ATM",
	extract.DocInvBanco:    "PROSEGUR_INV_BANCO",
}

// finalizeTable applies the consolidation-level normalization pass: agency
// and currency columns to canonical codes, the sheet-of-origin column (a
// debugging aid during extraction) dropped, merged inventory rows
// re-sorted.
func finalizeTable(t extract.DocType, tbl extract.Table, tables *normalize.Tables) extract.Table {
	for i, col := range tbl.Columns {
		switch col {
		case "AGENCIA":
			applyColumn(&tbl, i, tables.NormalizeAgency)
		case "MONEDA":
			if !t.IsInventory() {
				applyColumn(&tbl, i, normalize.CurrencyISO)
			}
		case "DIVISA":
			applyColumn(&tbl, i, normalize.InventoryCurrency)
		}
	}
	if t == extract.DocECBanco {
		tbl = dropColumn(tbl, "HOJA_ORIGEN")
	}
	if t.IsInventory() {
		extract.SortInventoryTable(&tbl)
	}
	return tbl
}

func applyColumn(tbl *extract.Table, col int, f func(string) string) {
	for _, row := range tbl.Rows {
		if col < len(row) {
			row[col] = f(row[col])
		}
	}
}

func dropColumn(tbl extract.Table, name string) extract.Table {
	at := -1
	for i, c := range tbl.Columns {
		if c == name {
			at = i
			break
		}
	}
	if at < 0 {
		return tbl
	}
	out := extract.Table{Columns: append(tbl.Columns[:at:at], tbl.Columns[at+1:]...)}
	out.Rows = make([][]string, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		if at >= len(row) {
			out.Rows = append(out.Rows, row)
			continue
		}
		out.Rows = append(out.Rows, append(row[:at:at], row[at+1:]...))
	}
	return out
}

// writeWorkbook writes one consolidated table as a single-sheet workbook,
// header row first.
func writeWorkbook(path string, tbl extract.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "CONSOLIDADO"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(tbl.Columns))
	for i, c := range tbl.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for r, row := range tbl.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", r+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// writeTableCSV writes the same table as CSV for downstream tooling that
// does not read workbooks.
func writeTableCSV(path string, tbl extract.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tbl.Columns); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", path, err)
	}
	for _, row := range tbl.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row of %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}
