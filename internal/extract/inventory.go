package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/mbenitez-dev/cashlog/internal/extract/grid"
	"github.com/mbenitez-dev/cashlog/internal/extract/normalize"
)

const inventoryEndMarker = "TOTAL DE LA MONEDA"

var (
	rxDateAnywhere = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	rxEndCurrency  = regexp.MustCompile(`TOTAL DE LA MONEDA\s+([A-Z]{3})\b`)
	rxFloatLike    = regexp.MustCompile(`^\d+\.\d+$`)
)

// inventoryStopTokens mark intermediate total rows inside the denomination
// block; they are skipped without resetting the sticky classifiers.
var inventoryStopTokens = []string{
	"TOTAL DEL DEPOSITO", "TOTAL DEPOSITO", "SUB TOTAL", "SUBTOTAL",
}

// valueColumns are the five numeric columns read to the right of the
// denomination, in document order.
var valueColumns = []string{"DEPOSITO", "CJE_DEP", "CANJE", "MONEDA", "IMPORTE_TOTAL"}

// invLayout holds the per-sub-type keyword vocabulary. Lists are ordered
// longest match first so "BILLETES (LADRILLOS)" wins over "BILLETES".
type invLayout struct {
	groupings  []string
	valueTypes []string

	// requireStartBound: the ATM export always carries a recognizable
	// block opening; the bank export sometimes starts the denomination
	// table at the very top, so absence of a bound means "walk from
	// row zero" there instead of an error.
	requireStartBound bool
}

func inventoryLayoutFor(t DocType) invLayout {
	if t == DocInvATM {
		return invLayout{
			groupings:         []string{"TESORO ATM", "FAJOS ATM", "PICOS ATM"},
			valueTypes:        []string{"BILLETES (LADRILLOS)", "BILLETES"},
			requireStartBound: true,
		}
	}
	return invLayout{
		groupings: []string{"TESORO EFECTIVO", "FAJOS EFECTIVOS", "PICOS EFECTIVO"},
		valueTypes: []string{
			"BILLETES (LADRILLOS)", "MONEDAS (BOLSAS)", "MONEDAS (PAQUETES)",
			"BILLETES", "MONEDAS",
		},
	}
}

var errNoStartBound = errors.New("no start bound found for denomination block")

// scanInventorySheet parses one denomination-count sheet: bound discovery
// first, then a row walk between the bounds with sticky grouping, value
// type and currency.
func (e *Engine) scanInventorySheet(doc Document, sheet Sheet) ([]record, error) {
	layout := inventoryLayoutFor(e.cfg.Type)
	rows := sheet.Grid

	end := len(rows)
	endCode := ""
	for i, row := range rows {
		up := grid.Normalize(row.Joined())
		if strings.Contains(up, inventoryEndMarker) {
			end = i
			if m := rxEndCurrency.FindStringSubmatch(up); m != nil {
				endCode = m[1]
			}
			break
		}
	}

	start, ok := findStartBound(rows[:end], layout)
	if !ok {
		if layout.requireStartBound {
			return nil, errNoStartBound
		}
		start = 0
	}

	metaAgency, metaDate := inventoryMeta(rows)
	agency := e.tables.ResolveAgency(metaAgency, doc.Name, doc.Path)

	var (
		records  []record
		grouping string
		valType  string
		currency string
	)
	for _, row := range rows[start:end] {
		if row.IsBlank() {
			continue
		}
		up := grid.Normalize(row.Joined())
		if containsAnyToken(up, inventoryStopTokens) {
			continue
		}
		if cur := bareCurrencyCell(row); cur != "" {
			currency = cur
		}

		denomIdx, denom, hasDenom := denominationCell(row)
		limit := len(row)
		if hasDenom {
			limit = denomIdx
		}
		for i := 0; i < limit; i++ {
			cell := grid.Normalize(row.Cell(i))
			if cell == "" {
				continue
			}
			for _, g := range layout.groupings {
				if strings.Contains(cell, g) {
					grouping = g
					break
				}
			}
			for _, vt := range layout.valueTypes {
				if strings.Contains(cell, vt) {
					valType = vt
					break
				}
			}
		}
		if !hasDenom {
			continue
		}
		// Unclassified numeric rows are stray totals or page furniture,
		// never denomination lines.
		if grouping == "" && valType == "" {
			continue
		}

		values := make([]int, len(valueColumns))
		vi := 0
		for i := denomIdx + 1; i < len(row) && vi < len(values); i++ {
			if v, ok := toInt(row.Cell(i)); ok {
				values[vi] = v
				vi++
			}
		}
		if !e.cfg.IncludeZeroRows && allZero(values) {
			continue
		}

		divisa := currency
		if divisa == "" {
			divisa = endCode
		}
		rec := record{
			"FECHA_INVENTARIO":    metaDate,
			"DIVISA":              normalize.InventoryCurrency(divisa),
			"AGENCIA":             agency,
			"AGRUPACION_EFECTIVO": grouping,
			"TIPO_VALOR":          valType,
			"DENOMINACION":        strconv.Itoa(denom),
		}
		for i, col := range valueColumns {
			rec[col] = strconv.Itoa(values[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

// findStartBound locates the first denomination-block row, trying the
// three markers in order of reliability: a bare currency cell, the header
// row, then a grouping keyword left of a numeric cell.
func findStartBound(rows []grid.Row, layout invLayout) (int, bool) {
	for i, row := range rows {
		if bareCurrencyCell(row) != "" {
			return i, true
		}
	}
	for i, row := range rows {
		if strings.Contains(grid.Normalize(row.Joined()), "DENOMINACION") {
			return i + 1, true
		}
	}
	for i, row := range rows {
		keywordAt := -1
		for j := range row {
			cell := grid.Normalize(row.Cell(j))
			if cell == "" {
				continue
			}
			for _, g := range layout.groupings {
				if strings.Contains(cell, g) {
					keywordAt = j
					break
				}
			}
			if keywordAt >= 0 {
				break
			}
		}
		if keywordAt < 0 {
			continue
		}
		for j := keywordAt + 1; j < len(row); j++ {
			if _, ok := toInt(row.Cell(j)); ok {
				return i, true
			}
		}
	}
	return 0, false
}

// inventoryMeta scans the whole sheet for the agency line and the
// inventory date. A cell naming the inventory explicitly wins over any
// other date-bearing cell.
func inventoryMeta(rows []grid.Row) (agency, date string) {
	fallbackDate := ""
	for _, row := range rows {
		for i := range row {
			cell := row.Cell(i)
			if cell == "" {
				continue
			}
			if agency == "" {
				if m := rxAgency.FindStringSubmatch(cell); m != nil {
					agency = strings.TrimSpace(m[1])
				}
			}
			if m := rxDateAnywhere.FindString(cell); m != "" {
				if strings.Contains(grid.Normalize(cell), "INVENTARIO") {
					if date == "" {
						date = m
					}
				} else if fallbackDate == "" {
					fallbackDate = m
				}
			}
		}
	}
	if date == "" {
		date = fallbackDate
	}
	return agency, date
}

// bareCurrencyCell returns "USD" or "PYG" when the row carries exactly
// that token as a standalone cell.
func bareCurrencyCell(row grid.Row) string {
	for i := range row {
		switch grid.Normalize(row.Cell(i)) {
		case "USD":
			return "USD"
		case "PYG":
			return "PYG"
		}
	}
	return ""
}

// denominationCell finds the first cell that parses as a denomination.
// Cells containing ':' or '/' are rejected outright: clock times and dates
// are numeric-looking but are never face values.
func denominationCell(row grid.Row) (int, int, bool) {
	for i := range row {
		cell := row.Cell(i)
		if cell == "" || strings.ContainsAny(cell, ":/") {
			continue
		}
		if v, ok := toInt(cell); ok {
			return i, v, true
		}
	}
	return 0, 0, false
}

// toInt parses the loose numeric notation of the source documents:
// "1.500.000" and "1.200,50" both reduce to their digit runs, a plain
// decimal like "600000.0" truncates, anything without digits fails.
func toInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if rxFloatLike.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	t := b.String()
	if t == "" || t == "-" {
		return 0, false
	}
	v, err := strconv.Atoi(t)
	if err != nil {
		return 0, false
	}
	return v, true
}

func allZero(values []int) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}

func containsAnyToken(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
