package extract

import "sort"

// Table is a fixed-shape output table. Columns always carries the full
// canonical column set for the document kind; Rows are aligned with it.
type Table struct {
	Columns []string
	Rows    [][]string
}

// assemble flattens the record list into the canonical column order.
// Columns a record never populated come out as the empty string, and a
// nil record list still yields the full column set with zero rows.
func assemble(records []record, t DocType) Table {
	if t.IsInventory() {
		sortInventory(records)
	}
	cols := Columns(t)
	tbl := Table{Columns: cols, Rows: make([][]string, 0, len(records))}
	for _, rec := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = rec[c]
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl
}

// SortInventoryTable re-sorts a (possibly merged) inventory table in the
// consolidated presentation order. Ledger tables keep document order and
// are left untouched.
func SortInventoryTable(tbl *Table) {
	idx := make(map[string]int, len(tbl.Columns))
	for i, c := range tbl.Columns {
		idx[c] = i
	}
	keys := []string{
		"FECHA_INVENTARIO", "AGENCIA", "DIVISA",
		"AGRUPACION_EFECTIVO", "TIPO_VALOR",
	}
	denom, hasDenom := idx["DENOMINACION"]
	sort.SliceStable(tbl.Rows, func(i, j int) bool {
		a, b := tbl.Rows[i], tbl.Rows[j]
		for _, k := range keys {
			c, ok := idx[k]
			if !ok || c >= len(a) || c >= len(b) {
				continue
			}
			if a[c] != b[c] {
				return a[c] < b[c]
			}
		}
		if !hasDenom || denom >= len(a) || denom >= len(b) {
			return false
		}
		av, aok := toInt(a[denom])
		bv, bok := toInt(b[denom])
		if aok && bok {
			return av < bv
		}
		return a[denom] < b[denom]
	})
}

// sortInventory orders denomination lines the way the consolidated report
// presents them: by date, agency and currency, then grouping, value type
// and face value. Face values compare numerically, not lexically.
func sortInventory(records []record) {
	keys := []string{
		"FECHA_INVENTARIO", "AGENCIA", "DIVISA",
		"AGRUPACION_EFECTIVO", "TIPO_VALOR",
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		for _, k := range keys {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		av, aok := toInt(a["DENOMINACION"])
		bv, bok := toInt(b["DENOMINACION"])
		if aok && bok {
			return av < bv
		}
		return a["DENOMINACION"] < b["DENOMINACION"]
	})
}
