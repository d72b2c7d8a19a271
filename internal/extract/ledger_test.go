package extract_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez-dev/cashlog/internal/extract"
	"github.com/mbenitez-dev/cashlog/internal/extract/grid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, cfg extract.Config) *extract.Engine {
	t.Helper()
	return extract.NewEngine(cfg, nil, testLogger())
}

func oneSheet(name string, rows ...grid.Row) extract.Document {
	return extract.Document{
		Name:   name,
		Path:   name,
		Sheets: []extract.Sheet{{Name: "Hoja1", Grid: grid.Grid(rows)}},
	}
}

// rowMap reindexes one output row by column name for readable assertions.
func rowMap(t *testing.T, tbl extract.Table, i int) map[string]string {
	t.Helper()
	require.Less(t, i, len(tbl.Rows), "row index out of range")
	m := make(map[string]string, len(tbl.Columns))
	for c, col := range tbl.Columns {
		m[col] = tbl.Rows[i][c]
	}
	return m
}

func TestLedgerNoSectionsYieldsNoRecords(t *testing.T) {
	e := newEngine(t, extract.DefaultConfig(extract.DocECATM))
	doc := oneSheet("EC_ATM.xlsx",
		grid.Row{"DEPOSITO EN EFECTIVO"},
		grid.Row{"", "15/03/2024", "Asuncion", "000123456", "3", "1.500.000", "0"},
	)

	res := e.Extract(doc)
	assert.Empty(t, res.Table.Rows, "rows outside INGRESOS/EGRESOS must never be sectioned by default")
	assert.Equal(t, extract.Columns(extract.DocECATM), res.Table.Columns, "table stays column-complete")
}

func TestLedgerMotiveGate(t *testing.T) {
	e := newEngine(t, extract.DefaultConfig(extract.DocECATM))
	doc := oneSheet("EC_ATM.xlsx",
		grid.Row{"INGRESOS"},
		// Detail row arrives before any motive line: dropped, not defaulted.
		grid.Row{"", "15/03/2024", "Asuncion", "000123456", "3", "1.500.000", "0"},
		grid.Row{"DEPOSITO"},
		grid.Row{"", "16/03/2024", "Asuncion", "000123457", "2", "800.000", "0"},
	)

	res := e.Extract(doc)
	require.Len(t, res.Table.Rows, 1, "only the post-motive detail row is kept")
	rec := rowMap(t, res.Table, 0)
	assert.Equal(t, "16/03/2024", rec["FECHA"])
	assert.Equal(t, "DEPOSITO", rec["MOTIVO_MOVIMIENTO"])
}

func TestLedgerWideDetailRow(t *testing.T) {
	e := newEngine(t, extract.DefaultConfig(extract.DocECATM))
	doc := oneSheet("EC_ATM.xlsx",
		grid.Row{"INGRESOS"},
		grid.Row{"DEPOSITO"},
		grid.Row{"", "15/03/2024", "Ciudad del Este", "000123456", "3", "1.500.000", "0"},
	)

	res := e.Extract(doc)
	require.Len(t, res.Table.Rows, 1)
	rec := rowMap(t, res.Table, 0)
	assert.Equal(t, "15/03/2024", rec["FECHA"])
	assert.Equal(t, "Ciudad del Este", rec["SUCURSAL"])
	assert.Equal(t, "123456", rec["RECIBO"], "receipt drops zero padding")
	assert.Equal(t, "3", rec["BULTOS"])
	assert.Equal(t, "1.500.000", rec["GUARANIES"])
	assert.Equal(t, "0", rec["DOLARES"])
	assert.Equal(t, "IN", rec["ING_EGR"])
	assert.Equal(t, "DEPOSITO", rec["MOTIVO_MOVIMIENTO"])
	assert.Equal(t, "ATM", rec["CLASIFICACION"])
}

func TestLedgerOpeningBalanceCapturedOnce(t *testing.T) {
	e := newEngine(t, extract.DefaultConfig(extract.DocECATM))
	doc := oneSheet("EC_ATM.xlsx",
		grid.Row{"SALDO ANTERIOR", "", "1.200,50", "", "3.400.000"},
		grid.Row{"SALDO ANTERIOR", "", "999", "", "888"},
		grid.Row{"INGRESOS"},
		grid.Row{"DEPOSITO"},
		grid.Row{"", "15/03/2024", "Asuncion", "111111", "1", "100", "0"},
	)

	res := e.Extract(doc)
	require.Len(t, res.Table.Rows, 1)
	rec := rowMap(t, res.Table, 0)
	assert.Equal(t, "1.200,50", rec["SALDO_ANTERIOR_USD"], "first capture wins")
	assert.Equal(t, "3.400.000", rec["SALDO_ANTERIOR_PYG"])
}

func TestLedgerTerminalMarkerStopsSheet(t *testing.T) {
	e := newEngine(t, extract.DefaultConfig(extract.DocECATM))
	doc := oneSheet("EC_ATM.xlsx",
		grid.Row{"INGRESOS"},
		grid.Row{"DEPOSITO"},
		grid.Row{"", "15/03/2024", "Asuncion", "111111", "1", "100", "0"},
		grid.Row{"INFORME DE PROCESOS"},
		grid.Row{"", "16/03/2024", "Asuncion", "222222", "2", "200", "0"},
		grid.Row{"SALDO ANTERIOR", "", "777", "", "666"},
		grid.Row{"TOTAL", "999"},
	)

	res := e.Extract(doc)
	require.Len(t, res.Table.Rows, 1, "rows after the terminal marker are ignored entirely")
	rec := rowMap(t, res.Table, 0)
	assert.Equal(t, "15/03/2024", rec["FECHA"])
	assert.Empty(t, rec["SALDO_ANTERIOR_PYG"], "balance label after the marker never captures")
}

func TestLedgerStatementHeaderAndAgency(t *testing.T) {
	e := newEngine(t, extract.DefaultConfig(extract.DocECATM))
	doc := oneSheet("EC_ATM.xlsx",
		grid.Row{"PROSEGUR PARAGUAY S.A. (SUCURSAL: CIUDAD DEL ESTE)"},
		grid.Row{"ESTADO DE CUENTA DE ATM AL: 31/03/2024"},
		grid.Row{"INGRESOS"},
		grid.Row{"DEPOSITO"},
		grid.Row{"", "15/03/2024", "KM 4", "111111", "1", "100", "0"},
	)

	res := e.Extract(doc)
	require.Len(t, res.Table.Rows, 1)
	rec := rowMap(t, res.Table, 0)
	assert.Equal(t, "31/03/2024", rec["FECHA_ARCHIVO"])
	assert.Equal(t, "CDE", rec["AGENCIA"], "agency line resolved to its canonical code")
}

func TestLedgerBancoReceiptNeedsLongDigitRun(t *testing.T) {
	e := newEngine(t, extract.DefaultConfig(extract.DocECBanco))
	doc := oneSheet("EC_BANCO.xlsx",
		grid.Row{"ESTADO DE CUENTA DE BANCO AL: 31/03/2024"},
		grid.Row{"EGRESOS"},
		grid.Row{"RETIRO DE EFECTIVO"},
		// Second token is numeric but short: it is a name fragment, not a
		// receipt, so the line has no receipt and is dropped.
		grid.Row{"01/03/2024", "SUC", "45", "2", "300.000"},
		grid.Row{"02/03/2024", "BANCO", "CONTINENTAL", "000789012", "2", "300.000"},
	)

	res := e.Extract(doc)
	require.Len(t, res.Table.Rows, 1)
	rec := rowMap(t, res.Table, 0)
	assert.Equal(t, "02/03/2024", rec["FECHA"])
	assert.Equal(t, "BANCO CONTINENTAL", rec["SUCURSAL"])
	assert.Equal(t, "000789012", rec["RECIBO"])
	assert.Equal(t, "2", rec["BULTOS"])
	assert.Equal(t, "300.000", rec["IMPORTE"])
	assert.Equal(t, "OUT", rec["ING_EGR"])
	assert.Equal(t, "BCO", rec["CLASIFICACION"], "classification derived from the statement title")
	assert.Equal(t, "GUARANIES", rec["MONEDA"], "sheet without a currency hint defaults to local currency")
	assert.Equal(t, "Hoja1", rec["HOJA_ORIGEN"])
}

func TestLedgerBancoAmountPolicies(t *testing.T) {
	doc := oneSheet("EC_BANCO.xlsx",
		grid.Row{"INGRESOS"},
		grid.Row{"DEPOSITO"},
		grid.Row{"05/03/2024", "ITAU", "000555123", "4", "250.000", "9.000.000"},
	)

	t.Run("after receipt", func(t *testing.T) {
		cfg := extract.DefaultConfig(extract.DocECBanco)
		res := newEngine(t, cfg).Extract(doc)
		require.Len(t, res.Table.Rows, 1)
		assert.Equal(t, "250.000", rowMap(t, res.Table, 0)["IMPORTE"])
	})

	t.Run("largest token", func(t *testing.T) {
		cfg := extract.DefaultConfig(extract.DocECBanco)
		cfg.AmountPolicy = extract.AmountLargest
		res := newEngine(t, cfg).Extract(doc)
		require.Len(t, res.Table.Rows, 1)
		assert.Equal(t, "9.000.000", rowMap(t, res.Table, 0)["IMPORTE"])
	})
}

func TestLedgerBultosATMFanOut(t *testing.T) {
	rows := []grid.Row{
		{"INGRESOS"},
		{"CARGA DE ATM"},
		{"", "10/03/2024", "Asuncion", "000321654", "5", "2.000.000", "1", "350"},
		{"", "11/03/2024", "Asuncion", "000321655", "3", "1.000.000", "0", "0"},
	}

	t.Run("zero USD suppressed", func(t *testing.T) {
		e := newEngine(t, extract.DefaultConfig(extract.DocBultosATM))
		res := e.Extract(oneSheet("EC_BULTOS_ATM.xlsx", rows...))
		require.Len(t, res.Table.Rows, 3, "first row fans out, second keeps PYG only")

		pyg := rowMap(t, res.Table, 0)
		assert.Equal(t, "PYG", pyg["MONEDA"])
		assert.Equal(t, "5", pyg["BULTOS"])
		assert.Equal(t, "2.000.000", pyg["IMPORTE"])

		usd := rowMap(t, res.Table, 1)
		assert.Equal(t, "USD", usd["MONEDA"])
		assert.Equal(t, "1", usd["BULTOS"])
		assert.Equal(t, "350", usd["IMPORTE"])

		assert.Equal(t, "PYG", rowMap(t, res.Table, 2)["MONEDA"])
	})

	t.Run("suppression disabled", func(t *testing.T) {
		cfg := extract.DefaultConfig(extract.DocBultosATM)
		cfg.SuppressZeroUSD = false
		res := newEngine(t, cfg).Extract(oneSheet("EC_BULTOS_ATM.xlsx", rows...))
		assert.Len(t, res.Table.Rows, 4, "every row fans out when suppression is off")
	})
}

func TestLedgerBultosBancoCurrencyRows(t *testing.T) {
	e := newEngine(t, extract.DefaultConfig(extract.DocBultosBanco))
	doc := oneSheet("EC_BULTOS_BCO.xlsx",
		grid.Row{"INGRESOS"},
		grid.Row{"REMESA DE BULTOS"},
		grid.Row{"12/03/2024", "VISION BANCO", "000444555", "6", "4.500.000"},
		// A dateless currency row switches the sticky currency and is
		// consumed, leaving the motive untouched.
		grid.Row{"DOLARES"},
		grid.Row{"13/03/2024", "VISION BANCO", "000444556", "1", "1.200"},
	)

	res := e.Extract(doc)
	require.Len(t, res.Table.Rows, 2)
	assert.Equal(t, "PYG", rowMap(t, res.Table, 0)["MONEDA"], "silence means local currency")
	assert.Equal(t, "USD", rowMap(t, res.Table, 1)["MONEDA"])
	assert.Equal(t, "REMESA DE BULTOS", rowMap(t, res.Table, 1)["MOTIVO_MOVIMIENTO"])
}

func TestLedgerTotalsClearMotive(t *testing.T) {
	e := newEngine(t, extract.DefaultConfig(extract.DocECATM))
	doc := oneSheet("EC_ATM.xlsx",
		grid.Row{"INGRESOS"},
		grid.Row{"DEPOSITO"},
		grid.Row{"", "15/03/2024", "Asuncion", "111111", "1", "100", "0"},
		grid.Row{"SUBTOTAL", "100"},
		// With the motive cleared, this detail row has no block to join.
		grid.Row{"", "16/03/2024", "Asuncion", "222222", "1", "200", "0"},
	)

	res := e.Extract(doc)
	require.Len(t, res.Table.Rows, 1, "a total row closes the transaction block")
	assert.Equal(t, "15/03/2024", rowMap(t, res.Table, 0)["FECHA"])
}

func TestLedgerATMParsesFirstSheetOnly(t *testing.T) {
	e := newEngine(t, extract.DefaultConfig(extract.DocECATM))
	detail := []grid.Row{
		{"INGRESOS"},
		{"DEPOSITO"},
		{"", "15/03/2024", "Asuncion", "111111", "1", "100", "0"},
	}
	doc := extract.Document{
		Name: "EC_ATM.xlsx",
		Sheets: []extract.Sheet{
			{Name: "Hoja1", Grid: grid.Grid(detail)},
			{Name: "Hoja2", Grid: grid.Grid(detail)},
		},
	}

	res := e.Extract(doc)
	assert.Len(t, res.Table.Rows, 1, "duplicate trailing sheets are not re-read")
}
