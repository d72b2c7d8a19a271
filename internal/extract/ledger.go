package extract

import (
	"regexp"
	"strings"

	"github.com/mbenitez-dev/cashlog/internal/extract/grid"
	"github.com/mbenitez-dev/cashlog/internal/extract/normalize"
)

const (
	issuerMarker   = "PROSEGUR PARAGUAY S.A."
	statementMark  = "ESTADO DE CUENTA DE"
	terminalMarker = "INFORME DE PROCESOS"
	balanceLabel   = "SALDO ANTERIOR"
)

var (
	rxDateCell      = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	rxDateStart     = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}\b`)
	rxTotals        = regexp.MustCompile(`\b(TOTAL|SUBTOTAL)\b`)
	rxAgency        = regexp.MustCompile(`(?i)SUCURSAL:\s*([^)]+)\)`)
	rxStatementDate = regexp.MustCompile(`AL[:\s]+(\d{1,2}/\d{1,2}/\d{4})`)
	rxStatementType = regexp.MustCompile(`(?i)ESTADO DE CUENTA DE\s+(.*?)\s+AL:`)
	rxCurrencyWord  = regexp.MustCompile(`\b(GUARANIES|DOLARES|EUROS?|REALES?|PESOS?|PYG|USD|EUR|BRL|ARS)\b`)
	rxCurrencyAny   = regexp.MustCompile(`(GUARANIES|DOLARES|EUROS?|REALES?|PESOS?|PYG|US\$|U\$S|G\$|R\$|USD|EUR|BRL|ARS|GS|₲|€|\$)`)
	rxLongDigits    = regexp.MustCompile(`^\d{6,}$`)
)

// statementClass maps the statement-title wording to the consolidated
// classification codes.
var statementClass = map[string]string{
	"BANCO":           "BCO",
	"ATM":             "ATM",
	"BULTOS DE BANCO": "BULTO BCO",
	"BULTOS DE ATM":   "BULTO ATM",
}

// ledgerLayout captures the per-sub-type differences of the four ledger
// formats so the row machine itself stays unified.
type ledgerLayout struct {
	docType DocType

	// class is the fixed classification; EC_BANCO derives it from the
	// statement title instead.
	class          string
	classFromTitle bool

	// allSheets scans every sheet of the workbook; the ATM exports carry
	// their data on the first sheet only.
	allSheets bool

	// trackCurrency keeps a sticky working currency per sheet.
	trackCurrency bool

	// currencyRowConsumes treats a dateless currency-token row as pure
	// metadata (bulk-goods bank format); EC_BANCO updates the currency
	// without consuming the row.
	currencyRowConsumes bool

	// lineBased parses detail rows from the whitespace-joined line, with
	// the receipt identified as the first long digit run. The ATM formats
	// walk cells positionally instead.
	lineBased bool
}

func ledgerLayoutFor(t DocType) ledgerLayout {
	switch t {
	case DocECATM:
		return ledgerLayout{docType: t, class: "ATM"}
	case DocECBanco:
		return ledgerLayout{docType: t, classFromTitle: true, allSheets: true, trackCurrency: true, lineBased: true}
	case DocBultosATM:
		return ledgerLayout{docType: t, class: "ATM"}
	case DocBultosBanco:
		return ledgerLayout{docType: t, class: "BULTO BCO", allSheets: true, trackCurrency: true, currencyRowConsumes: true, lineBased: true}
	}
	return ledgerLayout{docType: t}
}

// cellCursor walks a row by repeated "first non-empty cell after" lookups,
// the positional addressing mechanism of the headerless exports.
type cellCursor struct {
	row grid.Row
	idx int
}

func (c *cellCursor) next() (string, bool) {
	i, ok := c.row.FirstNonEmptyAfter(c.idx)
	if !ok {
		c.idx = len(c.row)
		return "", false
	}
	c.idx = i
	return c.row.Cell(i), true
}

func (c *cellCursor) nextOr(def string) string {
	v, ok := c.next()
	if !ok || v == "" {
		return def
	}
	return v
}

// scanLedgerSheet runs the row state machine over one sheet and returns the
// extracted records. See the transition priority in the package tests; the
// ordering is load-bearing.
func (e *Engine) scanLedgerSheet(doc Document, sheet Sheet, layout ledgerLayout) []record {
	ctx := &parseContext{classification: layout.class}
	if layout.trackCurrency {
		switch layout.docType {
		case DocECBanco:
			if cur := normalize.CurrencyFromSheetName(sheet.Name); cur != "" {
				ctx.currency = cur
			} else {
				ctx.currency = "GUARANIES"
			}
		case DocBultosBanco:
			if hint := normalize.CurrencyFromSheetName(sheet.Name); hint != "" {
				ctx.currency = normalize.CurrencyISO(hint)
			}
		}
	}
	agencyFallback := e.tables.ResolveAgency("", doc.Name, doc.Path)

	var records []record
	for _, row := range sheet.Grid {
		if row.IsBlank() {
			continue
		}
		joined := row.Joined()
		up := grid.Normalize(joined)

		// Opening balance: honored once per sheet, then skipped even if
		// the label text reappears.
		if !ctx.balanceTaken && strings.Contains(up, balanceLabel) {
			if vals := row.ValuesAfterLabel(balanceLabel); len(vals) > 0 {
				applyBalance(layout.docType, ctx, vals)
				ctx.balanceTaken = true
			}
			continue
		}

		if strings.Contains(up, issuerMarker) {
			if m := rxAgency.FindStringSubmatch(joined); m != nil {
				ctx.agency = strings.TrimSpace(m[1])
			}
			continue
		}

		if strings.Contains(up, statementMark) {
			if layout.classFromTitle {
				if m := rxStatementType.FindStringSubmatch(joined); m != nil {
					title := grid.Normalize(m[1])
					if class, ok := statementClass[title]; ok {
						ctx.classification = class
					} else {
						ctx.classification = strings.TrimSpace(m[1])
					}
				}
			}
			if layout.docType == DocBultosBanco {
				if m := rxCurrencyAny.FindStringSubmatch(up); m != nil {
					ctx.currency = normalize.CurrencyISO(m[1])
				}
			}
			if m := rxStatementDate.FindStringSubmatch(up); m != nil {
				ctx.statementDate = m[1]
			}
			continue
		}

		if up == "INGRESOS" {
			ctx.enterSection(sectionIn)
			continue
		}
		if up == "EGRESOS" {
			ctx.enterSection(sectionOut)
			continue
		}

		// Terminal marker: the remainder of the sheet (trailing totals
		// included) is never read.
		if strings.Contains(up, terminalMarker) {
			break
		}

		if rxTotals.MatchString(up) {
			ctx.clearMotive()
			continue
		}

		if layout.trackCurrency {
			if layout.currencyRowConsumes {
				if m := rxCurrencyAny.FindStringSubmatch(up); m != nil && !rxDateStart.MatchString(up) {
					ctx.currency = normalize.CurrencyISO(m[1])
					continue
				}
			} else if m := rxCurrencyWord.FindStringSubmatch(up); m != nil {
				ctx.currency = m[1]
			}
		}

		if !ctx.inSection() {
			continue
		}

		if layout.lineBased {
			if !rxDateStart.MatchString(up) {
				ctx.motive = joined
				continue
			}
			if ctx.motive == "" {
				continue
			}
			records = append(records, e.parseLineDetail(ctx, layout, sheet.Name, joined, up, agencyFallback)...)
			continue
		}

		dateIdx, ok := dateCellIndex(row)
		if !ok {
			ctx.motive = joined
			continue
		}
		if ctx.motive == "" {
			// A detail row before any motive line is dropped, never
			// defaulted: every transaction block opens with a motive.
			continue
		}
		records = append(records, e.parseCellDetail(ctx, layout, row, dateIdx, agencyFallback)...)
	}
	return records
}

func dateCellIndex(row grid.Row) (int, bool) {
	for i := range row {
		if rxDateCell.MatchString(strings.TrimSpace(row[i])) {
			return i, true
		}
	}
	return 0, false
}

// parseCellDetail reconstructs records from a cell-positional detail row
// (ATM formats): date, branch, receipt, then the sub-type's trailing
// amount columns.
func (e *Engine) parseCellDetail(ctx *parseContext, layout ledgerLayout, row grid.Row, dateIdx int, agencyFallback string) []record {
	cur := cellCursor{row: row, idx: dateIdx}
	fecha := row.Cell(dateIdx)
	sucursal := cur.nextOr("")
	recibo := receiptValue(cur.nextOr(""))

	base := record{
		"FECHA":             fecha,
		"SUCURSAL":          sucursal,
		"RECIBO":            recibo,
		"ING_EGR":           ctx.section.code(),
		"CLASIFICACION":     ctx.classification,
		"FECHA_ARCHIVO":     ctx.statementDate,
		"MOTIVO_MOVIMIENTO": ctx.motive,
		"AGENCIA":           firstNonEmpty(e.tables.NormalizeAgency(ctx.agency), agencyFallback),
	}

	switch layout.docType {
	case DocECATM:
		base["BULTOS"] = cur.nextOr("")
		base["GUARANIES"] = cur.nextOr("0")
		base["DOLARES"] = cur.nextOr("0")
		base["SALDO_ANTERIOR_PYG"] = ctx.balanceB
		base["SALDO_ANTERIOR_USD"] = ctx.balanceA
		return []record{base}

	case DocBultosATM:
		bultosPYG := cur.nextOr("0")
		guaranies := cur.nextOr("0")
		bultosUSD := cur.nextOr("0")
		dolares := cur.nextOr("0")

		pyg := base.clone()
		pyg["BULTOS"] = bultosPYG
		pyg["MONEDA"] = "PYG"
		pyg["IMPORTE"] = guaranies
		pyg["SALDO_ANTERIOR_PYG"] = ctx.balanceB
		pyg["SALDO_ANTERIOR_USD"] = ctx.balanceA
		out := []record{pyg}

		if !(e.cfg.SuppressZeroUSD && zeroLike(dolares)) {
			usd := base.clone()
			usd["BULTOS"] = bultosUSD
			usd["MONEDA"] = "USD"
			usd["IMPORTE"] = dolares
			usd["SALDO_ANTERIOR_PYG"] = ctx.balanceB
			usd["SALDO_ANTERIOR_USD"] = ctx.balanceA
			out = append(out, usd)
		}
		return out
	}
	return nil
}

// parseLineDetail reconstructs one record from a whitespace-joined detail
// line (bank formats). The receipt is the first token of 6+ digits; a line
// without one is dropped, not emitted with nulls.
func (e *Engine) parseLineDetail(ctx *parseContext, layout ledgerLayout, sheetName, joined, up, agencyFallback string) []record {
	parts := strings.Fields(joined)
	if len(parts) == 0 {
		return nil
	}
	fecha := parts[0]

	recIdx := -1
	for i := 1; i < len(parts); i++ {
		if rxLongDigits.MatchString(grid.FoldAccents(parts[i])) {
			recIdx = i
			break
		}
	}
	if recIdx < 0 {
		return nil
	}

	sucursal := strings.Join(parts[1:recIdx], " ")
	recibo := parts[recIdx]
	bultos := ""
	if recIdx+1 < len(parts) {
		bultos = parts[recIdx+1]
	}
	importe := ""
	if recIdx+2 < len(parts) {
		importe = parts[recIdx+2]
	}
	if layout.docType == DocECBanco && e.cfg.AmountPolicy == AmountLargest {
		if tok := largestNumericToken(parts[recIdx+1:]); tok != "" {
			importe = tok
		}
	}

	if layout.docType == DocBultosBanco {
		if m := rxCurrencyAny.FindStringSubmatch(up); m != nil {
			ctx.currency = normalize.CurrencyISO(m[1])
		}
	}

	rec := record{
		"FECHA":             fecha,
		"SUCURSAL":          sucursal,
		"RECIBO":            recibo,
		"BULTOS":            bultos,
		"IMPORTE":           importe,
		"ING_EGR":           ctx.section.code(),
		"CLASIFICACION":     ctx.classification,
		"FECHA_ARCHIVO":     ctx.statementDate,
		"MOTIVO_MOVIMIENTO": ctx.motive,
		"AGENCIA":           firstNonEmpty(e.tables.NormalizeAgency(ctx.agency), agencyFallback),
	}

	switch layout.docType {
	case DocECBanco:
		rec["MONEDA"] = ctx.currency
		rec["HOJA_ORIGEN"] = sheetName
		rec["SALDO_ANTERIOR"] = ctx.balanceA
	case DocBultosBanco:
		rec["MONEDA"] = firstNonEmpty(ctx.currency, "PYG")
		rec["SALDO_ANTERIOR"] = ctx.balanceA
	}
	return []record{rec}
}

// applyBalance stores the captured opening-balance values into the context
// slots per the sub-type's fixed label layout. The extractor itself is
// layout-agnostic; only the positions kept differ here.
func applyBalance(t DocType, ctx *parseContext, vals []string) {
	switch t {
	case DocECATM: // [USD, PYG]
		ctx.balanceA = vals[0]
		if len(vals) >= 2 {
			ctx.balanceB = vals[1]
		}
	case DocECBanco: // [amount]
		ctx.balanceA = vals[0]
	case DocBultosATM: // [count PYG, amount PYG, count USD, amount USD]
		if len(vals) >= 2 {
			ctx.balanceB = vals[1]
		}
		if len(vals) >= 4 {
			ctx.balanceA = vals[3]
		}
	case DocBultosBanco: // [count, amount]
		if len(vals) >= 2 {
			ctx.balanceA = vals[1]
		} else {
			ctx.balanceA = vals[0]
		}
	}
}

func (r record) clone() record {
	out := make(record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// receiptValue keeps the digit run of a receipt cell, dropping the
// zero padding the exports prepend. A cell without digits is kept raw.
func receiptValue(s string) string {
	d := grid.DigitsOnly(s)
	if d == "" {
		return s
	}
	if t := strings.TrimLeft(d, "0"); t != "" {
		return t
	}
	return "0"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// zeroLike reports whether s reads as zero once thousand/decimal
// separators are removed.
func zeroLike(s string) bool {
	t := strings.NewReplacer(",", "", ".", "", " ", "").Replace(s)
	return t == "" || t == "0"
}

func largestNumericToken(tokens []string) string {
	best, bestVal := "", 0
	for _, tok := range tokens {
		v, ok := toInt(tok)
		if !ok {
			continue
		}
		if best == "" || v > bestVal {
			best, bestVal = tok, v
		}
	}
	return best
}
