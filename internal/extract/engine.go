package extract

import (
	"fmt"
	"log/slog"

	"github.com/mbenitez-dev/cashlog/internal/extract/grid"
	"github.com/mbenitez-dev/cashlog/internal/extract/normalize"
)

// AmountPolicy selects how EC_BANCO rows with more numeric tokens than
// expected resolve the amount column. The source documents are ambiguous
// here and both behaviors exist in production, so the policy is explicit
// configuration rather than a guess.
type AmountPolicy int

const (
	// AmountAfterReceipt takes the token two positions after the receipt
	// (the position-based layout). Default.
	AmountAfterReceipt AmountPolicy = iota
	// AmountLargest takes the numerically largest token after the receipt.
	AmountLargest
)

// Config selects the document kind and the per-call extraction options.
type Config struct {
	Type DocType

	// SuppressZeroUSD drops the foreign-currency record that EC_BULTOS_ATM
	// rows fan out into when its amount is zero-like.
	SuppressZeroUSD bool

	// IncludeZeroRows keeps inventory lines whose five value columns are
	// all zero.
	IncludeZeroRows bool

	// AmountPolicy applies to EC_BANCO only.
	AmountPolicy AmountPolicy
}

// DefaultConfig returns the engine options used by the batch flow.
func DefaultConfig(t DocType) Config {
	return Config{
		Type:            t,
		SuppressZeroUSD: true,
		IncludeZeroRows: true,
		AmountPolicy:    AmountAfterReceipt,
	}
}

// Sheet is one named grid of a document.
type Sheet struct {
	Name string
	Grid grid.Grid
}

// Document is a named statement file opened into one or more sheets.
// Path is kept for agency inference from folder names.
type Document struct {
	Name   string
	Path   string
	Sheets []Sheet
}

// SheetError reports a sheet that could not be extracted. The rest of the
// document is unaffected.
type SheetError struct {
	Sheet string
	Err   error
}

func (e SheetError) Error() string {
	return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Err)
}

// Result is the outcome of extracting one document. A document that yields
// zero records is a normal outcome, not an error: Table is still
// column-complete.
type Result struct {
	Table       Table
	SheetErrors []SheetError
}

// record is one extracted output row, keyed by output column name.
// Columns not populated during parsing are back-filled by the assembler.
type record map[string]string

// Engine extracts normalized record sets from statement documents of a
// single configured kind. It is stateless across documents and safe to use
// from one goroutine per document.
type Engine struct {
	cfg    Config
	tables *normalize.Tables
	logger *slog.Logger
}

// NewEngine creates an engine for the given configuration. A nil tables
// value gets the default normalization tables.
func NewEngine(cfg Config, tables *normalize.Tables, logger *slog.Logger) *Engine {
	if tables == nil {
		tables = normalize.NewTables()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, tables: tables, logger: logger}
}

// Extract parses every relevant sheet of doc and assembles the fixed-shape
// output table. Extraction misses and per-sheet failures never surface as a
// Go error; the caller inspects SheetErrors.
func (e *Engine) Extract(doc Document) *Result {
	res := &Result{}
	var records []record

	if e.cfg.Type.IsInventory() {
		for _, sheet := range doc.Sheets {
			recs, err := e.scanInventorySheet(doc, sheet)
			if err != nil {
				res.SheetErrors = append(res.SheetErrors, SheetError{Sheet: sheet.Name, Err: err})
				e.logger.Warn("inventory sheet skipped",
					"document", doc.Name, "sheet", sheet.Name, "error", err)
				continue
			}
			records = append(records, recs...)
		}
	} else {
		layout := ledgerLayoutFor(e.cfg.Type)
		sheets := doc.Sheets
		if !layout.allSheets && len(sheets) > 1 {
			sheets = sheets[:1]
		}
		for _, sheet := range sheets {
			records = append(records, e.scanLedgerSheet(doc, sheet, layout)...)
		}
	}

	res.Table = assemble(records, e.cfg.Type)
	return res
}
