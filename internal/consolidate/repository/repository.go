// Package repository appends consolidated tables to Postgres.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mbenitez-dev/cashlog/internal/extract"
)

// DB is the pgx surface the repository needs; satisfied by *pgxpool.Pool
// and by pgxmock in tests.
type DB interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

var tableNames = map[extract.DocType]string{
	extract.DocECATM:       "estado_cuenta_atm",
	extract.DocECBanco:     "estado_cuenta_banco",
	extract.DocBultosATM:   "estado_cuenta_bultos_atm",
	extract.DocBultosBanco: "estado_cuenta_bultos_banco",
	extract.DocInvATM:      "inventario_atm",
	extract.DocInvBanco:    "inventario_banco",
}

// numericColumns are stored as numeric; everything else stays text.
var numericColumns = map[string]bool{
	"GUARANIES":          true,
	"DOLARES":            true,
	"IMPORTE":            true,
	"IMPORTE_TOTAL":      true,
	"SALDO_ANTERIOR":     true,
	"SALDO_ANTERIOR_PYG": true,
	"SALDO_ANTERIOR_USD": true,
}

// Postgres uploads consolidated tables with COPY.
type Postgres struct {
	db DB
}

// NewPostgres creates a repository over an open connection pool.
func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

// NewPool opens and pings a pgx pool for the given DSN.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}

// Upload appends tbl to the kind's table, tagging every row with the batch
// job id. Returns the number of rows copied.
func (r *Postgres) Upload(ctx context.Context, t extract.DocType, tbl extract.Table, jobID uuid.UUID) (int64, error) {
	table, ok := tableNames[t]
	if !ok {
		return 0, fmt.Errorf("no table mapped for document type %q", t)
	}

	cols := make([]string, 0, len(tbl.Columns)+1)
	for _, c := range tbl.Columns {
		cols = append(cols, strings.ToLower(c))
	}
	cols = append(cols, "job_id")

	rows := make([][]any, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		vals := make([]any, 0, len(cols))
		for i, c := range tbl.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if numericColumns[c] {
				// pgx has no codec for decimal.Decimal, so COPY sends
				// the parsed amount as float64.
				vals = append(vals, ParseAmount(cell).InexactFloat64())
			} else {
				vals = append(vals, cell)
			}
		}
		vals = append(vals, jobID.String())
		rows = append(rows, vals)
	}

	n, err := r.db.CopyFrom(ctx, pgx.Identifier{table}, cols, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to copy into %s: %w", table, err)
	}
	return n, nil
}

// ParseAmount reads the localized amount notation the statements use:
// dots are thousands separators, comma is the decimal mark. Empty or
// malformed values come out as zero rather than failing the upload.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
