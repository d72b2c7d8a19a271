package consolidate_test

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mbenitez-dev/cashlog/internal/consolidate"
	"github.com/mbenitez-dev/cashlog/pkg/config"
)

func testConfig(base string) *config.Config {
	return &config.Config{
		Paths: config.PathsConfig{BaseDir: base},
		Engine: config.EngineConfig{
			SuppressZeroUSD: true,
			IncludeZeroRows: true,
		},
	}
}

func writeStatement(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func TestRunConsolidatesPendingTree(t *testing.T) {
	base := t.TempDir()
	pending := filepath.Join(base, "PENDIENTES")

	writeStatement(t, filepath.Join(pending, "ASU", "EC_ATM_1_10 MARZO.xlsx"), [][]any{
		{"INGRESOS"},
		{"DEPOSITO"},
		{"", "15/03/2024", "Ciudad del Este", "000123456", "3", "1.500.000", "0"},
	})
	// A file no route recognizes stays in the pending tree.
	require.NoError(t, os.WriteFile(filepath.Join(pending, "NOTAS.csv"), []byte("nada\n"), 0o644))

	svc, err := consolidate.NewService(testConfig(base), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Len(t, report.Files, 2)
	assert.Equal(t, 1, report.TotalRecords())

	// Processed file moved, preserving its delegation subfolder.
	assert.FileExists(t, filepath.Join(base, "PROCESADOS", "ASU", "EC_ATM_1_10 MARZO.xlsx"))
	assert.NoFileExists(t, filepath.Join(pending, "ASU", "EC_ATM_1_10 MARZO.xlsx"))
	assert.FileExists(t, filepath.Join(pending, "NOTAS.csv"), "unrecognized files are left alone")

	outDir := svc.Layout().OutputDir(time.Now())
	assert.FileExists(t, filepath.Join(outDir, "PROSEGUR_EFECT_ATM.xlsx"))
	assert.FileExists(t, filepath.Join(outDir, "REPORTE_PROCESO.csv"))

	f, err := os.Open(filepath.Join(outDir, "PROSEGUR_EFECT_ATM.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header plus one record")

	header, row := records[0], records[1]
	byName := map[string]string{}
	for i, h := range header {
		byName[h] = row[i]
	}
	assert.Equal(t, "15/03/2024", byName["FECHA"])
	assert.Equal(t, "123456", byName["RECIBO"])
	assert.Equal(t, "ASU", byName["AGENCIA"], "agency comes from the filename digit convention")
	assert.Equal(t, "1.500.000", byName["GUARANIES"])
}

func TestRunOnEmptyTreeStillWritesReport(t *testing.T) {
	base := t.TempDir()
	svc, err := consolidate.NewService(testConfig(base), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Files)
	assert.FileExists(t, filepath.Join(svc.Layout().OutputDir(time.Now()), "REPORTE_PROCESO.csv"))

	// The working tree is created on first resolution.
	assert.DirExists(t, filepath.Join(base, "PENDIENTES"))
	assert.DirExists(t, filepath.Join(base, "PROCESADOS"))
	assert.DirExists(t, filepath.Join(base, "CONSOLIDADO"))
}

func TestLayoutDetectsSingularVariants(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "PROCESADO"), 0o755))

	layout, err := consolidate.ResolveLayout(base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "PROCESADO"), layout.Processed,
		"an existing singular folder is reused instead of creating the plural one")
}
