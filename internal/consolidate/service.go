package consolidate

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mbenitez-dev/cashlog/internal/extract"
	"github.com/mbenitez-dev/cashlog/internal/extract/normalize"
	"github.com/mbenitez-dev/cashlog/internal/load"
	"github.com/mbenitez-dev/cashlog/pkg/config"
)

// Repository persists consolidated tables. Nil disables persistence.
type Repository interface {
	Upload(ctx context.Context, t extract.DocType, tbl extract.Table, jobID uuid.UUID) (int64, error)
}

// Service runs the consolidation batch over the configured working tree.
type Service struct {
	cfg    *config.Config
	layout Layout
	tables *normalize.Tables
	repo   Repository
	logger *slog.Logger
}

// NewService resolves the working tree and builds a batch service.
func NewService(cfg *config.Config, repo Repository, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	layout, err := ResolveLayout(cfg.Paths.BaseDir)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:    cfg,
		layout: layout,
		tables: normalize.NewTables(),
		repo:   repo,
		logger: logger,
	}, nil
}

// Layout exposes the resolved working tree, mainly for logging.
func (s *Service) Layout() Layout { return s.layout }

// processedOrder fixes the iteration order over document kinds so outputs
// and logs are deterministic.
var processedOrder = []extract.DocType{
	extract.DocECATM, extract.DocECBanco,
	extract.DocBultosATM, extract.DocBultosBanco,
	extract.DocInvATM, extract.DocInvBanco,
}

// Run executes one batch: scan pending files, extract each, merge per-kind
// tables, write the dated outputs, move processed files aside and upload
// when a repository is configured. Per-file failures are recorded in the
// report; only environment-level failures (unreadable tree, unwritable
// outputs) return an error.
func (s *Service) Run(ctx context.Context) (*BatchReport, error) {
	report := &BatchReport{
		JobID:         uuid.New(),
		StartedAt:     time.Now(),
		RecordsByType: make(map[extract.DocType]int),
	}
	s.logger.Info("batch started",
		"job_id", report.JobID,
		"pending", s.layout.Pending,
	)

	files, err := s.pendingFiles()
	if err != nil {
		return nil, err
	}

	buckets := make(map[extract.DocType][][]string)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.processFile(path, buckets, report)
	}

	outDir := s.layout.OutputDir(time.Now())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare output directory %s: %w", outDir, err)
	}

	for _, t := range processedOrder {
		rows, ok := buckets[t]
		if !ok || len(rows) == 0 {
			continue
		}
		tbl := finalizeTable(t, extract.Table{Columns: extract.Columns(t), Rows: rows}, s.tables)
		report.RecordsByType[t] = len(tbl.Rows)

		base := filepath.Join(outDir, outputNames[t])
		if err := writeWorkbook(base+".xlsx", tbl); err != nil {
			return nil, err
		}
		if err := writeTableCSV(base+".csv", tbl); err != nil {
			return nil, err
		}
		s.logger.Info("consolidated table written",
			"type", string(t), "records", len(tbl.Rows), "output", base+".xlsx")

		if s.repo != nil {
			n, err := s.repo.Upload(ctx, t, tbl, report.JobID)
			if err != nil {
				return nil, fmt.Errorf("failed to upload %s table: %w", t, err)
			}
			s.logger.Info("consolidated table uploaded", "type", string(t), "rows", n)
		}
	}

	if err := report.WriteCSV(filepath.Join(outDir, "REPORTE_PROCESO.csv")); err != nil {
		return nil, err
	}

	report.FinishedAt = time.Now()
	s.logger.Info("batch finished",
		"job_id", report.JobID,
		"files", len(report.Files),
		"records", report.TotalRecords(),
		"elapsed", report.FinishedAt.Sub(report.StartedAt).String(),
	)
	return report, nil
}

// processFile extracts one pending file into the buckets and records its
// outcome. Failures never abort the batch.
func (s *Service) processFile(path string, buckets map[extract.DocType][][]string, report *BatchReport) {
	rel, err := filepath.Rel(s.layout.Pending, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	entry := FileReport{File: rel}
	defer func() { report.Files = append(report.Files, entry) }()

	t, ok := extract.DetectDocType(filepath.Base(path))
	if !ok {
		entry.Status = StatusNoType
		s.logger.Warn("file skipped, unrecognized name", "file", rel)
		return
	}
	entry.Type = string(t)

	doc, err := load.Open(path)
	if err != nil {
		entry.Status = StatusError
		entry.Error = err.Error()
		s.logger.Error("file could not be loaded", "file", rel, "error", err)
		return
	}
	entry.Sheets = len(doc.Sheets)

	engine := extract.NewEngine(s.engineConfig(t), s.tables, s.logger)
	res := engine.Extract(doc)
	buckets[t] = append(buckets[t], res.Table.Rows...)
	entry.Records = len(res.Table.Rows)

	entry.Status = StatusOK
	if len(res.SheetErrors) > 0 {
		entry.Status = StatusPartial
		entry.Error = res.SheetErrors[0].Error()
	}

	if err := s.moveProcessed(path, rel); err != nil {
		entry.Status = StatusError
		entry.Error = err.Error()
		s.logger.Error("file could not be archived", "file", rel, "error", err)
		return
	}
	s.logger.Info("file processed",
		"file", rel, "type", string(t), "records", entry.Records, "status", entry.Status)
}

func (s *Service) engineConfig(t extract.DocType) extract.Config {
	cfg := extract.DefaultConfig(t)
	cfg.SuppressZeroUSD = s.cfg.Engine.SuppressZeroUSD
	cfg.IncludeZeroRows = s.cfg.Engine.IncludeZeroRows
	if s.cfg.Engine.AmountLargest {
		cfg.AmountPolicy = extract.AmountLargest
	}
	return cfg
}

var loadableExtensions = map[string]bool{
	".xlsx": true, ".xlsm": true, ".xls": true, ".csv": true,
}

// pendingFiles walks the pending tree recursively. Office lock files and
// hidden files are ignored.
func (s *Service) pendingFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.layout.Pending, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			return nil
		}
		if loadableExtensions[strings.ToLower(filepath.Ext(name))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.layout.Pending, err)
	}
	return files, nil
}

// moveProcessed archives a handled file under PROCESADOS, preserving the
// relative subfolder the delegation used.
func (s *Service) moveProcessed(path, rel string) error {
	dest := filepath.Join(s.layout.Processed, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to prepare %s: %w", filepath.Dir(dest), err)
	}
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("failed to move %s: %w", path, err)
	}
	return nil
}
