package consolidate

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/mbenitez-dev/cashlog/internal/extract"
)

// File processing outcomes recorded in the batch report.
const (
	StatusOK      = "ok"
	StatusPartial = "parcial"
	StatusNoType  = "sin_tipo"
	StatusError   = "error"
)

// FileReport is one line of the batch processing report CSV.
type FileReport struct {
	File    string `csv:"archivo"`
	Type    string `csv:"tipo"`
	Sheets  int    `csv:"hojas"`
	Records int    `csv:"registros"`
	Status  string `csv:"estado"`
	Error   string `csv:"error"`
}

// BatchReport summarizes one consolidation run.
type BatchReport struct {
	JobID         uuid.UUID
	StartedAt     time.Time
	FinishedAt    time.Time
	Files         []FileReport
	RecordsByType map[extract.DocType]int
}

// WriteCSV writes the per-file report next to the consolidated outputs.
func (r *BatchReport) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&r.Files, f); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// TotalRecords is the record count across every document kind.
func (r *BatchReport) TotalRecords() int {
	total := 0
	for _, n := range r.RecordsByType {
		total += n
	}
	return total
}
