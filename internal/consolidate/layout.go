// Package consolidate orchestrates the batch flow: scan the pending tree,
// route each file to its document kind, extract, merge per-kind tables,
// write the dated consolidated outputs and move processed files aside.
package consolidate

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Layout is the resolved working tree under the configured base directory.
// The delegations are inconsistent about singular/plural folder names, so
// existing variants are detected before defaults are created.
type Layout struct {
	Base         string
	Pending      string
	Processed    string
	Consolidated string
}

var (
	pendingNames      = []string{"PENDIENTES", "PENDIENTE"}
	processedNames    = []string{"PROCESADOS", "PROCESADO"}
	consolidatedNames = []string{"CONSOLIDADO", "CONSOLIDADOS"}
)

// ResolveLayout detects or creates the working tree under base.
func ResolveLayout(base string) (Layout, error) {
	l := Layout{
		Base:         base,
		Pending:      findDir(base, pendingNames),
		Processed:    findDir(base, processedNames),
		Consolidated: findDir(base, consolidatedNames),
	}
	for _, dir := range []string{l.Pending, l.Processed, l.Consolidated} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Layout{}, fmt.Errorf("failed to prepare directory %s: %w", dir, err)
		}
	}
	return l, nil
}

func findDir(base string, names []string) string {
	for _, n := range names {
		p := filepath.Join(base, n)
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			return p
		}
	}
	return filepath.Join(base, names[0])
}

// OutputDir returns the dated consolidated output directory for day.
// Re-running a batch on the same day overwrites its outputs.
func (l Layout) OutputDir(day time.Time) string {
	return filepath.Join(l.Consolidated, day.Format("2006-01-02"))
}
