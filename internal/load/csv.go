package load

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mbenitez-dev/cashlog/internal/extract"
	"github.com/mbenitez-dev/cashlog/internal/extract/grid"
)

// OpenCSV reads a delimited text export as a single-sheet document. The
// delimiter is sniffed from the first line since the delegations export
// with whatever their locale settings produce.
func OpenCSV(path string) (extract.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	g, err := decodeDelimited(data)
	if err != nil {
		return extract.Document{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	name := filepath.Base(path)
	sheet := strings.TrimSuffix(name, filepath.Ext(name))
	return extract.Document{
		Name:   name,
		Path:   path,
		Sheets: []extract.Sheet{{Name: sheet, Grid: g}},
	}, nil
}

func decodeDelimited(data []byte) (grid.Grid, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(firstLine(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	g := make(grid.Grid, 0, len(records))
	for _, rec := range records {
		g = append(g, grid.Row(rec))
	}
	return g, nil
}

func firstLine(data []byte) string {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		data = data[:i]
	}
	return string(data)
}

// detectDelimiter picks the candidate occurring most often in the first
// line, defaulting to comma.
func detectDelimiter(line string) rune {
	best, bestCount := ',', 0
	for _, d := range []rune{';', '\t', ',', '|'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
