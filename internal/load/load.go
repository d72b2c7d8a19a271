// Package load opens statement export files into the named-grid document
// shape consumed by the extraction engine. Format routing is by extension;
// the caller never sees a format-specific type.
package load

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mbenitez-dev/cashlog/internal/extract"
)

// ErrUnsupportedFormat indicates a file extension no loader handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrPDFNotSupported indicates PDF statements are not yet parsed. Some
// delegations occasionally export PDF; those files must be converted to a
// spreadsheet upstream.
var ErrPDFNotSupported = errors.New("PDF statements not yet supported")

// Open reads path into a Document, choosing the loader by extension.
func Open(path string) (extract.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return OpenExcel(path)
	case ".csv", ".txt":
		return OpenCSV(path)
	case ".pdf":
		return extract.Document{}, ErrPDFNotSupported
	default:
		return extract.Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
