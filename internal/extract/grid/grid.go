// Package grid wraps the raw 2-D cell layout of one statement sheet.
// Statements arrive headerless and irregularly laid out, so columns are
// addressed only by position; every accessor is bounds-safe and returns
// "absent" (empty string / not found) instead of an error.
package grid

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Row is one row of raw cell texts. Rows in the same grid may have
// different lengths.
type Row []string

// Grid is the full cell matrix of one sheet.
type Grid []Row

// accentFolder strips combining marks so "Ó" compares equal to "O".
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents removes diacritics from s, leaving base characters intact.
func FoldAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize returns s accent-folded, whitespace-collapsed and uppercased.
// This is the canonical form used for all keyword matching.
func Normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(FoldAccents(s)), " "))
}

// Cell returns the trimmed cell at idx, or "" when idx is out of range.
func (r Row) Cell(idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[idx])
}

// CellOr returns the trimmed cell at idx, or def when absent or empty.
func (r Row) CellOr(idx int, def string) string {
	if v := r.Cell(idx); v != "" {
		return v
	}
	return def
}

// FirstNonEmptyAfter scans strictly rightward from from+1 and returns the
// index of the first cell whose trimmed value is non-empty.
func (r Row) FirstNonEmptyAfter(from int) (int, bool) {
	for i := from + 1; i < len(r); i++ {
		if strings.TrimSpace(r[i]) != "" {
			return i, true
		}
	}
	return 0, false
}

// Tokens returns the trimmed non-empty cells of the row, in order.
func (r Row) Tokens() []string {
	tokens := make([]string, 0, len(r))
	for _, c := range r {
		if v := strings.TrimSpace(c); v != "" {
			tokens = append(tokens, v)
		}
	}
	return tokens
}

// Joined returns the row's non-empty cells joined with single spaces.
func (r Row) Joined() string {
	return strings.Join(r.Tokens(), " ")
}

// IsBlank reports whether every cell of the row is empty after trimming.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// DigitsOnly returns only the decimal digits of s, preserving leading zeros.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// HasDigit reports whether s contains at least one decimal digit.
func HasDigit(s string) bool {
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			return true
		}
	}
	return false
}

// ValuesAfterLabel finds the first cell whose folded text contains the folded
// label as a substring and returns, in row order, every later non-empty cell
// that carries at least one digit. A row without the label yields nil.
// Collection runs to the end of the row; it does not stop at further labels.
func (r Row) ValuesAfterLabel(label string) []string {
	want := Normalize(label)
	if want == "" {
		return nil
	}
	for i, c := range r {
		if !strings.Contains(Normalize(c), want) {
			continue
		}
		var values []string
		for j := i + 1; j < len(r); j++ {
			v := strings.TrimSpace(r[j])
			if v == "" || !HasDigit(v) {
				continue
			}
			values = append(values, v)
		}
		return values
	}
	return nil
}
