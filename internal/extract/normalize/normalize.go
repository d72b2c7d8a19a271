// Package normalize maps free-text agency and currency names found in
// cash-logistics statements to canonical codes. Tables are constructed
// values, not package-level mutable state, so callers can extend the alias
// lists without affecting other engines.
package normalize

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mbenitez-dev/cashlog/internal/extract/grid"
)

// Tables holds the alias tables used for agency and currency resolution.
type Tables struct {
	agencyCodes []string
	agencyMatch map[string]*regexp.Regexp
	fileDigits  map[string]string
	filePattern *regexp.Regexp
}

// Canonical agency codes for the five delegations.
const (
	AgencyAsuncion      = "ASU"
	AgencyCiudadDelEste = "CDE"
	AgencyOviedo        = "OVD"
	AgencyEncarnacion   = "ENC"
	AgencyConcepcion    = "CON"
)

// defaultAgencyAliases lists, per code, the free-text spellings seen in
// statements, file names and folder names. Order matters: codes themselves
// are matched before longer aliases.
var defaultAgencyAliases = map[string][]string{
	AgencyAsuncion:      {"ASU", "ASUNCION"},
	AgencyCiudadDelEste: {"CDE", "CIUDAD DEL ESTE", "C. DEL ESTE", "C DEL ESTE", "CDE."},
	AgencyOviedo:        {"OVD", "OVIEDO"},
	AgencyEncarnacion:   {"ENC", "ENCARNACION", "ENCA"},
	AgencyConcepcion:    {"CON", "CONCEPCION", "CNC"},
}

// File names carry the agency as a numeric prefix: 1_10 .. 5_10.
var defaultFileDigits = map[string]string{
	"1": AgencyAsuncion,
	"2": AgencyCiudadDelEste,
	"3": AgencyEncarnacion,
	"4": AgencyOviedo,
	"5": AgencyConcepcion,
}

// NewTables builds the default normalization tables.
func NewTables() *Tables {
	t := &Tables{
		agencyMatch: make(map[string]*regexp.Regexp),
		fileDigits:  defaultFileDigits,
		filePattern: regexp.MustCompile(`(^|[^0-9])([1-5])_10([^0-9]|$)`),
	}
	for code, aliases := range defaultAgencyAliases {
		t.agencyCodes = append(t.agencyCodes, code)
		parts := make([]string, 0, len(aliases))
		for _, al := range aliases {
			parts = append(parts, regexp.QuoteMeta(grid.Normalize(al)))
		}
		t.agencyMatch[code] = regexp.MustCompile(`(^|[^A-Z0-9])(` + strings.Join(parts, "|") + `)([^A-Z0-9]|$)`)
	}
	// Stable match order: codes are tried alphabetically so ties resolve
	// the same way on every run.
	sortStrings(t.agencyCodes)
	return t
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// AgencyFromText returns the canonical code whose alias appears as a whole
// word in text, or "" when none matches.
func (t *Tables) AgencyFromText(text string) string {
	if text == "" {
		return ""
	}
	folded := grid.Normalize(text)
	for _, code := range t.agencyCodes {
		if t.agencyMatch[code].MatchString(folded) {
			return code
		}
	}
	return ""
}

// NormalizeAgency maps val to its canonical code when recognized; otherwise
// the trimmed input is returned unchanged. A code is never invented.
func (t *Tables) NormalizeAgency(val string) string {
	val = strings.TrimSpace(val)
	if code := t.AgencyFromText(val); code != "" {
		return code
	}
	return val
}

// AgencyFromFilename deduces the agency from the numeric prefix convention
// (1_10 -> ASU ... 5_10 -> CON). Returns "" when the pattern is absent.
func (t *Tables) AgencyFromFilename(name string) string {
	m := t.filePattern.FindStringSubmatch(strings.ToUpper(filepath.Base(name)))
	if m == nil {
		return ""
	}
	return t.fileDigits[m[2]]
}

// ResolveAgency applies the fixed priority order: value found in the
// document, then the filename digit convention, then an alias in the
// filename, then the containing folder names (innermost first). When
// nothing resolves, the raw document text is passed through.
func (t *Tables) ResolveAgency(docText, filename, path string) string {
	if docText != "" {
		if code := t.AgencyFromText(docText); code != "" {
			return code
		}
		return docText
	}
	if code := t.AgencyFromFilename(filename); code != "" {
		return code
	}
	if code := t.AgencyFromText(filename); code != "" {
		return code
	}
	for dir := filepath.Dir(path); dir != "." && dir != string(filepath.Separator) && dir != ""; dir = filepath.Dir(dir) {
		if code := t.AgencyFromText(filepath.Base(dir)); code != "" {
			return code
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}
	return docText
}

// Currency codes produced by CurrencyISO.
const (
	CurrencyPYG = "PYG"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyBRL = "BRL"
	CurrencyARS = "ARS"
)

// CurrencyISO normalizes a currency name or symbol to an ISO-like code.
// Unrecognized tokens pass through folded; silence is NOT defaulted here,
// that is the inventory sub-type's convention (see InventoryCurrency).
func CurrencyISO(token string) string {
	t := grid.Normalize(token)
	switch {
	case containsAny(t, "PYG", "GS", "G$", "₲", "GUARANI", "GUARANIES"):
		return CurrencyPYG
	case containsAny(t, "USD", "US$", "U$S", "DOLAR", "DOLARES"):
		return CurrencyUSD
	case containsAny(t, "EUR", "€", "EURO", "EUROS"):
		return CurrencyEUR
	case containsAny(t, "BRL", "R$", "REAL", "REALES"):
		return CurrencyBRL
	case containsAny(t, "ARS", "PESO", "PESOS", "ARG"):
		return CurrencyARS
	case strings.Contains(t, "$"):
		return CurrencyUSD
	}
	return t
}

// InventoryCurrency normalizes a denomination-table currency code. The
// inventory format's silence conventionally means local currency, so the
// default is PYG.
func InventoryCurrency(code string) string {
	t := grid.Normalize(code)
	switch {
	case strings.Contains(t, "PYG") || strings.Contains(t, "GUARANI"):
		return CurrencyPYG
	case strings.Contains(t, "USD") || strings.Contains(t, "DOLAR"):
		return CurrencyUSD
	case t != "":
		return t
	}
	return CurrencyPYG
}

// CurrencyFromSheetName guesses the statement's working currency from a
// sheet name, returning the local-language name used in ledger output
// ("GUARANIES", "DOLARES", ...). Returns "" when the name carries no hint.
func CurrencyFromSheetName(name string) string {
	n := grid.Normalize(name)
	switch {
	case containsAny(n, "USD", "DOLAR", "DOLARES"):
		return "DOLARES"
	case containsAny(n, "EUR", "EURO", "EUROS"):
		return "EUROS"
	case containsAny(n, "BRL", "REAL", "REALES"):
		return "REALES"
	case containsAny(n, "ARS", "PESO", "PESOS", "ARG"):
		return "PESOS"
	case containsAny(n, "PYG", "GUARANI", "GUARANIES"):
		return "GUARANIES"
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
