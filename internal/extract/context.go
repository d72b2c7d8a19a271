package extract

// section is the sticky ledger section a row belongs to.
type section int

const (
	sectionNone section = iota
	sectionIn
	sectionOut
)

func (s section) code() string {
	switch s {
	case sectionIn:
		return "IN"
	case sectionOut:
		return "OUT"
	}
	return ""
}

// parseContext is the per-sheet mutable scan state. A fresh context is
// created for every sheet and discarded when its rows are exhausted; no
// state crosses sheets or documents.
type parseContext struct {
	section        section
	motive         string
	currency       string
	agency         string
	statementDate  string
	classification string

	// Opening balance slots. Captured at most once per sheet: the label
	// text may legitimately reappear further down and must not overwrite
	// the first capture.
	balanceA     string
	balanceB     string
	balanceTaken bool
}

// enterSection switches the sticky section and resets the motive; every
// block of transactions must re-establish its motive line.
func (c *parseContext) enterSection(s section) {
	c.section = s
	c.motive = ""
}

// clearMotive is invoked on stop rows (TOTAL / SUBTOTAL) so a following
// bare-text row is re-captured as a new motive rather than appended.
func (c *parseContext) clearMotive() {
	c.motive = ""
}

func (c *parseContext) inSection() bool {
	return c.section == sectionIn || c.section == sectionOut
}
