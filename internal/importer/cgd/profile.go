package cgd

import "github.com/shopspring/decimal"

// layout is the header set of one CGD export. A layout carries either a signed amount
// column or a debit/credit pair.
type layout struct {
	name   string
	date   string
	desc   string
	signed string
	debit  string
	credit string
}

func (l layout) columns() []string {
	if l.signed != "" {
		return []string{l.date, l.desc, l.signed}
	}

	return []string{l.date, l.desc, l.debit, l.credit}
}

// amount returns the signed movement of a row, debits negative. Blank and zero amounts
// are reported as missing.
func (l layout) amount(row []string, cols map[string]int) (decimal.Decimal, bool) {
	if l.signed != "" {
		return nonZero(cell(row, cols[l.signed]))
	}

	if d, ok := nonZero(cell(row, cols[l.debit])); ok {
		return d.Abs().Neg(), true
	}

	if c, ok := nonZero(cell(row, cols[l.credit])); ok {
		return c.Abs(), true
	}

	return decimal.Zero, false
}

func nonZero(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

// layouts are tried in order; the card export shares columns with the others so it goes first.
var layouts = []layout{
	{name: "cartão", date: "Data", desc: "Descrição", debit: "Débito", credit: "Crédito"},
	{name: "extrato", date: "Data mov.", desc: "Descrição", signed: "Movimento"},
	{name: "conta", date: "Data mov.", desc: "Descrição", signed: "Montante"},
}
