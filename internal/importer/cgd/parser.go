// Package cgd parses Caixa Geral de Depósitos CSV exports into ledger entries.
package cgd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/encoding"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
)

const dateLayout = "02-01-2006"

// Parser auto-detects the account, statement and card exports by their header row.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads every dated movement below the header. Rows without a date or an amount,
// such as page footers and totals, are skipped.
func (p *Parser) Parse(r io.Reader, accountID uuid.UUID) ([]ledger.CreateParams, error) {
	text, err := encoding.ToUTF8(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	reader := csv.NewReader(text)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading csv: %w", apperr.ErrValidation, err)
	}

	l, cols, header := findHeader(rows)
	if header < 0 {
		return nil, fmt.Errorf("%w: no matching CGD format found", apperr.ErrValidation)
	}

	var out []ledger.CreateParams

	for i, row := range rows[header+1:] {
		date, err := time.Parse(dateLayout, cell(row, cols[l.date]))
		if err != nil {
			continue
		}

		amount, ok := l.amount(row, cols)
		if !ok {
			continue
		}

		desc := cell(row, cols[l.desc])
		if desc == "" {
			return nil, fmt.Errorf("%w: line %d: missing description", apperr.ErrValidation, header+i+2)
		}

		out = append(out, ledger.CreateParams{
			AccountID:   accountID,
			Amount:      amount,
			Description: desc,
			Date:        date,
		})
	}

	return out, nil
}

// findHeader returns the first layout whose columns all appear in one row, the column
// positions of that row and its index, or -1.
func findHeader(rows [][]string) (layout, map[string]int, int) {
	for i, row := range rows {
		cols := make(map[string]int, len(row))

		for j, c := range row {
			if name := strings.TrimSpace(c); name != "" {
				cols[name] = j
			}
		}

	next:
		for _, l := range layouts {
			for _, c := range l.columns() {
				if _, ok := cols[c]; !ok {
					continue next
				}
			}

			return l, cols, i
		}
	}

	return layout{}, nil, -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
