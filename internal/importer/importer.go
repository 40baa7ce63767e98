// Package importer turns bank statement exports into ledger entries.
package importer

import (
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/importer/cgd"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
)

type Bank string

const (
	BankCGD Bank = "cgd"
)

// Parser reads one bank's export. Amounts are signed: debits are negative.
type Parser interface {
	Parse(r io.Reader, accountID uuid.UUID) ([]ledger.CreateParams, error)
}

type Service struct {
	parsers map[Bank]Parser
}

func NewService() *Service {
	return &Service{
		parsers: map[Bank]Parser{
			BankCGD: cgd.NewParser(),
		},
	}
}

// Parse picks the parser for bank and reads r into entries for accountID.
func (s *Service) Parse(bank Bank, accountID uuid.UUID, r io.Reader) ([]ledger.CreateParams, error) {
	p, ok := s.parsers[bank]
	if !ok {
		return nil, fmt.Errorf("%w: unknown bank %q", apperr.ErrValidation, bank)
	}

	if accountID == uuid.Nil {
		return nil, fmt.Errorf("%w: account is required", apperr.ErrValidation)
	}

	return p.Parse(r, accountID)
}

// Banks lists the supported banks in a stable order.
func (s *Service) Banks() []Bank {
	banks := make([]Bank, 0, len(s.parsers))
	for b := range s.parsers {
		banks = append(banks, b)
	}

	slices.Sort(banks)

	return banks
}
