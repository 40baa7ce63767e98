package cgd

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads a European formatted amount: "1.234,56", "-588,74", "10,00".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)

	return decimal.NewFromString(strings.TrimSpace(s))
}
