package importer_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/importer"
)

func TestService_Parse(t *testing.T) {
	svc := importer.NewService()
	account := uuid.New()

	got, err := svc.Parse(importer.BankCGD, account, strings.NewReader("Data mov.;Descrição;Montante\n30-01-2026;TEST;-10,00\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, account, got[0].AccountID)
	assert.Equal(t, "-10", got[0].Amount.String())

	_, err = svc.Parse("millennium", account, strings.NewReader(""))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Parse(importer.BankCGD, uuid.Nil, strings.NewReader(""))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	assert.Equal(t, []importer.Bank{importer.BankCGD}, svc.Banks())
}
