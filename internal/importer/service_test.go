package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
	"github.com/MrJamesThe3rd/notemarket/internal/importer"
)

func TestService_Import(t *testing.T) {
	svc := importer.NewService()

	rows, err := svc.Import(importer.FormatLoanTape, strings.NewReader(
		"Address,City,State,Zip,Unpaid Balance,Interest Rate,Asking Price\n12 Elm St,Austin,TX,78701,100,7%,90\n"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.Import("mismo", strings.NewReader(""))
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = svc.Import(importer.FormatLoanTape, strings.NewReader("nothing,useful\n"))
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}
