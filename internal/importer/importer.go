package importer

import (
	"io"

	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

type Format string

const (
	FormatLoanTape Format = "loan_tape"
)

type Importer interface {
	Parse(r io.Reader) ([]listing.CreateParams, error)
}
