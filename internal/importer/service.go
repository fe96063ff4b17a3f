package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
	"github.com/MrJamesThe3rd/notemarket/internal/importer/tape"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

type Service struct {
	tapeImporter Importer
}

func NewService() *Service {
	return &Service{
		tapeImporter: tape.NewParser(),
	}
}

// Import parses an uploaded file into listing params. Parse failures are
// reported as invalid input.
func (s *Service) Import(format Format, r io.Reader) ([]listing.CreateParams, error) {
	var importer Importer

	switch format {
	case FormatLoanTape, "":
		importer = s.tapeImporter
	default:
		return nil, fmt.Errorf("unknown import format %q: %w", format, apperr.ErrInvalid)
	}

	rows, err := importer.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalid, err)
	}

	return rows, nil
}
