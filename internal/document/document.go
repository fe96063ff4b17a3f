package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

type Kind string

const (
	KindNote           Kind = "note"
	KindMortgage       Kind = "mortgage"
	KindTitle          Kind = "title"
	KindPaymentHistory Kind = "payment_history"
	KindAppraisal      Kind = "appraisal"
	KindOther          Kind = "other"
)

var Kinds = []Kind{KindNote, KindMortgage, KindTitle, KindPaymentHistory, KindAppraisal, KindOther}

// Document is a pre-sale file attached to a listing. Buyers only see it once
// the owner releases it and an admin verifies it.
type Document struct {
	ID                 uuid.UUID
	ListingID          uuid.UUID
	UploaderID         uuid.UUID
	Name               string
	Kind               Kind
	URL                string
	IsPublic           bool
	VerificationStatus listing.VerificationStatus
	CreatedAt          time.Time
}

func (d *Document) Shared() bool {
	return d.IsPublic && d.VerificationStatus == listing.VerificationVerified
}

var ErrNotFound = fmt.Errorf("document %w", apperr.ErrNotFound)
