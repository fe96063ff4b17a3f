package inquiry

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCountered Status = "countered"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
)

// Open reports whether the negotiation can still move.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusCountered
}

// Party names the side of a negotiation whose move it is.
type Party string

const (
	PartySeller Party = "seller"
	PartyBuyer  Party = "buyer"
)

func (p Party) other() Party {
	if p == PartySeller {
		return PartyBuyer
	}

	return PartySeller
}

type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionReject  Decision = "reject"
	DecisionCounter Decision = "counter"
)

// Inquiry is a buyer's negotiation over a listing. Amounts are in cents.
type Inquiry struct {
	ID              uuid.UUID
	ListingID       uuid.UUID
	BuyerID         uuid.UUID
	SellerID        uuid.UUID
	Message         string
	OfferAmount     *int64
	CounterAmount   *int64
	Status          Status
	Awaiting        Party
	ResponseMessage string
	RespondedAt     *time.Time
	ExpiresAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// Lapsed reports whether an open inquiry has run past its expiry.
func (i *Inquiry) Lapsed(now time.Time) bool {
	return i.Status.Open() && now.After(i.ExpiresAt)
}

// resolve applies lazy expiry in memory.
func (i *Inquiry) resolve(now time.Time) *Inquiry {
	if i.Lapsed(now) {
		i.Status = StatusExpired
	}

	return i
}

// PartyOf returns the side a user is on, if any.
func (i *Inquiry) PartyOf(userID uuid.UUID) (Party, bool) {
	switch userID {
	case i.BuyerID:
		return PartyBuyer, true
	case i.SellerID:
		return PartySeller, true
	}

	return "", false
}

// AgreedAmount is the price both sides settled on: the latest counter, else
// the buyer's offer, else the asking price.
func (i *Inquiry) AgreedAmount(askingPrice int64) int64 {
	switch {
	case i.CounterAmount != nil:
		return *i.CounterAmount
	case i.OfferAmount != nil:
		return *i.OfferAmount
	}

	return askingPrice
}

var (
	ErrNotFound     = fmt.Errorf("inquiry %w", apperr.ErrNotFound)
	ErrClosed       = fmt.Errorf("inquiry is no longer open: %w", apperr.ErrConflict)
	ErrExpired      = fmt.Errorf("inquiry has expired: %w", apperr.ErrConflict)
	ErrNotYourTurn  = fmt.Errorf("inquiry is awaiting the other party: %w", apperr.ErrConflict)
	ErrStale        = fmt.Errorf("inquiry changed concurrently: %w", apperr.ErrConflict)
	ErrNotParty     = fmt.Errorf("not a party to this inquiry: %w", apperr.ErrForbidden)
	ErrNotAvailable = fmt.Errorf("listing is not accepting inquiries: %w", apperr.ErrConflict)
	ErrOwnListing   = fmt.Errorf("cannot inquire on your own listing: %w", apperr.ErrConflict)
	ErrNotAccepted  = fmt.Errorf("inquiry has not been accepted: %w", apperr.ErrConflict)
	ErrListingTaken = fmt.Errorf("listing is no longer for sale: %w", apperr.ErrConflict)
)
