package inquiry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/events"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=inquiry
type Repository interface {
	CreateInquiry(ctx context.Context, i *Inquiry) error
	GetInquiry(ctx context.Context, id uuid.UUID) (*Inquiry, error)
	ListInquiries(ctx context.Context, filter ListFilter) ([]*Inquiry, error)
	// Transition persists i only if the stored status and awaiting party
	// still equal the position the move was made from.
	Transition(ctx context.Context, i *Inquiry, from Status, awaiting Party) error
}

// Listings is what negotiation needs from the listing service.
type Listings interface {
	Lookup(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
	RecordInquiry(ctx context.Context, id uuid.UUID) error
}

// DealOpener starts the transaction for an accepted inquiry and returns its id.
type DealOpener interface {
	OpenDeal(ctx context.Context, inquiryID uuid.UUID) (uuid.UUID, error)
}

type ListFilter struct {
	BuyerID   *uuid.UUID
	SellerID  *uuid.UUID
	ListingID *uuid.UUID
	Status    *Status
}

type Service struct {
	repo      Repository
	listings  Listings
	deals     DealOpener
	publisher events.Publisher
	metrics   *metrics.Metrics
	ttl       time.Duration
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(repo Repository, listings Listings, publisher events.Publisher, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		listings:  listings,
		publisher: publisher,
		ttl:       ttl,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SetDealOpener wires transaction creation after construction.
func (s *Service) SetDealOpener(d DealOpener) {
	s.deals = d
}

type CreateParams struct {
	ListingID   uuid.UUID `json:"listing_id"`
	Message     string    `json:"message"`
	OfferAmount *int64    `json:"offer_amount,omitempty"`
}

func (p CreateParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ListingID, validation.By(func(v any) error {
			if id, _ := v.(uuid.UUID); id == uuid.Nil {
				return validation.ErrRequired
			}

			return nil
		})),
		validation.Field(&p.Message, validation.Length(0, 4000)),
		validation.Field(&p.OfferAmount, validation.NilOrNotEmpty, validation.Min(int64(1))),
	)
}

func (s *Service) Create(ctx context.Context, buyer auth.Session, params CreateParams) (*Inquiry, error) {
	if err := buyer.Require(auth.CapInquire); err != nil {
		return nil, err
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	l, err := s.listings.Lookup(ctx, params.ListingID)
	if err != nil {
		return nil, err
	}

	if !l.IsPublic() {
		return nil, listing.ErrNotFound
	}

	if !l.AcceptsInquiries() {
		return nil, ErrNotAvailable
	}

	if l.OwnedBy(buyer.UserID) {
		return nil, ErrOwnListing
	}

	now := s.now()
	i := &Inquiry{
		ListingID:   l.ID,
		BuyerID:     buyer.UserID,
		SellerID:    l.SellerID,
		Message:     strings.TrimSpace(params.Message),
		OfferAmount: params.OfferAmount,
		Status:      StatusPending,
		Awaiting:    PartySeller,
		ExpiresAt:   now.Add(s.ttl),
		CreatedAt:   now,
	}

	if err := s.repo.CreateInquiry(ctx, i); err != nil {
		return nil, err
	}

	if err := s.listings.RecordInquiry(ctx, l.ID); err != nil {
		slog.ErrorContext(ctx, "failed to bump inquiry counter", "listing_id", l.ID, "error", err)
	}

	s.metrics.InquiryCreated()
	events.Emit(ctx, s.publisher, events.SubjectInquiryCreated, map[string]any{
		"inquiry_id":   i.ID,
		"listing_id":   i.ListingID,
		"buyer_id":     i.BuyerID,
		"seller_id":    i.SellerID,
		"offer_amount": i.OfferAmount,
	})

	return i, nil
}

// Get returns an inquiry to one of its parties or an admin.
func (s *Service) Get(ctx context.Context, viewer auth.Session, id uuid.UUID) (*Inquiry, error) {
	i, err := s.repo.GetInquiry(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, ok := i.PartyOf(viewer.UserID); !ok && !viewer.Can(auth.CapViewAll) {
		return nil, ErrNotFound
	}

	return i.resolve(s.now()), nil
}

// Accepted returns an inquiry only if its negotiation concluded with a deal.
func (s *Service) Accepted(ctx context.Context, id uuid.UUID) (*Inquiry, error) {
	i, err := s.repo.GetInquiry(ctx, id)
	if err != nil {
		return nil, err
	}

	if i.Status != StatusAccepted {
		return nil, ErrNotAccepted
	}

	return i, nil
}

func (s *Service) ListForBuyer(ctx context.Context, buyer auth.Session) ([]*Inquiry, error) {
	return s.list(ctx, ListFilter{BuyerID: &buyer.UserID})
}

// ListForSeller lists inquiries received by the seller, optionally narrowed to
// one listing.
func (s *Service) ListForSeller(ctx context.Context, seller auth.Session, listingID *uuid.UUID) ([]*Inquiry, error) {
	return s.list(ctx, ListFilter{SellerID: &seller.UserID, ListingID: listingID})
}

func (s *Service) list(ctx context.Context, filter ListFilter) ([]*Inquiry, error) {
	inquiries, err := s.repo.ListInquiries(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, i := range inquiries {
		i.resolve(now)
	}

	return inquiries, nil
}

type RespondParams struct {
	Decision        Decision `json:"decision"`
	ResponseMessage string   `json:"response_message"`
	CounterAmount   *int64   `json:"counter_amount,omitempty"`
}

func (p RespondParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Decision, validation.Required, validation.In(DecisionAccept, DecisionReject, DecisionCounter)),
		validation.Field(&p.ResponseMessage, validation.Length(0, 4000)),
		validation.Field(&p.CounterAmount,
			validation.When(p.Decision == DecisionCounter, validation.Required, validation.Min(int64(1))),
		),
	)
}

// Response is the outcome of a negotiation move. TransactionID is set when the
// move was an acceptance.
type Response struct {
	Inquiry       *Inquiry
	TransactionID *uuid.UUID
}

// Respond applies a negotiation move by the party whose turn it is. Counters
// flip the turn and extend the deadline; accept and reject end the
// negotiation.
func (s *Service) Respond(ctx context.Context, responder auth.Session, id uuid.UUID, params RespondParams) (*Response, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	i, err := s.repo.GetInquiry(ctx, id)
	if err != nil {
		return nil, err
	}

	party, ok := i.PartyOf(responder.UserID)
	if !ok {
		return nil, ErrNotParty
	}

	now := s.now()

	if i.Lapsed(now) {
		from, awaiting := i.Status, i.Awaiting
		i.Status = StatusExpired
		i.UpdatedAt = &now

		if err := s.repo.Transition(ctx, i, from, awaiting); err != nil {
			slog.WarnContext(ctx, "failed to persist inquiry expiry", "inquiry_id", i.ID, "error", err)
		}

		return nil, ErrExpired
	}

	if !i.Status.Open() {
		return nil, fmt.Errorf("%w: status is %s", ErrClosed, i.Status)
	}

	if party != i.Awaiting {
		return nil, ErrNotYourTurn
	}

	if params.Decision == DecisionAccept {
		l, err := s.listings.Lookup(ctx, i.ListingID)
		if err != nil {
			return nil, err
		}

		if l.Status != listing.StatusActive {
			return nil, fmt.Errorf("%w: listing is %s", ErrListingTaken, l.Status)
		}
	}

	from, awaiting := i.Status, i.Awaiting
	i.ResponseMessage = strings.TrimSpace(params.ResponseMessage)
	i.RespondedAt = &now
	i.UpdatedAt = &now

	switch params.Decision {
	case DecisionAccept:
		i.Status = StatusAccepted
	case DecisionReject:
		i.Status = StatusRejected
	case DecisionCounter:
		i.Status = StatusCountered
		i.CounterAmount = params.CounterAmount
		i.Awaiting = party.other()
		i.ExpiresAt = now.Add(s.ttl)
	}

	if err := s.repo.Transition(ctx, i, from, awaiting); err != nil {
		return nil, err
	}

	s.metrics.InquiryResponded(string(params.Decision))
	events.Emit(ctx, s.publisher, events.SubjectInquiryResponded, map[string]any{
		"inquiry_id":     i.ID,
		"listing_id":     i.ListingID,
		"decision":       params.Decision,
		"status":         i.Status,
		"counter_amount": i.CounterAmount,
		"responder_id":   responder.UserID,
	})

	res := &Response{Inquiry: i}

	if i.Status == StatusAccepted && s.deals != nil {
		txID, err := s.deals.OpenDeal(ctx, i.ID)
		if err != nil {
			return nil, fmt.Errorf("inquiry accepted but opening transaction failed: %w", err)
		}

		res.TransactionID = &txID
	}

	return res, nil
}
