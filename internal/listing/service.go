package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/events"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=listing
type Repository interface {
	CreateListing(ctx context.Context, l *Listing) error
	GetListing(ctx context.Context, id uuid.UUID) (*Listing, error)
	UpdateListing(ctx context.Context, l *Listing) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	UpdateVerification(ctx context.Context, id uuid.UUID, status VerificationStatus, note string) error
	ListListings(ctx context.Context, filter ListFilter) ([]*Listing, int, error)

	IncrementViews(ctx context.Context, id uuid.UUID) error
	IncrementInquiries(ctx context.Context, id uuid.UUID) error
	SetCounters(ctx context.Context, id uuid.UUID, counters Counters) error

	AddFavorite(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	RemoveFavorite(ctx context.Context, userID, listingID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]*Listing, error)

	BeginImport(ctx context.Context, sellerID uuid.UUID) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, sellerID uuid.UUID, params []CreateParams) ([]*Listing, error)
	CreateListings(ctx context.Context, listings []*Listing) error
	Commit() error
	Rollback() error
}

// PublishHook is told when a listing becomes visible to buyers.
type PublishHook func(ctx context.Context, l *Listing)

type Service struct {
	repo      Repository
	publisher events.Publisher
	onPublish PublishHook
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher) *Service {
	return &Service{repo: repo, publisher: publisher, now: time.Now}
}

// OnPublish registers the hook run after a listing turns public.
func (s *Service) OnPublish(hook PublishHook) {
	s.onPublish = hook
}

type CreateParams struct {
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	NoteType            NoteType          `json:"note_type"`
	LienPosition        int               `json:"lien_position"`
	PerformanceStatus   PerformanceStatus `json:"performance_status"`
	PropertyType        PropertyType      `json:"property_type"`
	Address             string            `json:"address"`
	City                string            `json:"city"`
	State               string            `json:"state"`
	Zip                 string            `json:"zip"`
	PropertyValue       int64             `json:"property_value"`
	OriginalBalance     int64             `json:"original_balance"`
	UnpaidBalance       int64             `json:"unpaid_balance"`
	InterestRate        decimal.Decimal   `json:"interest_rate"`
	MonthlyPayment      int64             `json:"monthly_payment"`
	RemainingTermMonths int               `json:"remaining_term_months"`
	OriginationDate     *time.Time        `json:"origination_date,omitempty"`
	MaturityDate        *time.Time        `json:"maturity_date,omitempty"`
	AskingPrice         int64             `json:"asking_price"`
	Yield               decimal.Decimal   `json:"yield"`
	Publish             bool              `json:"publish"`
}

func (p CreateParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&p.NoteType, validation.Required, validation.In(anySlice(NoteTypes)...)),
		validation.Field(&p.LienPosition, validation.Required, validation.Min(1), validation.Max(3)),
		validation.Field(&p.PerformanceStatus, validation.Required, validation.In(anySlice(PerformanceStatuses)...)),
		validation.Field(&p.PropertyType, validation.Required, validation.In(anySlice(PropertyTypes)...)),
		validation.Field(&p.Address, validation.Required),
		validation.Field(&p.City, validation.Required),
		validation.Field(&p.State, validation.Required, validation.Length(2, 2)),
		validation.Field(&p.Zip, validation.Required, validation.Length(5, 10)),
		validation.Field(&p.PropertyValue, validation.Min(int64(0))),
		validation.Field(&p.OriginalBalance, validation.Min(int64(0))),
		validation.Field(&p.UnpaidBalance, validation.Required, validation.Min(int64(1))),
		validation.Field(&p.InterestRate, validation.By(percentage(true))),
		validation.Field(&p.MonthlyPayment, validation.Min(int64(0))),
		validation.Field(&p.RemainingTermMonths, validation.Min(0), validation.Max(600)),
		validation.Field(&p.AskingPrice, validation.Required, validation.Min(int64(1))),
		validation.Field(&p.Yield, validation.By(percentage(false))),
		validation.Field(&p.MaturityDate, validation.By(notBefore(p.OriginationDate))),
	)
}

func percentage(required bool) validation.RuleFunc {
	return func(v any) error {
		d, _ := v.(decimal.Decimal)
		if d.IsZero() {
			if required {
				return validation.ErrRequired
			}

			return nil
		}

		if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
			return validation.NewError("validation_percentage", "must be between 0 and 100")
		}

		return nil
	}
}

func notBefore(start *time.Time) validation.RuleFunc {
	return func(v any) error {
		end, _ := v.(*time.Time)
		if end == nil || start == nil {
			return nil
		}

		if end.Before(*start) {
			return validation.NewError("validation_date_order", "must not be before the origination date")
		}

		return nil
	}
}

func (p CreateParams) toListing(sellerID uuid.UUID) *Listing {
	l := &Listing{
		SellerID:            sellerID,
		Title:               strings.TrimSpace(p.Title),
		Description:         p.Description,
		NoteType:            p.NoteType,
		LienPosition:        p.LienPosition,
		PerformanceStatus:   p.PerformanceStatus,
		PropertyType:        p.PropertyType,
		Address:             strings.TrimSpace(p.Address),
		City:                strings.TrimSpace(p.City),
		State:               strings.ToUpper(p.State),
		Zip:                 strings.TrimSpace(p.Zip),
		PropertyValue:       p.PropertyValue,
		OriginalBalance:     p.OriginalBalance,
		UnpaidBalance:       p.UnpaidBalance,
		InterestRate:        p.InterestRate,
		MonthlyPayment:      p.MonthlyPayment,
		RemainingTermMonths: p.RemainingTermMonths,
		OriginationDate:     p.OriginationDate,
		MaturityDate:        p.MaturityDate,
		AskingPrice:         p.AskingPrice,
		Yield:               p.Yield,
		Status:              StatusDraft,
		VerificationStatus:  VerificationPending,
	}

	if l.Yield.IsZero() {
		l.Yield = CurrentYield(l.MonthlyPayment, l.AskingPrice)
	}

	if p.Publish {
		l.Status = StatusActive
	}

	return l
}

func (s *Service) Create(ctx context.Context, seller auth.Session, params CreateParams) (*Listing, error) {
	if err := seller.Require(auth.CapSell); err != nil {
		return nil, err
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	l := params.toListing(seller.UserID)
	if err := s.repo.CreateListing(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

// Get returns a listing the viewer may see. Reads by anyone other than the
// owner count as a view.
func (s *Service) Get(ctx context.Context, viewer auth.Session, id uuid.UUID) (*Listing, error) {
	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	if !l.VisibleTo(viewer) {
		return nil, ErrNotFound
	}

	if !l.OwnedBy(viewer.UserID) {
		if err := s.repo.IncrementViews(ctx, id); err != nil {
			return nil, err
		}

		l.ViewCount++
	}

	return l, nil
}

// Lookup fetches a listing without visibility rules or view counting, for
// other services.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.repo.GetListing(ctx, id)
}

type Page struct {
	Listings []*Listing
	Total    int
}

// List runs a filtered query. Viewers only see public listings unless they
// are browsing their own inventory or hold the view-all capability.
func (s *Service) List(ctx context.Context, viewer auth.Session, filter ListFilter) (*Page, error) {
	filter.Criteria = filter.Criteria.Normalize()
	if err := filter.Criteria.Validate(); err != nil {
		return nil, err
	}

	ownInventory := filter.SellerID != nil && *filter.SellerID == viewer.UserID
	if !ownInventory && !viewer.Can(auth.CapViewAll) {
		filter.PublicOnly = true
	}

	listings, total, err := s.repo.ListListings(ctx, filter.withPaging())
	if err != nil {
		return nil, err
	}

	return &Page{Listings: listings, Total: total}, nil
}

type UpdateParams struct {
	Title               *string            `json:"title,omitempty"`
	Description         *string            `json:"description,omitempty"`
	PerformanceStatus   *PerformanceStatus `json:"performance_status,omitempty"`
	PropertyValue       *int64             `json:"property_value,omitempty"`
	UnpaidBalance       *int64             `json:"unpaid_balance,omitempty"`
	InterestRate        *decimal.Decimal   `json:"interest_rate,omitempty"`
	MonthlyPayment      *int64             `json:"monthly_payment,omitempty"`
	RemainingTermMonths *int               `json:"remaining_term_months,omitempty"`
	AskingPrice         *int64             `json:"asking_price,omitempty"`
	Yield               *decimal.Decimal   `json:"yield,omitempty"`
}

func (p UpdateParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty, validation.Length(3, 200)),
		validation.Field(&p.PerformanceStatus, validation.NilOrNotEmpty, validation.In(anySlice(PerformanceStatuses)...)),
		validation.Field(&p.PropertyValue, validation.Min(int64(0))),
		validation.Field(&p.UnpaidBalance, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&p.MonthlyPayment, validation.Min(int64(0))),
		validation.Field(&p.RemainingTermMonths, validation.Min(0), validation.Max(600)),
		validation.Field(&p.AskingPrice, validation.NilOrNotEmpty, validation.Min(int64(1))),
	)
}

// Update edits a listing's terms. Only the owner may edit, and only before a
// deal is in progress. Any edit sends the listing back to verification.
func (s *Service) Update(ctx context.Context, seller auth.Session, id uuid.UUID, params UpdateParams) (*Listing, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	if !l.OwnedBy(seller.UserID) {
		return nil, ErrNotOwner
	}

	if l.Status != StatusDraft && l.Status != StatusActive {
		return nil, ErrNotEditable
	}

	if params.Title != nil {
		l.Title = strings.TrimSpace(*params.Title)
	}

	if params.Description != nil {
		l.Description = *params.Description
	}

	if params.PerformanceStatus != nil {
		l.PerformanceStatus = *params.PerformanceStatus
	}

	if params.PropertyValue != nil {
		l.PropertyValue = *params.PropertyValue
	}

	if params.UnpaidBalance != nil {
		l.UnpaidBalance = *params.UnpaidBalance
	}

	if params.InterestRate != nil {
		l.InterestRate = *params.InterestRate
	}

	if params.MonthlyPayment != nil {
		l.MonthlyPayment = *params.MonthlyPayment
	}

	if params.RemainingTermMonths != nil {
		l.RemainingTermMonths = *params.RemainingTermMonths
	}

	if params.AskingPrice != nil {
		l.AskingPrice = *params.AskingPrice
	}

	switch {
	case params.Yield != nil:
		l.Yield = *params.Yield
	case params.AskingPrice != nil || params.MonthlyPayment != nil:
		l.Yield = CurrentYield(l.MonthlyPayment, l.AskingPrice)
	}

	l.VerificationStatus = VerificationPending
	l.VerificationNote = ""

	if err := s.repo.UpdateListing(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

// sellerTransitions lists the status moves an owner may make. Pending and sold
// are driven by transactions only.
var sellerTransitions = map[Status][]Status{
	StatusDraft:   {StatusActive, StatusExpired},
	StatusActive:  {StatusDraft, StatusExpired},
	StatusExpired: {StatusDraft, StatusActive},
}

// SetStatus changes the sale lifecycle on behalf of the owner or an admin.
// Nobody may mark a listing sold directly: that only happens when a
// transaction completes.
func (s *Service) SetStatus(ctx context.Context, actor auth.Session, id uuid.UUID, status Status) (*Listing, error) {
	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	isAdmin := actor.Can(auth.CapReview)
	if !l.OwnedBy(actor.UserID) && !isAdmin {
		return nil, ErrNotOwner
	}

	if status == StatusSold || status == StatusPending {
		return nil, ErrStatusTransition
	}

	allowed := sellerTransitions[l.Status]
	if isAdmin && l.Status != StatusPending && l.Status != StatusSold {
		allowed = []Status{StatusDraft, StatusActive, StatusExpired}
	}

	if !containsStatus(allowed, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrStatusTransition, l.Status, status)
	}

	wasPublic := l.AcceptsInquiries()

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	l.Status = status
	if !wasPublic && l.AcceptsInquiries() {
		s.published(ctx, l)
	}

	return l, nil
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}

// Review records the admin verification decision.
func (s *Service) Review(ctx context.Context, admin auth.Session, id uuid.UUID, decision VerificationStatus, note string) (*Listing, error) {
	if err := admin.Require(auth.CapReview); err != nil {
		return nil, err
	}

	if decision != VerificationVerified && decision != VerificationRejected {
		return nil, validation.Errors{"decision": validation.NewError("validation_in_invalid", "must be verified or rejected")}
	}

	if decision == VerificationRejected && strings.TrimSpace(note) == "" {
		return nil, validation.Errors{"note": validation.ErrRequired}
	}

	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	wasPublic := l.AcceptsInquiries()

	if err := s.repo.UpdateVerification(ctx, id, decision, note); err != nil {
		return nil, err
	}

	l.VerificationStatus = decision
	l.VerificationNote = note

	events.Emit(ctx, s.publisher, events.SubjectListingReviewed, map[string]any{
		"listing_id": l.ID,
		"seller_id":  l.SellerID,
		"decision":   decision,
		"note":       note,
	})

	if !wasPublic && l.AcceptsInquiries() {
		s.published(ctx, l)
	}

	return l, nil
}

func (s *Service) published(ctx context.Context, l *Listing) {
	if s.onPublish != nil {
		s.onPublish(ctx, l)
	}
}

// RecordInquiry bumps the inquiry counter.
func (s *Service) RecordInquiry(ctx context.Context, id uuid.UUID) error {
	return s.repo.IncrementInquiries(ctx, id)
}

// Counters are the monotonic engagement counters on a listing.
type Counters struct {
	Views     int64 `json:"view_count"`
	Favorites int64 `json:"favorite_count"`
	Inquiries int64 `json:"inquiry_count"`
}

// AdjustCounters overwrites the engagement counters. This is the only path
// that may lower them.
func (s *Service) AdjustCounters(ctx context.Context, admin auth.Session, id uuid.UUID, c Counters) (*Listing, error) {
	if err := admin.Require(auth.CapReview); err != nil {
		return nil, err
	}

	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Views, validation.Min(int64(0))),
		validation.Field(&c.Favorites, validation.Min(int64(0))),
		validation.Field(&c.Inquiries, validation.Min(int64(0))),
	); err != nil {
		return nil, err
	}

	if err := s.repo.SetCounters(ctx, id, c); err != nil {
		return nil, err
	}

	return s.repo.GetListing(ctx, id)
}

// AddFavorite saves a listing for the user. The favorite counter moves at
// most once per user and listing.
func (s *Service) AddFavorite(ctx context.Context, viewer auth.Session, id uuid.UUID) error {
	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return err
	}

	if !l.VisibleTo(viewer) {
		return ErrNotFound
	}

	_, err = s.repo.AddFavorite(ctx, viewer.UserID, id)

	return err
}

func (s *Service) RemoveFavorite(ctx context.Context, viewer auth.Session, id uuid.UUID) error {
	return s.repo.RemoveFavorite(ctx, viewer.UserID, id)
}

func (s *Service) ListFavorites(ctx context.Context, viewer auth.Session) ([]*Listing, error) {
	listings, err := s.repo.ListFavorites(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}

	visible := listings[:0]
	for _, l := range listings {
		if l.VisibleTo(viewer) {
			visible = append(visible, l)
		}
	}

	return visible, nil
}

type ImportResult struct {
	Imported  []*Listing
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Listing
}

type dupKey struct {
	Address       string
	Zip           string
	UnpaidBalance int64
}

func keyOf(address, zip string, upb int64) dupKey {
	return dupKey{
		Address:       strings.ToLower(strings.Join(strings.Fields(address), " ")),
		Zip:           strings.TrimSpace(zip),
		UnpaidBalance: upb,
	}
}

// ImportBatch creates listings from a loan tape. When any row matches an
// existing listing of the same seller (address, zip and unpaid balance) nothing
// is written and the conflicts are returned for confirmation.
func (s *Service) ImportBatch(ctx context.Context, seller auth.Session, params []CreateParams) (*ImportResult, error) {
	if err := seller.Require(auth.CapSell); err != nil {
		return nil, err
	}

	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	if err := validateBatch(params); err != nil {
		return nil, err
	}

	itx, err := s.repo.BeginImport(ctx, seller.UserID)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, seller.UserID, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Listing, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.Address, d.Zip, d.UnpaidBalance)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[keyOf(p.Address, p.Zip, p.UnpaidBalance)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	listings := paramsToListings(seller.UserID, newParams)
	if err := itx.CreateListings(ctx, listings); err != nil {
		return nil, fmt.Errorf("create listings: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: listings}, nil
}

// CreateBatch writes confirmed tape rows without duplicate checks.
func (s *Service) CreateBatch(ctx context.Context, seller auth.Session, params []CreateParams) ([]*Listing, error) {
	if err := seller.Require(auth.CapSell); err != nil {
		return nil, err
	}

	if len(params) == 0 {
		return nil, nil
	}

	if err := validateBatch(params); err != nil {
		return nil, err
	}

	itx, err := s.repo.BeginImport(ctx, seller.UserID)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	listings := paramsToListings(seller.UserID, params)
	if err := itx.CreateListings(ctx, listings); err != nil {
		return nil, fmt.Errorf("create listings: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return listings, nil
}

func validateBatch(params []CreateParams) error {
	errs := validation.Errors{}

	for i, p := range params {
		if err := p.Validate(); err != nil {
			errs[fmt.Sprintf("rows[%d]", i)] = err
		}
	}

	return errs.Filter()
}

func paramsToListings(sellerID uuid.UUID, params []CreateParams) []*Listing {
	listings := make([]*Listing, len(params))
	for i, p := range params {
		listings[i] = p.toListing(sellerID)
	}

	return listings
}
