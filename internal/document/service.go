package document

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=document
type Repository interface {
	CreateDocument(ctx context.Context, d *Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	ListDocuments(ctx context.Context, listingID uuid.UUID) ([]*Document, error)
	SetVerification(ctx context.Context, id uuid.UUID, status listing.VerificationStatus) error
	SetPublic(ctx context.Context, id uuid.UUID, public bool) error
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

type ListingLookup interface {
	Lookup(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
}

type Service struct {
	repo     Repository
	listings ListingLookup
}

func NewService(repo Repository, listings ListingLookup) *Service {
	return &Service{repo: repo, listings: listings}
}

type CreateParams struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	URL      string `json:"url"`
	IsPublic bool   `json:"is_public"`
}

func (p CreateParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.Kind, validation.Required, validation.In(
			KindNote, KindMortgage, KindTitle, KindPaymentHistory, KindAppraisal, KindOther,
		)),
		validation.Field(&p.URL, validation.Required, is.URL),
	)
}

// manages reports whether the session may curate the listing's documents.
func manages(s auth.Session, l *listing.Listing) bool {
	return l.OwnedBy(s.UserID) || s.Can(auth.CapReview)
}

func (s *Service) Create(ctx context.Context, uploader auth.Session, listingID uuid.UUID, params CreateParams) (*Document, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	l, err := s.listings.Lookup(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if !manages(uploader, l) {
		return nil, listing.ErrNotOwner
	}

	d := &Document{
		ListingID:          listingID,
		UploaderID:         uploader.UserID,
		Name:               strings.TrimSpace(params.Name),
		Kind:               params.Kind,
		URL:                params.URL,
		IsPublic:           params.IsPublic,
		VerificationStatus: listing.VerificationPending,
	}

	if err := s.repo.CreateDocument(ctx, d); err != nil {
		return nil, err
	}

	return d, nil
}

// List returns the documents of a listing the viewer is allowed to read.
func (s *Service) List(ctx context.Context, viewer auth.Session, listingID uuid.UUID) ([]*Document, error) {
	l, err := s.listings.Lookup(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if !l.VisibleTo(viewer) {
		return nil, listing.ErrNotFound
	}

	docs, err := s.repo.ListDocuments(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if manages(viewer, l) {
		return docs, nil
	}

	shared := make([]*Document, 0, len(docs))
	for _, d := range docs {
		if d.Shared() {
			shared = append(shared, d)
		}
	}

	return shared, nil
}

func (s *Service) Verify(ctx context.Context, admin auth.Session, id uuid.UUID, status listing.VerificationStatus) (*Document, error) {
	if err := admin.Require(auth.CapReview); err != nil {
		return nil, err
	}

	if err := validation.Validate(status, validation.Required,
		validation.In(listing.VerificationVerified, listing.VerificationRejected)); err != nil {
		return nil, validation.Errors{"status": err}
	}

	d, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetVerification(ctx, id, status); err != nil {
		return nil, err
	}

	d.VerificationStatus = status

	return d, nil
}

// Release makes a document public to buyers. It still needs verification
// before they can see it.
func (s *Service) Release(ctx context.Context, owner auth.Session, id uuid.UUID) (*Document, error) {
	d, _, err := s.managed(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetPublic(ctx, id, true); err != nil {
		return nil, err
	}

	d.IsPublic = true

	return d, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Session, id uuid.UUID) error {
	if _, _, err := s.managed(ctx, actor, id); err != nil {
		return err
	}

	return s.repo.DeleteDocument(ctx, id)
}

func (s *Service) managed(ctx context.Context, actor auth.Session, id uuid.UUID) (*Document, *listing.Listing, error) {
	d, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	l, err := s.listings.Lookup(ctx, d.ListingID)
	if err != nil {
		return nil, nil, err
	}

	if !manages(actor, l) {
		return nil, nil, listing.ErrNotOwner
	}

	return d, l, nil
}
