package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/events"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=search
type Repository interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (*Preferences, error)
	PutPreferences(ctx context.Context, p *Preferences) error
	CreateSearch(ctx context.Context, s *SavedSearch) error
	GetSearch(ctx context.Context, id uuid.UUID) (*SavedSearch, error)
	ListSearches(ctx context.Context, userID uuid.UUID) ([]*SavedSearch, error)
	ListNotifying(ctx context.Context) ([]*SavedSearch, error)
	DeleteSearch(ctx context.Context, id uuid.UUID) error
}

// Listings runs criteria against the marketplace on behalf of a viewer.
type Listings interface {
	List(ctx context.Context, viewer auth.Session, filter listing.ListFilter) (*listing.Page, error)
}

type Service struct {
	repo      Repository
	listings  Listings
	publisher events.Publisher
}

func NewService(repo Repository, listings Listings, publisher events.Publisher) *Service {
	return &Service{repo: repo, listings: listings, publisher: publisher}
}

// GetPreferences returns empty criteria for an investor who never saved any.
func (s *Service) GetPreferences(ctx context.Context, viewer auth.Session) (*Preferences, error) {
	p, err := s.repo.GetPreferences(ctx, viewer.UserID)
	if errors.Is(err, ErrPreferencesNotFound) {
		return &Preferences{UserID: viewer.UserID}, nil
	}

	return p, err
}

func (s *Service) PutPreferences(ctx context.Context, viewer auth.Session, criteria listing.Criteria) (*Preferences, error) {
	criteria = criteria.Normalize()
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	p := &Preferences{UserID: viewer.UserID, Criteria: criteria}
	if err := s.repo.PutPreferences(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

type SaveParams struct {
	Name     string           `json:"name"`
	Criteria listing.Criteria `json:"criteria"`
	Notify   bool             `json:"notify"`
}

func (p SaveParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&p.Criteria),
	)
}

func (s *Service) Save(ctx context.Context, viewer auth.Session, params SaveParams) (*SavedSearch, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Criteria = params.Criteria.Normalize()

	if err := params.Validate(); err != nil {
		return nil, err
	}

	saved := &SavedSearch{
		UserID:   viewer.UserID,
		Name:     params.Name,
		Criteria: params.Criteria,
		Notify:   params.Notify,
	}
	if err := s.repo.CreateSearch(ctx, saved); err != nil {
		return nil, err
	}

	return saved, nil
}

func (s *Service) List(ctx context.Context, viewer auth.Session) ([]*SavedSearch, error) {
	return s.repo.ListSearches(ctx, viewer.UserID)
}

// owned hides other users' searches behind ErrNotFound.
func (s *Service) owned(ctx context.Context, viewer auth.Session, id uuid.UUID) (*SavedSearch, error) {
	saved, err := s.repo.GetSearch(ctx, id)
	if err != nil {
		return nil, err
	}

	if saved.UserID != viewer.UserID {
		return nil, ErrNotFound
	}

	return saved, nil
}

func (s *Service) Delete(ctx context.Context, viewer auth.Session, id uuid.UUID) error {
	if _, err := s.owned(ctx, viewer, id); err != nil {
		return err
	}

	return s.repo.DeleteSearch(ctx, id)
}

// Run executes a saved search against the listings the viewer can see.
func (s *Service) Run(ctx context.Context, viewer auth.Session, id uuid.UUID, sort listing.SortField, limit, offset int) (*listing.Page, error) {
	saved, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	return s.listings.List(ctx, viewer, listing.ListFilter{
		Criteria:   saved.Criteria,
		PublicOnly: true,
		Sort:       sort,
		Limit:      limit,
		Offset:     offset,
	})
}

// Matches returns the notifying searches a public listing satisfies. The
// seller's own searches never match their listing.
func (s *Service) Matches(ctx context.Context, l *listing.Listing) ([]*SavedSearch, error) {
	if !l.IsPublic() {
		return nil, nil
	}

	searches, err := s.repo.ListNotifying(ctx)
	if err != nil {
		return nil, err
	}

	var out []*SavedSearch

	for _, saved := range searches {
		if saved.UserID != l.SellerID && saved.Criteria.Matches(l) {
			out = append(out, saved)
		}
	}

	return out, nil
}

// MatchListing publishes search.matched for every saved search the listing
// satisfies. It is installed as the listing publish hook, so failures are
// logged rather than returned.
func (s *Service) MatchListing(ctx context.Context, l *listing.Listing) {
	matched, err := s.Matches(ctx, l)
	if err != nil {
		slog.Error("failed to match listing against saved searches", "listing_id", l.ID, "error", err)
		return
	}

	for _, saved := range matched {
		events.Emit(ctx, s.publisher, events.SubjectSearchMatched, map[string]any{
			"search_id":  saved.ID,
			"user_id":    saved.UserID,
			"listing_id": l.ID,
			"name":       saved.Name,
		})
	}
}
