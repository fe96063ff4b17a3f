package listing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/events"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

var (
	seller   = auth.Session{UserID: uuid.New(), Email: "seller@example.com", Role: auth.RoleSeller}
	investor = auth.Session{UserID: uuid.New(), Email: "investor@example.com", Role: auth.RoleInvestor}
	admin    = auth.Session{UserID: uuid.New(), Email: "admin@example.com", Role: auth.RoleAdmin}
)

func validParams() listing.CreateParams {
	return listing.CreateParams{
		Title:               "Performing first lien, Austin TX",
		NoteType:            listing.NoteTypeMortgage,
		LienPosition:        1,
		PerformanceStatus:   listing.PerformancePerforming,
		PropertyType:        listing.PropertySingleFamily,
		Address:             "12 Elm Street",
		City:                "Austin",
		State:               "tx",
		Zip:                 "78701",
		PropertyValue:       320_000_00,
		OriginalBalance:     240_000_00,
		UnpaidBalance:       198_500_00,
		InterestRate:        decimal.RequireFromString("6.5"),
		MonthlyPayment:      1_250_00,
		RemainingTermMonths: 280,
		AskingPrice:         150_000_00,
	}
}

func activeListing(owner uuid.UUID) *listing.Listing {
	return &listing.Listing{
		ID:                 uuid.New(),
		SellerID:           owner,
		Title:              "Performing first lien",
		Address:            "12 Elm Street",
		Zip:                "78701",
		UnpaidBalance:      198_500_00,
		AskingPrice:        150_000_00,
		Status:             listing.StatusActive,
		VerificationStatus: listing.VerificationVerified,
		CreatedAt:          time.Now(),
	}
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name      string
		session   auth.Session
		params    func() listing.CreateParams
		setupMock func(m *listing.MockRepository)
		wantErr   error
		check     func(t *testing.T, l *listing.Listing)
	}{
		{
			name:    "Success",
			session: seller,
			params:  validParams,
			setupMock: func(m *listing.MockRepository) {
				m.EXPECT().
					CreateListing(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *listing.Listing) error {
						l.ID = uuid.New()
						return nil
					})
			},
			check: func(t *testing.T, l *listing.Listing) {
				assert.Equal(t, seller.UserID, l.SellerID)
				assert.Equal(t, "TX", l.State)
				assert.Equal(t, listing.StatusDraft, l.Status)
				assert.Equal(t, listing.VerificationPending, l.VerificationStatus)
				assert.Equal(t, "10", l.Yield.String())
			},
		},
		{
			name:    "PublishStartsActiveButUnverified",
			session: seller,
			params: func() listing.CreateParams {
				p := validParams()
				p.Publish = true
				p.Yield = decimal.RequireFromString("11.25")
				return p
			},
			setupMock: func(m *listing.MockRepository) {
				m.EXPECT().CreateListing(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, l *listing.Listing) {
				assert.Equal(t, listing.StatusActive, l.Status)
				assert.False(t, l.IsPublic())
				assert.Equal(t, "11.25", l.Yield.String())
			},
		},
		{
			name:    "InvestorCannotSell",
			session: investor,
			params:  validParams,
			wantErr: apperr.ErrForbidden,
		},
		{
			name:    "InvalidParams",
			session: seller,
			params: func() listing.CreateParams {
				p := validParams()
				p.NoteType = "bond"
				p.AskingPrice = 0
				return p
			},
			wantErr: apperr.ErrInvalid,
		},
		{
			name:    "RepoError",
			session: seller,
			params:  validParams,
			setupMock: func(m *listing.MockRepository) {
				m.EXPECT().CreateListing(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := listing.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := listing.NewService(repo, events.Nop{})
			got, err := svc.Create(context.Background(), tt.session, tt.params())

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)

				switch {
				case errors.Is(tt.wantErr, apperr.ErrInvalid):
					var verrs validation.Errors
					assert.ErrorAs(t, err, &verrs)
				case errors.Is(tt.wantErr, apperr.ErrForbidden):
					assert.ErrorIs(t, err, apperr.ErrForbidden)
				}

				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestService_Get(t *testing.T) {
	tests := []struct {
		name      string
		viewer    auth.Session
		listing   func() *listing.Listing
		wantViews bool
		wantErr   error
	}{
		{
			name:      "PublicListingCountsView",
			viewer:    investor,
			listing:   func() *listing.Listing { return activeListing(seller.UserID) },
			wantViews: true,
		},
		{
			name:    "OwnerReadDoesNotCount",
			viewer:  seller,
			listing: func() *listing.Listing { return activeListing(seller.UserID) },
		},
		{
			name:   "DraftHiddenFromInvestor",
			viewer: investor,
			listing: func() *listing.Listing {
				l := activeListing(seller.UserID)
				l.Status = listing.StatusDraft
				return l
			},
			wantErr: listing.ErrNotFound,
		},
		{
			name:   "UnverifiedHiddenFromInvestor",
			viewer: investor,
			listing: func() *listing.Listing {
				l := activeListing(seller.UserID)
				l.VerificationStatus = listing.VerificationPending
				return l
			},
			wantErr: listing.ErrNotFound,
		},
		{
			name:   "AdminSeesDraft",
			viewer: admin,
			listing: func() *listing.Listing {
				l := activeListing(seller.UserID)
				l.Status = listing.StatusDraft
				return l
			},
			wantViews: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := listing.NewMockRepository(ctrl)

			l := tt.listing()
			repo.EXPECT().GetListing(gomock.Any(), l.ID).Return(l, nil)

			if tt.wantViews {
				repo.EXPECT().IncrementViews(gomock.Any(), l.ID).Return(nil)
			}

			svc := listing.NewService(repo, events.Nop{})
			got, err := svc.Get(context.Background(), tt.viewer, l.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)

			if tt.wantViews {
				assert.EqualValues(t, 1, got.ViewCount)
			} else {
				assert.EqualValues(t, 0, got.ViewCount)
			}
		})
	}
}

func TestService_List_ForcesPublicForBuyers(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := listing.NewMockRepository(ctrl)
	svc := listing.NewService(repo, events.Nop{})

	repo.EXPECT().
		ListListings(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f listing.ListFilter) ([]*listing.Listing, int, error) {
			assert.True(t, f.PublicOnly)
			assert.Equal(t, 50, f.Limit)
			assert.Equal(t, listing.SortNewest, f.Sort)
			assert.Equal(t, []string{"TX"}, f.States)

			return nil, 0, nil
		})

	_, err := svc.List(context.Background(), investor, listing.ListFilter{
		Criteria: listing.Criteria{States: []string{"tx"}},
	})
	require.NoError(t, err)

	repo.EXPECT().
		ListListings(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f listing.ListFilter) ([]*listing.Listing, int, error) {
			assert.False(t, f.PublicOnly)
			return nil, 0, nil
		})

	own := seller.UserID
	_, err = svc.List(context.Background(), seller, listing.ListFilter{SellerID: &own})
	require.NoError(t, err)
}

func TestService_List_InvalidCriteria(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := listing.NewService(listing.NewMockRepository(ctrl), events.Nop{})

	minPrice, maxPrice := int64(500), int64(100)
	_, err := svc.List(context.Background(), investor, listing.ListFilter{
		Criteria: listing.Criteria{MinPrice: &minPrice, MaxPrice: &maxPrice},
	})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "max_price")
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := listing.NewMockRepository(ctrl)
	svc := listing.NewService(repo, events.Nop{})

	l := activeListing(seller.UserID)
	l.MonthlyPayment = 1_000_00

	repo.EXPECT().GetListing(gomock.Any(), l.ID).Return(l, nil)
	repo.EXPECT().UpdateListing(gomock.Any(), l).Return(nil)

	got, err := svc.Update(context.Background(), seller, l.ID, listing.UpdateParams{
		AskingPrice: new(int64(120_000_00)),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 120_000_00, got.AskingPrice)
	assert.Equal(t, "10", got.Yield.String())
	assert.Equal(t, listing.VerificationPending, got.VerificationStatus)

	pending := activeListing(seller.UserID)
	pending.Status = listing.StatusPending
	repo.EXPECT().GetListing(gomock.Any(), pending.ID).Return(pending, nil)

	_, err = svc.Update(context.Background(), seller, pending.ID, listing.UpdateParams{Title: new("Renamed note")})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	other := activeListing(uuid.New())
	repo.EXPECT().GetListing(gomock.Any(), other.ID).Return(other, nil)

	_, err = svc.Update(context.Background(), seller, other.ID, listing.UpdateParams{Title: new("Renamed note")})
	assert.ErrorIs(t, err, listing.ErrNotOwner)
}

func TestService_SetStatus(t *testing.T) {
	tests := []struct {
		name      string
		actor     auth.Session
		from      listing.Status
		to        listing.Status
		wantErr   error
		published bool
	}{
		{name: "DraftToActive", actor: seller, from: listing.StatusDraft, to: listing.StatusActive, published: true},
		{name: "ActiveToExpired", actor: seller, from: listing.StatusActive, to: listing.StatusExpired},
		{name: "SoldNeverDirect", actor: admin, from: listing.StatusActive, to: listing.StatusSold, wantErr: listing.ErrStatusTransition},
		{name: "PendingNeverDirect", actor: seller, from: listing.StatusActive, to: listing.StatusPending, wantErr: listing.ErrStatusTransition},
		{name: "PendingIsLocked", actor: admin, from: listing.StatusPending, to: listing.StatusActive, wantErr: listing.ErrStatusTransition},
		{name: "NotOwner", actor: auth.Session{UserID: uuid.New(), Role: auth.RoleSeller}, from: listing.StatusDraft, to: listing.StatusActive, wantErr: listing.ErrNotOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := listing.NewMockRepository(ctrl)
			svc := listing.NewService(repo, events.Nop{})

			var hooked []uuid.UUID
			svc.OnPublish(func(_ context.Context, l *listing.Listing) { hooked = append(hooked, l.ID) })

			l := activeListing(seller.UserID)
			l.Status = tt.from
			repo.EXPECT().GetListing(gomock.Any(), l.ID).Return(l, nil)

			if tt.wantErr == nil {
				repo.EXPECT().UpdateStatus(gomock.Any(), l.ID, tt.to).Return(nil)
			}

			got, err := svc.SetStatus(context.Background(), tt.actor, l.ID, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)

			if tt.published {
				assert.Equal(t, []uuid.UUID{l.ID}, hooked)
			} else {
				assert.Empty(t, hooked)
			}
		})
	}
}

func TestService_Review(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := listing.NewMockRepository(ctrl)
	rec := &events.Recorder{}
	svc := listing.NewService(repo, rec)

	var hooked int
	svc.OnPublish(func(context.Context, *listing.Listing) { hooked++ })

	l := activeListing(seller.UserID)
	l.VerificationStatus = listing.VerificationPending

	repo.EXPECT().GetListing(gomock.Any(), l.ID).Return(l, nil)
	repo.EXPECT().UpdateVerification(gomock.Any(), l.ID, listing.VerificationVerified, "").Return(nil)

	got, err := svc.Review(context.Background(), admin, l.ID, listing.VerificationVerified, "")
	require.NoError(t, err)
	assert.True(t, got.IsPublic())
	assert.Equal(t, 1, hooked)
	assert.Equal(t, []string{events.SubjectListingReviewed}, rec.Subjects())

	_, err = svc.Review(context.Background(), seller, l.ID, listing.VerificationVerified, "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Review(context.Background(), admin, l.ID, listing.VerificationRejected, " ")

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "note")
}

func TestService_AdjustCounters(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := listing.NewMockRepository(ctrl)
	svc := listing.NewService(repo, events.Nop{})

	l := activeListing(seller.UserID)
	counters := listing.Counters{Views: 10, Favorites: 2, Inquiries: 1}

	_, err := svc.AdjustCounters(context.Background(), seller, l.ID, counters)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.AdjustCounters(context.Background(), admin, l.ID, listing.Counters{Views: -1})
	assert.Error(t, err)

	repo.EXPECT().SetCounters(gomock.Any(), l.ID, counters).Return(nil)
	repo.EXPECT().GetListing(gomock.Any(), l.ID).Return(l, nil)

	_, err = svc.AdjustCounters(context.Background(), admin, l.ID, counters)
	require.NoError(t, err)
}

func TestService_AddFavorite_HiddenListing(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := listing.NewMockRepository(ctrl)
	svc := listing.NewService(repo, events.Nop{})

	l := activeListing(seller.UserID)
	l.Status = listing.StatusDraft
	repo.EXPECT().GetListing(gomock.Any(), l.ID).Return(l, nil)

	err := svc.AddFavorite(context.Background(), investor, l.ID)
	assert.ErrorIs(t, err, listing.ErrNotFound)
}

func TestService_ImportBatch(t *testing.T) {
	existing := activeListing(seller.UserID)

	tests := []struct {
		name          string
		params        []listing.CreateParams
		duplicates    []*listing.Listing
		wantImported  int
		wantConflicts int
	}{
		{
			name:         "AllNew",
			params:       []listing.CreateParams{validParams()},
			wantImported: 1,
		},
		{
			name: "ConflictBlocksWrite",
			params: func() []listing.CreateParams {
				dup := validParams()
				dup.Address = "12  elm street"
				fresh := validParams()
				fresh.Address = "99 Oak Avenue"
				return []listing.CreateParams{dup, fresh}
			}(),
			duplicates:    []*listing.Listing{existing},
			wantConflicts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := listing.NewMockRepository(ctrl)
			itx := listing.NewMockImportTx(ctrl)
			svc := listing.NewService(repo, events.Nop{})

			repo.EXPECT().BeginImport(gomock.Any(), seller.UserID).Return(itx, nil)
			itx.EXPECT().FindDuplicates(gomock.Any(), seller.UserID, tt.params).Return(tt.duplicates, nil)
			itx.EXPECT().Rollback().Return(nil)

			if tt.wantConflicts == 0 {
				itx.EXPECT().CreateListings(gomock.Any(), gomock.Len(tt.wantImported)).Return(nil)
				itx.EXPECT().Commit().Return(nil)
			}

			res, err := svc.ImportBatch(context.Background(), seller, tt.params)
			require.NoError(t, err)
			assert.Len(t, res.Imported, tt.wantImported)
			assert.Len(t, res.Conflicts, tt.wantConflicts)

			if tt.wantConflicts > 0 {
				assert.Len(t, res.New, 1)
				assert.Equal(t, existing.ID, res.Conflicts[0].Existing.ID)
			}
		})
	}
}

func TestService_ImportBatch_ValidatesRows(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := listing.NewService(listing.NewMockRepository(ctrl), events.Nop{})

	bad := validParams()
	bad.State = "Texas"

	_, err := svc.ImportBatch(context.Background(), seller, []listing.CreateParams{validParams(), bad})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "rows[1]")
}
