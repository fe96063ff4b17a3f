package inquiry_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	httpinquiry "github.com/MrJamesThe3rd/notemarket/internal/http/inquiry"
	"github.com/MrJamesThe3rd/notemarket/internal/inquiry"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

type fixture struct {
	repo     *inquiry.MockRepository
	listings *inquiry.MockListings
	deals    *inquiry.MockDealOpener
	router   chi.Router
	session  auth.Session
}

func newFixture(t *testing.T, session auth.Session) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:     inquiry.NewMockRepository(ctrl),
		listings: inquiry.NewMockListings(ctrl),
		deals:    inquiry.NewMockDealOpener(ctrl),
		router:   chi.NewRouter(),
		session:  session,
	}

	svc := inquiry.NewService(f.repo, f.listings, nil, 72*time.Hour)
	svc.SetDealOpener(f.deals)

	f.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), f.session)))
		})
	})
	httpinquiry.NewHandler(svc).Routes(f.router)

	return f
}

func (f *fixture) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))

	var env map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &env)

	return rec, env
}

func openInquiry(buyer, seller uuid.UUID) *inquiry.Inquiry {
	return &inquiry.Inquiry{
		ID:          uuid.New(),
		ListingID:   uuid.New(),
		BuyerID:     buyer,
		SellerID:    seller,
		OfferAmount: new(int64(150_000_00)),
		Status:      inquiry.StatusPending,
		Awaiting:    inquiry.PartySeller,
		ExpiresAt:   time.Now().Add(24 * time.Hour),
		CreatedAt:   time.Now(),
	}
}

func TestRespond_AcceptReturnsTransaction(t *testing.T) {
	seller := auth.Session{UserID: uuid.New(), Role: auth.RoleSeller}
	f := newFixture(t, seller)
	i := openInquiry(uuid.New(), seller.UserID)
	txID := uuid.New()

	f.repo.EXPECT().GetInquiry(gomock.Any(), i.ID).Return(i, nil)
	f.listings.EXPECT().Lookup(gomock.Any(), i.ListingID).Return(&listing.Listing{ID: i.ListingID, Status: listing.StatusActive}, nil)
	f.repo.EXPECT().Transition(gomock.Any(), gomock.Any(), inquiry.StatusPending, inquiry.PartySeller).Return(nil)
	f.deals.EXPECT().OpenDeal(gomock.Any(), i.ID).Return(txID, nil)

	rec, env := f.do(http.MethodPost, "/inquiries/"+i.ID.String()+"/respond", `{"decision":"accept"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	data := env["data"].(map[string]any)
	assert.Equal(t, txID.String(), data["transaction_id"])
	assert.Equal(t, "accepted", data["inquiry"].(map[string]any)["status"])
}

func TestRespond_AcceptOnSoldListingIsConflict(t *testing.T) {
	seller := auth.Session{UserID: uuid.New(), Role: auth.RoleSeller}
	f := newFixture(t, seller)
	i := openInquiry(uuid.New(), seller.UserID)

	f.repo.EXPECT().GetInquiry(gomock.Any(), i.ID).Return(i, nil)
	f.listings.EXPECT().Lookup(gomock.Any(), i.ListingID).Return(&listing.Listing{ID: i.ListingID, Status: listing.StatusSold}, nil)

	rec, env := f.do(http.MethodPost, "/inquiries/"+i.ID.String()+"/respond", `{"decision":"accept"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, env["message"], "no longer for sale")
}

func TestRespond_OutOfTurnIsConflict(t *testing.T) {
	buyer := auth.Session{UserID: uuid.New(), Role: auth.RoleInvestor}
	f := newFixture(t, buyer)
	i := openInquiry(buyer.UserID, uuid.New())

	f.repo.EXPECT().GetInquiry(gomock.Any(), i.ID).Return(i, nil)

	rec, env := f.do(http.MethodPost, "/inquiries/"+i.ID.String()+"/respond", `{"decision":"reject"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, env["message"], "awaiting the other party")
}

func TestRespond_CounterNeedsAmount(t *testing.T) {
	seller := auth.Session{UserID: uuid.New(), Role: auth.RoleSeller}
	f := newFixture(t, seller)

	rec, env := f.do(http.MethodPost, "/inquiries/"+uuid.NewString()+"/respond", `{"decision":"counter"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env["errors"], "counter_amount")
}

func TestList_SellerFilter(t *testing.T) {
	seller := auth.Session{UserID: uuid.New(), Role: auth.RoleSeller}
	f := newFixture(t, seller)
	listingID := uuid.New()

	f.repo.EXPECT().
		ListInquiries(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, filter inquiry.ListFilter) ([]*inquiry.Inquiry, error) {
			require.NotNil(t, filter.SellerID)
			assert.Equal(t, seller.UserID, *filter.SellerID)
			require.NotNil(t, filter.ListingID)
			assert.Equal(t, listingID, *filter.ListingID)

			return []*inquiry.Inquiry{openInquiry(uuid.New(), seller.UserID)}, nil
		})

	rec, env := f.do(http.MethodGet, "/inquiries?as=seller&listing_id="+listingID.String(), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env["data"], 1)
}

func TestList_BadRole(t *testing.T) {
	f := newFixture(t, auth.Session{UserID: uuid.New(), Role: auth.RoleInvestor})

	rec, _ := f.do(http.MethodGet, "/inquiries?as=lender", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
