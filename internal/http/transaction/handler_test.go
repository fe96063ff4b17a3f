package transaction_test

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
	httptransaction "github.com/MrJamesThe3rd/notemarket/internal/http/transaction"
	"github.com/MrJamesThe3rd/notemarket/internal/inquiry"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/transaction"
)

type fixture struct {
	repo    *transaction.MockRepository
	uow     *transaction.MockUnitOfWork
	router  chi.Router
	session auth.Session
}

func newFixture(t *testing.T, session auth.Session) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:    transaction.NewMockRepository(ctrl),
		uow:     transaction.NewMockUnitOfWork(ctrl),
		router:  chi.NewRouter(),
		session: session,
	}

	f.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), f.session)))
		})
	})
	httptransaction.NewHandler(transaction.NewService(f.repo, nil)).Routes(f.router)

	return f
}

func (f *fixture) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))

	var env map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &env)

	return rec, env
}

func TestOpen_PendingInquiryIsConflict(t *testing.T) {
	buyer := auth.Session{UserID: uuid.New(), Role: auth.RoleInvestor}
	f := newFixture(t, buyer)
	inq := &inquiry.Inquiry{ID: uuid.New(), BuyerID: buyer.UserID, SellerID: uuid.New(), Status: inquiry.StatusPending}

	f.repo.EXPECT().Begin(gomock.Any()).Return(f.uow, nil)
	f.uow.EXPECT().LockInquiry(gomock.Any(), inq.ID).Return(inq, nil)
	f.uow.EXPECT().Rollback().Return(nil)

	rec, env := f.do(http.MethodPost, "/transactions", `{"inquiry_id":"`+inq.ID.String()+`"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, env["message"], "has not been accepted")
}

func TestOpen_ReturnsExistingTransaction(t *testing.T) {
	seller := auth.Session{UserID: uuid.New(), Role: auth.RoleSeller}
	f := newFixture(t, seller)
	inq := &inquiry.Inquiry{ID: uuid.New(), BuyerID: uuid.New(), SellerID: seller.UserID, Status: inquiry.StatusAccepted}
	existing := &transaction.Transaction{
		ID:           uuid.New(),
		InquiryID:    inq.ID,
		BuyerID:      inq.BuyerID,
		SellerID:     seller.UserID,
		Status:       transaction.StatusClosing,
		CurrentPhase: transaction.PhaseClosing,
	}

	f.repo.EXPECT().Begin(gomock.Any()).Return(f.uow, nil)
	f.uow.EXPECT().LockInquiry(gomock.Any(), inq.ID).Return(inq, nil)
	f.uow.EXPECT().FindByInquiry(gomock.Any(), inq.ID).Return(existing, nil)
	f.uow.EXPECT().Commit().Return(nil)
	f.uow.EXPECT().Rollback().Return(nil)

	rec, env := f.do(http.MethodPost, "/transactions", `{"inquiry_id":"`+inq.ID.String()+`"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, existing.ID.String(), env["data"].(map[string]any)["id"])
}

func TestOpen_MissingInquiryIDIsValidationError(t *testing.T) {
	buyer := auth.Session{UserID: uuid.New(), Role: auth.RoleInvestor}
	f := newFixture(t, buyer)

	for _, body := range []string{`{}`, `{"inquiry_id":"00000000-0000-0000-0000-000000000000"}`} {
		rec, env := f.do(http.MethodPost, "/transactions", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, env["errors"], "inquiry_id", body)
	}
}

func TestOpen_ListingTakenIsConflict(t *testing.T) {
	buyer := auth.Session{UserID: uuid.New(), Role: auth.RoleInvestor}
	f := newFixture(t, buyer)
	inq := &inquiry.Inquiry{ID: uuid.New(), ListingID: uuid.New(), BuyerID: buyer.UserID, SellerID: uuid.New(), Status: inquiry.StatusAccepted}

	f.repo.EXPECT().Begin(gomock.Any()).Return(f.uow, nil)
	f.uow.EXPECT().LockInquiry(gomock.Any(), inq.ID).Return(inq, nil)
	f.uow.EXPECT().FindByInquiry(gomock.Any(), inq.ID).Return(nil, transaction.ErrNotFound)
	f.uow.EXPECT().LockListing(gomock.Any(), inq.ListingID).Return(&transaction.ListingState{
		Status:      listing.StatusPending,
		AskingPrice: 175_000_00,
	}, nil)
	f.uow.EXPECT().Rollback().Return(nil)

	rec, env := f.do(http.MethodPost, "/transactions", `{"inquiry_id":"`+inq.ID.String()+`"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, env["message"], "no longer available")
}

func TestGet_StrangerSeesNotFound(t *testing.T) {
	stranger := auth.Session{UserID: uuid.New(), Role: auth.RoleInvestor}
	f := newFixture(t, stranger)
	tx := &transaction.Transaction{ID: uuid.New(), BuyerID: uuid.New(), SellerID: uuid.New()}

	f.repo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)

	rec, _ := f.do(http.MethodGet, "/transactions/"+tx.ID.String(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGet_Detail(t *testing.T) {
	buyer := auth.Session{UserID: uuid.New(), Role: auth.RoleInvestor}
	f := newFixture(t, buyer)
	tx := &transaction.Transaction{
		ID:           uuid.New(),
		BuyerID:      buyer.UserID,
		SellerID:     uuid.New(),
		Status:       transaction.StatusNegotiations,
		CurrentPhase: transaction.PhaseNegotiations,
		FinalAmount:  new(int64(165_000_00)),
	}
	tasks := transaction.DefaultChecklist(tx.ID)
	files := []*transaction.File{
		{ID: uuid.New(), Name: "Draft assignment", UploaderID: tx.SellerID},
		{ID: uuid.New(), Name: "Wire receipt", UploaderID: buyer.UserID},
	}
	evts := []*transaction.Event{{ID: uuid.New(), Type: transaction.EventInfo, Title: "Transaction opened", CreatedAt: time.Now()}}

	f.repo.EXPECT().GetTransaction(gomock.Any(), tx.ID).Return(tx, nil)
	f.repo.EXPECT().ListTasks(gomock.Any(), tx.ID).Return(tasks, nil)
	f.repo.EXPECT().ListFiles(gomock.Any(), tx.ID).Return(files, nil)
	f.repo.EXPECT().ListEvents(gomock.Any(), tx.ID).Return(evts, nil)

	rec, env := f.do(http.MethodGet, "/transactions/"+tx.ID.String(), "")

	require.Equal(t, http.StatusOK, rec.Code)

	data := env["data"].(map[string]any)
	assert.Equal(t, float64(165_000_00), data["final_amount"])
	assert.Len(t, data["tasks"], len(tasks))
	assert.Len(t, data["files"], 1, "only the buyer's own unreleased file is visible")
	assert.Len(t, data["events"], 1)
}

func TestListForUser_BadRole(t *testing.T) {
	f := newFixture(t, auth.Session{UserID: uuid.New(), Role: auth.RoleInvestor})

	rec, env := f.do(http.MethodGet, "/transactions/user?role=platform", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env["errors"], "role")
}

func TestListAll_RequiresAdmin(t *testing.T) {
	f := newFixture(t, auth.Session{UserID: uuid.New(), Role: auth.RoleSeller})

	rec, _ := f.do(http.MethodGet, "/transactions", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
