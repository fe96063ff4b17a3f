package importcsv_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/http/importcsv"
	"github.com/MrJamesThe3rd/notemarket/internal/importer"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

const tapeCSV = `Title,Address,City,State,Zip,Note Type,Lien Position,Performance,Property Type,Property Value,Unpaid Balance,Interest Rate,Monthly Payment,Asking Price
Austin note,12 Elm St,Austin,TX,78701,Mortgage,1,Performing,SFR,310000,"212,450.17",7.25%,"1,705.44","175,000"
Dayton note,9 Oak Ave,Dayton,OH,45402,Mortgage,2,Performing,SFR,98000,"41,200.00",8.99%,400,"18,500"
`

func upload(t *testing.T, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "tape.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/listings/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func newRouter(repo listing.Repository, session auth.Session) chi.Router {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithSession(req.Context(), session)))
		})
	})
	importcsv.NewHandler(importer.NewService(), listing.NewService(repo, nil)).Routes(r)

	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	return env
}

func TestImport_CreatesListings(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := listing.NewMockRepository(ctrl)
	itx := listing.NewMockImportTx(ctrl)
	seller := auth.Session{UserID: uuid.New(), Role: auth.RoleSeller}

	repo.EXPECT().BeginImport(gomock.Any(), seller.UserID).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), seller.UserID, gomock.Len(2)).Return(nil, nil)
	itx.EXPECT().CreateListings(gomock.Any(), gomock.Len(2)).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	rec := httptest.NewRecorder()
	newRouter(repo, seller).ServeHTTP(rec, upload(t, tapeCSV))

	require.Equal(t, http.StatusCreated, rec.Code)

	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["imported"])
}

func TestImport_ConflictsAreReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := listing.NewMockRepository(ctrl)
	itx := listing.NewMockImportTx(ctrl)
	seller := auth.Session{UserID: uuid.New(), Role: auth.RoleSeller}
	existing := &listing.Listing{
		ID:            uuid.New(),
		SellerID:      seller.UserID,
		Address:       "12 Elm St",
		Zip:           "78701",
		UnpaidBalance: 212_450_17,
	}

	repo.EXPECT().BeginImport(gomock.Any(), seller.UserID).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), seller.UserID, gomock.Any()).Return([]*listing.Listing{existing}, nil)
	itx.EXPECT().Rollback().Return(nil)

	rec := httptest.NewRecorder()
	newRouter(repo, seller).ServeHTTP(rec, upload(t, tapeCSV))

	require.Equal(t, http.StatusConflict, rec.Code)

	data := decode(t, rec)["data"].(map[string]any)
	assert.Len(t, data["new"], 1)
	require.Len(t, data["conflicts"], 1)

	conflict := data["conflicts"].([]any)[0].(map[string]any)
	assert.Equal(t, existing.ID.String(), conflict["existing"].(map[string]any)["id"])
}

func TestImport_BadTape(t *testing.T) {
	ctrl := gomock.NewController(t)
	seller := auth.Session{UserID: uuid.New(), Role: auth.RoleSeller}

	rec := httptest.NewRecorder()
	newRouter(listing.NewMockRepository(ctrl), seller).ServeHTTP(rec, upload(t, "foo,bar\n1,2\n"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImport_MissingFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	seller := auth.Session{UserID: uuid.New(), Role: auth.RoleSeller}

	req := httptest.NewRequest(http.MethodPost, "/listings/import", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	newRouter(listing.NewMockRepository(ctrl), seller).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirm_CreatesWithoutDuplicateCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := listing.NewMockRepository(ctrl)
	itx := listing.NewMockImportTx(ctrl)
	seller := auth.Session{UserID: uuid.New(), Role: auth.RoleSeller}

	repo.EXPECT().BeginImport(gomock.Any(), seller.UserID).Return(itx, nil)
	itx.EXPECT().CreateListings(gomock.Any(), gomock.Len(1)).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	body, _ := json.Marshal(map[string]any{"params": []map[string]any{{
		"title":              "Austin note",
		"note_type":          "mortgage",
		"lien_position":      1,
		"performance_status": "performing",
		"property_type":      "single_family",
		"address":            "12 Elm St",
		"city":               "Austin",
		"state":              "TX",
		"zip":                "78701",
		"unpaid_balance":     212_450_17,
		"interest_rate":      "7.25",
		"asking_price":       175_000_00,
	}}})

	req := httptest.NewRequest(http.MethodPost, "/listings/import/confirm", bytes.NewReader(body))

	rec := httptest.NewRecorder()
	newRouter(repo, seller).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["data"].(map[string]any)["imported"])
}
