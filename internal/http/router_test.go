package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	marketHttp "github.com/MrJamesThe3rd/notemarket/internal/http"
	"github.com/MrJamesThe3rd/notemarket/internal/http/document"
	"github.com/MrJamesThe3rd/notemarket/internal/http/export"
	"github.com/MrJamesThe3rd/notemarket/internal/http/importcsv"
	"github.com/MrJamesThe3rd/notemarket/internal/http/inquiry"
	"github.com/MrJamesThe3rd/notemarket/internal/http/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/http/search"
	"github.com/MrJamesThe3rd/notemarket/internal/http/transaction"
	"github.com/MrJamesThe3rd/notemarket/internal/http/user"
	"github.com/MrJamesThe3rd/notemarket/internal/http/waitlist"
	"github.com/MrJamesThe3rd/notemarket/internal/metrics"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type noSessions struct{}

func (noSessions) Authenticate(context.Context, uuid.UUID) (auth.Session, error) {
	return auth.Session{}, errors.New("unexpected session lookup")
}

func newRouter(health error) http.Handler {
	return marketHttp.New(marketHttp.Handlers{
		Users:        user.NewHandler(nil),
		Waitlist:     waitlist.NewHandler(nil),
		Listings:     listing.NewHandler(nil),
		Documents:    document.NewHandler(nil),
		Import:       importcsv.NewHandler(nil, nil),
		Inquiries:    inquiry.NewHandler(nil),
		Transactions: transaction.NewHandler(nil),
		Export:       export.NewHandler(nil),
		Search:       search.NewHandler(nil),
	}, marketHttp.Options{
		AllowedOrigins: []string{"https://app.example.com"},
		Verifier:       auth.NewVerifier("0123456789abcdef0123456789abcdef", "notemarket", "notemarket-api"),
		Sessions:       noSessions{},
		Metrics:        metrics.New("test"),
		MetricsPath:    "/metrics",
		Health:         pinger{err: health},
	})
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(errors.New("down")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	paths := []string{"/api/listings", "/api/users/me", "/api/transactions/user", "/api/preferences"}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_request_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/listings", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	newRouter(nil).ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
