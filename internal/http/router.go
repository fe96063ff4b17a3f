package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/notemarket/internal/http/document"
	"github.com/MrJamesThe3rd/notemarket/internal/http/export"
	"github.com/MrJamesThe3rd/notemarket/internal/http/importcsv"
	"github.com/MrJamesThe3rd/notemarket/internal/http/inquiry"
	"github.com/MrJamesThe3rd/notemarket/internal/http/listing"
	authmw "github.com/MrJamesThe3rd/notemarket/internal/http/middleware"
	"github.com/MrJamesThe3rd/notemarket/internal/http/respond"
	"github.com/MrJamesThe3rd/notemarket/internal/http/search"
	"github.com/MrJamesThe3rd/notemarket/internal/http/transaction"
	"github.com/MrJamesThe3rd/notemarket/internal/http/user"
	"github.com/MrJamesThe3rd/notemarket/internal/http/waitlist"
	"github.com/MrJamesThe3rd/notemarket/internal/metrics"
)

type Handlers struct {
	Users        *user.Handler
	Waitlist     *waitlist.Handler
	Listings     *listing.Handler
	Documents    *document.Handler
	Import       *importcsv.Handler
	Inquiries    *inquiry.Handler
	Transactions *transaction.Handler
	Export       *export.Handler
	Search       *search.Handler
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	AllowedOrigins []string
	Verifier       authmw.TokenVerifier
	Sessions       authmw.SessionLoader
	Metrics        *metrics.Metrics
	MetricsPath    string
	Health         Pinger
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		router.Handle(opts.MetricsPath, opts.Metrics.Handler())
	}

	router.Get("/healthz", health(opts.Health))

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))

		r.Post("/waitlist", h.Waitlist.Join)

		r.Group(func(r chi.Router) {
			r.Use(authmw.Authenticate(opts.Verifier))

			r.Post("/users", h.Users.Register)

			r.Group(func(r chi.Router) {
				r.Use(authmw.LoadSession(opts.Sessions))

				h.Users.Routes(r)
				h.Waitlist.Routes(r)
				h.Import.Routes(r)
				h.Listings.Routes(r)
				h.Documents.Routes(r)
				h.Inquiries.Routes(r)
				h.Transactions.Routes(r)
				h.Export.Routes(r)
				h.Search.Routes(r)
			})
		})
	})

	return router
}

func health(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			if err := p.PingContext(r.Context()); err != nil {
				respond.Fail(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}

		respond.Message(w, "ok")
	}
}
