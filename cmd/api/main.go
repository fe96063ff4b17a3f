package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/config"
	"github.com/MrJamesThe3rd/notemarket/internal/database"
	"github.com/MrJamesThe3rd/notemarket/internal/document"
	documentStore "github.com/MrJamesThe3rd/notemarket/internal/document/store"
	"github.com/MrJamesThe3rd/notemarket/internal/events"
	"github.com/MrJamesThe3rd/notemarket/internal/export"
	marketHttp "github.com/MrJamesThe3rd/notemarket/internal/http"
	documentHandler "github.com/MrJamesThe3rd/notemarket/internal/http/document"
	exportHandler "github.com/MrJamesThe3rd/notemarket/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/notemarket/internal/http/importcsv"
	inquiryHandler "github.com/MrJamesThe3rd/notemarket/internal/http/inquiry"
	listingHandler "github.com/MrJamesThe3rd/notemarket/internal/http/listing"
	searchHandler "github.com/MrJamesThe3rd/notemarket/internal/http/search"
	txHandler "github.com/MrJamesThe3rd/notemarket/internal/http/transaction"
	userHandler "github.com/MrJamesThe3rd/notemarket/internal/http/user"
	waitlistHandler "github.com/MrJamesThe3rd/notemarket/internal/http/waitlist"
	"github.com/MrJamesThe3rd/notemarket/internal/importer"
	"github.com/MrJamesThe3rd/notemarket/internal/inquiry"
	inquiryStore "github.com/MrJamesThe3rd/notemarket/internal/inquiry/store"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/listing/cache"
	listingStore "github.com/MrJamesThe3rd/notemarket/internal/listing/store"
	"github.com/MrJamesThe3rd/notemarket/internal/metrics"
	"github.com/MrJamesThe3rd/notemarket/internal/search"
	searchStore "github.com/MrJamesThe3rd/notemarket/internal/search/store"
	"github.com/MrJamesThe3rd/notemarket/internal/transaction"
	txStore "github.com/MrJamesThe3rd/notemarket/internal/transaction/store"
	"github.com/MrJamesThe3rd/notemarket/internal/user"
	userStore "github.com/MrJamesThe3rd/notemarket/internal/user/store"
	"github.com/MrJamesThe3rd/notemarket/internal/waitlist"
	waitlistStore "github.com/MrJamesThe3rd/notemarket/internal/waitlist/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString(), database.Options{
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	var publisher events.Publisher = events.Nop{}

	if cfg.NATS.URL != "" {
		nc, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, cfg.App.Name)
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		defer nc.Close()

		publisher = nc
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New("notemarket")
	}

	var (
		listingRepo listing.Repository = listingStore.New(db)
		txOpts                         = []transaction.Option{transaction.WithMetrics(m)}
	)

	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer client.Close()

		cached := cache.New(listingRepo, cache.NewRedisBackend(client), cfg.Redis.ListingTTL)
		listingRepo = cached
		txOpts = append(txOpts, transaction.WithListingInvalidator(cached))
	}

	var (
		userService        = user.NewService(userStore.New(db))
		waitlistService    = waitlist.NewService(waitlistStore.New(db))
		listingService     = listing.NewService(listingRepo, publisher)
		documentService    = document.NewService(documentStore.New(db), listingService)
		inquiryService     = inquiry.NewService(inquiryStore.New(db), listingService, publisher, cfg.Inquiry.TTL, inquiry.WithMetrics(m))
		transactionService = transaction.NewService(txStore.New(db), publisher, txOpts...)
		searchService      = search.NewService(searchStore.New(db), listingService, publisher)
		importService      = importer.NewService()
		exportService      = export.NewService(transactionService, cfg.Storage.Token)
	)

	inquiryService.SetDealOpener(transactionService)
	listingService.OnPublish(searchService.MatchListing)

	router := marketHttp.New(marketHttp.Handlers{
		Users:        userHandler.NewHandler(userService),
		Waitlist:     waitlistHandler.NewHandler(waitlistService),
		Listings:     listingHandler.NewHandler(listingService),
		Documents:    documentHandler.NewHandler(documentService),
		Import:       importHandler.NewHandler(importService, listingService),
		Inquiries:    inquiryHandler.NewHandler(inquiryService),
		Transactions: txHandler.NewHandler(transactionService),
		Export:       exportHandler.NewHandler(exportService),
		Search:       searchHandler.NewHandler(searchService),
	}, marketHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Verifier:       auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience),
		Sessions:       userService,
		Metrics:        m,
		MetricsPath:    cfg.Metrics.Path,
		Health:         db,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           http.TimeoutHandler(router, cfg.Server.Timeout, "request timed out"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr, "env", cfg.App.Env)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}

	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
