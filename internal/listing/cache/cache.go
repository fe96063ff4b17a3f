// Package cache puts a Redis read-through layer in front of the listing
// repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

const keyPrefix = "listing:"

// ErrMiss is returned by a Backend when the key is absent.
var ErrMiss = errors.New("cache miss")

// Backend is the slice of a key-value store the cache needs.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisBackend struct {
	client redis.Cmdable
}

func NewRedisBackend(client redis.Cmdable) Backend {
	return &redisBackend{client: client}
}

func (b *redisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}

	return val, err
}

func (b *redisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

func (b *redisBackend) Del(ctx context.Context, key string) error {
	return b.client.Del(ctx, key).Err()
}

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// Repository wraps a listing.Repository. Single-listing reads are served from
// the backend; every write that changes what a reader sees drops the entry.
// View counts are not invalidated and may lag by up to the TTL.
type Repository struct {
	listing.Repository

	backend Backend
	ttl     time.Duration
}

func New(inner listing.Repository, backend Backend, ttl time.Duration) *Repository {
	return &Repository{Repository: inner, backend: backend, ttl: ttl}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func (r *Repository) GetListing(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	raw, err := r.backend.Get(ctx, key(id))
	switch {
	case err == nil:
		var l listing.Listing
		if err := json.Unmarshal(raw, &l); err == nil {
			return &l, nil
		}

		r.forget(ctx, id)
	case !errors.Is(err, ErrMiss):
		slog.WarnContext(ctx, "listing cache read failed", "listing_id", id, "error", err)
	}

	l, err := r.Repository.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(l); err == nil {
		if err := r.backend.Set(ctx, key(id), raw, r.ttl); err != nil {
			slog.WarnContext(ctx, "listing cache write failed", "listing_id", id, "error", err)
		}
	}

	return l, nil
}

func (r *Repository) forget(ctx context.Context, id uuid.UUID) {
	if err := r.backend.Del(ctx, key(id)); err != nil {
		slog.WarnContext(ctx, "listing cache invalidation failed", "listing_id", id, "error", err)
	}
}

func (r *Repository) UpdateListing(ctx context.Context, l *listing.Listing) error {
	defer r.forget(ctx, l.ID)

	return r.Repository.UpdateListing(ctx, l)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status listing.Status) error {
	defer r.forget(ctx, id)

	return r.Repository.UpdateStatus(ctx, id, status)
}

func (r *Repository) UpdateVerification(ctx context.Context, id uuid.UUID, status listing.VerificationStatus, note string) error {
	defer r.forget(ctx, id)

	return r.Repository.UpdateVerification(ctx, id, status, note)
}

func (r *Repository) IncrementInquiries(ctx context.Context, id uuid.UUID) error {
	defer r.forget(ctx, id)

	return r.Repository.IncrementInquiries(ctx, id)
}

func (r *Repository) SetCounters(ctx context.Context, id uuid.UUID, c listing.Counters) error {
	defer r.forget(ctx, id)

	return r.Repository.SetCounters(ctx, id, c)
}

func (r *Repository) AddFavorite(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	counted, err := r.Repository.AddFavorite(ctx, userID, listingID)
	if counted {
		r.forget(ctx, listingID)
	}

	return counted, err
}

// Forget drops a listing entry. Transaction flows that change listing status
// through their own unit of work call this after commit.
func (r *Repository) Forget(ctx context.Context, id uuid.UUID) {
	r.forget(ctx, id)
}
