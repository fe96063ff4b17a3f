// Package middleware resolves the caller of each request.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/http/respond"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// SessionLoader resolves an account id into a session, failing for unknown or
// inactive accounts.
type SessionLoader interface {
	Authenticate(ctx context.Context, id uuid.UUID) (auth.Session, error)
}

var errNoToken = fmt.Errorf("%w: missing bearer token", apperr.ErrUnauthorized)

// Authenticate verifies the bearer token and stores its claims in the request
// context.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				respond.Error(w, r, errNoToken)
				return
			}

			claims, err := v.Verify(strings.TrimSpace(token))
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// LoadSession turns verified claims into the caller's session. A token for an
// account that does not exist is unauthorized; an inactive account is
// forbidden.
func LoadSession(users SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				respond.Error(w, r, errNoToken)
				return
			}

			id, err := claims.UserID()
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			session, err := users.Authenticate(r.Context(), id)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					respond.Error(w, r, fmt.Errorf("%w: account is not registered", apperr.ErrUnauthorized))
					return
				}

				respond.Error(w, r, err)

				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}

// Require rejects sessions lacking the capability.
func Require(c auth.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := Session(r).Require(c); err != nil {
				respond.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Session returns the caller loaded by LoadSession. Handlers mounted behind
// LoadSession always have one.
func Session(r *http.Request) auth.Session {
	s, _ := auth.FromContext(r.Context())
	return s
}

// Claims returns the verified token claims. Handlers mounted behind
// Authenticate always have them.
func Claims(r *http.Request) *auth.Claims {
	c, _ := auth.ClaimsFromContext(r.Context())
	if c == nil {
		return &auth.Claims{}
	}

	return c
}

// URLID parses the named chi URL parameter as an id.
func URLID(r *http.Request, name string) (uuid.UUID, error) {
	value := chi.URLParam(r, name)

	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", apperr.ErrInvalid, value)
	}

	return id, nil
}
