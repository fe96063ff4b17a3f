package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
)

// Session is the authenticated caller of a request.
type Session struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

func (s Session) Can(c Capability) bool {
	return s.Role.Can(c)
}

// Require returns a forbidden error unless the session holds c.
func (s Session) Require(c Capability) error {
	if !s.Can(c) {
		return fmt.Errorf("%w: %s capability required", apperr.ErrForbidden, c)
	}

	return nil
}

type sessionKey struct{}

type claimsKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}
