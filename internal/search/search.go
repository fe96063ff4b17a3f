package search

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

// Preferences is the default criteria an investor browses with.
type Preferences struct {
	UserID    uuid.UUID        `json:"user_id"`
	Criteria  listing.Criteria `json:"criteria"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
}

// SavedSearch is a named criteria set. With Notify on, newly published
// listings that match it raise a search.matched event.
type SavedSearch struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Name      string           `json:"name"`
	Criteria  listing.Criteria `json:"criteria"`
	Notify    bool             `json:"notify"`
	CreatedAt time.Time        `json:"created_at"`
}

var (
	ErrNotFound            = fmt.Errorf("saved search %w", apperr.ErrNotFound)
	ErrPreferencesNotFound = fmt.Errorf("preferences %w", apperr.ErrNotFound)
)
