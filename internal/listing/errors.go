package listing

import (
	"fmt"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
)

var (
	ErrNotFound         = fmt.Errorf("listing %w", apperr.ErrNotFound)
	ErrNotOwner         = fmt.Errorf("listing belongs to another seller: %w", apperr.ErrForbidden)
	ErrNotEditable      = fmt.Errorf("listing can only be edited while draft or active: %w", apperr.ErrConflict)
	ErrStatusTransition = fmt.Errorf("listing status change not allowed: %w", apperr.ErrConflict)
)
