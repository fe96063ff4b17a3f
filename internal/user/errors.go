package user

import (
	"fmt"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
)

var (
	ErrNotFound      = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrAlreadyExists = fmt.Errorf("user already registered: %w", apperr.ErrConflict)
	ErrInactive      = fmt.Errorf("account is not active: %w", apperr.ErrForbidden)
)
