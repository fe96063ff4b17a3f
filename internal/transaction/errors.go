package transaction

import (
	"fmt"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
)

var (
	ErrNotFound            = fmt.Errorf("transaction %w", apperr.ErrNotFound)
	ErrTaskNotFound        = fmt.Errorf("task %w", apperr.ErrNotFound)
	ErrFileNotFound        = fmt.Errorf("file %w", apperr.ErrNotFound)
	ErrTerminal            = fmt.Errorf("transaction is closed: %w", apperr.ErrConflict)
	ErrPhaseBlocked        = fmt.Errorf("required tasks are still open: %w", apperr.ErrConflict)
	ErrFinalAmountRequired = fmt.Errorf("final amount must be set before completion: %w", apperr.ErrConflict)
	ErrFinalAmountLocked   = fmt.Errorf("final amount can only change during negotiations: %w", apperr.ErrConflict)
	ErrTaskResolved        = fmt.Errorf("task is no longer pending: %w", apperr.ErrConflict)
	ErrListingUnavailable  = fmt.Errorf("listing is no longer available: %w", apperr.ErrConflict)
	ErrSameParty           = fmt.Errorf("buyer and seller must differ: %w", apperr.ErrConflict)
	ErrNotParty            = fmt.Errorf("not a party to this transaction: %w", apperr.ErrForbidden)
	ErrNotAssignee         = fmt.Errorf("task is assigned to someone else: %w", apperr.ErrForbidden)
	ErrRequiredTask        = fmt.Errorf("only an admin may skip a required task: %w", apperr.ErrForbidden)
	ErrNotUploader         = fmt.Errorf("file belongs to another uploader: %w", apperr.ErrForbidden)
)
