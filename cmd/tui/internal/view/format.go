package view

import (
	"context"
	"time"

	"github.com/MrJamesThe3rd/notemarket/internal/transaction"
)

const dbTimeout = 5 * time.Second

// FormatCents renders an amount stored as cents in dollars.
func FormatCents(cents int64) string {
	return transaction.FormatCents(cents)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
