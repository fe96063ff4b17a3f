package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
)

// Status is the account state. Accounts are never hard-deleted.
type Status string

const (
	StatusActive      Status = "active"
	StatusSuspended   Status = "suspended"
	StatusDeactivated Status = "deactivated"
)

type User struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Phone       string
	Company     string
	Bio         string
	Role        auth.Role
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Session converts the account into the request identity.
func (u *User) Session() auth.Session {
	return auth.Session{UserID: u.ID, Email: u.Email, Role: u.Role}
}
