package waitlist

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
)

// Entry is a pre-launch signup.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
