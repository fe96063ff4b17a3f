package waitlist

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=waitlist
type Repository interface {
	// AddEntry inserts e unless its email is already listed, in which case it
	// returns the stored entry and false.
	AddEntry(ctx context.Context, e *Entry) (*Entry, bool, error)
	ListEntries(ctx context.Context) ([]*Entry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type JoinParams struct {
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  auth.Role `json:"role"`
}

func (p JoinParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.EmailFormat),
		validation.Field(&p.Name, validation.Length(0, 120)),
		validation.Field(&p.Role, validation.In(auth.RoleInvestor, auth.RoleSeller)),
	)
}

// Join adds an email to the waitlist. Joining twice returns the original
// entry.
func (s *Service) Join(ctx context.Context, params JoinParams) (*Entry, bool, error) {
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	params.Name = strings.TrimSpace(params.Name)

	if params.Role == "" {
		params.Role = auth.RoleInvestor
	}

	if err := params.Validate(); err != nil {
		return nil, false, err
	}

	return s.repo.AddEntry(ctx, &Entry{Email: params.Email, Name: params.Name, Role: params.Role})
}

func (s *Service) List(ctx context.Context, admin auth.Session) ([]*Entry, error) {
	if err := admin.Require(auth.CapManageUsers); err != nil {
		return nil, err
	}

	return s.repo.ListEntries(ctx)
}
