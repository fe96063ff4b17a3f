package user

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
)

type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
	ListUsers(ctx context.Context, filter ListFilter) ([]*User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type RegisterParams struct {
	Email       string
	DisplayName string
	Phone       string
	Company     string
	Role        auth.Role
}

type ProfileParams struct {
	DisplayName *string
	Phone       *string
	Company     *string
	Bio         *string
}

type ListFilter struct {
	Role   *auth.Role
	Status *Status
}

// Register creates the account for an identity the provider has already
// authenticated. Self-service signup may not claim the admin role.
func (s *Service) Register(ctx context.Context, id uuid.UUID, params RegisterParams) (*User, error) {
	params.Email = strings.TrimSpace(strings.ToLower(params.Email))

	errs := validation.Errors{
		"email":        validation.Validate(params.Email, validation.Required, is.EmailFormat),
		"display_name": validation.Validate(params.DisplayName, validation.Length(0, 120)),
		"role":         validation.Validate(string(params.Role), validation.Required, validation.In(string(auth.RoleInvestor), string(auth.RoleSeller))),
	}
	if err := errs.Filter(); err != nil {
		return nil, err
	}

	u := &User{
		ID:          id,
		Email:       params.Email,
		DisplayName: params.DisplayName,
		Phone:       params.Phone,
		Company:     params.Company,
		Role:        params.Role,
		Status:      StatusActive,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// Authenticate resolves the session for an account id, refusing accounts that
// are suspended or deactivated.
func (s *Service) Authenticate(ctx context.Context, id uuid.UUID) (auth.Session, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return auth.Session{}, err
	}

	if u.Status != StatusActive {
		return auth.Session{}, ErrInactive
	}

	return u.Session(), nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, params ProfileParams) (*User, error) {
	errs := validation.Errors{
		"display_name": validation.Validate(params.DisplayName, validation.NilOrNotEmpty, validation.Length(0, 120)),
		"bio":          validation.Validate(params.Bio, validation.Length(0, 2000)),
	}
	if err := errs.Filter(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.DisplayName != nil {
		u.DisplayName = *params.DisplayName
	}

	if params.Phone != nil {
		u.Phone = *params.Phone
	}

	if params.Company != nil {
		u.Company = *params.Company
	}

	if params.Bio != nil {
		u.Bio = *params.Bio
	}

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) SetRole(ctx context.Context, actor auth.Session, id uuid.UUID, role auth.Role) (*User, error) {
	if err := actor.Require(auth.CapManageUsers); err != nil {
		return nil, err
	}

	if !role.Valid() {
		return nil, validation.Errors{"role": validation.NewError("validation_in_invalid", "must be a valid value")}
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Role = role
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) SetStatus(ctx context.Context, actor auth.Session, id uuid.UUID, status Status) (*User, error) {
	if err := actor.Require(auth.CapManageUsers); err != nil {
		return nil, err
	}

	if err := validation.Validate(string(status), validation.Required,
		validation.In(string(StatusActive), string(StatusSuspended), string(StatusDeactivated))); err != nil {
		return nil, validation.Errors{"status": err}
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Status = status
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) List(ctx context.Context, actor auth.Session, filter ListFilter) ([]*User, error) {
	if err := actor.Require(auth.CapManageUsers); err != nil {
		return nil, err
	}

	return s.repo.ListUsers(ctx, filter)
}
