package user

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/http/middleware"
	"github.com/MrJamesThe3rd/notemarket/internal/http/respond"
	"github.com/MrJamesThe3rd/notemarket/internal/user"
)

type Handler struct {
	svc *user.Service
}

func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/users/me", h.me)
	r.Patch("/users/me", h.updateProfile)
	r.Get("/users", h.list)
	r.Patch("/users/{id}/role", h.setRole)
	r.Patch("/users/{id}/status", h.setStatus)
}

type userResponse struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Phone       string      `json:"phone,omitempty"`
	Company     string      `json:"company,omitempty"`
	Bio         string      `json:"bio,omitempty"`
	Role        auth.Role   `json:"role"`
	Status      user.Status `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty"`
}

func toResponse(u *user.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Phone:       u.Phone,
		Company:     u.Company,
		Bio:         u.Bio,
		Role:        u.Role,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type registerRequest struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone"`
	Company     string    `json:"company"`
	Role        auth.Role `json:"role"`
}

// Register creates the account for the token's subject. It only needs a
// verified token since the account does not exist yet.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	id, err := claims.UserID()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.Email == "" {
		req.Email = claims.Email
	}

	u, err := h.svc.Register(r.Context(), id, user.RegisterParams{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Company:     req.Company,
		Role:        req.Role,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, toResponse(u))
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), middleware.Session(r).UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(u))
}

type profileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Company     *string `json:"company,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), middleware.Session(r).UserID, user.ProfileParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(u))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := user.ListFilter{}

	if s := r.URL.Query().Get("role"); s != "" {
		filter.Role = new(auth.Role(s))
	}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(user.Status(s))
	}

	users, err := h.svc.List(r.Context(), middleware.Session(r), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toResponse(u)
	}

	respond.OK(w, resp)
}

type roleRequest struct {
	Role auth.Role `json:"role"`
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req roleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.SetRole(r.Context(), middleware.Session(r), id, req.Role)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(u))
}

type statusRequest struct {
	Status user.Status `json:"status"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req statusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	u, err := h.svc.SetStatus(r.Context(), middleware.Session(r), id, req.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(u))
}
