package waitlist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/notemarket/internal/http/middleware"
	"github.com/MrJamesThe3rd/notemarket/internal/http/respond"
	"github.com/MrJamesThe3rd/notemarket/internal/waitlist"
)

type Handler struct {
	svc *waitlist.Service
}

func NewHandler(svc *waitlist.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers the admin view. Join is public and mounted separately.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/waitlist", h.list)
}

// Join adds the caller to the pre-launch waitlist. Repeated joins answer 200
// with the original entry.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req waitlist.JoinParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	entry, created, err := h.svc.Join(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if created {
		respond.Created(w, entry)
		return
	}

	respond.OK(w, entry)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context(), middleware.Session(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, entries)
}
