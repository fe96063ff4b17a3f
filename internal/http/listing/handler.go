package listing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/notemarket/internal/http/middleware"
	"github.com/MrJamesThe3rd/notemarket/internal/http/respond"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

type Handler struct {
	svc *listing.Service
}

func NewHandler(svc *listing.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/listings", h.list)
	r.Post("/listings", h.create)
	r.Get("/listings/{id}", h.get)
	r.Patch("/listings/{id}", h.update)
	r.Post("/listings/{id}/status", h.setStatus)
	r.Post("/listings/{id}/review", h.review)
	r.Post("/listings/{id}/counters", h.adjustCounters)
	r.Post("/listings/{id}/favorite", h.addFavorite)
	r.Delete("/listings/{id}/favorite", h.removeFavorite)
	r.Get("/favorites", h.favorites)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	page, err := h.svc.List(r.Context(), middleware.Session(r), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, ToPageResponse(page))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req listing.CreateParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	l, err := h.svc.Create(r.Context(), middleware.Session(r), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, ToResponse(l))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	l, err := h.svc.Get(r.Context(), middleware.Session(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, ToResponse(l))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req listing.UpdateParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	l, err := h.svc.Update(r.Context(), middleware.Session(r), id, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, ToResponse(l))
}

type statusRequest struct {
	Status listing.Status `json:"status"`
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

	l, err := h.svc.SetStatus(r.Context(), middleware.Session(r), id, req.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, ToResponse(l))
}

type reviewRequest struct {
	Decision listing.VerificationStatus `json:"decision"`
	Note     string                     `json:"note"`
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req reviewRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	l, err := h.svc.Review(r.Context(), middleware.Session(r), id, req.Decision, req.Note)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, ToResponse(l))
}

func (h *Handler) adjustCounters(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req listing.Counters
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	l, err := h.svc.AdjustCounters(r.Context(), middleware.Session(r), id, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, ToResponse(l))
}

func (h *Handler) addFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.AddFavorite(r.Context(), middleware.Session(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Message(w, "listing saved to favorites")
}

func (h *Handler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.RemoveFavorite(r.Context(), middleware.Session(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Message(w, "listing removed from favorites")
}

func (h *Handler) favorites(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.ListFavorites(r.Context(), middleware.Session(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, ToResponseList(listings))
}
