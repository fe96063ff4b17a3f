package search

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httplisting "github.com/MrJamesThe3rd/notemarket/internal/http/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/http/middleware"
	"github.com/MrJamesThe3rd/notemarket/internal/http/respond"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/search"
)

type Handler struct {
	svc *search.Service
}

func NewHandler(svc *search.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/preferences", h.getPreferences)
	r.Put("/preferences", h.putPreferences)
	r.Get("/searches", h.list)
	r.Post("/searches", h.save)
	r.Delete("/searches/{id}", h.delete)
	r.Get("/searches/{id}/results", h.results)
}

type preferencesResponse struct {
	UserID    uuid.UUID        `json:"user_id"`
	Criteria  listing.Criteria `json:"criteria"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
}

type searchResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Criteria  listing.Criteria `json:"criteria"`
	Notify    bool             `json:"notify"`
	CreatedAt time.Time        `json:"created_at"`
}

func toSearchResponse(s *search.SavedSearch) searchResponse {
	return searchResponse{
		ID:        s.ID,
		Name:      s.Name,
		Criteria:  s.Criteria,
		Notify:    s.Notify,
		CreatedAt: s.CreatedAt,
	}
}

func (h *Handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPreferences(r.Context(), middleware.Session(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, preferencesResponse{UserID: p.UserID, Criteria: p.Criteria, UpdatedAt: p.UpdatedAt})
}

func (h *Handler) putPreferences(w http.ResponseWriter, r *http.Request) {
	var req listing.Criteria
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.PutPreferences(r.Context(), middleware.Session(r), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, preferencesResponse{UserID: p.UserID, Criteria: p.Criteria, UpdatedAt: p.UpdatedAt})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	searches, err := h.svc.List(r.Context(), middleware.Session(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]searchResponse, len(searches))
	for i, s := range searches {
		resp[i] = toSearchResponse(s)
	}

	respond.OK(w, resp)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var req search.SaveParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	s, err := h.svc.Save(r.Context(), middleware.Session(r), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, toSearchResponse(s))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), middleware.Session(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Message(w, "saved search deleted")
}

// results runs a saved search against the public marketplace.
func (h *Handler) results(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	page, err := h.svc.Run(r.Context(), middleware.Session(r), id, listing.SortField(q.Get("sort")), limit, offset)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, httplisting.ToPageResponse(page))
}
