package document

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/document"
	"github.com/MrJamesThe3rd/notemarket/internal/http/middleware"
	"github.com/MrJamesThe3rd/notemarket/internal/http/respond"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

type Handler struct {
	svc *document.Service
}

func NewHandler(svc *document.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/listings/{id}/documents", h.list)
	r.Post("/listings/{id}/documents", h.create)
	r.Post("/documents/{id}/verify", h.verify)
	r.Post("/documents/{id}/release", h.release)
	r.Delete("/documents/{id}", h.delete)
}

type documentResponse struct {
	ID                 uuid.UUID                  `json:"id"`
	ListingID          uuid.UUID                  `json:"listing_id"`
	UploaderID         uuid.UUID                  `json:"uploader_id"`
	Name               string                     `json:"name"`
	Kind               document.Kind              `json:"kind"`
	URL                string                     `json:"url"`
	IsPublic           bool                       `json:"is_public"`
	VerificationStatus listing.VerificationStatus `json:"verification_status"`
	CreatedAt          time.Time                  `json:"created_at"`
}

func toResponse(d *document.Document) documentResponse {
	return documentResponse{
		ID:                 d.ID,
		ListingID:          d.ListingID,
		UploaderID:         d.UploaderID,
		Name:               d.Name,
		Kind:               d.Kind,
		URL:                d.URL,
		IsPublic:           d.IsPublic,
		VerificationStatus: d.VerificationStatus,
		CreatedAt:          d.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	listingID, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	docs, err := h.svc.List(r.Context(), middleware.Session(r), listingID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]documentResponse, len(docs))
	for i, d := range docs {
		resp[i] = toResponse(d)
	}

	respond.OK(w, resp)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	listingID, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req document.CreateParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	d, err := h.svc.Create(r.Context(), middleware.Session(r), listingID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, toResponse(d))
}

type verifyRequest struct {
	Status listing.VerificationStatus `json:"status"`
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req verifyRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	d, err := h.svc.Verify(r.Context(), middleware.Session(r), id, req.Status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(d))
}

func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	d, err := h.svc.Release(r.Context(), middleware.Session(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(d))
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

	respond.Message(w, "document deleted")
}
