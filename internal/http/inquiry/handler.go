package inquiry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
	"github.com/MrJamesThe3rd/notemarket/internal/http/middleware"
	"github.com/MrJamesThe3rd/notemarket/internal/http/respond"
	"github.com/MrJamesThe3rd/notemarket/internal/inquiry"
)

type Handler struct {
	svc *inquiry.Service
}

func NewHandler(svc *inquiry.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/inquiries", h.list)
	r.Post("/inquiries", h.create)
	r.Get("/inquiries/{id}", h.get)
	r.Post("/inquiries/{id}/respond", h.reply)
}

type inquiryResponse struct {
	ID              uuid.UUID      `json:"id"`
	ListingID       uuid.UUID      `json:"listing_id"`
	BuyerID         uuid.UUID      `json:"buyer_id"`
	SellerID        uuid.UUID      `json:"seller_id"`
	Message         string         `json:"message,omitempty"`
	OfferAmount     *int64         `json:"offer_amount,omitempty"`
	CounterAmount   *int64         `json:"counter_amount,omitempty"`
	Status          inquiry.Status `json:"status"`
	Awaiting        inquiry.Party  `json:"awaiting,omitempty"`
	ResponseMessage string         `json:"response_message,omitempty"`
	RespondedAt     *time.Time     `json:"responded_at,omitempty"`
	ExpiresAt       time.Time      `json:"expires_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`
}

func toResponse(i *inquiry.Inquiry) inquiryResponse {
	resp := inquiryResponse{
		ID:              i.ID,
		ListingID:       i.ListingID,
		BuyerID:         i.BuyerID,
		SellerID:        i.SellerID,
		Message:         i.Message,
		OfferAmount:     i.OfferAmount,
		CounterAmount:   i.CounterAmount,
		Status:          i.Status,
		ResponseMessage: i.ResponseMessage,
		RespondedAt:     i.RespondedAt,
		ExpiresAt:       i.ExpiresAt,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}

	if i.Status.Open() {
		resp.Awaiting = i.Awaiting
	}

	return resp
}

type respondResponse struct {
	Inquiry       inquiryResponse `json:"inquiry"`
	TransactionID *uuid.UUID      `json:"transaction_id,omitempty"`
}

// list returns the caller's inquiries. Sellers pass ?as=seller and may narrow
// to one listing with listing_id.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	session := middleware.Session(r)
	q := r.URL.Query()

	var (
		items []*inquiry.Inquiry
		err   error
	)

	switch q.Get("as") {
	case "", "buyer":
		items, err = h.svc.ListForBuyer(r.Context(), session)
	case "seller":
		var listingID *uuid.UUID
		if s := q.Get("listing_id"); s != "" {
			id, perr := uuid.Parse(s)
			if perr != nil {
				respond.Error(w, r, fmt.Errorf("%w: listing_id %q is not a valid id", apperr.ErrInvalid, s))
				return
			}

			listingID = &id
		}

		items, err = h.svc.ListForSeller(r.Context(), session, listingID)
	default:
		err = fmt.Errorf("%w: as must be buyer or seller", apperr.ErrInvalid)
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]inquiryResponse, len(items))
	for i, item := range items {
		resp[i] = toResponse(item)
	}

	respond.OK(w, resp)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req inquiry.CreateParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	i, err := h.svc.Create(r.Context(), middleware.Session(r), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, toResponse(i))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	i, err := h.svc.Get(r.Context(), middleware.Session(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(i))
}

func (h *Handler) reply(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req inquiry.RespondParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.Respond(r.Context(), middleware.Session(r), id, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, respondResponse{Inquiry: toResponse(res.Inquiry), TransactionID: res.TransactionID})
}
