package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/notemarket/internal/export"
	"github.com/MrJamesThe3rd/notemarket/internal/http/middleware"
	"github.com/MrJamesThe3rd/notemarket/internal/http/respond"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/transactions/{id}/export", h.download)
}

// download streams the closing package as a zip. The archive is built in
// memory first so failures still produce a JSON error.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Archive(r.Context(), middleware.Session(r), id, &buf); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"closing_%s_%s.zip\"", id.String()[:8], time.Now().Format("20060102")))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write closing package", "transaction_id", id, "error", err)
	}
}
