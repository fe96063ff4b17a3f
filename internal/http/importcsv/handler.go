package importcsv

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
	httplisting "github.com/MrJamesThe3rd/notemarket/internal/http/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/http/middleware"
	"github.com/MrJamesThe3rd/notemarket/internal/http/respond"
	"github.com/MrJamesThe3rd/notemarket/internal/importer"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

const maxUpload = 10 << 20

type Handler struct {
	importSvc  *importer.Service
	listingSvc *listing.Service
}

func NewHandler(importSvc *importer.Service, listingSvc *listing.Service) *Handler {
	return &Handler{
		importSvc:  importSvc,
		listingSvc: listingSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/listings/import", h.importTape)
	r.Post("/listings/import/confirm", h.confirmImport)
}

type importSuccessResponse struct {
	Imported int                    `json:"imported"`
	Listings []httplisting.Response `json:"listings"`
}

type conflictDTO struct {
	Incoming listing.CreateParams `json:"incoming"`
	Existing httplisting.Response `json:"existing"`
}

type importConflictResponse struct {
	New       []listing.CreateParams `json:"new"`
	Conflicts []conflictDTO          `json:"conflicts"`
}

type confirmRequest struct {
	Params []listing.CreateParams `json:"params"`
}

// importTape parses an uploaded loan tape and creates the listings. When rows
// duplicate existing listings nothing is written and the split is returned
// with 409 so the seller can confirm.
func (h *Handler) importTape(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.Error(w, r, fmt.Errorf("%w: failed to parse form: %v", apperr.ErrInvalid, err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, fmt.Errorf("%w: file field is required", apperr.ErrInvalid))
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(importer.Format(r.FormValue("format")), file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	result, err := h.listingSvc.ImportBatch(r.Context(), middleware.Session(r), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       result.New,
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}

		if resp.New == nil {
			resp.New = []listing.CreateParams{}
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: c.Incoming,
				Existing: httplisting.ToResponse(c.Existing),
			})
		}

		respond.JSON(w, http.StatusConflict, respond.Envelope{
			Success: false,
			Data:    resp,
			Message: fmt.Sprintf("%d rows match existing listings", len(result.Conflicts)),
		})

		return
	}

	respond.Created(w, toSuccessResponse(result.Imported))
}

// confirmImport creates the rows the seller kept after reviewing conflicts.
func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	listings, err := h.listingSvc.CreateBatch(r.Context(), middleware.Session(r), req.Params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, toSuccessResponse(listings))
}

func toSuccessResponse(listings []*listing.Listing) importSuccessResponse {
	resp := make([]httplisting.Response, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, httplisting.ToResponse(l))
	}

	return importSuccessResponse{
		Imported: len(listings),
		Listings: resp,
	}
}
