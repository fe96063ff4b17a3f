package transaction

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/http/middleware"
	"github.com/MrJamesThe3rd/notemarket/internal/http/respond"
	"github.com/MrJamesThe3rd/notemarket/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/transactions", h.open)
	r.Get("/transactions", h.listAll)
	r.Get("/transactions/user", h.listForUser)
	r.Post("/transactions/tasks/{taskId}/complete", h.completeTask)
	r.Post("/transactions/tasks/{taskId}/skip", h.skipTask)
	r.Post("/transactions/tasks/{taskId}/fail", h.failTask)
	r.Post("/transactions/files/{fileId}/verify", h.verifyFile)
	r.Post("/transactions/files/{fileId}/release", h.releaseFile)
	r.Get("/transactions/{id}", h.get)
	r.Patch("/transactions/{id}", h.update)
	r.Post("/transactions/{id}", h.update)
	r.Post("/transactions/{id}/advance", h.advance)
	r.Post("/transactions/{id}/cancel", h.cancel)
	r.Get("/transactions/{id}/files", h.listFiles)
	r.Post("/transactions/{id}/files", h.addFile)
	r.Get("/transactions/{id}/timeline", h.timeline)
	r.Post("/transactions/{id}/timeline", h.appendEvent)
}

type openRequest struct {
	InquiryID uuid.UUID `json:"inquiry_id"`
}

func (req openRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.InquiryID, validation.By(requiredID)),
	)
}

// requiredID rejects the zero uuid, which ozzo's Required accepts because
// uuid.UUID renders as a non-empty string.
func requiredID(v any) error {
	if id, _ := v.(uuid.UUID); id == uuid.Nil {
		return validation.ErrRequired
	}

	return nil
}

// open starts the closing workflow for an accepted inquiry. Repeating the
// call returns the transaction already opened for it.
func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		respond.Error(w, r, err)
		return
	}

	t, err := h.svc.Open(r.Context(), middleware.Session(r), req.InquiryID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, toResponse(t))
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	var status *transaction.Status
	if s := r.URL.Query().Get("status"); s != "" {
		status = new(transaction.Status(s))
	}

	txs, err := h.svc.ListAll(r.Context(), middleware.Session(r), status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponseList(txs))
}

func (h *Handler) listForUser(w http.ResponseWriter, r *http.Request) {
	role := transaction.Assignee(r.URL.Query().Get("role"))
	if role == "" {
		role = transaction.AssigneeBuyer
	}

	txs, err := h.svc.ListForUser(r.Context(), middleware.Session(r), role)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	d, err := h.svc.Get(r.Context(), middleware.Session(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toDetailResponse(d))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req transaction.UpdateParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	t, err := h.svc.Update(r.Context(), middleware.Session(r), id, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(t))
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	t, err := h.svc.AdvancePhase(r.Context(), middleware.Session(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(t))
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req cancelRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	t, err := h.svc.Cancel(r.Context(), middleware.Session(r), id, req.Reason)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toResponse(t))
}

type taskRequest struct {
	Note string `json:"note"`
}

type taskAction func(ctx context.Context, actor auth.Session, taskID uuid.UUID, note string) (*transaction.Task, error)

func (h *Handler) completeTask(w http.ResponseWriter, r *http.Request) {
	h.resolveTask(w, r, h.svc.CompleteTask)
}

func (h *Handler) skipTask(w http.ResponseWriter, r *http.Request) {
	h.resolveTask(w, r, h.svc.SkipTask)
}

func (h *Handler) failTask(w http.ResponseWriter, r *http.Request) {
	h.resolveTask(w, r, h.svc.FailTask)
}

func (h *Handler) resolveTask(w http.ResponseWriter, r *http.Request, apply taskAction) {
	taskID, err := middleware.URLID(r, "taskId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req taskRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	task, err := apply(r.Context(), middleware.Session(r), taskID, req.Note)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toTaskResponse(task))
}

func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	files, err := h.svc.ListFiles(r.Context(), middleware.Session(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toFileResponseList(files))
}

func (h *Handler) addFile(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req transaction.FileParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	f, err := h.svc.AddFile(r.Context(), middleware.Session(r), id, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, toFileResponse(f))
}

func (h *Handler) verifyFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := middleware.URLID(r, "fileId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	f, err := h.svc.VerifyFile(r.Context(), middleware.Session(r), fileID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toFileResponse(f))
}

func (h *Handler) releaseFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := middleware.URLID(r, "fileId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	f, err := h.svc.ReleaseFile(r.Context(), middleware.Session(r), fileID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toFileResponse(f))
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	evts, err := h.svc.Timeline(r.Context(), middleware.Session(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.OK(w, toEventResponseList(evts))
}

func (h *Handler) appendEvent(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.URLID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req transaction.EventParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.AppendEvent(r.Context(), middleware.Session(r), id, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.Created(w, toEventResponse(e))
}
