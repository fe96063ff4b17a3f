package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/transaction"
)

type transactionResponse struct {
	ID           uuid.UUID          `json:"id"`
	InquiryID    uuid.UUID          `json:"inquiry_id"`
	ListingID    uuid.UUID          `json:"listing_id"`
	BuyerID      uuid.UUID          `json:"buyer_id"`
	SellerID     uuid.UUID          `json:"seller_id"`
	Status       transaction.Status `json:"status"`
	CurrentPhase transaction.Phase  `json:"current_phase"`
	FinalAmount  *int64             `json:"final_amount,omitempty"`
	CancelReason string             `json:"cancel_reason,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    *time.Time         `json:"updated_at,omitempty"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
	CancelledAt  *time.Time         `json:"cancelled_at,omitempty"`
}

type taskResponse struct {
	ID           uuid.UUID              `json:"id"`
	Phase        transaction.Phase      `json:"phase"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description,omitempty"`
	Assignee     transaction.Assignee   `json:"assignee"`
	Required     bool                   `json:"required"`
	Status       transaction.TaskStatus `json:"status"`
	DisplayOrder int                    `json:"display_order"`
	Note         string                 `json:"note,omitempty"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	CompletedBy  *uuid.UUID             `json:"completed_by,omitempty"`
}

type fileResponse struct {
	ID          uuid.UUID  `json:"id"`
	TaskID      *uuid.UUID `json:"task_id,omitempty"`
	UploaderID  uuid.UUID  `json:"uploader_id"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	ContentType string     `json:"content_type,omitempty"`
	IsPublic    bool       `json:"is_public"`
	IsVerified  bool       `json:"is_verified"`
	CreatedAt   time.Time  `json:"created_at"`
}

type eventResponse struct {
	ID          uuid.UUID             `json:"id"`
	Type        transaction.EventType `json:"type"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	TaskID      *uuid.UUID            `json:"task_id,omitempty"`
	FileID      *uuid.UUID            `json:"file_id,omitempty"`
	ActorID     *uuid.UUID            `json:"actor_id,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

type detailResponse struct {
	transactionResponse
	Tasks  []taskResponse  `json:"tasks"`
	Files  []fileResponse  `json:"files"`
	Events []eventResponse `json:"events"`
}

func toResponse(t *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		InquiryID:    t.InquiryID,
		ListingID:    t.ListingID,
		BuyerID:      t.BuyerID,
		SellerID:     t.SellerID,
		Status:       t.Status,
		CurrentPhase: t.CurrentPhase,
		FinalAmount:  t.FinalAmount,
		CancelReason: t.CancelReason,
		Notes:        t.Notes,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		CompletedAt:  t.CompletedAt,
		CancelledAt:  t.CancelledAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, t := range txs {
		resp[i] = toResponse(t)
	}

	return resp
}

func toTaskResponse(t *transaction.Task) taskResponse {
	return taskResponse{
		ID:           t.ID,
		Phase:        t.Phase,
		Title:        t.Title,
		Description:  t.Description,
		Assignee:     t.Assignee,
		Required:     t.Required,
		Status:       t.Status,
		DisplayOrder: t.DisplayOrder,
		Note:         t.Note,
		CompletedAt:  t.CompletedAt,
		CompletedBy:  t.CompletedBy,
	}
}

func toFileResponse(f *transaction.File) fileResponse {
	return fileResponse{
		ID:          f.ID,
		TaskID:      f.TaskID,
		UploaderID:  f.UploaderID,
		Name:        f.Name,
		URL:         f.URL,
		ContentType: f.ContentType,
		IsPublic:    f.IsPublic,
		IsVerified:  f.IsVerified,
		CreatedAt:   f.CreatedAt,
	}
}

func toFileResponseList(files []*transaction.File) []fileResponse {
	resp := make([]fileResponse, len(files))
	for i, f := range files {
		resp[i] = toFileResponse(f)
	}

	return resp
}

func toEventResponse(e *transaction.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Type:        e.Type,
		Title:       e.Title,
		Description: e.Description,
		TaskID:      e.TaskID,
		FileID:      e.FileID,
		ActorID:     e.ActorID,
		CreatedAt:   e.CreatedAt,
	}
}

func toEventResponseList(evts []*transaction.Event) []eventResponse {
	resp := make([]eventResponse, len(evts))
	for i, e := range evts {
		resp[i] = toEventResponse(e)
	}

	return resp
}

func toDetailResponse(d *transaction.Detail) detailResponse {
	tasks := make([]taskResponse, len(d.Tasks))
	for i, t := range d.Tasks {
		tasks[i] = toTaskResponse(t)
	}

	return detailResponse{
		transactionResponse: toResponse(d.Transaction),
		Tasks:               tasks,
		Files:               toFileResponseList(d.Files),
		Events:              toEventResponseList(d.Events),
	}
}
