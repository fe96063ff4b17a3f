package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

// Status represents the lifecycle state of a transaction.
type Status string

const (
	StatusNegotiations Status = "negotiations"
	StatusClosing      Status = "closing"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Phase is the coarse stage a transaction is in. It tracks Status except that
// cancellation freezes it at the last phase reached.
type Phase string

const (
	PhaseNegotiations Phase = "negotiations"
	PhaseClosing      Phase = "closing"
	PhaseCompleted    Phase = "completed"
)

// next returns the phase that follows p, if any.
func (p Phase) next() (Phase, bool) {
	switch p {
	case PhaseNegotiations:
		return PhaseClosing, true
	case PhaseClosing:
		return PhaseCompleted, true
	}

	return "", false
}

// ListingState is the slice of a listing the workflow reads under lock.
type ListingState struct {
	Status      listing.Status
	AskingPrice int64
}

// Transaction tracks an accepted inquiry through to a completed sale. Amounts
// are in cents.
type Transaction struct {
	ID           uuid.UUID
	InquiryID    uuid.UUID
	ListingID    uuid.UUID
	BuyerID      uuid.UUID
	SellerID     uuid.UUID
	Status       Status
	CurrentPhase Phase
	FinalAmount  *int64
	CancelReason string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
}

// PartyOf returns the side a user is on, if any.
func (t *Transaction) PartyOf(userID uuid.UUID) (Assignee, bool) {
	switch userID {
	case t.BuyerID:
		return AssigneeBuyer, true
	case t.SellerID:
		return AssigneeSeller, true
	}

	return "", false
}

type Assignee string

const (
	AssigneeBuyer    Assignee = "buyer"
	AssigneeSeller   Assignee = "seller"
	AssigneePlatform Assignee = "platform"
)

type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskComplete TaskStatus = "complete"
	TaskSkipped  TaskStatus = "skipped"
	TaskFailed   TaskStatus = "failed"
)

// Task is a checklist item within a phase.
type Task struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	Phase         Phase
	Title         string
	Description   string
	Assignee      Assignee
	Required      bool
	Status        TaskStatus
	DisplayOrder  int
	Note          string
	CompletedAt   *time.Time
	CompletedBy   *uuid.UUID
	CreatedAt     time.Time
}

// Resolved reports whether the task no longer blocks its phase.
func (t *Task) Resolved() bool {
	return t.Status == TaskComplete || t.Status == TaskSkipped
}

// File is a post-sale document attached to a transaction.
type File struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	TaskID        *uuid.UUID
	UploaderID    uuid.UUID
	Name          string
	URL           string
	ContentType   string
	IsPublic      bool
	IsVerified    bool
	CreatedAt     time.Time
}

type EventType string

const (
	EventInfo    EventType = "info"
	EventSuccess EventType = "success"
	EventWarning EventType = "warning"
	EventError   EventType = "error"
)

// Event is an append-only timeline entry.
type Event struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	Type          EventType
	Title         string
	Description   string
	TaskID        *uuid.UUID
	FileID        *uuid.UUID
	ActorID       *uuid.UUID
	CreatedAt     time.Time
}
