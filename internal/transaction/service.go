package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/events"
	"github.com/MrJamesThe3rd/notemarket/internal/inquiry"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	Begin(ctx context.Context) (UnitOfWork, error)

	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	ListTasks(ctx context.Context, transactionID uuid.UUID) ([]*Task, error)
	ListFiles(ctx context.Context, transactionID uuid.UUID) ([]*File, error)
	ListEvents(ctx context.Context, transactionID uuid.UUID) ([]*Event, error)
	GetFile(ctx context.Context, id uuid.UUID) (*File, error)
}

// UnitOfWork groups the writes of one workflow step into a single database
// transaction. LockTransaction serialises steps on the same transaction.
type UnitOfWork interface {
	LockInquiry(ctx context.Context, id uuid.UUID) (*inquiry.Inquiry, error)
	// LockListing reads the listing row under lock so that only one live
	// transaction can take it off the market.
	LockListing(ctx context.Context, listingID uuid.UUID) (*ListingState, error)
	// CountLive counts the transactions on a listing that are neither
	// completed nor cancelled, leaving out except.
	CountLive(ctx context.Context, listingID, except uuid.UUID) (int, error)
	FindByInquiry(ctx context.Context, inquiryID uuid.UUID) (*Transaction, error)
	LockTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	CreateTransaction(ctx context.Context, t *Transaction) error
	UpdateTransaction(ctx context.Context, t *Transaction) error
	CreateTasks(ctx context.Context, tasks []*Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*Task, error)
	ListTasks(ctx context.Context, transactionID uuid.UUID) ([]*Task, error)
	// ResolveTask persists task only if its stored status is one of from.
	ResolveTask(ctx context.Context, task *Task, from []TaskStatus) error
	CreateFile(ctx context.Context, f *File) error
	GetFile(ctx context.Context, id uuid.UUID) (*File, error)
	UpdateFile(ctx context.Context, f *File) error
	AppendEvent(ctx context.Context, e *Event) error
	SetListingStatus(ctx context.Context, listingID uuid.UUID, status listing.Status) error
	Commit() error
	Rollback() error
}

// ListingInvalidator drops cached listing reads after a workflow step changes
// the listing status behind the listing service's back.
type ListingInvalidator interface {
	Forget(ctx context.Context, id uuid.UUID)
}

type ListFilter struct {
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   *Status
}

type Service struct {
	repo      Repository
	publisher events.Publisher
	metrics   *metrics.Metrics
	listings  ListingInvalidator
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithListingInvalidator(l ListingInvalidator) Option {
	return func(s *Service) { s.listings = l }
}

func NewService(repo Repository, publisher events.Publisher, opts ...Option) *Service {
	s := &Service{repo: repo, publisher: publisher, now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// step runs fn inside a unit of work and commits when it returns nil.
func (s *Service) step(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning unit of work: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("committing unit of work: %w", err)
	}

	return nil
}

func (s *Service) forgetListing(ctx context.Context, id uuid.UUID) {
	if s.listings != nil {
		s.listings.Forget(ctx, id)
	}
}

// access resolves the actor's side of the transaction. Admins act as the
// platform.
func access(actor auth.Session, t *Transaction) (Assignee, error) {
	if party, ok := t.PartyOf(actor.UserID); ok {
		return party, nil
	}

	if actor.Can(auth.CapViewAll) {
		return AssigneePlatform, nil
	}

	return "", ErrNotParty
}

func (s *Service) event(t *Transaction, actor *uuid.UUID, typ EventType, title, description string) *Event {
	return &Event{
		TransactionID: t.ID,
		Type:          typ,
		Title:         title,
		Description:   description,
		ActorID:       actor,
		CreatedAt:     s.now(),
	}
}

// Open starts the transaction for an accepted inquiry on behalf of one of
// its parties or an admin.
func (s *Service) Open(ctx context.Context, actor auth.Session, inquiryID uuid.UUID) (*Transaction, error) {
	return s.open(ctx, &actor, inquiryID)
}

// OpenDeal opens the transaction as the system, right after acceptance.
func (s *Service) OpenDeal(ctx context.Context, inquiryID uuid.UUID) (uuid.UUID, error) {
	t, err := s.open(ctx, nil, inquiryID)
	if err != nil {
		return uuid.Nil, err
	}

	return t.ID, nil
}

// open creates the transaction, its checklist and first timeline entry, and
// takes the listing off the market, all in one unit of work. Repeated calls
// for the same inquiry return the existing transaction.
func (s *Service) open(ctx context.Context, actor *auth.Session, inquiryID uuid.UUID) (*Transaction, error) {
	var t *Transaction

	created := false

	err := s.step(ctx, func(uow UnitOfWork) error {
		inq, err := uow.LockInquiry(ctx, inquiryID)
		if err != nil {
			return err
		}

		if actor != nil {
			if _, ok := inq.PartyOf(actor.UserID); !ok && !actor.Can(auth.CapViewAll) {
				return inquiry.ErrNotFound
			}
		}

		if inq.Status != inquiry.StatusAccepted {
			return inquiry.ErrNotAccepted
		}

		existing, err := uow.FindByInquiry(ctx, inquiryID)
		if err == nil {
			t = existing
			return nil
		}

		if !errors.Is(err, ErrNotFound) {
			return err
		}

		if inq.BuyerID == inq.SellerID {
			return ErrSameParty
		}

		l, err := uow.LockListing(ctx, inq.ListingID)
		if err != nil {
			return err
		}

		if l.Status != listing.StatusActive {
			return fmt.Errorf("%w: listing is %s", ErrListingUnavailable, l.Status)
		}

		agreed := inq.AgreedAmount(l.AskingPrice)
		t = &Transaction{
			InquiryID:    inq.ID,
			ListingID:    inq.ListingID,
			BuyerID:      inq.BuyerID,
			SellerID:     inq.SellerID,
			Status:       StatusNegotiations,
			CurrentPhase: PhaseNegotiations,
			FinalAmount:  &agreed,
			CreatedAt:    s.now(),
		}

		if err := uow.CreateTransaction(ctx, t); err != nil {
			return err
		}

		if err := uow.CreateTasks(ctx, DefaultChecklist(t.ID)); err != nil {
			return err
		}

		var actorID *uuid.UUID
		if actor != nil {
			actorID = &actor.UserID
		}

		if err := uow.AppendEvent(ctx, s.event(t, actorID, EventInfo, "Transaction opened",
			fmt.Sprintf("Opened from an accepted inquiry at %s.", FormatCents(agreed)))); err != nil {
			return err
		}

		if err := uow.SetListingStatus(ctx, t.ListingID, listing.StatusPending); err != nil {
			return err
		}

		created = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.forgetListing(ctx, t.ListingID)
		s.metrics.TransactionOpened()
		events.Emit(ctx, s.publisher, events.SubjectTransactionOpened, map[string]any{
			"transaction_id": t.ID,
			"inquiry_id":     t.InquiryID,
			"listing_id":     t.ListingID,
			"buyer_id":       t.BuyerID,
			"seller_id":      t.SellerID,
			"final_amount":   t.FinalAmount,
		})
	}

	return t, nil
}

// Detail is a transaction with the checklist, files and timeline the viewer
// may see.
type Detail struct {
	Transaction *Transaction
	Tasks       []*Task
	Files       []*File
	Events      []*Event
}

func (s *Service) Get(ctx context.Context, viewer auth.Session, id uuid.UUID) (*Detail, error) {
	t, err := s.visible(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListTasks(ctx, id)
	if err != nil {
		return nil, err
	}

	files, err := s.repo.ListFiles(ctx, id)
	if err != nil {
		return nil, err
	}

	evts, err := s.repo.ListEvents(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Transaction: t,
		Tasks:       tasks,
		Files:       visibleFiles(viewer, files),
		Events:      evts,
	}, nil
}

func (s *Service) visible(ctx context.Context, viewer auth.Session, id uuid.UUID) (*Transaction, error) {
	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := access(viewer, t); err != nil {
		return nil, ErrNotFound
	}

	return t, nil
}

// ListForUser lists the viewer's transactions on one side of the deal.
func (s *Service) ListForUser(ctx context.Context, viewer auth.Session, role Assignee) ([]*Transaction, error) {
	switch role {
	case AssigneeBuyer:
		return s.repo.ListTransactions(ctx, ListFilter{BuyerID: &viewer.UserID})
	case AssigneeSeller:
		return s.repo.ListTransactions(ctx, ListFilter{SellerID: &viewer.UserID})
	}

	return nil, validation.Errors{"role": validation.NewError("validation_in_invalid", "must be buyer or seller")}
}

// ListAll is the operator view over every transaction.
func (s *Service) ListAll(ctx context.Context, admin auth.Session, status *Status) ([]*Transaction, error) {
	if err := admin.Require(auth.CapViewAll); err != nil {
		return nil, err
	}

	return s.repo.ListTransactions(ctx, ListFilter{Status: status})
}

type UpdateParams struct {
	FinalAmount *int64  `json:"final_amount,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (p UpdateParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FinalAmount, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&p.Notes, validation.Length(0, 10000)),
	)
}

func (s *Service) Update(ctx context.Context, actor auth.Session, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var t *Transaction

	err := s.step(ctx, func(uow UnitOfWork) error {
		var err error

		t, err = uow.LockTransaction(ctx, id)
		if err != nil {
			return err
		}

		if _, err := access(actor, t); err != nil {
			return err
		}

		if t.Status.Terminal() {
			return ErrTerminal
		}

		var changes []string

		if params.FinalAmount != nil {
			if t.Status != StatusNegotiations {
				return ErrFinalAmountLocked
			}

			t.FinalAmount = params.FinalAmount
			changes = append(changes, "final amount set to "+FormatCents(*params.FinalAmount))
		}

		if params.Notes != nil {
			t.Notes = *params.Notes
			changes = append(changes, "notes updated")
		}

		if len(changes) == 0 {
			return nil
		}

		now := s.now()
		t.UpdatedAt = &now

		if err := uow.UpdateTransaction(ctx, t); err != nil {
			return err
		}

		return uow.AppendEvent(ctx, s.event(t, &actor.UserID, EventInfo, "Transaction updated",
			capitalize(strings.Join(changes, ", "))+"."))
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// AdvancePhase moves the transaction to its next phase once every required
// task of the current phase is complete or skipped. Completing the closing
// phase needs a final amount and marks the listing sold.
func (s *Service) AdvancePhase(ctx context.Context, actor auth.Session, id uuid.UUID) (*Transaction, error) {
	var t *Transaction

	err := s.step(ctx, func(uow UnitOfWork) error {
		var err error

		t, err = uow.LockTransaction(ctx, id)
		if err != nil {
			return err
		}

		if _, err := access(actor, t); err != nil {
			return err
		}

		if t.Status.Terminal() {
			return ErrTerminal
		}

		tasks, err := uow.ListTasks(ctx, id)
		if err != nil {
			return err
		}

		var blocking []string

		for _, task := range tasks {
			if task.Phase == t.CurrentPhase && task.Required && !task.Resolved() {
				blocking = append(blocking, task.Title)
			}
		}

		if len(blocking) > 0 {
			return fmt.Errorf("%w: %s", ErrPhaseBlocked, strings.Join(blocking, ", "))
		}

		next, ok := t.CurrentPhase.next()
		if !ok {
			return ErrTerminal
		}

		now := s.now()
		title := "Moved to " + string(next)

		if next == PhaseCompleted {
			if t.FinalAmount == nil {
				return ErrFinalAmountRequired
			}

			t.CompletedAt = &now
			title = "Transaction completed"

			if err := uow.SetListingStatus(ctx, t.ListingID, listing.StatusSold); err != nil {
				return err
			}
		}

		t.CurrentPhase = next
		t.Status = Status(next)
		t.UpdatedAt = &now

		if err := uow.UpdateTransaction(ctx, t); err != nil {
			return err
		}

		return uow.AppendEvent(ctx, s.event(t, &actor.UserID, EventSuccess, title, ""))
	})
	if err != nil {
		return nil, err
	}

	if t.Status == StatusCompleted {
		s.forgetListing(ctx, t.ListingID)
	}

	s.metrics.PhaseAdvanced(string(t.CurrentPhase))
	events.Emit(ctx, s.publisher, events.SubjectTransactionAdvanced, map[string]any{
		"transaction_id": t.ID,
		"listing_id":     t.ListingID,
		"phase":          t.CurrentPhase,
		"actor_id":       actor.UserID,
	})

	return t, nil
}

// Cancel ends the transaction. The phase reached is kept. The listing goes
// back on the market only if it is still pending and no other live
// transaction holds it.
func (s *Service) Cancel(ctx context.Context, actor auth.Session, id uuid.UUID, reason string) (*Transaction, error) {
	reason = strings.TrimSpace(reason)
	if err := validation.Validate(reason, validation.Required, validation.Length(1, 2000)); err != nil {
		return nil, validation.Errors{"reason": err}
	}

	var t *Transaction

	err := s.step(ctx, func(uow UnitOfWork) error {
		var err error

		t, err = uow.LockTransaction(ctx, id)
		if err != nil {
			return err
		}

		if _, err := access(actor, t); err != nil {
			return err
		}

		if t.Status.Terminal() {
			return ErrTerminal
		}

		now := s.now()
		t.Status = StatusCancelled
		t.CancelReason = reason
		t.CancelledAt = &now
		t.UpdatedAt = &now

		if err := uow.UpdateTransaction(ctx, t); err != nil {
			return err
		}

		if err := s.release(ctx, uow, t); err != nil {
			return err
		}

		return uow.AppendEvent(ctx, s.event(t, &actor.UserID, EventWarning, "Transaction cancelled", reason))
	})
	if err != nil {
		return nil, err
	}

	s.forgetListing(ctx, t.ListingID)
	events.Emit(ctx, s.publisher, events.SubjectTransactionCancelled, map[string]any{
		"transaction_id": t.ID,
		"listing_id":     t.ListingID,
		"phase":          t.CurrentPhase,
		"reason":         reason,
	})

	return t, nil
}

// release puts the listing of a cancelled transaction back on the market.
func (s *Service) release(ctx context.Context, uow UnitOfWork, t *Transaction) error {
	l, err := uow.LockListing(ctx, t.ListingID)
	if err != nil {
		return err
	}

	if l.Status != listing.StatusPending {
		return nil
	}

	live, err := uow.CountLive(ctx, t.ListingID, t.ID)
	if err != nil {
		return err
	}

	if live > 0 {
		return nil
	}

	return uow.SetListingStatus(ctx, t.ListingID, listing.StatusActive)
}

// canWork reports whether a side of the deal may act on a task.
func canWork(actor auth.Session, side Assignee, task *Task) bool {
	if task.Assignee == AssigneePlatform {
		return actor.Can(auth.CapPlatformTasks)
	}

	return side == task.Assignee || actor.Can(auth.CapPlatformTasks)
}

type taskChange struct {
	to        TaskStatus
	from      []TaskStatus
	eventType EventType
	title     string
}

// resolveTask applies a task status change and its timeline entry in one unit
// of work. The transaction row lock serialises concurrent callers and the
// conditional update turns the loser into ErrTaskResolved.
func (s *Service) resolveTask(ctx context.Context, actor auth.Session, taskID uuid.UUID, note string, change taskChange) (*Task, *Transaction, error) {
	var (
		task *Task
		t    *Transaction
	)

	err := s.step(ctx, func(uow UnitOfWork) error {
		var err error

		task, err = uow.GetTask(ctx, taskID)
		if err != nil {
			return err
		}

		t, err = uow.LockTransaction(ctx, task.TransactionID)
		if err != nil {
			return err
		}

		side, err := access(actor, t)
		if err != nil {
			return err
		}

		if t.Status.Terminal() {
			return ErrTerminal
		}

		if !canWork(actor, side, task) {
			return ErrNotAssignee
		}

		if change.to == TaskSkipped && task.Required && !actor.Can(auth.CapPlatformTasks) {
			return ErrRequiredTask
		}

		now := s.now()
		task.Status = change.to
		task.Note = strings.TrimSpace(note)

		if change.to == TaskComplete {
			task.CompletedAt = &now
			task.CompletedBy = &actor.UserID
		}

		if err := uow.ResolveTask(ctx, task, change.from); err != nil {
			return err
		}

		e := s.event(t, &actor.UserID, change.eventType, change.title, task.Title)
		e.TaskID = &task.ID

		return uow.AppendEvent(ctx, e)
	})
	if err != nil {
		return nil, nil, err
	}

	return task, t, nil
}

// CompleteTask marks a pending task complete and logs exactly one success
// event for it.
func (s *Service) CompleteTask(ctx context.Context, actor auth.Session, taskID uuid.UUID, note string) (*Task, error) {
	task, t, err := s.resolveTask(ctx, actor, taskID, note, taskChange{
		to:        TaskComplete,
		from:      []TaskStatus{TaskPending},
		eventType: EventSuccess,
		title:     "Task completed",
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TaskCompleted()
	events.Emit(ctx, s.publisher, events.SubjectTransactionTaskComplete, map[string]any{
		"transaction_id": t.ID,
		"task_id":        task.ID,
		"phase":          task.Phase,
		"completed_by":   actor.UserID,
	})

	return task, nil
}

// SkipTask waives a task. Required tasks, and failed ones, can only be
// waived by an admin.
func (s *Service) SkipTask(ctx context.Context, actor auth.Session, taskID uuid.UUID, note string) (*Task, error) {
	from := []TaskStatus{TaskPending}
	if actor.Can(auth.CapPlatformTasks) {
		from = append(from, TaskFailed)
	}

	task, _, err := s.resolveTask(ctx, actor, taskID, note, taskChange{
		to:        TaskSkipped,
		from:      from,
		eventType: EventInfo,
		title:     "Task skipped",
	})

	return task, err
}

// FailTask records that a task could not be done. A failed required task
// blocks its phase until an admin skips it.
func (s *Service) FailTask(ctx context.Context, actor auth.Session, taskID uuid.UUID, note string) (*Task, error) {
	task, _, err := s.resolveTask(ctx, actor, taskID, note, taskChange{
		to:        TaskFailed,
		from:      []TaskStatus{TaskPending},
		eventType: EventError,
		title:     "Task failed",
	})

	return task, err
}

type FileParams struct {
	TaskID      *uuid.UUID `json:"task_id,omitempty"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	ContentType string     `json:"content_type"`
	IsPublic    bool       `json:"is_public"`
}

func (p FileParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.URL, validation.Required, is.URL),
		validation.Field(&p.ContentType, validation.Length(0, 255)),
	)
}

func (s *Service) AddFile(ctx context.Context, uploader auth.Session, id uuid.UUID, params FileParams) (*File, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var f *File

	err := s.step(ctx, func(uow UnitOfWork) error {
		t, err := uow.LockTransaction(ctx, id)
		if err != nil {
			return err
		}

		if _, err := access(uploader, t); err != nil {
			return err
		}

		if t.Status.Terminal() {
			return ErrTerminal
		}

		if params.TaskID != nil {
			task, err := uow.GetTask(ctx, *params.TaskID)
			if err != nil {
				return err
			}

			if task.TransactionID != t.ID {
				return validation.Errors{"task_id": validation.NewError("validation_task_mismatch", "task belongs to another transaction")}
			}
		}

		f = &File{
			TransactionID: t.ID,
			TaskID:        params.TaskID,
			UploaderID:    uploader.UserID,
			Name:          strings.TrimSpace(params.Name),
			URL:           params.URL,
			ContentType:   params.ContentType,
			IsPublic:      params.IsPublic,
			CreatedAt:     s.now(),
		}

		if err := uow.CreateFile(ctx, f); err != nil {
			return err
		}

		e := s.event(t, &uploader.UserID, EventInfo, "File uploaded", f.Name)
		e.FileID = &f.ID
		e.TaskID = f.TaskID

		return uow.AppendEvent(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	return f, nil
}

// visibleFiles applies the release gate: the counterpart only sees files that
// were made public and verified.
func visibleFiles(viewer auth.Session, files []*File) []*File {
	if viewer.Can(auth.CapViewAll) {
		return files
	}

	out := make([]*File, 0, len(files))
	for _, f := range files {
		if f.UploaderID == viewer.UserID || (f.IsPublic && f.IsVerified) {
			out = append(out, f)
		}
	}

	return out
}

func (s *Service) ListFiles(ctx context.Context, viewer auth.Session, id uuid.UUID) ([]*File, error) {
	if _, err := s.visible(ctx, viewer, id); err != nil {
		return nil, err
	}

	files, err := s.repo.ListFiles(ctx, id)
	if err != nil {
		return nil, err
	}

	return visibleFiles(viewer, files), nil
}

func (s *Service) VerifyFile(ctx context.Context, admin auth.Session, fileID uuid.UUID) (*File, error) {
	if err := admin.Require(auth.CapReview); err != nil {
		return nil, err
	}

	return s.changeFile(ctx, admin, fileID, "File verified", func(f *File) { f.IsVerified = true })
}

func (s *Service) ReleaseFile(ctx context.Context, uploader auth.Session, fileID uuid.UUID) (*File, error) {
	f, err := s.repo.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if f.UploaderID != uploader.UserID && !uploader.Can(auth.CapReview) {
		return nil, ErrNotUploader
	}

	return s.changeFile(ctx, uploader, fileID, "File released", func(f *File) { f.IsPublic = true })
}

// changeFile applies a flag change to the file as stored under the
// transaction lock, so concurrent verify and release both survive.
func (s *Service) changeFile(ctx context.Context, actor auth.Session, fileID uuid.UUID, title string, apply func(*File)) (*File, error) {
	snapshot, err := s.repo.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	var f *File

	err = s.step(ctx, func(uow UnitOfWork) error {
		t, err := uow.LockTransaction(ctx, snapshot.TransactionID)
		if err != nil {
			return err
		}

		if t.Status.Terminal() {
			return ErrTerminal
		}

		f, err = uow.GetFile(ctx, fileID)
		if err != nil {
			return err
		}

		apply(f)

		if err := uow.UpdateFile(ctx, f); err != nil {
			return err
		}

		e := s.event(t, &actor.UserID, EventInfo, title, f.Name)
		e.FileID = &f.ID

		return uow.AppendEvent(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	return f, nil
}

type EventParams struct {
	Type        EventType  `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TaskID      *uuid.UUID `json:"task_id,omitempty"`
	FileID      *uuid.UUID `json:"file_id,omitempty"`
}

func (p EventParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Type, validation.Required, validation.In(EventInfo, EventSuccess, EventWarning, EventError)),
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Description, validation.Length(0, 4000)),
	)
}

// AppendEvent adds a manual timeline entry. The timeline has no update or
// delete path.
func (s *Service) AppendEvent(ctx context.Context, actor auth.Session, id uuid.UUID, params EventParams) (*Event, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var e *Event

	err := s.step(ctx, func(uow UnitOfWork) error {
		t, err := uow.LockTransaction(ctx, id)
		if err != nil {
			return err
		}

		if _, err := access(actor, t); err != nil {
			return err
		}

		if params.TaskID != nil {
			task, err := uow.GetTask(ctx, *params.TaskID)
			if err != nil {
				return err
			}

			if task.TransactionID != t.ID {
				return validation.Errors{"task_id": validation.NewError("validation_task_mismatch", "task belongs to another transaction")}
			}
		}

		if params.FileID != nil {
			file, err := uow.GetFile(ctx, *params.FileID)
			if err != nil {
				return err
			}

			if file.TransactionID != t.ID {
				return validation.Errors{"file_id": validation.NewError("validation_file_mismatch", "file belongs to another transaction")}
			}
		}

		e = s.event(t, &actor.UserID, params.Type, strings.TrimSpace(params.Title), params.Description)
		e.TaskID = params.TaskID
		e.FileID = params.FileID

		return uow.AppendEvent(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Timeline(ctx context.Context, viewer auth.Session, id uuid.UUID) ([]*Event, error) {
	if _, err := s.visible(ctx, viewer, id); err != nil {
		return nil, err
	}

	return s.repo.ListEvents(ctx, id)
}

// FormatCents renders an amount in cents as dollars.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	whole := fmt.Sprintf("%d", cents/100)

	var b strings.Builder

	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(r)
	}

	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), cents%100)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
