package transaction_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/inquiry"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/transaction"
)

// memRepo is an in-memory Repository. Writes made through a unit of work are
// staged and only land on Commit; row locks are held until Commit or Rollback.
type memRepo struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex

	inquiries map[uuid.UUID]inquiry.Inquiry
	prices    map[uuid.UUID]int64
	listings  map[uuid.UUID]listing.Status
	txs       map[uuid.UUID]transaction.Transaction
	tasks     []transaction.Task
	files     map[uuid.UUID]transaction.File
	events    []transaction.Event

	failAppend bool
	// onGetFile runs once, after the next read of a file outside a unit of
	// work.
	onGetFile func()
}

func newMemRepo() *memRepo {
	return &memRepo{
		locks:     map[uuid.UUID]*sync.Mutex{},
		inquiries: map[uuid.UUID]inquiry.Inquiry{},
		prices:    map[uuid.UUID]int64{},
		listings:  map[uuid.UUID]listing.Status{},
		txs:       map[uuid.UUID]transaction.Transaction{},
		files:     map[uuid.UUID]transaction.File{},
	}
}

func (r *memRepo) lockFor(id uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}

	return l
}

func (r *memRepo) Begin(context.Context) (transaction.UnitOfWork, error) {
	return &memUoW{repo: r}, nil
}

func (r *memRepo) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.txs[id]
	if !ok {
		return nil, transaction.ErrNotFound
	}

	return &t, nil
}

func (r *memRepo) ListTransactions(_ context.Context, f transaction.ListFilter) ([]*transaction.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*transaction.Transaction

	for _, t := range r.txs {
		if f.BuyerID != nil && t.BuyerID != *f.BuyerID {
			continue
		}

		if f.SellerID != nil && t.SellerID != *f.SellerID {
			continue
		}

		if f.Status != nil && t.Status != *f.Status {
			continue
		}

		out = append(out, &t)
	}

	return out, nil
}

func (r *memRepo) ListTasks(_ context.Context, id uuid.UUID) ([]*transaction.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.tasksOf(id), nil
}

func (r *memRepo) tasksOf(id uuid.UUID) []*transaction.Task {
	var out []*transaction.Task

	for _, t := range r.tasks {
		if t.TransactionID == id {
			out = append(out, &t)
		}
	}

	return out
}

func (r *memRepo) ListFiles(_ context.Context, id uuid.UUID) ([]*transaction.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*transaction.File

	for _, f := range r.files {
		if f.TransactionID == id {
			out = append(out, &f)
		}
	}

	return out, nil
}

func (r *memRepo) ListEvents(_ context.Context, id uuid.UUID) ([]*transaction.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*transaction.Event

	for _, e := range r.events {
		if e.TransactionID == id {
			out = append(out, &e)
		}
	}

	return out, nil
}

func (r *memRepo) GetFile(_ context.Context, id uuid.UUID) (*transaction.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	hook := r.onGetFile
	r.onGetFile = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}

	r.mu.Lock()

	if !ok {
		return nil, transaction.ErrFileNotFound
	}

	return &f, nil
}

func (r *memRepo) task(id uuid.UUID) (transaction.Task, int) {
	for i, t := range r.tasks {
		if t.ID == id {
			return t, i
		}
	}

	return transaction.Task{}, -1
}

func (r *memRepo) eventsFor(taskID uuid.UUID) []transaction.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []transaction.Event

	for _, e := range r.events {
		if e.TaskID != nil && *e.TaskID == taskID {
			out = append(out, e)
		}
	}

	return out
}

type memUoW struct {
	repo   *memRepo
	held   []*sync.Mutex
	staged []func()
	done   bool
}

func (u *memUoW) lock(id uuid.UUID) {
	l := u.repo.lockFor(id)
	l.Lock()
	u.held = append(u.held, l)
}

func (u *memUoW) release() {
	for _, l := range u.held {
		l.Unlock()
	}

	u.held = nil
	u.done = true
}

func (u *memUoW) stage(fn func()) {
	u.staged = append(u.staged, fn)
}

func (u *memUoW) Commit() error {
	if u.done {
		return errors.New("uow already finished")
	}

	u.repo.mu.Lock()
	for _, fn := range u.staged {
		fn()
	}
	u.repo.mu.Unlock()

	u.release()

	return nil
}

func (u *memUoW) Rollback() error {
	if u.done {
		return nil
	}

	u.release()

	return nil
}

func (u *memUoW) LockInquiry(_ context.Context, id uuid.UUID) (*inquiry.Inquiry, error) {
	u.lock(id)

	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()

	i, ok := u.repo.inquiries[id]
	if !ok {
		return nil, inquiry.ErrNotFound
	}

	return &i, nil
}

func (u *memUoW) LockListing(_ context.Context, id uuid.UUID) (*transaction.ListingState, error) {
	u.lock(id)

	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()

	p, ok := u.repo.prices[id]
	if !ok {
		return nil, listing.ErrNotFound
	}

	return &transaction.ListingState{Status: u.repo.listings[id], AskingPrice: p}, nil
}

func (u *memUoW) CountLive(_ context.Context, listingID, except uuid.UUID) (int, error) {
	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()

	n := 0

	for _, t := range u.repo.txs {
		if t.ListingID == listingID && t.ID != except && !t.Status.Terminal() {
			n++
		}
	}

	return n, nil
}

func (u *memUoW) FindByInquiry(_ context.Context, inquiryID uuid.UUID) (*transaction.Transaction, error) {
	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()

	for _, t := range u.repo.txs {
		if t.InquiryID == inquiryID {
			return &t, nil
		}
	}

	return nil, transaction.ErrNotFound
}

func (u *memUoW) LockTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	u.lock(id)

	return u.repo.GetTransaction(ctx, id)
}

func (u *memUoW) CreateTransaction(_ context.Context, t *transaction.Transaction) error {
	t.ID = uuid.New()
	cp := *t
	u.stage(func() { u.repo.txs[cp.ID] = cp })

	return nil
}

func (u *memUoW) UpdateTransaction(_ context.Context, t *transaction.Transaction) error {
	cp := *t
	u.stage(func() { u.repo.txs[cp.ID] = cp })

	return nil
}

func (u *memUoW) CreateTasks(_ context.Context, tasks []*transaction.Task) error {
	for _, t := range tasks {
		t.ID = uuid.New()
		t.CreatedAt = time.Now()
		cp := *t
		u.stage(func() { u.repo.tasks = append(u.repo.tasks, cp) })
	}

	return nil
}

func (u *memUoW) GetTask(_ context.Context, id uuid.UUID) (*transaction.Task, error) {
	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()

	t, idx := u.repo.task(id)
	if idx < 0 {
		return nil, transaction.ErrTaskNotFound
	}

	return &t, nil
}

func (u *memUoW) ListTasks(ctx context.Context, id uuid.UUID) ([]*transaction.Task, error) {
	return u.repo.ListTasks(ctx, id)
}

func (u *memUoW) ResolveTask(_ context.Context, task *transaction.Task, from []transaction.TaskStatus) error {
	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()

	current, idx := u.repo.task(task.ID)
	if idx < 0 {
		return transaction.ErrTaskNotFound
	}

	if !slices.Contains(from, current.Status) {
		return transaction.ErrTaskResolved
	}

	cp := *task
	u.stage(func() {
		_, i := u.repo.task(cp.ID)
		u.repo.tasks[i] = cp
	})

	return nil
}

func (u *memUoW) CreateFile(_ context.Context, f *transaction.File) error {
	f.ID = uuid.New()
	cp := *f
	u.stage(func() { u.repo.files[cp.ID] = cp })

	return nil
}

func (u *memUoW) GetFile(_ context.Context, id uuid.UUID) (*transaction.File, error) {
	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()

	f, ok := u.repo.files[id]
	if !ok {
		return nil, transaction.ErrFileNotFound
	}

	return &f, nil
}

func (u *memUoW) UpdateFile(_ context.Context, f *transaction.File) error {
	cp := *f
	u.stage(func() { u.repo.files[cp.ID] = cp })

	return nil
}

func (u *memUoW) AppendEvent(_ context.Context, e *transaction.Event) error {
	if u.repo.failAppend {
		return errors.New("timeline unavailable")
	}

	e.ID = uuid.New()
	cp := *e
	u.stage(func() { u.repo.events = append(u.repo.events, cp) })

	return nil
}

func (u *memUoW) SetListingStatus(_ context.Context, id uuid.UUID, status listing.Status) error {
	u.stage(func() { u.repo.listings[id] = status })

	return nil
}
