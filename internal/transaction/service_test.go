package transaction_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/events"
	"github.com/MrJamesThe3rd/notemarket/internal/inquiry"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/transaction"
)

var (
	buyer  = auth.Session{UserID: uuid.New(), Role: auth.RoleInvestor}
	seller = auth.Session{UserID: uuid.New(), Role: auth.RoleSeller}
	admin  = auth.Session{UserID: uuid.New(), Role: auth.RoleAdmin}
)

type forgetter struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (f *forgetter) Forget(_ context.Context, id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ids = append(f.ids, id)
}

type fixture struct {
	repo      *memRepo
	svc       *transaction.Service
	rec       *events.Recorder
	forgotten *forgetter
	listingID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{repo: newMemRepo(), rec: &events.Recorder{}, forgotten: &forgetter{}, listingID: uuid.New()}
	f.repo.prices[f.listingID] = 175_000_00
	f.repo.listings[f.listingID] = listing.StatusActive
	f.svc = transaction.NewService(f.repo, f.rec, transaction.WithListingInvalidator(f.forgotten))

	return f
}

// acceptedInquiry stores an inquiry where the seller countered 165000 on a
// 150000 offer and the buyer accepted.
func (f *fixture) acceptedInquiry() uuid.UUID {
	return f.acceptedInquiryOn(f.listingID)
}

func (f *fixture) acceptedInquiryOn(listingID uuid.UUID) uuid.UUID {
	i := inquiry.Inquiry{
		ID:            uuid.New(),
		ListingID:     listingID,
		BuyerID:       buyer.UserID,
		SellerID:      seller.UserID,
		OfferAmount:   new(int64(150_000_00)),
		CounterAmount: new(int64(165_000_00)),
		Status:        inquiry.StatusAccepted,
	}
	f.repo.inquiries[i.ID] = i

	return i.ID
}

func (f *fixture) open(t *testing.T) *transaction.Transaction {
	t.Helper()

	tx, err := f.svc.Open(context.Background(), buyer, f.acceptedInquiry())
	require.NoError(t, err)

	return tx
}

func (f *fixture) tasks(t *testing.T, id uuid.UUID, phase transaction.Phase) []*transaction.Task {
	t.Helper()

	all, err := f.repo.ListTasks(context.Background(), id)
	require.NoError(t, err)

	var out []*transaction.Task

	for _, task := range all {
		if task.Phase == phase {
			out = append(out, task)
		}
	}

	return out
}

// finishPhase resolves every task of a phase the way its assignee would.
func (f *fixture) finishPhase(t *testing.T, id uuid.UUID, phase transaction.Phase) {
	t.Helper()

	for _, task := range f.tasks(t, id, phase) {
		actor := admin

		switch task.Assignee {
		case transaction.AssigneeBuyer:
			actor = buyer
		case transaction.AssigneeSeller:
			actor = seller
		}

		var err error
		if task.Required {
			_, err = f.svc.CompleteTask(context.Background(), actor, task.ID, "")
		} else {
			_, err = f.svc.SkipTask(context.Background(), actor, task.ID, "not needed")
		}

		require.NoError(t, err)
	}
}

func TestService_Open(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)

	assert.Equal(t, transaction.StatusNegotiations, tx.Status)
	assert.Equal(t, transaction.PhaseNegotiations, tx.CurrentPhase)
	require.NotNil(t, tx.FinalAmount)
	assert.EqualValues(t, 165_000_00, *tx.FinalAmount)
	assert.NotEqual(t, tx.BuyerID, tx.SellerID)

	detail, err := f.svc.Get(context.Background(), seller, tx.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Tasks, len(transaction.DefaultChecklist(tx.ID)))
	require.Len(t, detail.Events, 1)
	assert.Equal(t, transaction.EventInfo, detail.Events[0].Type)
	assert.Equal(t, "Transaction opened", detail.Events[0].Title)

	assert.Equal(t, listing.StatusPending, f.repo.listings[f.listingID])
	assert.Equal(t, []uuid.UUID{f.listingID}, f.forgotten.ids)
	assert.Equal(t, []string{events.SubjectTransactionOpened}, f.rec.Subjects())
}

func TestService_Open_Idempotent(t *testing.T) {
	f := newFixture(t)
	inquiryID := f.acceptedInquiry()

	first, err := f.svc.OpenDeal(context.Background(), inquiryID)
	require.NoError(t, err)

	second, err := f.svc.Open(context.Background(), seller, inquiryID)
	require.NoError(t, err)

	assert.Equal(t, first, second.ID)
	assert.Len(t, f.repo.txs, 1)
	assert.Len(t, f.rec.Events(), 1)
}

func TestService_Open_Refusals(t *testing.T) {
	f := newFixture(t)

	pending := inquiry.Inquiry{ID: uuid.New(), ListingID: f.listingID, BuyerID: buyer.UserID, SellerID: seller.UserID, Status: inquiry.StatusPending}
	rejected := inquiry.Inquiry{ID: uuid.New(), ListingID: f.listingID, BuyerID: buyer.UserID, SellerID: seller.UserID, Status: inquiry.StatusRejected}
	f.repo.inquiries[pending.ID] = pending
	f.repo.inquiries[rejected.ID] = rejected

	_, err := f.svc.Open(context.Background(), buyer, pending.ID)
	assert.ErrorIs(t, err, inquiry.ErrNotAccepted)

	_, err = f.svc.Open(context.Background(), buyer, rejected.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = f.svc.Open(context.Background(), auth.Session{UserID: uuid.New(), Role: auth.RoleInvestor}, f.acceptedInquiry())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Empty(t, f.repo.txs)
	assert.Equal(t, listing.StatusActive, f.repo.listings[f.listingID])
}

func TestService_Open_SameParty(t *testing.T) {
	f := newFixture(t)

	self := inquiry.Inquiry{
		ID:        uuid.New(),
		ListingID: f.listingID,
		BuyerID:   seller.UserID,
		SellerID:  seller.UserID,
		Status:    inquiry.StatusAccepted,
	}
	f.repo.inquiries[self.ID] = self

	_, err := f.svc.Open(context.Background(), seller, self.ID)
	assert.ErrorIs(t, err, transaction.ErrSameParty)

	assert.Empty(t, f.repo.txs)
	assert.Equal(t, listing.StatusActive, f.repo.listings[f.listingID])
}

func TestService_Open_ListingAlreadyTaken(t *testing.T) {
	f := newFixture(t)
	first := f.open(t)

	_, err := f.svc.OpenDeal(context.Background(), f.acceptedInquiry())
	assert.ErrorIs(t, err, transaction.ErrListingUnavailable)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	assert.Len(t, f.repo.txs, 1)
	assert.Contains(t, f.repo.txs, first.ID)
	assert.Equal(t, listing.StatusPending, f.repo.listings[f.listingID])

	f.repo.listings[f.listingID] = listing.StatusSold

	_, err = f.svc.OpenDeal(context.Background(), f.acceptedInquiry())
	assert.ErrorIs(t, err, transaction.ErrListingUnavailable)
}

func TestService_Open_AtomicOnFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.failAppend = true

	_, err := f.svc.Open(context.Background(), buyer, f.acceptedInquiry())
	require.Error(t, err)

	assert.Empty(t, f.repo.txs)
	assert.Empty(t, f.repo.tasks)
	assert.Empty(t, f.repo.events)
	assert.Equal(t, listing.StatusActive, f.repo.listings[f.listingID])
}

func TestService_AdvancePhase_BlockedByRequiredTask(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)

	_, err := f.svc.AdvancePhase(context.Background(), buyer, tx.ID)
	require.ErrorIs(t, err, transaction.ErrPhaseBlocked)
	assert.Contains(t, err.Error(), "Confirm purchase price")

	got, err := f.repo.GetTransaction(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, transaction.PhaseNegotiations, got.CurrentPhase)
}

func TestService_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)

	f.finishPhase(t, tx.ID, transaction.PhaseNegotiations)

	advanced, err := f.svc.AdvancePhase(context.Background(), seller, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusClosing, advanced.Status)
	assert.Equal(t, transaction.PhaseClosing, advanced.CurrentPhase)

	_, err = f.svc.Update(context.Background(), buyer, tx.ID, transaction.UpdateParams{FinalAmount: new(int64(160_000_00))})
	assert.ErrorIs(t, err, transaction.ErrFinalAmountLocked)

	f.finishPhase(t, tx.ID, transaction.PhaseClosing)

	done, err := f.svc.AdvancePhase(context.Background(), admin, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusCompleted, done.Status)
	assert.Equal(t, transaction.PhaseCompleted, done.CurrentPhase)
	assert.NotNil(t, done.CompletedAt)
	assert.Equal(t, listing.StatusSold, f.repo.listings[f.listingID])

	_, err = f.svc.AdvancePhase(context.Background(), admin, tx.ID)
	assert.ErrorIs(t, err, transaction.ErrTerminal)

	_, err = f.svc.Cancel(context.Background(), buyer, tx.ID, "changed my mind")
	assert.ErrorIs(t, err, transaction.ErrTerminal)
}

func TestService_AdvancePhase_NeedsFinalAmount(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)

	stored := f.repo.txs[tx.ID]
	stored.FinalAmount = nil
	f.repo.txs[tx.ID] = stored

	f.finishPhase(t, tx.ID, transaction.PhaseNegotiations)
	_, err := f.svc.AdvancePhase(context.Background(), buyer, tx.ID)
	require.NoError(t, err)

	f.finishPhase(t, tx.ID, transaction.PhaseClosing)
	_, err = f.svc.AdvancePhase(context.Background(), buyer, tx.ID)
	assert.ErrorIs(t, err, transaction.ErrFinalAmountRequired)
	assert.Equal(t, listing.StatusPending, f.repo.listings[f.listingID])
}

func TestService_CompleteTask(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)

	tasks := f.tasks(t, tx.ID, transaction.PhaseNegotiations)
	buyerTask := tasks[0]
	require.Equal(t, transaction.AssigneeBuyer, buyerTask.Assignee)

	_, err := f.svc.CompleteTask(context.Background(), seller, buyerTask.ID, "")
	assert.ErrorIs(t, err, transaction.ErrNotAssignee)

	done, err := f.svc.CompleteTask(context.Background(), buyer, buyerTask.ID, "Agreed at 165k")
	require.NoError(t, err)
	assert.Equal(t, transaction.TaskComplete, done.Status)
	assert.Equal(t, &buyer.UserID, done.CompletedBy)
	assert.NotNil(t, done.CompletedAt)

	evts := f.repo.eventsFor(buyerTask.ID)
	require.Len(t, evts, 1)
	assert.Equal(t, transaction.EventSuccess, evts[0].Type)

	_, err = f.svc.CompleteTask(context.Background(), buyer, buyerTask.ID, "")
	assert.ErrorIs(t, err, transaction.ErrTaskResolved)
	assert.Len(t, f.repo.eventsFor(buyerTask.ID), 1)
}

func TestService_CompleteTask_Concurrent(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)
	task := f.tasks(t, tx.ID, transaction.PhaseNegotiations)[0]

	const callers = 8

	var wg sync.WaitGroup

	errs := make([]error, callers)

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errs[i] = f.svc.CompleteTask(context.Background(), buyer, task.ID, "")
		}()
	}

	wg.Wait()

	var ok, conflicts int

	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrConflict):
			conflicts++
		}
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, conflicts)
	assert.Len(t, f.repo.eventsFor(task.ID), 1)
}

func TestService_SkipAndFailTask(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)
	tasks := f.tasks(t, tx.ID, transaction.PhaseNegotiations)

	required, optional := tasks[0], tasks[3]
	require.True(t, required.Required)
	require.False(t, optional.Required)

	_, err := f.svc.SkipTask(context.Background(), buyer, required.ID, "")
	assert.ErrorIs(t, err, transaction.ErrRequiredTask)

	_, err = f.svc.SkipTask(context.Background(), buyer, optional.ID, "")
	require.NoError(t, err)

	failed, err := f.svc.FailTask(context.Background(), buyer, required.ID, "seller would not budge")
	require.NoError(t, err)
	assert.Equal(t, transaction.TaskFailed, failed.Status)

	evts := f.repo.eventsFor(required.ID)
	require.Len(t, evts, 1)
	assert.Equal(t, transaction.EventError, evts[0].Type)

	_, err = f.svc.CompleteTask(context.Background(), buyer, required.ID, "")
	assert.ErrorIs(t, err, transaction.ErrTaskResolved)

	skipped, err := f.svc.SkipTask(context.Background(), admin, required.ID, "waived by operations")
	require.NoError(t, err)
	assert.True(t, skipped.Resolved())
}

func TestService_Cancel(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)

	_, err := f.svc.Cancel(context.Background(), buyer, tx.ID, "  ")
	require.Error(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), seller, tx.ID, "Borrower filed bankruptcy")
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusCancelled, cancelled.Status)
	assert.Equal(t, transaction.PhaseNegotiations, cancelled.CurrentPhase)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, listing.StatusActive, f.repo.listings[f.listingID])

	task := f.tasks(t, tx.ID, transaction.PhaseNegotiations)[0]
	_, err = f.svc.CompleteTask(context.Background(), buyer, task.ID, "")
	assert.ErrorIs(t, err, transaction.ErrTerminal)

	_, err = f.svc.AddFile(context.Background(), buyer, tx.ID, transaction.FileParams{Name: "proof.pdf", URL: "https://files.example.com/proof.pdf"})
	assert.ErrorIs(t, err, transaction.ErrTerminal)

	assert.Contains(t, f.rec.Subjects(), events.SubjectTransactionCancelled)
}

// seedLive stores a live transaction on the fixture listing without going
// through Open, as rows written before the listing lock existed would be.
func (f *fixture) seedLive() *transaction.Transaction {
	tx := transaction.Transaction{
		ID:           uuid.New(),
		InquiryID:    uuid.New(),
		ListingID:    f.listingID,
		BuyerID:      buyer.UserID,
		SellerID:     seller.UserID,
		Status:       transaction.StatusNegotiations,
		CurrentPhase: transaction.PhaseNegotiations,
		FinalAmount:  new(int64(170_000_00)),
	}
	f.repo.txs[tx.ID] = tx

	return &tx
}

func TestService_Cancel_LeavesSoldListing(t *testing.T) {
	f := newFixture(t)
	sold := f.open(t)
	stale := f.seedLive()

	f.finishPhase(t, sold.ID, transaction.PhaseNegotiations)
	_, err := f.svc.AdvancePhase(context.Background(), admin, sold.ID)
	require.NoError(t, err)
	f.finishPhase(t, sold.ID, transaction.PhaseClosing)
	_, err = f.svc.AdvancePhase(context.Background(), admin, sold.ID)
	require.NoError(t, err)
	require.Equal(t, listing.StatusSold, f.repo.listings[f.listingID])

	_, err = f.svc.Cancel(context.Background(), seller, stale.ID, "Note already sold")
	require.NoError(t, err)

	assert.Equal(t, listing.StatusSold, f.repo.listings[f.listingID])
}

func TestService_Cancel_LeavesListingHeldByAnotherDeal(t *testing.T) {
	f := newFixture(t)
	first := f.open(t)
	other := f.seedLive()

	_, err := f.svc.Cancel(context.Background(), buyer, first.ID, "Financing fell through")
	require.NoError(t, err)
	assert.Equal(t, listing.StatusPending, f.repo.listings[f.listingID])

	_, err = f.svc.Cancel(context.Background(), buyer, other.ID, "Walked away")
	require.NoError(t, err)
	assert.Equal(t, listing.StatusActive, f.repo.listings[f.listingID])
}

func TestService_Files_Visibility(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)

	file, err := f.svc.AddFile(context.Background(), seller, tx.ID, transaction.FileParams{
		Name: "Collateral file.zip",
		URL:  "https://files.example.com/collateral.zip",
	})
	require.NoError(t, err)

	visible := func(viewer auth.Session) int {
		files, err := f.svc.ListFiles(context.Background(), viewer, tx.ID)
		require.NoError(t, err)

		return len(files)
	}

	assert.Equal(t, 1, visible(seller))
	assert.Equal(t, 0, visible(buyer))
	assert.Equal(t, 1, visible(admin))

	_, err = f.svc.ReleaseFile(context.Background(), buyer, file.ID)
	assert.ErrorIs(t, err, transaction.ErrNotUploader)

	_, err = f.svc.ReleaseFile(context.Background(), seller, file.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, visible(buyer))

	_, err = f.svc.VerifyFile(context.Background(), seller, file.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.VerifyFile(context.Background(), admin, file.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, visible(buyer))

	_, err = f.svc.ListFiles(context.Background(), auth.Session{UserID: uuid.New(), Role: auth.RoleInvestor}, tx.ID)
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestService_AddFile_TaskMustBelong(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)

	other := openAnother(f)
	foreignTask := f.tasks(t, other.ID, transaction.PhaseNegotiations)[0]

	_, err := f.svc.AddFile(context.Background(), seller, tx.ID, transaction.FileParams{
		TaskID: &foreignTask.ID,
		Name:   "note.pdf",
		URL:    "https://files.example.com/note.pdf",
	})
	assert.Error(t, err)
}

// openAnother opens a deal on a second listing of the same seller.
func TestService_VerifyAndReleaseBothSurvive(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)

	file, err := f.svc.AddFile(context.Background(), seller, tx.ID, transaction.FileParams{
		Name: "payment_history.pdf",
		URL:  "https://files.example.com/payment_history.pdf",
	})
	require.NoError(t, err)

	// The verification lands after the release has read the file but before
	// it takes the transaction lock.
	f.repo.onGetFile = func() {
		_, err := f.svc.VerifyFile(context.Background(), admin, file.ID)
		require.NoError(t, err)
	}

	released, err := f.svc.ReleaseFile(context.Background(), seller, file.ID)
	require.NoError(t, err)
	assert.True(t, released.IsPublic)
	assert.True(t, released.IsVerified)

	stored, err := f.repo.GetFile(context.Background(), file.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPublic)
	assert.True(t, stored.IsVerified)
}

func TestService_AppendEvent_FileMustBelong(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)
	other := openAnother(f)

	foreign, err := f.svc.AddFile(context.Background(), seller, other.ID, transaction.FileParams{
		Name: "title_report.pdf",
		URL:  "https://files.example.com/title_report.pdf",
	})
	require.NoError(t, err)

	_, err = f.svc.AppendEvent(context.Background(), buyer, tx.ID, transaction.EventParams{
		Type:   transaction.EventInfo,
		Title:  "Reviewed title report",
		FileID: &foreign.ID,
	})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "file_id")

	own, err := f.svc.AddFile(context.Background(), seller, tx.ID, transaction.FileParams{
		Name: "collateral.pdf",
		URL:  "https://files.example.com/collateral.pdf",
	})
	require.NoError(t, err)

	e, err := f.svc.AppendEvent(context.Background(), buyer, tx.ID, transaction.EventParams{
		Type:   transaction.EventInfo,
		Title:  "Reviewed collateral",
		FileID: &own.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, &own.ID, e.FileID)
}

func openAnother(f *fixture) *transaction.Transaction {
	listingID := uuid.New()
	f.repo.prices[listingID] = 90_000_00
	f.repo.listings[listingID] = listing.StatusActive

	tx, err := f.svc.OpenDeal(context.Background(), f.acceptedInquiryOn(listingID))
	if err != nil {
		panic(err)
	}

	got, _ := f.repo.GetTransaction(context.Background(), tx)

	return got
}

func TestService_AppendEventAndTimeline(t *testing.T) {
	f := newFixture(t)
	tx := f.open(t)

	_, err := f.svc.AppendEvent(context.Background(), buyer, tx.ID, transaction.EventParams{Type: "celebration", Title: "x"})
	require.Error(t, err)

	e, err := f.svc.AppendEvent(context.Background(), buyer, tx.ID, transaction.EventParams{
		Type:        transaction.EventInfo,
		Title:       "Call scheduled",
		Description: "Thursday 10am with the servicer",
	})
	require.NoError(t, err)
	assert.Equal(t, &buyer.UserID, e.ActorID)

	timeline, err := f.svc.Timeline(context.Background(), seller, tx.ID)
	require.NoError(t, err)
	assert.Len(t, timeline, 2)
}

func TestService_ListForUser(t *testing.T) {
	f := newFixture(t)
	f.open(t)

	asBuyer, err := f.svc.ListForUser(context.Background(), buyer, transaction.AssigneeBuyer)
	require.NoError(t, err)
	assert.Len(t, asBuyer, 1)

	asSeller, err := f.svc.ListForUser(context.Background(), buyer, transaction.AssigneeSeller)
	require.NoError(t, err)
	assert.Empty(t, asSeller)

	_, err = f.svc.ListForUser(context.Background(), buyer, transaction.AssigneePlatform)
	assert.Error(t, err)
}

func TestService_Open_BeginFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("pool exhausted"))

	svc := transaction.NewService(repo, events.Nop{})
	_, err := svc.Open(context.Background(), buyer, uuid.New())
	assert.ErrorContains(t, err, "pool exhausted")
}

func TestService_Open_ReturnsExisting(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	uow := transaction.NewMockUnitOfWork(ctrl)

	inquiryID := uuid.New()
	existing := &transaction.Transaction{ID: uuid.New(), InquiryID: inquiryID, BuyerID: buyer.UserID, SellerID: seller.UserID}

	repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
	uow.EXPECT().LockInquiry(gomock.Any(), inquiryID).Return(&inquiry.Inquiry{
		ID: inquiryID, BuyerID: buyer.UserID, SellerID: seller.UserID, Status: inquiry.StatusAccepted,
	}, nil)
	uow.EXPECT().FindByInquiry(gomock.Any(), inquiryID).Return(existing, nil)
	uow.EXPECT().Commit().Return(nil)
	uow.EXPECT().Rollback().Return(nil)

	svc := transaction.NewService(repo, events.Nop{}, transaction.WithClock(func() time.Time { return time.Unix(0, 0) }))
	got, err := svc.Open(context.Background(), seller, inquiryID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$165,000.00", transaction.FormatCents(165_000_00))
	assert.Equal(t, "$0.05", transaction.FormatCents(5))
	assert.Equal(t, "-$1,234.56", transaction.FormatCents(-123456))
}
