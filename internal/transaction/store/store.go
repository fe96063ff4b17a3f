package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/inquiry"
	inquirystore "github.com/MrJamesThe3rd/notemarket/internal/inquiry/store"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/pgutil"
	"github.com/MrJamesThe3rd/notemarket/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const selectTransactionColumns = `
	id, inquiry_id, listing_id, buyer_id, seller_id, status, current_phase, final_amount,
	cancel_reason, notes, created_at, updated_at, completed_at, cancelled_at
`

// scanTransaction expects the column order of selectTransactionColumns.
func scanTransaction(s pgutil.Scanner) (*transaction.Transaction, error) {
	var t transaction.Transaction

	var status, phase string

	if err := s.Scan(
		&t.ID, &t.InquiryID, &t.ListingID, &t.BuyerID, &t.SellerID, &status, &phase, &t.FinalAmount,
		&t.CancelReason, &t.Notes, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt, &t.CancelledAt,
	); err != nil {
		return nil, err
	}

	t.Status = transaction.Status(status)
	t.CurrentPhase = transaction.Phase(phase)

	return &t, nil
}

const selectTaskColumns = `
	id, transaction_id, phase, title, description, assignee, required, status, display_order,
	note, completed_at, completed_by_user_id, created_at
`

func scanTask(s pgutil.Scanner) (*transaction.Task, error) {
	var t transaction.Task

	var phase, assignee, status string

	if err := s.Scan(
		&t.ID, &t.TransactionID, &phase, &t.Title, &t.Description, &assignee, &t.Required, &status,
		&t.DisplayOrder, &t.Note, &t.CompletedAt, &t.CompletedBy, &t.CreatedAt,
	); err != nil {
		return nil, err
	}

	t.Phase = transaction.Phase(phase)
	t.Assignee = transaction.Assignee(assignee)
	t.Status = transaction.TaskStatus(status)

	return &t, nil
}

const selectFileColumns = `
	id, transaction_id, task_id, uploader_id, name, url, content_type, is_public, is_verified, created_at
`

func scanFile(s pgutil.Scanner) (*transaction.File, error) {
	var f transaction.File

	if err := s.Scan(
		&f.ID, &f.TransactionID, &f.TaskID, &f.UploaderID, &f.Name, &f.URL, &f.ContentType,
		&f.IsPublic, &f.IsVerified, &f.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &f, nil
}

const selectEventColumns = `
	id, transaction_id, type, title, description, task_id, file_id, actor_id, created_at
`

func scanEvent(s pgutil.Scanner) (*transaction.Event, error) {
	var e transaction.Event

	var typ string

	if err := s.Scan(
		&e.ID, &e.TransactionID, &typ, &e.Title, &e.Description, &e.TaskID, &e.FileID, &e.ActorID, &e.CreatedAt,
	); err != nil {
		return nil, err
	}

	e.Type = transaction.EventType(typ)

	return &e, nil
}

func queryAll[T any](ctx context.Context, q querier, scan func(pgutil.Scanner) (*T, error), query string, args ...any) ([]*T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*T

	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, rows.Err()
}

func getTransaction(ctx context.Context, q querier, query string, arg any) (*transaction.Transaction, error) {
	t, err := scanTransaction(q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return t, nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return getTransaction(ctx, s.db, `SELECT `+selectTransactionColumns+` FROM transactions WHERE id = $1`, id)
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.BuyerID != nil {
		query += fmt.Sprintf(" AND buyer_id = $%d", argIdx)

		args = append(args, *filter.BuyerID)
		argIdx++
	}

	if filter.SellerID != nil {
		query += fmt.Sprintf(" AND seller_id = $%d", argIdx)

		args = append(args, *filter.SellerID)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
	}

	query += " ORDER BY created_at DESC"

	txs, err := queryAll(ctx, s.db, scanTransaction, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return txs, nil
}

func listTasks(ctx context.Context, q querier, transactionID uuid.UUID) ([]*transaction.Task, error) {
	query := `SELECT ` + selectTaskColumns + `
		FROM transaction_tasks
		WHERE transaction_id = $1
		ORDER BY CASE phase WHEN 'negotiations' THEN 0 ELSE 1 END, display_order, created_at`

	tasks, err := queryAll(ctx, q, scanTask, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	return tasks, nil
}

func (s *Store) ListTasks(ctx context.Context, transactionID uuid.UUID) ([]*transaction.Task, error) {
	return listTasks(ctx, s.db, transactionID)
}

func (s *Store) ListFiles(ctx context.Context, transactionID uuid.UUID) ([]*transaction.File, error) {
	query := `SELECT ` + selectFileColumns + ` FROM transaction_files WHERE transaction_id = $1 ORDER BY created_at`

	files, err := queryAll(ctx, s.db, scanFile, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	return files, nil
}

func (s *Store) ListEvents(ctx context.Context, transactionID uuid.UUID) ([]*transaction.Event, error) {
	query := `SELECT ` + selectEventColumns + `
		FROM transaction_timeline_events
		WHERE transaction_id = $1
		ORDER BY created_at, id`

	evts, err := queryAll(ctx, s.db, scanEvent, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("listing timeline: %w", err)
	}

	return evts, nil
}

func (s *Store) GetFile(ctx context.Context, id uuid.UUID) (*transaction.File, error) {
	return getFile(ctx, s.db, id)
}

func getFile(ctx context.Context, q querier, id uuid.UUID) (*transaction.File, error) {
	f, err := scanFile(q.QueryRowContext(ctx, `SELECT `+selectFileColumns+` FROM transaction_files WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrFileNotFound
		}

		return nil, fmt.Errorf("getting file: %w", err)
	}

	return f, nil
}

type unitOfWork struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (transaction.UnitOfWork, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning tx: %w", err)
	}

	return &unitOfWork{tx: dbTx}, nil
}

func (u *unitOfWork) Commit() error   { return u.tx.Commit() }
func (u *unitOfWork) Rollback() error { return u.tx.Rollback() }

func (u *unitOfWork) LockInquiry(ctx context.Context, id uuid.UUID) (*inquiry.Inquiry, error) {
	query := `SELECT ` + inquirystore.SelectColumns + ` FROM inquiries i WHERE i.id = $1 FOR UPDATE`

	i, err := inquirystore.Scan(u.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inquiry.ErrNotFound
		}

		return nil, fmt.Errorf("locking inquiry: %w", err)
	}

	return i, nil
}

func (u *unitOfWork) LockListing(ctx context.Context, listingID uuid.UUID) (*transaction.ListingState, error) {
	var l transaction.ListingState

	err := u.tx.QueryRowContext(ctx,
		`SELECT status, asking_price FROM note_listings WHERE id = $1 FOR UPDATE`, listingID,
	).Scan(&l.Status, &l.AskingPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, listing.ErrNotFound
		}

		return nil, fmt.Errorf("locking listing: %w", err)
	}

	return &l, nil
}

func (u *unitOfWork) CountLive(ctx context.Context, listingID, except uuid.UUID) (int, error) {
	var n int

	err := u.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE listing_id = $1 AND id <> $2 AND status NOT IN ('completed', 'cancelled')
	`, listingID, except).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting live transactions: %w", err)
	}

	return n, nil
}

func (u *unitOfWork) FindByInquiry(ctx context.Context, inquiryID uuid.UUID) (*transaction.Transaction, error) {
	return getTransaction(ctx, u.tx, `SELECT `+selectTransactionColumns+` FROM transactions WHERE inquiry_id = $1`, inquiryID)
}

func (u *unitOfWork) LockTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return getTransaction(ctx, u.tx, `SELECT `+selectTransactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

func (u *unitOfWork) CreateTransaction(ctx context.Context, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (inquiry_id, listing_id, buyer_id, seller_id, status, current_phase, final_amount, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := u.tx.QueryRowContext(ctx, query,
		t.InquiryID, t.ListingID, t.BuyerID, t.SellerID, t.Status, t.CurrentPhase, t.FinalAmount, t.Notes,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if pgutil.IsCheckViolation(err) {
			return transaction.ErrSameParty
		}

		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (u *unitOfWork) UpdateTransaction(ctx context.Context, t *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $1, current_phase = $2, final_amount = $3, cancel_reason = $4, notes = $5,
			updated_at = NOW(), completed_at = $6, cancelled_at = $7
		WHERE id = $8
	`

	_, err := u.tx.ExecContext(ctx, query,
		t.Status, t.CurrentPhase, t.FinalAmount, t.CancelReason, t.Notes, t.CompletedAt, t.CancelledAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}

func (u *unitOfWork) CreateTasks(ctx context.Context, tasks []*transaction.Task) error {
	query := `
		INSERT INTO transaction_tasks (transaction_id, phase, title, description, assignee, required, status, display_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	for _, t := range tasks {
		err := u.tx.QueryRowContext(ctx, query,
			t.TransactionID, t.Phase, t.Title, t.Description, t.Assignee, t.Required, t.Status, t.DisplayOrder,
		).Scan(&t.ID, &t.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating task: %w", err)
		}
	}

	return nil
}

func (u *unitOfWork) GetTask(ctx context.Context, id uuid.UUID) (*transaction.Task, error) {
	t, err := scanTask(u.tx.QueryRowContext(ctx, `SELECT `+selectTaskColumns+` FROM transaction_tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrTaskNotFound
		}

		return nil, fmt.Errorf("getting task: %w", err)
	}

	return t, nil
}

func (u *unitOfWork) ListTasks(ctx context.Context, transactionID uuid.UUID) ([]*transaction.Task, error) {
	return listTasks(ctx, u.tx, transactionID)
}

func (u *unitOfWork) ResolveTask(ctx context.Context, task *transaction.Task, from []transaction.TaskStatus) error {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	query := `
		UPDATE transaction_tasks
		SET status = $1, note = $2, completed_at = $3, completed_by_user_id = $4
		WHERE id = $5 AND status = ANY($6)
	`

	res, err := u.tx.ExecContext(ctx, query,
		task.Status, task.Note, task.CompletedAt, task.CompletedBy, task.ID, allowed,
	)
	if err != nil {
		return fmt.Errorf("resolving task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolving task: %w", err)
	}

	if n == 0 {
		return transaction.ErrTaskResolved
	}

	return nil
}

func (u *unitOfWork) CreateFile(ctx context.Context, f *transaction.File) error {
	query := `
		INSERT INTO transaction_files (transaction_id, task_id, uploader_id, name, url, content_type, is_public, is_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := u.tx.QueryRowContext(ctx, query,
		f.TransactionID, f.TaskID, f.UploaderID, f.Name, f.URL, f.ContentType, f.IsPublic, f.IsVerified,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	return nil
}

func (u *unitOfWork) GetFile(ctx context.Context, id uuid.UUID) (*transaction.File, error) {
	return getFile(ctx, u.tx, id)
}

func (u *unitOfWork) UpdateFile(ctx context.Context, f *transaction.File) error {
	res, err := u.tx.ExecContext(ctx,
		`UPDATE transaction_files SET is_public = $1, is_verified = $2 WHERE id = $3`,
		f.IsPublic, f.IsVerified, f.ID,
	)
	if err != nil {
		return fmt.Errorf("updating file: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return transaction.ErrFileNotFound
	}

	return nil
}

func (u *unitOfWork) AppendEvent(ctx context.Context, e *transaction.Event) error {
	query := `
		INSERT INTO transaction_timeline_events (transaction_id, type, title, description, task_id, file_id, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := u.tx.QueryRowContext(ctx, query,
		e.TransactionID, e.Type, e.Title, e.Description, e.TaskID, e.FileID, e.ActorID,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending timeline event: %w", err)
	}

	return nil
}

func (u *unitOfWork) SetListingStatus(ctx context.Context, listingID uuid.UUID, status listing.Status) error {
	res, err := u.tx.ExecContext(ctx,
		`UPDATE note_listings SET status = $1, updated_at = NOW() WHERE id = $2`, status, listingID)
	if err != nil {
		return fmt.Errorf("updating listing status: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return listing.ErrNotFound
	}

	return nil
}
