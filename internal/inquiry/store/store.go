package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/inquiry"
	"github.com/MrJamesThe3rd/notemarket/internal/pgutil"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const SelectColumns = `
	i.id, i.listing_id, i.buyer_id, i.seller_id, i.message, i.offer_amount, i.counter_amount,
	i.status, i.awaiting, i.response_message, i.responded_at, i.expires_at, i.created_at, i.updated_at
`

// Scan reads a row selected with SelectColumns.
func Scan(s pgutil.Scanner) (*inquiry.Inquiry, error) {
	var i inquiry.Inquiry

	var status, awaiting string

	if err := s.Scan(
		&i.ID, &i.ListingID, &i.BuyerID, &i.SellerID, &i.Message, &i.OfferAmount, &i.CounterAmount,
		&status, &awaiting, &i.ResponseMessage, &i.RespondedAt, &i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt,
	); err != nil {
		return nil, err
	}

	i.Status = inquiry.Status(status)
	i.Awaiting = inquiry.Party(awaiting)

	return &i, nil
}

func (s *Store) CreateInquiry(ctx context.Context, i *inquiry.Inquiry) error {
	query := `
		INSERT INTO inquiries (listing_id, buyer_id, seller_id, message, offer_amount, status, awaiting, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		i.ListingID, i.BuyerID, i.SellerID, i.Message, i.OfferAmount, i.Status, i.Awaiting, i.ExpiresAt,
	).Scan(&i.ID, &i.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating inquiry: %w", err)
	}

	return nil
}

func (s *Store) GetInquiry(ctx context.Context, id uuid.UUID) (*inquiry.Inquiry, error) {
	query := `SELECT ` + SelectColumns + ` FROM inquiries i WHERE i.id = $1`

	i, err := Scan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inquiry.ErrNotFound
		}

		return nil, fmt.Errorf("getting inquiry: %w", err)
	}

	return i, nil
}

func (s *Store) ListInquiries(ctx context.Context, filter inquiry.ListFilter) ([]*inquiry.Inquiry, error) {
	query := `SELECT ` + SelectColumns + ` FROM inquiries i WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.BuyerID != nil {
		query += fmt.Sprintf(" AND i.buyer_id = $%d", argIdx)

		args = append(args, *filter.BuyerID)
		argIdx++
	}

	if filter.SellerID != nil {
		query += fmt.Sprintf(" AND i.seller_id = $%d", argIdx)

		args = append(args, *filter.SellerID)
		argIdx++
	}

	if filter.ListingID != nil {
		query += fmt.Sprintf(" AND i.listing_id = $%d", argIdx)

		args = append(args, *filter.ListingID)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND i.status = $%d", argIdx)

		args = append(args, *filter.Status)
	}

	query += " ORDER BY i.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}
	defer rows.Close()

	var out []*inquiry.Inquiry

	for rows.Next() {
		i, err := Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inquiry: %w", err)
		}

		out = append(out, i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inquiry rows: %w", err)
	}

	return out, nil
}

func (s *Store) Transition(ctx context.Context, i *inquiry.Inquiry, from inquiry.Status, awaiting inquiry.Party) error {
	query := `
		UPDATE inquiries
		SET status = $1, awaiting = $2, counter_amount = $3, response_message = $4,
			responded_at = $5, expires_at = $6, updated_at = NOW()
		WHERE id = $7 AND status = $8 AND awaiting = $9
	`

	res, err := s.db.ExecContext(ctx, query,
		i.Status, i.Awaiting, i.CounterAmount, i.ResponseMessage, i.RespondedAt, i.ExpiresAt, i.ID, from, awaiting,
	)
	if err != nil {
		return fmt.Errorf("updating inquiry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating inquiry: %w", err)
	}

	if n == 0 {
		return inquiry.ErrStale
	}

	return nil
}
