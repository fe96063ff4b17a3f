package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/document"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/pgutil"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectDocumentColumns = `id, listing_id, uploader_id, name, kind, url, is_public, verification_status, created_at`

func scanDocument(s pgutil.Scanner) (*document.Document, error) {
	var d document.Document

	var kind, verification string

	if err := s.Scan(
		&d.ID, &d.ListingID, &d.UploaderID, &d.Name, &kind, &d.URL, &d.IsPublic, &verification, &d.CreatedAt,
	); err != nil {
		return nil, err
	}

	d.Kind = document.Kind(kind)
	d.VerificationStatus = listing.VerificationStatus(verification)

	return &d, nil
}

func (s *Store) CreateDocument(ctx context.Context, d *document.Document) error {
	query := `
		INSERT INTO documents (listing_id, uploader_id, name, kind, url, is_public, verification_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		d.ListingID, d.UploaderID, d.Name, d.Kind, d.URL, d.IsPublic, d.VerificationStatus,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if pgutil.IsForeignKeyViolation(err) {
			return listing.ErrNotFound
		}

		return fmt.Errorf("creating document: %w", err)
	}

	return nil
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	query := `SELECT ` + selectDocumentColumns + ` FROM documents WHERE id = $1`

	d, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, document.ErrNotFound
		}

		return nil, fmt.Errorf("getting document: %w", err)
	}

	return d, nil
}

func (s *Store) ListDocuments(ctx context.Context, listingID uuid.UUID) ([]*document.Document, error) {
	query := `SELECT ` + selectDocumentColumns + ` FROM documents WHERE listing_id = $1 ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*document.Document

	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}

	return docs, nil
}

func (s *Store) SetVerification(ctx context.Context, id uuid.UUID, status listing.VerificationStatus) error {
	return s.update(ctx, `UPDATE documents SET verification_status = $1 WHERE id = $2`, status, id)
}

func (s *Store) SetPublic(ctx context.Context, id uuid.UUID, public bool) error {
	return s.update(ctx, `UPDATE documents SET is_public = $1 WHERE id = $2`, public, id)
}

func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, `DELETE FROM documents WHERE id = $1`, id)
}

func (s *Store) update(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}

	if n == 0 {
		return document.ErrNotFound
	}

	return nil
}
