package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
	"github.com/MrJamesThe3rd/notemarket/internal/pgutil"
	"github.com/MrJamesThe3rd/notemarket/internal/waitlist"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectEntryColumns = `id, email, name, role, created_at`

func scanEntry(s pgutil.Scanner) (*waitlist.Entry, error) {
	var (
		e    waitlist.Entry
		role string
	)

	if err := s.Scan(&e.ID, &e.Email, &e.Name, &role, &e.CreatedAt); err != nil {
		return nil, err
	}

	e.Role = auth.Role(role)

	return &e, nil
}

func (s *Store) AddEntry(ctx context.Context, e *waitlist.Entry) (*waitlist.Entry, bool, error) {
	query := `
		INSERT INTO waitlist_entries (email, name, role, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (email) DO NOTHING
		RETURNING ` + selectEntryColumns

	created, err := scanEntry(s.db.QueryRowContext(ctx, query, e.Email, e.Name, e.Role))
	if err == nil {
		return created, true, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("adding waitlist entry: %w", err)
	}

	existing, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+selectEntryColumns+` FROM waitlist_entries WHERE email = $1`, e.Email))
	if err != nil {
		return nil, false, fmt.Errorf("getting waitlist entry: %w", err)
	}

	return existing, false, nil
}

func (s *Store) ListEntries(ctx context.Context) ([]*waitlist.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectEntryColumns+` FROM waitlist_entries ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing waitlist: %w", err)
	}
	defer rows.Close()

	var out []*waitlist.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning waitlist entry: %w", err)
		}

		out = append(out, e)
	}

	return out, rows.Err()
}
