package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/pgutil"
	"github.com/MrJamesThe3rd/notemarket/internal/search"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetPreferences(ctx context.Context, userID uuid.UUID) (*search.Preferences, error) {
	query := `
		SELECT user_id, criteria, updated_at
		FROM investor_preferences
		WHERE user_id = $1
	`

	var (
		p   search.Preferences
		raw []byte
	)

	err := s.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &raw, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, search.ErrPreferencesNotFound
		}

		return nil, fmt.Errorf("getting preferences: %w", err)
	}

	if err := json.Unmarshal(raw, &p.Criteria); err != nil {
		return nil, fmt.Errorf("decoding preferences: %w", err)
	}

	return &p, nil
}

func (s *Store) PutPreferences(ctx context.Context, p *search.Preferences) error {
	raw, err := json.Marshal(p.Criteria)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	query := `
		INSERT INTO investor_preferences (user_id, criteria, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET criteria = EXCLUDED.criteria, updated_at = NOW()
		RETURNING updated_at
	`

	if err := s.db.QueryRowContext(ctx, query, p.UserID, raw).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}

	return nil
}

const selectSearchColumns = `id, user_id, name, criteria, notify, created_at`

func scanSearch(s pgutil.Scanner) (*search.SavedSearch, error) {
	var (
		saved search.SavedSearch
		raw   []byte
	)

	if err := s.Scan(&saved.ID, &saved.UserID, &saved.Name, &raw, &saved.Notify, &saved.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, &saved.Criteria); err != nil {
		return nil, fmt.Errorf("decoding criteria of search %s: %w", saved.ID, err)
	}

	return &saved, nil
}

func (s *Store) CreateSearch(ctx context.Context, saved *search.SavedSearch) error {
	raw, err := json.Marshal(saved.Criteria)
	if err != nil {
		return fmt.Errorf("encoding criteria: %w", err)
	}

	query := `
		INSERT INTO saved_searches (user_id, name, criteria, notify, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, saved.UserID, saved.Name, raw, saved.Notify).Scan(&saved.ID, &saved.CreatedAt); err != nil {
		return fmt.Errorf("creating saved search: %w", err)
	}

	return nil
}

func (s *Store) GetSearch(ctx context.Context, id uuid.UUID) (*search.SavedSearch, error) {
	query := `SELECT ` + selectSearchColumns + ` FROM saved_searches WHERE id = $1`

	saved, err := scanSearch(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, search.ErrNotFound
		}

		return nil, fmt.Errorf("getting saved search: %w", err)
	}

	return saved, nil
}

func (s *Store) ListSearches(ctx context.Context, userID uuid.UUID) ([]*search.SavedSearch, error) {
	query := `SELECT ` + selectSearchColumns + ` FROM saved_searches WHERE user_id = $1 ORDER BY created_at DESC`

	return s.list(ctx, query, userID)
}

func (s *Store) ListNotifying(ctx context.Context) ([]*search.SavedSearch, error) {
	query := `SELECT ` + selectSearchColumns + ` FROM saved_searches WHERE notify ORDER BY created_at`

	return s.list(ctx, query)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*search.SavedSearch, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing saved searches: %w", err)
	}
	defer rows.Close()

	var out []*search.SavedSearch

	for rows.Next() {
		saved, err := scanSearch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning saved search: %w", err)
		}

		out = append(out, saved)
	}

	return out, rows.Err()
}

func (s *Store) DeleteSearch(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_searches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting saved search: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting saved search: %w", err)
	}

	if n == 0 {
		return search.ErrNotFound
	}

	return nil
}
