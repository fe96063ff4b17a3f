package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/notemarket/internal/listing"
	"github.com/MrJamesThe3rd/notemarket/internal/pgutil"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Expected column order matches selectListingColumns.
func scanListing(s pgutil.Scanner) (*listing.Listing, error) {
	var l listing.Listing

	var noteType, perf, propType, status, verification string

	if err := s.Scan(
		&l.ID, &l.SellerID, &l.Title, &l.Description, &noteType, &l.LienPosition, &perf, &propType,
		&l.Address, &l.City, &l.State, &l.Zip,
		&l.PropertyValue, &l.OriginalBalance, &l.UnpaidBalance, &l.InterestRate, &l.MonthlyPayment,
		&l.RemainingTermMonths, &l.OriginationDate, &l.MaturityDate, &l.AskingPrice, &l.Yield,
		&status, &verification, &l.VerificationNote,
		&l.ViewCount, &l.FavoriteCount, &l.InquiryCount,
		&l.CreatedAt, &l.UpdatedAt, &l.PublishedAt,
	); err != nil {
		return nil, err
	}

	l.NoteType = listing.NoteType(noteType)
	l.PerformanceStatus = listing.PerformanceStatus(perf)
	l.PropertyType = listing.PropertyType(propType)
	l.Status = listing.Status(status)
	l.VerificationStatus = listing.VerificationStatus(verification)

	return &l, nil
}

const selectListingColumns = `
	l.id, l.seller_id, l.title, l.description, l.note_type, l.lien_position, l.performance_status, l.property_type,
	l.address, l.city, l.state, l.zip,
	l.property_value, l.original_balance, l.unpaid_balance, l.interest_rate, l.monthly_payment,
	l.remaining_term_months, l.origination_date, l.maturity_date, l.asking_price, l.yield,
	l.status, l.verification_status, l.verification_note,
	l.view_count, l.favorite_count, l.inquiry_count,
	l.created_at, l.updated_at, l.published_at
`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertListing = `
	INSERT INTO note_listings (
		seller_id, title, description, note_type, lien_position, performance_status, property_type,
		address, city, state, zip, property_value, original_balance, unpaid_balance, interest_rate,
		monthly_payment, remaining_term_months, origination_date, maturity_date, asking_price, yield,
		status, verification_status, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, NOW())
	RETURNING id, created_at
`

func insert(ctx context.Context, q querier, l *listing.Listing) error {
	err := q.QueryRowContext(ctx, insertListing,
		l.SellerID, l.Title, l.Description, l.NoteType, l.LienPosition, l.PerformanceStatus, l.PropertyType,
		l.Address, l.City, l.State, l.Zip, l.PropertyValue, l.OriginalBalance, l.UnpaidBalance, l.InterestRate,
		l.MonthlyPayment, l.RemainingTermMonths, l.OriginationDate, l.MaturityDate, l.AskingPrice, l.Yield,
		l.Status, l.VerificationStatus,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating listing: %w", err)
	}

	return nil
}

func (s *Store) CreateListing(ctx context.Context, l *listing.Listing) error {
	return insert(ctx, s.db, l)
}

func (s *Store) GetListing(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	query := `SELECT ` + selectListingColumns + ` FROM note_listings l WHERE l.id = $1`

	l, err := scanListing(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, listing.ErrNotFound
		}

		return nil, fmt.Errorf("getting listing: %w", err)
	}

	return l, nil
}

func (s *Store) UpdateListing(ctx context.Context, l *listing.Listing) error {
	query := `
		UPDATE note_listings
		SET title = $1, description = $2, performance_status = $3, property_value = $4, unpaid_balance = $5,
			interest_rate = $6, monthly_payment = $7, remaining_term_months = $8, asking_price = $9, yield = $10,
			verification_status = $11, verification_note = $12, updated_at = NOW()
		WHERE id = $13
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		l.Title, l.Description, l.PerformanceStatus, l.PropertyValue, l.UnpaidBalance,
		l.InterestRate, l.MonthlyPayment, l.RemainingTermMonths, l.AskingPrice, l.Yield,
		l.VerificationStatus, l.VerificationNote, l.ID,
	).Scan(&l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return listing.ErrNotFound
		}

		return fmt.Errorf("updating listing: %w", err)
	}

	return nil
}

// publishedAt stamps the first moment a listing became open to buyers.
const publishedAt = `published_at = CASE
		WHEN published_at IS NULL AND status = 'active' AND verification_status = 'verified' THEN NOW()
		ELSE published_at END`

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status listing.Status) error {
	if err := s.exec(ctx, `UPDATE note_listings SET status = $1, updated_at = NOW() WHERE id = $2`, status, id); err != nil {
		return fmt.Errorf("updating listing status: %w", err)
	}

	return s.stampPublished(ctx, id)
}

func (s *Store) UpdateVerification(ctx context.Context, id uuid.UUID, status listing.VerificationStatus, note string) error {
	query := `
		UPDATE note_listings
		SET verification_status = $1, verification_note = $2, updated_at = NOW()
		WHERE id = $3
	`
	if err := s.exec(ctx, query, status, note, id); err != nil {
		return fmt.Errorf("updating verification: %w", err)
	}

	return s.stampPublished(ctx, id)
}

func (s *Store) stampPublished(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE note_listings SET `+publishedAt+` WHERE id = $1`, id); err != nil {
		return fmt.Errorf("stamping published_at: %w", err)
	}

	return nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return listing.ErrNotFound
	}

	return nil
}

func (s *Store) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if err := s.exec(ctx, `UPDATE note_listings SET view_count = view_count + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("incrementing views: %w", err)
	}

	return nil
}

func (s *Store) IncrementInquiries(ctx context.Context, id uuid.UUID) error {
	if err := s.exec(ctx, `UPDATE note_listings SET inquiry_count = inquiry_count + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("incrementing inquiries: %w", err)
	}

	return nil
}

func (s *Store) SetCounters(ctx context.Context, id uuid.UUID, c listing.Counters) error {
	query := `
		UPDATE note_listings
		SET view_count = $1, favorite_count = $2, inquiry_count = $3, updated_at = NOW()
		WHERE id = $4
	`
	if err := s.exec(ctx, query, c.Views, c.Favorites, c.Inquiries, id); err != nil {
		return fmt.Errorf("setting counters: %w", err)
	}

	return nil
}

// AddFavorite saves the favorite and bumps favorite_count the first time this
// pair is ever seen. It reports whether the counter moved.
func (s *Store) AddFavorite(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning favorite tx: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `
		INSERT INTO favorites (user_id, listing_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, listingID); err != nil {
		if pgutil.IsForeignKeyViolation(err) {
			return false, listing.ErrNotFound
		}

		return false, fmt.Errorf("saving favorite: %w", err)
	}

	res, err := dbTx.ExecContext(ctx, `
		INSERT INTO favorite_marks (user_id, listing_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("marking favorite: %w", err)
	}

	first, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking favorite: %w", err)
	}

	if first > 0 {
		if _, err := dbTx.ExecContext(ctx,
			`UPDATE note_listings SET favorite_count = favorite_count + 1 WHERE id = $1`, listingID); err != nil {
			return false, fmt.Errorf("incrementing favorites: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return false, fmt.Errorf("committing favorite: %w", err)
	}

	return first > 0, nil
}

func (s *Store) RemoveFavorite(ctx context.Context, userID, listingID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND listing_id = $2`, userID, listingID); err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}

	return nil
}

func (s *Store) ListFavorites(ctx context.Context, userID uuid.UUID) ([]*listing.Listing, error) {
	query := `SELECT ` + selectListingColumns + `
		FROM favorites f
		JOIN note_listings l ON l.id = f.listing_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`

	return s.queryListings(ctx, s.db, query, userID)
}

func (s *Store) queryListings(ctx context.Context, q querier, query string, args ...any) ([]*listing.Listing, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}
	defer rows.Close()

	var out []*listing.Listing

	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}

		out = append(out, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listing rows: %w", err)
	}

	return out, nil
}

var orderBy = map[listing.SortField]string{
	listing.SortNewest:    "l.created_at DESC",
	listing.SortPriceAsc:  "l.asking_price ASC, l.created_at DESC",
	listing.SortPriceDesc: "l.asking_price DESC, l.created_at DESC",
	listing.SortYieldDesc: "l.yield DESC, l.created_at DESC",
	listing.SortPopular:   "l.view_count + l.favorite_count * 5 + l.inquiry_count * 10 DESC, l.created_at DESC",
}

// where builds the predicate for a filter. It must agree with
// listing.Criteria.Matches.
func where(filter listing.ListFilter) (string, []any) {
	var clauses []string

	var args []any

	add := func(expr string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}

	if len(filter.NoteTypes) > 0 {
		add("l.note_type = ANY($%d)", toStrings(filter.NoteTypes))
	}

	if len(filter.PerformanceStatuses) > 0 {
		add("l.performance_status = ANY($%d)", toStrings(filter.PerformanceStatuses))
	}

	if len(filter.PropertyTypes) > 0 {
		add("l.property_type = ANY($%d)", toStrings(filter.PropertyTypes))
	}

	if len(filter.States) > 0 {
		add("l.state = ANY($%d)", filter.States)
	}

	if filter.MinPrice != nil {
		add("l.asking_price >= $%d", *filter.MinPrice)
	}

	if filter.MaxPrice != nil {
		add("l.asking_price <= $%d", *filter.MaxPrice)
	}

	if filter.MinYield != nil {
		add("l.yield >= $%d", *filter.MinYield)
	}

	if filter.MaxYield != nil {
		add("l.yield <= $%d", *filter.MaxYield)
	}

	if filter.SellerID != nil {
		add("l.seller_id = $%d", *filter.SellerID)
	}

	if len(filter.Statuses) > 0 {
		add("l.status = ANY($%d)", toStrings(filter.Statuses))
	}

	if filter.Verification != nil {
		add("l.verification_status = $%d", *filter.Verification)
	}

	if filter.PublicOnly {
		clauses = append(clauses, "l.verification_status = 'verified' AND l.status IN ('active', 'pending', 'sold')")
	}

	if len(clauses) == 0 {
		return "TRUE", args
	}

	return strings.Join(clauses, " AND "), args
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}

	return out
}

func (s *Store) ListListings(ctx context.Context, filter listing.ListFilter) ([]*listing.Listing, int, error) {
	predicate, args := where(filter)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM note_listings l WHERE `+predicate, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting listings: %w", err)
	}

	order, ok := orderBy[filter.Sort]
	if !ok {
		order = orderBy[listing.SortNewest]
	}

	query := fmt.Sprintf(`SELECT %s FROM note_listings l WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		selectListingColumns, predicate, order, len(args)+1, len(args)+2)

	listings, err := s.queryListings(ctx, s.db, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// importLockKey serialises tape imports per seller so two concurrent uploads
// cannot both pass the duplicate check.
func importLockKey(sellerID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("listing-import"))
	h.Write(sellerID[:])

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

func (s *Store) BeginImport(ctx context.Context, sellerID uuid.UUID) (listing.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(sellerID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, sellerID uuid.UUID, params []listing.CreateParams) ([]*listing.Listing, error) {
	if len(params) == 0 {
		return nil, nil
	}

	zips := make([]string, 0, len(params))
	for _, p := range params {
		zips = append(zips, strings.TrimSpace(p.Zip))
	}

	query := `SELECT ` + selectListingColumns + `
		FROM note_listings l
		WHERE l.seller_id = $1 AND l.zip = ANY($2)`

	rows, err := itx.tx.QueryContext(ctx, query, sellerID, zips)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var candidates []*listing.Listing

	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}

		candidates = append(candidates, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return candidates, nil
}

func (itx *importTx) CreateListings(ctx context.Context, listings []*listing.Listing) error {
	for _, l := range listings {
		if err := insert(ctx, itx.tx, l); err != nil {
			return err
		}
	}

	return nil
}
