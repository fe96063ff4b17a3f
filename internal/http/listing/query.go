package listing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

// ParseFilter reads listing search parameters. Multi-valued parameters accept
// repeats and comma-separated lists (?state=TX,FL&state=OH).
func ParseFilter(q url.Values) (listing.ListFilter, error) {
	f := listing.ListFilter{
		Criteria: listing.Criteria{
			NoteTypes:           values[listing.NoteType](q, "note_type"),
			PerformanceStatuses: values[listing.PerformanceStatus](q, "performance_status"),
			PropertyTypes:       values[listing.PropertyType](q, "property_type"),
			States:              values[string](q, "state"),
		},
		Statuses: values[listing.Status](q, "status"),
		Sort:     listing.SortField(q.Get("sort")),
	}

	var err error

	if f.MinPrice, err = optionalInt(q, "min_price"); err != nil {
		return f, err
	}

	if f.MaxPrice, err = optionalInt(q, "max_price"); err != nil {
		return f, err
	}

	if f.MinYield, err = optionalDecimal(q, "min_yield"); err != nil {
		return f, err
	}

	if f.MaxYield, err = optionalDecimal(q, "max_yield"); err != nil {
		return f, err
	}

	if s := q.Get("seller_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, invalid("seller_id", s)
		}

		f.SellerID = &id
	}

	if f.Limit, err = intOr(q, "limit", 0); err != nil {
		return f, err
	}

	if f.Offset, err = intOr(q, "offset", 0); err != nil {
		return f, err
	}

	return f, nil
}

func values[T ~string](q url.Values, key string) []T {
	var out []T

	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, T(part))
			}
		}
	}

	return out
}

func optionalInt(q url.Values, key string) (*int64, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, invalid(key, s)
	}

	return &n, nil
}

func optionalDecimal(q url.Values, key string) (*decimal.Decimal, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, invalid(key, s)
	}

	return &d, nil
}

func intOr(q url.Values, key string, def int) (int, error) {
	s := q.Get(key)
	if s == "" {
		return def, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalid(key, s)
	}

	return n, nil
}

func invalid(key, value string) error {
	return fmt.Errorf("%w: %s %q is not a valid value", apperr.ErrInvalid, key, value)
}
