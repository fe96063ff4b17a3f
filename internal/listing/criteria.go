package listing

import (
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Criteria is the investor-facing search shape, shared by listing queries,
// investor preferences and saved searches.
type Criteria struct {
	NoteTypes           []NoteType          `json:"note_types,omitempty"`
	PerformanceStatuses []PerformanceStatus `json:"performance_statuses,omitempty"`
	PropertyTypes       []PropertyType      `json:"property_types,omitempty"`
	States              []string            `json:"states,omitempty"`
	MinPrice            *int64              `json:"min_price,omitempty"`
	MaxPrice            *int64              `json:"max_price,omitempty"`
	MinYield            *decimal.Decimal    `json:"min_yield,omitempty"`
	MaxYield            *decimal.Decimal    `json:"max_yield,omitempty"`
}

func (c Criteria) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.NoteTypes, validation.Each(validation.In(anySlice(NoteTypes)...))),
		validation.Field(&c.PerformanceStatuses, validation.Each(validation.In(anySlice(PerformanceStatuses)...))),
		validation.Field(&c.PropertyTypes, validation.Each(validation.In(anySlice(PropertyTypes)...))),
		validation.Field(&c.States, validation.Each(validation.Length(2, 2))),
		validation.Field(&c.MinPrice, validation.Min(int64(0))),
		validation.Field(&c.MaxPrice, validation.Min(int64(0)), validation.By(c.notBelow(c.MinPrice))),
		validation.Field(&c.MaxYield, validation.By(c.yieldNotBelow)),
	)
}

func (c Criteria) notBelow(lower *int64) validation.RuleFunc {
	return func(v any) error {
		upper, _ := v.(*int64)
		if upper == nil || lower == nil {
			return nil
		}

		if *upper < *lower {
			return validation.NewError("validation_range", "must not be below the minimum")
		}

		return nil
	}
}

func (c Criteria) yieldNotBelow(any) error {
	if c.MinYield == nil || c.MaxYield == nil {
		return nil
	}

	if c.MaxYield.LessThan(*c.MinYield) {
		return validation.NewError("validation_range", "must not be below the minimum")
	}

	return nil
}

// Normalize upper-cases state codes so filters and stored rows compare equal.
func (c Criteria) Normalize() Criteria {
	if len(c.States) == 0 {
		return c
	}

	states := make([]string, len(c.States))
	for i, s := range c.States {
		states[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	c.States = states

	return c
}

// Matches evaluates the criteria against a single listing in memory. It must
// agree with the SQL filter built by the store.
func (c Criteria) Matches(l *Listing) bool {
	if len(c.NoteTypes) > 0 && !slices.Contains(c.NoteTypes, l.NoteType) {
		return false
	}

	if len(c.PerformanceStatuses) > 0 && !slices.Contains(c.PerformanceStatuses, l.PerformanceStatus) {
		return false
	}

	if len(c.PropertyTypes) > 0 && !slices.Contains(c.PropertyTypes, l.PropertyType) {
		return false
	}

	if len(c.States) > 0 && !slices.ContainsFunc(c.States, func(s string) bool {
		return strings.EqualFold(s, l.State)
	}) {
		return false
	}

	if c.MinPrice != nil && l.AskingPrice < *c.MinPrice {
		return false
	}

	if c.MaxPrice != nil && l.AskingPrice > *c.MaxPrice {
		return false
	}

	if c.MinYield != nil && l.Yield.LessThan(*c.MinYield) {
		return false
	}

	if c.MaxYield != nil && l.Yield.GreaterThan(*c.MaxYield) {
		return false
	}

	return true
}

// SortField orders listing queries.
type SortField string

const (
	SortNewest    SortField = "newest"
	SortPriceAsc  SortField = "price_asc"
	SortPriceDesc SortField = "price_desc"
	SortYieldDesc SortField = "yield_desc"
	SortPopular   SortField = "popular"
)

// ListFilter is a Criteria plus the ownership, lifecycle and paging knobs that
// only the query layer needs.
type ListFilter struct {
	Criteria

	SellerID     *uuid.UUID
	Statuses     []Status
	Verification *VerificationStatus
	PublicOnly   bool
	Sort         SortField
	Limit        int
	Offset       int
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

func (f ListFilter) withPaging() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}

	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}

	if f.Offset < 0 {
		f.Offset = 0
	}

	if f.Sort == "" {
		f.Sort = SortNewest
	}

	return f
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}

	return out
}
