package tape

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

// parseUSAmount parses a US-formatted dollar amount into cents.
// Format examples: "$1,234.56" -> 123456, "98500" -> 9850000.
func parseUSAmount(s string) (int64, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// parseRate parses a percentage such as "7.25%" or "7.25". Fractions below
// one ("0.0725") are read as rates and scaled to percent.
func parseRate(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid rate %q", s)
	}

	if !strings.Contains(s, "%") && d.IsPositive() && d.LessThan(decimal.NewFromInt(1)) {
		d = d.Mul(decimal.NewFromInt(100))
	}

	return d, nil
}

var dateLayouts = []string{"01/02/2006", "1/2/2006", "2006-01-02", "01/02/06"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func parseLien(s string) (int, error) {
	clean := strings.ToLower(strings.TrimSpace(s))

	switch clean {
	case "first":
		return 1, nil
	case "second":
		return 2, nil
	case "third":
		return 3, nil
	}

	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		clean = strings.TrimSuffix(clean, suffix)
	}

	n, err := strconv.Atoi(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid lien position %q", s)
	}

	return n, nil
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(s)
}

var noteTypeAliases = map[string]listing.NoteType{
	"mortgage":          listing.NoteTypeMortgage,
	"deed_of_trust":     listing.NoteTypeDeedOfTrust,
	"dot":               listing.NoteTypeDeedOfTrust,
	"land_contract":     listing.NoteTypeLandContract,
	"contract_for_deed": listing.NoteTypeContractForDeed,
	"cfd":               listing.NoteTypeContractForDeed,
}

var performanceAliases = map[string]listing.PerformanceStatus{
	"performing":     listing.PerformancePerforming,
	"current":        listing.PerformancePerforming,
	"pl":             listing.PerformancePerforming,
	"sub_performing": listing.PerformanceSubPerforming,
	"non_performing": listing.PerformanceNonPerforming,
	"npl":            listing.PerformanceNonPerforming,
	"default":        listing.PerformanceNonPerforming,
	"reperforming":   listing.PerformanceReperforming,
	"re_performing":  listing.PerformanceReperforming,
	"rpl":            listing.PerformanceReperforming,
}

var propertyAliases = map[string]listing.PropertyType{
	"single_family": listing.PropertySingleFamily,
	"sfr":           listing.PropertySingleFamily,
	"sfh":           listing.PropertySingleFamily,
	"multi_family":  listing.PropertyMultiFamily,
	"mfr":           listing.PropertyMultiFamily,
	"condo":         listing.PropertyCondo,
	"townhouse":     listing.PropertyTownhouse,
	"mobile_home":   listing.PropertyMobileHome,
	"manufactured":  listing.PropertyMobileHome,
	"commercial":    listing.PropertyCommercial,
	"land":          listing.PropertyLand,
	"lot":           listing.PropertyLand,
}

// lookup resolves a free-form tape value through an alias table. Unknown
// values pass through slugged so listing validation reports them.
func lookup[T ~string](aliases map[string]T, s string) T {
	key := slug(s)
	if v, ok := aliases[key]; ok {
		return v
	}

	return T(key)
}
