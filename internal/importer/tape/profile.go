package tape

// field is a logical loan-tape column.
type field int

const (
	fieldTitle field = iota
	fieldAddress
	fieldCity
	fieldState
	fieldZip
	fieldNoteType
	fieldLien
	fieldPerformance
	fieldPropertyType
	fieldPropertyValue
	fieldOriginalBalance
	fieldUnpaidBalance
	fieldRate
	fieldPayment
	fieldRemainingTerm
	fieldOriginationDate
	fieldMaturityDate
	fieldAskingPrice
	fieldDescription
)

var fieldNames = map[field]string{
	fieldTitle:           "title",
	fieldAddress:         "address",
	fieldCity:            "city",
	fieldState:           "state",
	fieldZip:             "zip",
	fieldNoteType:        "note type",
	fieldLien:            "lien position",
	fieldPerformance:     "performance status",
	fieldPropertyType:    "property type",
	fieldPropertyValue:   "property value",
	fieldOriginalBalance: "original balance",
	fieldUnpaidBalance:   "unpaid balance",
	fieldRate:            "interest rate",
	fieldPayment:         "monthly payment",
	fieldRemainingTerm:   "remaining term",
	fieldOriginationDate: "origination date",
	fieldMaturityDate:    "maturity date",
	fieldAskingPrice:     "asking price",
	fieldDescription:     "description",
}

func (f field) String() string { return fieldNames[f] }

// Profile describes the header layout of one loan-tape format. Header names
// are compared case-insensitively.
type Profile struct {
	Name     string
	Columns  map[field]string
	Required []field
}

// requiredCols returns the headers that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := make([]string, 0, len(p.Required))
	for _, f := range p.Required {
		cols = append(cols, p.Columns[f])
	}

	return cols
}

var required = []field{
	fieldAddress, fieldCity, fieldState, fieldZip,
	fieldUnpaidBalance, fieldRate, fieldAskingPrice,
}

// profiles is tried in order during auto-detection. More specific profiles
// come first.
var profiles = []Profile{
	{
		Name: "servicer",
		Columns: map[field]string{
			fieldAddress:         "property address",
			fieldCity:            "property city",
			fieldState:           "property state",
			fieldZip:             "property zip",
			fieldNoteType:        "security instrument",
			fieldLien:            "lien position",
			fieldPerformance:     "loan status",
			fieldPropertyType:    "property type",
			fieldPropertyValue:   "bpo value",
			fieldOriginalBalance: "original loan amount",
			fieldUnpaidBalance:   "current upb",
			fieldRate:            "note rate",
			fieldPayment:         "p&i payment",
			fieldRemainingTerm:   "remaining term",
			fieldOriginationDate: "origination date",
			fieldMaturityDate:    "maturity date",
			fieldAskingPrice:     "bid price",
		},
		Required: required,
	},
	{
		Name: "standard",
		Columns: map[field]string{
			fieldTitle:           "title",
			fieldAddress:         "address",
			fieldCity:            "city",
			fieldState:           "state",
			fieldZip:             "zip",
			fieldNoteType:        "note type",
			fieldLien:            "lien position",
			fieldPerformance:     "performance",
			fieldPropertyType:    "property type",
			fieldPropertyValue:   "property value",
			fieldOriginalBalance: "original balance",
			fieldUnpaidBalance:   "unpaid balance",
			fieldRate:            "interest rate",
			fieldPayment:         "monthly payment",
			fieldRemainingTerm:   "remaining term",
			fieldOriginationDate: "origination date",
			fieldMaturityDate:    "maturity date",
			fieldAskingPrice:     "asking price",
			fieldDescription:     "description",
		},
		Required: required,
	},
}
