package listing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
)

type NoteType string

const (
	NoteTypeMortgage        NoteType = "mortgage"
	NoteTypeDeedOfTrust     NoteType = "deed_of_trust"
	NoteTypeLandContract    NoteType = "land_contract"
	NoteTypeContractForDeed NoteType = "contract_for_deed"
)

var NoteTypes = []NoteType{NoteTypeMortgage, NoteTypeDeedOfTrust, NoteTypeLandContract, NoteTypeContractForDeed}

type PerformanceStatus string

const (
	PerformancePerforming    PerformanceStatus = "performing"
	PerformanceSubPerforming PerformanceStatus = "sub_performing"
	PerformanceNonPerforming PerformanceStatus = "non_performing"
	PerformanceReperforming  PerformanceStatus = "reperforming"
)

var PerformanceStatuses = []PerformanceStatus{
	PerformancePerforming, PerformanceSubPerforming, PerformanceNonPerforming, PerformanceReperforming,
}

type PropertyType string

const (
	PropertySingleFamily PropertyType = "single_family"
	PropertyMultiFamily  PropertyType = "multi_family"
	PropertyCondo        PropertyType = "condo"
	PropertyTownhouse    PropertyType = "townhouse"
	PropertyMobileHome   PropertyType = "mobile_home"
	PropertyCommercial   PropertyType = "commercial"
	PropertyLand         PropertyType = "land"
)

var PropertyTypes = []PropertyType{
	PropertySingleFamily, PropertyMultiFamily, PropertyCondo, PropertyTownhouse,
	PropertyMobileHome, PropertyCommercial, PropertyLand,
}

// Status is the sale lifecycle of a listing. Listings are retired through
// status changes and never deleted.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusPending Status = "pending"
	StatusSold    Status = "sold"
	StatusExpired Status = "expired"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Listing is a seller's offer to sell a note. Amounts are in cents; rates and
// yields are percentages.
type Listing struct {
	ID                  uuid.UUID
	SellerID            uuid.UUID
	Title               string
	Description         string
	NoteType            NoteType
	LienPosition        int
	PerformanceStatus   PerformanceStatus
	PropertyType        PropertyType
	Address             string
	City                string
	State               string
	Zip                 string
	PropertyValue       int64
	OriginalBalance     int64
	UnpaidBalance       int64
	InterestRate        decimal.Decimal
	MonthlyPayment      int64
	RemainingTermMonths int
	OriginationDate     *time.Time
	MaturityDate        *time.Time
	AskingPrice         int64
	Yield               decimal.Decimal
	Status              Status
	VerificationStatus  VerificationStatus
	VerificationNote    string
	ViewCount           int64
	FavoriteCount       int64
	InquiryCount        int64
	CreatedAt           time.Time
	UpdatedAt           *time.Time
	PublishedAt         *time.Time
}

// IsPublic reports whether buyers can see the listing at all.
func (l *Listing) IsPublic() bool {
	if l.VerificationStatus != VerificationVerified {
		return false
	}

	switch l.Status {
	case StatusActive, StatusPending, StatusSold:
		return true
	}

	return false
}

// AcceptsInquiries reports whether buyers may start a negotiation.
func (l *Listing) AcceptsInquiries() bool {
	return l.Status == StatusActive && l.VerificationStatus == VerificationVerified
}

func (l *Listing) OwnedBy(userID uuid.UUID) bool {
	return l.SellerID == userID
}

// VisibleTo applies the marketplace visibility rule for a viewer.
func (l *Listing) VisibleTo(viewer auth.Session) bool {
	return l.IsPublic() || l.OwnedBy(viewer.UserID) || viewer.Can(auth.CapViewAll)
}

// LoanToValue returns the unpaid balance as a percentage of property value.
func (l *Listing) LoanToValue() decimal.Decimal {
	if l.PropertyValue <= 0 {
		return decimal.Zero
	}

	return decimal.NewFromInt(l.UnpaidBalance).
		Div(decimal.NewFromInt(l.PropertyValue)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// CurrentYield is the annual payment stream as a percentage of the asking price.
func CurrentYield(monthlyPayment, askingPrice int64) decimal.Decimal {
	if askingPrice <= 0 || monthlyPayment <= 0 {
		return decimal.Zero
	}

	return decimal.NewFromInt(monthlyPayment * 12).
		Div(decimal.NewFromInt(askingPrice)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}
