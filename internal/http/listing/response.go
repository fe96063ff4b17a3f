package listing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/notemarket/internal/listing"
)

type Response struct {
	ID                  uuid.UUID                  `json:"id"`
	SellerID            uuid.UUID                  `json:"seller_id"`
	Title               string                     `json:"title"`
	Description         string                     `json:"description,omitempty"`
	NoteType            listing.NoteType           `json:"note_type"`
	LienPosition        int                        `json:"lien_position"`
	PerformanceStatus   listing.PerformanceStatus  `json:"performance_status"`
	PropertyType        listing.PropertyType       `json:"property_type"`
	Address             string                     `json:"address"`
	City                string                     `json:"city"`
	State               string                     `json:"state"`
	Zip                 string                     `json:"zip"`
	PropertyValue       int64                      `json:"property_value"`
	OriginalBalance     int64                      `json:"original_balance"`
	UnpaidBalance       int64                      `json:"unpaid_balance"`
	InterestRate        decimal.Decimal            `json:"interest_rate"`
	MonthlyPayment      int64                      `json:"monthly_payment"`
	RemainingTermMonths int                        `json:"remaining_term_months"`
	OriginationDate     *time.Time                 `json:"origination_date,omitempty"`
	MaturityDate        *time.Time                 `json:"maturity_date,omitempty"`
	AskingPrice         int64                      `json:"asking_price"`
	Yield               decimal.Decimal            `json:"yield"`
	LoanToValue         decimal.Decimal            `json:"loan_to_value"`
	Status              listing.Status             `json:"status"`
	VerificationStatus  listing.VerificationStatus `json:"verification_status"`
	VerificationNote    string                     `json:"verification_note,omitempty"`
	ViewCount           int64                      `json:"view_count"`
	FavoriteCount       int64                      `json:"favorite_count"`
	InquiryCount        int64                      `json:"inquiry_count"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           *time.Time                 `json:"updated_at,omitempty"`
	PublishedAt         *time.Time                 `json:"published_at,omitempty"`
}

func ToResponse(l *listing.Listing) Response {
	return Response{
		ID:                  l.ID,
		SellerID:            l.SellerID,
		Title:               l.Title,
		Description:         l.Description,
		NoteType:            l.NoteType,
		LienPosition:        l.LienPosition,
		PerformanceStatus:   l.PerformanceStatus,
		PropertyType:        l.PropertyType,
		Address:             l.Address,
		City:                l.City,
		State:               l.State,
		Zip:                 l.Zip,
		PropertyValue:       l.PropertyValue,
		OriginalBalance:     l.OriginalBalance,
		UnpaidBalance:       l.UnpaidBalance,
		InterestRate:        l.InterestRate,
		MonthlyPayment:      l.MonthlyPayment,
		RemainingTermMonths: l.RemainingTermMonths,
		OriginationDate:     l.OriginationDate,
		MaturityDate:        l.MaturityDate,
		AskingPrice:         l.AskingPrice,
		Yield:               l.Yield,
		LoanToValue:         l.LoanToValue(),
		Status:              l.Status,
		VerificationStatus:  l.VerificationStatus,
		VerificationNote:    l.VerificationNote,
		ViewCount:           l.ViewCount,
		FavoriteCount:       l.FavoriteCount,
		InquiryCount:        l.InquiryCount,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
		PublishedAt:         l.PublishedAt,
	}
}

func ToResponseList(listings []*listing.Listing) []Response {
	resp := make([]Response, len(listings))
	for i, l := range listings {
		resp[i] = ToResponse(l)
	}

	return resp
}

type PageResponse struct {
	Listings []Response `json:"listings"`
	Total    int        `json:"total"`
}

func ToPageResponse(p *listing.Page) PageResponse {
	return PageResponse{Listings: ToResponseList(p.Listings), Total: p.Total}
}
