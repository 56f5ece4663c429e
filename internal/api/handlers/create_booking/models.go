package create_booking

import (
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	createBooking "github.com/kitchrent/KRM-SettlementService/internal/usecase/create_booking"
	"github.com/kitchrent/KRM-SettlementService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ListingID int64   `json:"listingId"`
	Date      string  `json:"date"`                // "2026-09-15"
	EndDate   *string `json:"endDate,omitempty"`   // только для storage
	StartTime *string `json:"startTime,omitempty"` // "10:00", kitchen/equipment
	EndTime   *string `json:"endTime,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID         int64   `json:"id"`
	ChefID     int64   `json:"chefId"`
	ResourceID int64   `json:"resourceId"`
	LocationID int64   `json:"locationId"`
	Type       string  `json:"type"`
	Date       string  `json:"date"`
	EndDate    *string `json:"endDate,omitempty"`
	StartTime  *string `json:"startTime,omitempty"`
	EndTime    *string `json:"endTime,omitempty"`

	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`

	BaseAmountCents  int64  `json:"baseAmountCents"`
	ServiceFeeCents  int64  `json:"serviceFeeCents"`
	TotalPriceCents  int64  `json:"totalPriceCents"`
	PaymentIntentRef string `json:"paymentIntentRef"`
	ClientSecret     string `json:"clientSecret"`

	CreatedAt string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(chefID int64) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	req := &createBooking.Request{
		ChefID:    chefID,
		ListingID: r.ListingID,
		Date:      date,
	}

	if r.EndDate != nil {
		endDate, err := time.Parse(domain.DateFormat, *r.EndDate)
		if err != nil {
			return nil, err
		}
		req.EndDate = &endDate
	}

	if r.StartTime != nil {
		st, err := types.NewTimeStringFromString(*r.StartTime)
		if err != nil {
			return nil, err
		}
		req.StartTime = &st
	}

	if r.EndTime != nil {
		et, err := types.NewTimeStringFromString(*r.EndTime)
		if err != nil {
			return nil, err
		}
		req.EndTime = &et
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	out := &BookingResponse{
		ID:               resp.ID,
		ChefID:           resp.ChefID,
		ResourceID:       resp.ResourceID,
		LocationID:       resp.LocationID,
		Type:             resp.Type,
		Date:             resp.Date.Format(domain.DateFormat),
		Status:           resp.Status,
		PaymentStatus:    resp.PaymentStatus,
		BaseAmountCents:  resp.BaseAmountCents,
		ServiceFeeCents:  resp.ServiceFeeCents,
		TotalPriceCents:  resp.TotalPriceCents,
		PaymentIntentRef: resp.PaymentIntentRef,
		ClientSecret:     resp.ClientSecret,
		CreatedAt:        resp.CreatedAt.Format(time.RFC3339),
	}

	if resp.EndDate != nil {
		s := resp.EndDate.Format(domain.DateFormat)
		out.EndDate = &s
	}
	if resp.StartTime != nil {
		s := resp.StartTime.String()
		out.StartTime = &s
	}
	if resp.EndTime != nil {
		s := resp.EndTime.String()
		out.EndTime = &s
	}

	return out
}
