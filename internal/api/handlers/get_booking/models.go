package get_booking

import (
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	getBooking "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_booking"
)

// BookingResponse HTTP response model
type BookingResponse struct {
	ID         int64   `json:"id"`
	ResourceID int64   `json:"resourceId"`
	LocationID int64   `json:"locationId"`
	ChefID     int64   `json:"chefId"`
	Type       string  `json:"type"`
	Date       string  `json:"date"`
	EndDate    *string `json:"endDate,omitempty"`
	StartTime  *string `json:"startTime,omitempty"`
	EndTime    *string `json:"endTime,omitempty"`

	Status          string `json:"status"`
	PaymentStatus   string `json:"paymentStatus"`
	TotalPriceCents int64  `json:"totalPriceCents"`
	ContentsPresent bool   `json:"contentsPresent"`

	CancellationReason *string   `json:"cancellationReason,omitempty"`
	CancelledAt        *string   `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func FromUseCaseResponse(resp *getBooking.Response) *BookingResponse {
	out := &BookingResponse{
		ID:                 resp.ID,
		ResourceID:         resp.ResourceID,
		LocationID:         resp.LocationID,
		ChefID:             resp.ChefID,
		Type:               resp.Type,
		Date:               resp.Date.Format(domain.DateFormat),
		Status:             resp.Status,
		PaymentStatus:      resp.PaymentStatus,
		TotalPriceCents:    resp.TotalPriceCents,
		ContentsPresent:    resp.ContentsPresent,
		CancellationReason: resp.CancellationReason,
		CreatedAt:          resp.CreatedAt,
		UpdatedAt:          resp.UpdatedAt,
	}

	if resp.EndDate != nil {
		endDate := resp.EndDate.Format(domain.DateFormat)
		out.EndDate = &endDate
	}
	if resp.StartTime != nil {
		startTime := resp.StartTime.String()
		out.StartTime = &startTime
	}
	if resp.EndTime != nil {
		endTime := resp.EndTime.String()
		out.EndTime = &endTime
	}
	if resp.CancelledAt != nil {
		cancelledAt := resp.CancelledAt.Format(time.RFC3339)
		out.CancelledAt = &cancelledAt
	}

	return out
}
