package get_user_bookings

import (
	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	getUserBookings "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_user_bookings"
)

// BookingItemResponse элемент списка бронирований
type BookingItemResponse struct {
	ID              int64   `json:"id"`
	ResourceID      int64   `json:"resourceId"`
	Type            string  `json:"type"`
	Date            string  `json:"date"`
	EndDate         *string `json:"endDate,omitempty"`
	StartTime       *string `json:"startTime,omitempty"`
	EndTime         *string `json:"endTime,omitempty"`
	Status          string  `json:"status"`
	PaymentStatus   string  `json:"paymentStatus"`
	TotalPriceCents int64   `json:"totalPriceCents"`
}

// UserBookingsResponse HTTP response model
type UserBookingsResponse struct {
	UserID   int64                 `json:"userId"`
	Bookings []BookingItemResponse `json:"bookings"`
}

func FromUseCaseResponse(resp *getUserBookings.Response) *UserBookingsResponse {
	bookings := make([]BookingItemResponse, 0, len(resp.Bookings))
	for _, b := range resp.Bookings {
		item := BookingItemResponse{
			ID:              b.ID,
			ResourceID:      b.ResourceID,
			Type:            b.Type,
			Date:            b.Date.Format(domain.DateFormat),
			Status:          b.Status,
			PaymentStatus:   b.PaymentStatus,
			TotalPriceCents: b.TotalPriceCents,
		}
		if b.EndDate != nil {
			endDate := b.EndDate.Format(domain.DateFormat)
			item.EndDate = &endDate
		}
		if b.StartTime != nil {
			startTime := b.StartTime.String()
			item.StartTime = &startTime
		}
		if b.EndTime != nil {
			endTime := b.EndTime.String()
			item.EndTime = &endTime
		}
		bookings = append(bookings, item)
	}

	return &UserBookingsResponse{
		UserID:   resp.UserID,
		Bookings: bookings,
	}
}
