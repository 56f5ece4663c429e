package decide_booking

import (
	decideBooking "github.com/kitchrent/KRM-SettlementService/internal/usecase/decide_booking"
)

// DecideBookingRequest HTTP request model
type DecideBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

// DecideBookingResponse HTTP response model
type DecideBookingResponse struct {
	BookingID     int64  `json:"bookingId"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	RefundedCents int64  `json:"refundedCents,omitempty"`
}

func FromUseCaseResponse(resp *decideBooking.Response) *DecideBookingResponse {
	return &DecideBookingResponse{
		BookingID:     resp.BookingID,
		Status:        resp.Status,
		PaymentStatus: resp.PaymentStatus,
		RefundedCents: resp.RefundedCents,
	}
}
