package confirm_booking_payment

import (
	confirmPayment "github.com/kitchrent/KRM-SettlementService/internal/usecase/confirm_booking_payment"
)

// ConfirmPaymentRequest HTTP request model
type ConfirmPaymentRequest struct {
	AmountCents       int64  `json:"amountCents"`
	BaseAmountCents   int64  `json:"baseAmountCents"`
	ServiceFeeCents   int64  `json:"serviceFeeCents"`
	ProcessorFeeCents int64  `json:"processorFeeCents"`
	PaymentRef        string `json:"paymentRef"`
}

// ConfirmPaymentResponse HTTP response model
type ConfirmPaymentResponse struct {
	TransactionID       int64  `json:"transactionId"`
	BookingID           int64  `json:"bookingId"`
	AmountCents         int64  `json:"amountCents"`
	ManagerRevenueCents int64  `json:"managerRevenueCents"`
	Status              string `json:"status"`
}

func (r *ConfirmPaymentRequest) ToUseCaseRequest(bookingID int64) *confirmPayment.Request {
	return &confirmPayment.Request{
		BookingID:         bookingID,
		AmountCents:       r.AmountCents,
		BaseAmountCents:   r.BaseAmountCents,
		ServiceFeeCents:   r.ServiceFeeCents,
		ProcessorFeeCents: r.ProcessorFeeCents,
		PaymentRef:        r.PaymentRef,
	}
}

func FromUseCaseResponse(resp *confirmPayment.Response) *ConfirmPaymentResponse {
	return &ConfirmPaymentResponse{
		TransactionID:       resp.TransactionID,
		BookingID:           resp.BookingID,
		AmountCents:         resp.AmountCents,
		ManagerRevenueCents: resp.ManagerRevenueCents,
		Status:              resp.Status,
	}
}
