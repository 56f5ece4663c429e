package extend_storage

import (
	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	extendStorage "github.com/kitchrent/KRM-SettlementService/internal/usecase/extend_storage"
)

// CheckoutRequest HTTP request model для заявки на продление
type CheckoutRequest struct {
	ExtensionDays int `json:"extensionDays"`
}

// CheckoutResponse HTTP response model для заявки на продление
type CheckoutResponse struct {
	ExtensionID      int64  `json:"extensionId"`
	BookingID        int64  `json:"bookingId"`
	NewEndDate       string `json:"newEndDate"`
	BaseAmountCents  int64  `json:"baseAmountCents"`
	ServiceFeeCents  int64  `json:"serviceFeeCents"`
	TotalAmountCents int64  `json:"totalAmountCents"`
	PaymentIntentRef string `json:"paymentIntentRef"`
	ClientSecret     string `json:"clientSecret"`
	Status           string `json:"status"`
}

// ConfirmPaymentRequest HTTP request model для подтверждения оплаты продления
type ConfirmPaymentRequest struct {
	AmountCents       int64  `json:"amountCents"`
	ProcessorFeeCents int64  `json:"processorFeeCents"`
	PaymentRef        string `json:"paymentRef"`
}

// DecideRequest HTTP request model для решения по заявке
type DecideRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ExtensionResponse HTTP response model
type ExtensionResponse struct {
	ExtensionID   int64   `json:"extensionId"`
	BookingID     int64   `json:"bookingId"`
	Status        string  `json:"status"`
	NewEndDate    *string `json:"newEndDate,omitempty"`
	RefundedCents int64   `json:"refundedCents,omitempty"`
}

func FromCheckoutResponse(resp *extendStorage.CheckoutResponse) *CheckoutResponse {
	return &CheckoutResponse{
		ExtensionID:      resp.ExtensionID,
		BookingID:        resp.BookingID,
		NewEndDate:       resp.NewEndDate.Format(domain.DateFormat),
		BaseAmountCents:  resp.BaseAmountCents,
		ServiceFeeCents:  resp.ServiceFeeCents,
		TotalAmountCents: resp.TotalAmountCents,
		PaymentIntentRef: resp.PaymentIntentRef,
		ClientSecret:     resp.ClientSecret,
		Status:           resp.Status,
	}
}

func FromUseCaseResponse(resp *extendStorage.Response) *ExtensionResponse {
	out := &ExtensionResponse{
		ExtensionID:   resp.ExtensionID,
		BookingID:     resp.BookingID,
		Status:        resp.Status,
		RefundedCents: resp.RefundedCents,
	}
	if resp.NewEndDate != nil {
		newEndDate := resp.NewEndDate.Format(domain.DateFormat)
		out.NewEndDate = &newEndDate
	}
	return out
}
