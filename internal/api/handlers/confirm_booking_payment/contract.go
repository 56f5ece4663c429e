package confirm_booking_payment

import (
	"context"

	confirmPayment "github.com/kitchrent/KRM-SettlementService/internal/usecase/confirm_booking_payment"
)

type ConfirmBookingPaymentUseCase interface {
	Execute(ctx context.Context, req *confirmPayment.Request) (*confirmPayment.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
