package get_user_bookings

import (
	"context"

	getUserBookings "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_user_bookings"
)

type GetUserBookingsUseCase interface {
	Execute(ctx context.Context, req *getUserBookings.Request) (*getUserBookings.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
