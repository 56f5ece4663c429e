package extend_storage

import (
	"context"

	extendStorage "github.com/kitchrent/KRM-SettlementService/internal/usecase/extend_storage"
)

type ExtendStorageUseCase interface {
	Checkout(ctx context.Context, req *extendStorage.CheckoutRequest) (*extendStorage.CheckoutResponse, error)
	ConfirmPayment(ctx context.Context, req *extendStorage.ConfirmPaymentRequest) (*extendStorage.Response, error)
	Approve(ctx context.Context, req *extendStorage.DecideRequest) (*extendStorage.Response, error)
	Reject(ctx context.Context, req *extendStorage.DecideRequest) (*extendStorage.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
