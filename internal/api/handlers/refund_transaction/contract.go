package refund_transaction

import (
	"context"

	refundTransaction "github.com/kitchrent/KRM-SettlementService/internal/usecase/refund_transaction"
)

type RefundTransactionUseCase interface {
	Execute(ctx context.Context, req *refundTransaction.Request) (*refundTransaction.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
