package get_transaction

import (
	"context"

	getTransaction "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_transaction"
)

type GetTransactionUseCase interface {
	Execute(ctx context.Context, req *getTransaction.Request) (*getTransaction.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
