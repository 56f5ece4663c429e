package get_available_windows

import (
	"context"

	getWindows "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_available_windows"
)

type GetAvailableWindowsUseCase interface {
	Execute(ctx context.Context, req *getWindows.Request) (*getWindows.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
