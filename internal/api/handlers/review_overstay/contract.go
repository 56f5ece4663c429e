package review_overstay

import (
	"context"

	reviewOverstay "github.com/kitchrent/KRM-SettlementService/internal/usecase/review_overstay"
)

type ReviewOverstayUseCase interface {
	Approve(ctx context.Context, req *reviewOverstay.ApproveRequest) (*reviewOverstay.Response, error)
	Waive(ctx context.Context, req *reviewOverstay.WaiveRequest) (*reviewOverstay.Response, error)
	Charge(ctx context.Context, req *reviewOverstay.ChargeRequest) (*reviewOverstay.Response, error)
	Resolve(ctx context.Context, req *reviewOverstay.ResolveRequest) (*reviewOverstay.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
