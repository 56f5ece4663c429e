package review_overstay

import (
	"context"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/payservice"
)

// PenaltyRepository интерфейс репозитория штрафов за просрочку
type PenaltyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.OverstayPenalty, error)
	Approve(ctx context.Context, id int64, finalAmountCents *int64) error
	Waive(ctx context.Context, id int64, reason string) error
	MarkCharged(ctx context.Context, id int64, chargeRef string) error
	MarkChargeFailed(ctx context.Context, id int64) error
	Resolve(ctx context.Context, id int64, resolution domain.ResolutionType) error
	AppendHistory(ctx context.Context, entry *domain.PenaltyHistoryEntry) (*domain.PenaltyHistoryEntry, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// ListingServiceClient интерфейс клиента ListingService
type ListingServiceClient interface {
	GetLocation(ctx context.Context, locationID int64) (*listingservice.Location, error)
}

// PayServiceClient интерфейс клиента платёжного процессора
type PayServiceClient interface {
	ChargeSavedMethod(ctx context.Context, req payservice.ChargeRequest) (*payservice.ChargeResult, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier интерфейс публикации доменных событий
type Notifier interface {
	Publish(routingKey string, payload map[string]interface{})
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
