package detect_overstays

import (
	"context"
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetOverdueStorage(ctx context.Context, asOf time.Time) ([]*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// PenaltyRepository интерфейс репозитория штрафов за просрочку
type PenaltyRepository interface {
	GetActiveByBookingID(ctx context.Context, bookingID int64) (*domain.OverstayPenalty, error)
	Create(ctx context.Context, p *domain.OverstayPenalty) (*domain.OverstayPenalty, error)
	ListByStatus(ctx context.Context, status domain.PenaltyStatus) ([]*domain.OverstayPenalty, error)
	Promote(ctx context.Context, id int64, candidateAmountCents int64) error
	AppendHistory(ctx context.Context, entry *domain.PenaltyHistoryEntry) (*domain.PenaltyHistoryEntry, error)
}

// PolicyRepository интерфейс репозитория политик локаций
type PolicyRepository interface {
	GetByLocationID(ctx context.Context, locationID int64) (*domain.LocationPolicy, error)
}

// ListingServiceClient интерфейс клиента ListingService
type ListingServiceClient interface {
	GetListing(ctx context.Context, listingID int64) (*listingservice.Listing, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
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

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
