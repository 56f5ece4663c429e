package create_booking

import (
	"context"
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/payservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByResourceWithFilter(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error)
	GetByChefID(ctx context.Context, chefID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
}

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetRules(ctx context.Context, resourceID int64) ([]*domain.ScheduleRule, error)
	GetOverride(ctx context.Context, resourceID int64, date time.Time) (*domain.ScheduleOverride, error)
}

// PolicyRepository интерфейс репозитория политик локаций
type PolicyRepository interface {
	GetByLocationID(ctx context.Context, locationID int64) (*domain.LocationPolicy, error)
}

// ListingServiceClient интерфейс клиента ListingService
type ListingServiceClient interface {
	GetListing(ctx context.Context, listingID int64) (*listingservice.Listing, error)
	GetLocation(ctx context.Context, locationID int64) (*listingservice.Location, error)
}

// PayServiceClient интерфейс клиента платёжного процессора
type PayServiceClient interface {
	CreatePaymentIntent(ctx context.Context, req payservice.PaymentIntentRequest) (*payservice.PaymentIntent, error)
	GetAccountStatus(ctx context.Context, accountID string) (*payservice.AccountStatus, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
