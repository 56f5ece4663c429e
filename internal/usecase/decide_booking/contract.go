package decide_booking

import (
	"context"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
	"github.com/kitchrent/KRM-SettlementService/internal/usecase/refund_transaction"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	Cancel(ctx context.Context, id int64, reason string) error
}

// TransactionRepository интерфейс репозитория транзакций
type TransactionRepository interface {
	GetByBookingID(ctx context.Context, bookingID int64) ([]*domain.PaymentTransaction, error)
}

// ListingServiceClient интерфейс клиента ListingService
type ListingServiceClient interface {
	GetLocation(ctx context.Context, locationID int64) (*listingservice.Location, error)
}

// RefundOrchestrator интерфейс оркестратора возвратов
type RefundOrchestrator interface {
	Execute(ctx context.Context, req *refund_transaction.Request) (*refund_transaction.Response, error)
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
