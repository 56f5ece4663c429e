package extend_storage

import (
	"context"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/payservice"
	"github.com/kitchrent/KRM-SettlementService/internal/usecase/refund_transaction"
	"time"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByResourceWithFilter(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error)
	ExtendEndDate(ctx context.Context, id int64, newEndDate time.Time) error
}

// ExtensionRepository интерфейс репозитория заявок на продление
type ExtensionRepository interface {
	Create(ctx context.Context, e *domain.StorageExtension) (*domain.StorageExtension, error)
	GetByID(ctx context.Context, id int64) (*domain.StorageExtension, error)
	GetPendingByBookingID(ctx context.Context, bookingID int64) (*domain.StorageExtension, error)
	MarkPaid(ctx context.Context, id int64, transactionID int64) error
	SetStatus(ctx context.Context, id int64, status domain.ExtensionStatus) error
}

// TransactionRepository интерфейс репозитория транзакций
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.PaymentTransaction) (*domain.PaymentTransaction, error)
	GetByID(ctx context.Context, id int64) (*domain.PaymentTransaction, error)
}

// ListingServiceClient интерфейс клиента ListingService
type ListingServiceClient interface {
	GetListing(ctx context.Context, listingID int64) (*listingservice.Listing, error)
	GetLocation(ctx context.Context, locationID int64) (*listingservice.Location, error)
}

// PayServiceClient интерфейс клиента платёжного процессора
type PayServiceClient interface {
	CreatePaymentIntent(ctx context.Context, req payservice.PaymentIntentRequest) (*payservice.PaymentIntent, error)
}

// RefundOrchestrator интерфейс оркестратора возвратов
type RefundOrchestrator interface {
	Execute(ctx context.Context, req *refund_transaction.Request) (*refund_transaction.Response, error)
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
