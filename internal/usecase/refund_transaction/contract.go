package refund_transaction

import (
	"context"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/payservice"
)

// TransactionRepository интерфейс репозитория транзакций
type TransactionRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.PaymentTransaction, error)
	ApplyRefund(ctx context.Context, id int64, newRefundedCents int64, newStatus domain.TransactionStatus) (*domain.PaymentTransaction, error)
}

// RefundLogRepository интерфейс append-only журнала возвратов
type RefundLogRepository interface {
	Append(ctx context.Context, entry *domain.RefundLogEntry) (*domain.RefundLogEntry, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, paymentIntentRef *string) error
}

// ListingServiceClient интерфейс клиента ListingService
type ListingServiceClient interface {
	GetLocation(ctx context.Context, locationID int64) (*listingservice.Location, error)
}

// PayServiceClient интерфейс клиента платёжного процессора
type PayServiceClient interface {
	RefundAndReverseTransfer(ctx context.Context, req payservice.RefundRequest) (*payservice.RefundResult, error)
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
