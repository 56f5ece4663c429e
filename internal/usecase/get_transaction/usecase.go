package get_transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	txRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/transaction"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
)

var (
	// ErrTransactionNotFound возвращается, когда транзакция не найдена
	ErrTransactionNotFound = errors.New("get_transaction: transaction not found")

	// ErrForbidden возвращается, когда транзакция недоступна этому пользователю
	ErrForbidden = errors.New("get_transaction: transaction is not visible to this user")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_transaction: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_transaction: internal error")
)

// TransactionRepository интерфейс репозитория транзакций
type TransactionRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.PaymentTransaction, error)
}

// RefundLogRepository интерфейс журнала возвратов
type RefundLogRepository interface {
	ListByTransaction(ctx context.Context, transactionID int64) ([]*domain.RefundLogEntry, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// ListingServiceClient интерфейс клиента ListingService
type ListingServiceClient interface {
	GetLocation(ctx context.Context, locationID int64) (*listingservice.Location, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Request модель запроса транзакции
type Request struct {
	TransactionID int64 // ID транзакции
	ActorID       int64 // Кто запрашивает (менеджер локации)
}

// RefundItem одна запись аудита возвратов
type RefundItem struct {
	RefundRef           string    // ID возврата у процессора
	TransferReversalRef string    // ID отмены трансфера
	AmountCents         int64     // Сумма возврата
	Reason              string    // Причина
	ActorID             int64     // Инициатор (0 = system)
	CreatedAt           time.Time // Время возврата
}

// Response модель ответа с транзакцией, breakdown и аудитом возвратов
type Response struct {
	ID          int64  // ID транзакции
	BookingID   int64  // ID бронирования
	BookingType string // Тип бронирования

	AmountCents         int64 // Полная захваченная сумма
	BaseAmountCents     int64 // Сумма без налога
	ServiceFeeCents     int64 // Комиссия платформы
	ManagerRevenueCents int64 // Доля менеджера
	ProcessorFeeCents   int64 // Комиссия процессора
	RefundedCents       int64 // Возвращено всего

	Status     string // Статус транзакции
	PaymentRef string // Ссылка на платёж процессора

	MaxRefundableCents           int64 // Остаток к возврату
	RemainingManagerBalanceCents int64 // Остаток доли менеджера

	Refunds []RefundItem // Аудит возвратов, старые первыми

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}

// UseCase use case просмотра транзакции с breakdown и аудитом
// Транзакцию видит только менеджер локации бронирования
type UseCase struct {
	transactionRepo TransactionRepository
	refundLogRepo   RefundLogRepository
	bookingRepo     BookingRepository
	listingClient   ListingServiceClient
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	transactionRepo TransactionRepository,
	refundLogRepo RefundLogRepository,
	bookingRepo BookingRepository,
	listingClient ListingServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		transactionRepo: transactionRepo,
		refundLogRepo:   refundLogRepo,
		bookingRepo:     bookingRepo,
		listingClient:   listingClient,
		logger:          logger,
	}
}

// Execute возвращает транзакцию с расчётом возврата и аудитом
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.TransactionID <= 0 {
		return nil, fmt.Errorf("%w: transactionID must be positive", ErrInvalidInput)
	}
	if req.ActorID <= 0 {
		return nil, fmt.Errorf("%w: actorID must be positive", ErrInvalidInput)
	}

	tx, err := uc.transactionRepo.GetByID(ctx, req.TransactionID)
	if err != nil {
		if errors.Is(err, txRepo.ErrTransactionNotFound) {
			uc.logger.Warn("GetTransaction: tx id=%d not found", req.TransactionID)
			return nil, ErrTransactionNotFound
		}
		uc.logger.Error("GetTransaction: failed to get tx id=%d: %v", req.TransactionID, err)
		return nil, fmt.Errorf("%w: failed to get transaction: %v", ErrInternal, err)
	}

	booking, err := uc.bookingRepo.GetByID(ctx, tx.BookingID)
	if err != nil {
		uc.logger.Error("GetTransaction: failed to get booking id=%d: %v", tx.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	location, err := uc.listingClient.GetLocation(ctx, booking.LocationID)
	if err != nil {
		uc.logger.Error("GetTransaction: failed to get location id=%d: %v", booking.LocationID, err)
		return nil, fmt.Errorf("%w: failed to get location: %v", ErrInternal, err)
	}
	if location.ManagerID != req.ActorID {
		uc.logger.Warn("GetTransaction: tx id=%d is not visible to actor=%d", tx.ID, req.ActorID)
		return nil, ErrForbidden
	}

	refunds, err := uc.refundLogRepo.ListByTransaction(ctx, tx.ID)
	if err != nil {
		uc.logger.Error("GetTransaction: failed to get refund log for tx id=%d: %v", tx.ID, err)
		return nil, fmt.Errorf("%w: failed to get refund log: %v", ErrInternal, err)
	}

	items := make([]RefundItem, 0, len(refunds))
	for _, r := range refunds {
		items = append(items, RefundItem{
			RefundRef:           r.RefundRef,
			TransferReversalRef: r.TransferReversalRef,
			AmountCents:         r.AmountCents,
			Reason:              r.Reason,
			ActorID:             r.ActorID,
			CreatedAt:           r.CreatedAt,
		})
	}

	breakdown := tx.Breakdown()

	return &Response{
		ID:                           tx.ID,
		BookingID:                    tx.BookingID,
		BookingType:                  string(tx.BookingType),
		AmountCents:                  tx.AmountCents,
		BaseAmountCents:              tx.BaseAmountCents,
		ServiceFeeCents:              tx.ServiceFeeCents,
		ManagerRevenueCents:          tx.ManagerRevenueCents,
		ProcessorFeeCents:            tx.ProcessorFeeCents,
		RefundedCents:                tx.RefundedCents,
		Status:                       string(tx.Status),
		PaymentRef:                   tx.PaymentRef,
		MaxRefundableCents:           breakdown.MaxRefundableCents,
		RemainingManagerBalanceCents: breakdown.RemainingManagerBalanceCents,
		Refunds:                      items,
		CreatedAt:                    tx.CreatedAt,
		UpdatedAt:                    tx.UpdatedAt,
	}, nil
}
