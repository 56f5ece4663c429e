package refund_transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	txRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/transaction"
	payClient "github.com/kitchrent/KRM-SettlementService/internal/integrations/payservice"
	"github.com/kitchrent/KRM-SettlementService/internal/notifier"
)

// UseCase оркестратор возвратов
// Возврат покупателю и снятие с баланса менеджера всегда идут одним вызовом
// процессора на одну и ту же сумму (unified-модель)
type UseCase struct {
	transactionRepo TransactionRepository
	refundLogRepo   RefundLogRepository
	bookingRepo     BookingRepository
	listingClient   ListingServiceClient
	payClient       PayServiceClient
	txManager       TransactionManager
	notifier        Notifier
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	transactionRepo TransactionRepository,
	refundLogRepo RefundLogRepository,
	bookingRepo BookingRepository,
	listingClient ListingServiceClient,
	payClient PayServiceClient,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		transactionRepo: transactionRepo,
		refundLogRepo:   refundLogRepo,
		bookingRepo:     bookingRepo,
		listingClient:   listingClient,
		payClient:       payClient,
		txManager:       txManager,
		notifier:        notifier,
		logger:          logger,
	}
}

// Execute выполняет возврат по транзакции
// Вся последовательность идёт в сериализуемой транзакции с блокировкой строки:
// конкурентные возвраты по одной транзакции выполняются строго по очереди.
// Сбой процессора откатывает транзакцию БД целиком, запись остаётся нетронутой
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RefundTransaction: tx=%d, amount_cents=%d, actor=%d",
		req.TransactionID, req.AmountCents, req.ActorID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RefundTransaction: validation failed: %v", err)
		return nil, err
	}

	var response *Response
	var updated *domain.PaymentTransaction

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2. Читаем транзакцию с блокировкой FOR UPDATE
		tx, err := uc.transactionRepo.GetByIDForUpdate(txCtx, req.TransactionID)
		if err != nil {
			if errors.Is(err, txRepo.ErrTransactionNotFound) {
				uc.logger.Warn("RefundTransaction: tx id=%d not found", req.TransactionID)
				return ErrTransactionNotFound
			}
			uc.logger.Error("RefundTransaction: failed to get tx id=%d: %v", req.TransactionID, err)
			return fmt.Errorf("%w: failed to get transaction: %v", ErrInternal, err)
		}

		// 3. Ручной возврат доступен только менеджеру локации бронирования
		// ActorID 0 означает вызов изнутри сервиса (отмена, отклонение продления)
		if req.ActorID > 0 {
			booking, err := uc.bookingRepo.GetByID(txCtx, tx.BookingID)
			if err != nil {
				uc.logger.Error("RefundTransaction: failed to get booking id=%d: %v", tx.BookingID, err)
				return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
			}
			location, err := uc.listingClient.GetLocation(txCtx, booking.LocationID)
			if err != nil {
				uc.logger.Error("RefundTransaction: failed to get location id=%d: %v", booking.LocationID, err)
				return fmt.Errorf("%w: failed to get location: %v", ErrInternal, err)
			}
			if location.ManagerID != req.ActorID {
				uc.logger.Warn("RefundTransaction: actor=%d does not manage location=%d",
					req.ActorID, booking.LocationID)
				return ErrForbidden
			}
		}

		// 4. Инвариант записи: при нарушении автоматический возврат запрещён
		if err := tx.CheckInvariant(); err != nil {
			uc.logger.Error("RefundTransaction: %v", err)
			return fmt.Errorf("%w: %v", ErrLedgerCorrupted, err)
		}

		// 5. Проверяем, что возврат в принципе возможен
		if tx.ManagerRevenueCents == 0 {
			uc.logger.Warn("RefundTransaction: tx id=%d has no manager revenue", tx.ID)
			return fmt.Errorf("%w: %v", ErrNotRefundable, domain.ErrNotRefundableTransaction)
		}
		if !tx.IsRefundable() {
			uc.logger.Warn("RefundTransaction: tx id=%d status=%s is not refundable", tx.ID, tx.Status)
			return ErrNotRefundable
		}
		if tx.PaymentRef == "" {
			uc.logger.Error("RefundTransaction: tx id=%d has no payment ref", tx.ID)
			return ErrMissingPaymentRef
		}

		// 6. Проверяем лимит возврата
		breakdown := tx.Breakdown()
		if req.AmountCents > breakdown.MaxRefundableCents {
			uc.logger.Warn("RefundTransaction: amount %d exceeds max refundable %d for tx id=%d",
				req.AmountCents, breakdown.MaxRefundableCents, tx.ID)
			return fmt.Errorf("%w: requested %d, max %d",
				ErrAmountExceedsRefundable, req.AmountCents, breakdown.MaxRefundableCents)
		}

		// 7. Один вызов процессора: возврат покупателю + реверс трансфера менеджеру
		// Идемпотентность на стороне процессора: ключ включает накопленную сумму,
		// повтор той же операции после сбоя сети не спишет деньги дважды
		result, err := uc.payClient.RefundAndReverseTransfer(txCtx, payClient.RefundRequest{
			PaymentRef:     tx.PaymentRef,
			AmountCents:    req.AmountCents,
			Reason:         req.Reason,
			IdempotencyKey: fmt.Sprintf("refund-%d-%d", tx.ID, tx.RefundedCents),
		})
		if err != nil {
			uc.logger.Error("RefundTransaction: processor failed for tx id=%d: %v", tx.ID, err)
			return fmt.Errorf("%w: %v", ErrProcessorFailed, err)
		}

		// 8. Применяем возврат: новая сумма и производный статус одним UPDATE
		newRefunded := tx.RefundedCents + req.AmountCents
		newStatus := domain.DeriveStatus(newRefunded, tx.ManagerRevenueCents)

		updated, err = uc.transactionRepo.ApplyRefund(txCtx, tx.ID, newRefunded, newStatus)
		if err != nil {
			uc.logger.Error("RefundTransaction: failed to apply refund to tx id=%d: %v", tx.ID, err)
			return fmt.Errorf("%w: failed to apply refund: %v", ErrInternal, err)
		}

		// 9. Запись аудита возврата
		_, err = uc.refundLogRepo.Append(txCtx, &domain.RefundLogEntry{
			TransactionID:       tx.ID,
			RefundRef:           result.RefundID,
			TransferReversalRef: result.TransferReversalID,
			AmountCents:         req.AmountCents,
			Reason:              req.Reason,
			ActorID:             req.ActorID,
		})
		if err != nil {
			uc.logger.Error("RefundTransaction: failed to append refund log for tx id=%d: %v", tx.ID, err)
			return fmt.Errorf("%w: failed to append refund log: %v", ErrInternal, err)
		}

		// 10. Пробрасываем платёжный статус на бронирование
		if err := uc.bookingRepo.SetPaymentStatus(txCtx, tx.BookingID, updated.BookingPaymentStatus(), nil); err != nil {
			uc.logger.Error("RefundTransaction: failed to update booking id=%d payment status: %v",
				tx.BookingID, err)
			return fmt.Errorf("%w: failed to update booking payment status: %v", ErrInternal, err)
		}

		newBreakdown := updated.Breakdown()
		response = &Response{
			RefundID:           result.RefundID,
			TransferReversalID: result.TransferReversalID,
			Status:             string(updated.Status),
			RefundedCents:      updated.RefundedCents,
			MaxRefundableCents: newBreakdown.MaxRefundableCents,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("RefundTransaction: refunded %d cents on tx id=%d, status=%s",
		req.AmountCents, req.TransactionID, response.Status)

	// Событие публикуется после коммита, сбой публикации не влияет на результат
	uc.notifier.Publish(notifier.KeyRefundIssued, map[string]interface{}{
		"transaction_id": req.TransactionID,
		"booking_id":     updated.BookingID,
		"amount_cents":   req.AmountCents,
		"refund_id":      response.RefundID,
		"status":         response.Status,
	})

	return response, nil
}
