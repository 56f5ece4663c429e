package confirm_booking_payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	bookingRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/booking"
)

// UseCase фиксирует захваченный платёж в леджере
// Одна строка payment_transactions на каждый захват
type UseCase struct {
	bookingRepo     BookingRepository
	transactionRepo TransactionRepository
	txManager       TransactionManager
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	transactionRepo TransactionRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:     bookingRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

// Execute записывает захват платежа и переводит бронирование в paid
// Повторное подтверждение того же payment ref идемпотентно отклоняется
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ConfirmBookingPayment: booking=%d, amount_cents=%d, ref=%s",
		req.BookingID, req.AmountCents, req.PaymentRef)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ConfirmBookingPayment: validation failed: %v", err)
		return nil, err
	}

	// Комиссия процессора учитывается отдельно и долю менеджера не уменьшает
	managerRevenue := req.AmountCents - req.ServiceFeeCents
	if managerRevenue < 0 {
		uc.logger.Error("ConfirmBookingPayment: negative manager revenue for booking id=%d", req.BookingID)
		return nil, fmt.Errorf("%w: service fee exceeds captured amount", ErrAmountsInconsistent)
	}

	var created *domain.PaymentTransaction

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("ConfirmBookingPayment: booking id=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("ConfirmBookingPayment: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// Идемпотентность: один захват на payment ref
		existing, err := uc.transactionRepo.GetByBookingID(txCtx, req.BookingID)
		if err != nil {
			uc.logger.Error("ConfirmBookingPayment: failed to get transactions: %v", err)
			return fmt.Errorf("%w: failed to get transactions: %v", ErrInternal, err)
		}
		for _, tx := range existing {
			if tx.PaymentRef == req.PaymentRef {
				uc.logger.Warn("ConfirmBookingPayment: ref=%s already captured as tx id=%d",
					req.PaymentRef, tx.ID)
				return ErrAlreadyCaptured
			}
		}

		tx := &domain.PaymentTransaction{
			BookingID:           booking.ID,
			BookingType:         booking.Type,
			AmountCents:         req.AmountCents,
			BaseAmountCents:     req.BaseAmountCents,
			ServiceFeeCents:     req.ServiceFeeCents,
			ManagerRevenueCents: managerRevenue,
			ProcessorFeeCents:   req.ProcessorFeeCents,
			RefundedCents:       0,
			Status:              domain.TransactionSucceeded,
			PaymentRef:          req.PaymentRef,
		}

		if err := tx.CheckInvariant(); err != nil {
			uc.logger.Error("ConfirmBookingPayment: %v", err)
			return fmt.Errorf("%w: %v", ErrAmountsInconsistent, err)
		}

		created, err = uc.transactionRepo.Create(txCtx, tx)
		if err != nil {
			uc.logger.Error("ConfirmBookingPayment: failed to create transaction: %v", err)
			return fmt.Errorf("%w: failed to create transaction: %v", ErrInternal, err)
		}

		if err := uc.bookingRepo.SetPaymentStatus(txCtx, booking.ID, domain.PaymentPaid, &req.PaymentRef); err != nil {
			uc.logger.Error("ConfirmBookingPayment: failed to update booking payment status: %v", err)
			return fmt.Errorf("%w: failed to update booking payment status: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("ConfirmBookingPayment: captured tx id=%d for booking id=%d", created.ID, req.BookingID)

	return &Response{
		TransactionID:       created.ID,
		BookingID:           created.BookingID,
		AmountCents:         created.AmountCents,
		ManagerRevenueCents: created.ManagerRevenueCents,
		Status:              string(created.Status),
	}, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.AmountCents <= 0 {
		return fmt.Errorf("%w: amountCents must be positive", ErrInvalidInput)
	}
	if req.BaseAmountCents < 0 || req.ServiceFeeCents < 0 || req.ProcessorFeeCents < 0 {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidInput)
	}
	if req.PaymentRef == "" {
		return fmt.Errorf("%w: paymentRef is required", ErrInvalidInput)
	}
	return nil
}
