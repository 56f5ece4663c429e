package decide_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	bookingRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/booking"
	"github.com/kitchrent/KRM-SettlementService/internal/notifier"
	"github.com/kitchrent/KRM-SettlementService/internal/usecase/refund_transaction"
)

// UseCase решение менеджера или шефа по бронированию
//
// Асимметрия возвратов: отклонение ещё не подтверждённого, но уже оплаченного
// бронирования автоматически возвращает всю доступную сумму; отмена
// подтверждённого бронирования возврат не запускает, деньги менеджер
// возвращает отдельным решением
type UseCase struct {
	bookingRepo     BookingRepository
	transactionRepo TransactionRepository
	listingClient   ListingServiceClient
	refunder        RefundOrchestrator
	notifier        Notifier
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	transactionRepo TransactionRepository,
	listingClient ListingServiceClient,
	refunder RefundOrchestrator,
	notifier Notifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:     bookingRepo,
		transactionRepo: transactionRepo,
		listingClient:   listingClient,
		refunder:        refunder,
		notifier:        notifier,
		logger:          logger,
	}
}

// Execute выполняет решение по бронированию
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("DecideBooking: booking=%d, action=%s, actor=%d role=%s",
		req.BookingID, req.Action, req.ActorID, req.ActorRole)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("DecideBooking: validation failed: %v", err)
		return nil, err
	}

	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("DecideBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("DecideBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if err := uc.authorize(ctx, booking, req); err != nil {
		return nil, err
	}

	switch req.Action {
	case ActionApprove:
		return uc.approve(ctx, booking)
	case ActionReject:
		return uc.reject(ctx, booking, req)
	case ActionCancel:
		return uc.cancel(ctx, booking, req)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, req.Action)
	}
}

// authorize проверяет право инициатора на действие
// Менеджер локации решает approve/reject/cancel, шеф может только отменить своё
func (uc *UseCase) authorize(ctx context.Context, booking *domain.Booking, req *Request) error {
	switch req.ActorRole {
	case RoleManager:
		location, err := uc.listingClient.GetLocation(ctx, booking.LocationID)
		if err != nil {
			uc.logger.Error("DecideBooking: failed to get location id=%d: %v", booking.LocationID, err)
			return fmt.Errorf("%w: failed to get location: %v", ErrInternal, err)
		}
		if location.ManagerID != req.ActorID {
			uc.logger.Warn("DecideBooking: actor=%d is not manager of location=%d",
				req.ActorID, booking.LocationID)
			return ErrForbidden
		}
		return nil

	case RoleChef:
		if req.Action != ActionCancel {
			return ErrForbidden
		}
		if booking.ChefID != req.ActorID {
			uc.logger.Warn("DecideBooking: actor=%d is not owner of booking=%d", req.ActorID, booking.ID)
			return ErrForbidden
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.ActorRole)
	}
}

// approve подтверждает ожидающее бронирование
func (uc *UseCase) approve(ctx context.Context, booking *domain.Booking) (*Response, error) {
	if booking.Status != domain.StatusPending {
		uc.logger.Warn("DecideBooking: cannot approve booking id=%d in status=%s", booking.ID, booking.Status)
		return nil, fmt.Errorf("%w: cannot approve %s booking", ErrInvalidTransition, booking.Status)
	}

	if err := uc.bookingRepo.UpdateStatus(ctx, booking.ID, domain.StatusConfirmed); err != nil {
		uc.logger.Error("DecideBooking: failed to confirm booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to confirm booking: %v", ErrInternal, err)
	}

	uc.logger.Info("DecideBooking: booking id=%d confirmed", booking.ID)

	uc.notifier.Publish(notifier.KeyBookingConfirmed, map[string]interface{}{
		"booking_id": booking.ID,
		"chef_id":    booking.ChefID,
	})

	return &Response{
		BookingID:     booking.ID,
		Status:        string(domain.StatusConfirmed),
		PaymentStatus: string(booking.PaymentStatus),
	}, nil
}

// reject отклоняет ожидающее бронирование
// Если оплата уже захвачена, вся доступная сумма возвращается автоматически;
// сбой возврата оставляет бронирование в прежнем статусе
func (uc *UseCase) reject(ctx context.Context, booking *domain.Booking, req *Request) (*Response, error) {
	if booking.Status != domain.StatusPending {
		uc.logger.Warn("DecideBooking: cannot reject booking id=%d in status=%s", booking.ID, booking.Status)
		return nil, fmt.Errorf("%w: cannot reject %s booking", ErrInvalidTransition, booking.Status)
	}

	var refunded int64
	paymentStatus := booking.PaymentStatus

	if booking.IsPaid() {
		refundResp, err := uc.autoRefund(ctx, booking, req.Reason)
		if err != nil {
			return nil, err
		}
		if refundResp != nil {
			refunded = refundResp.RefundedCents
			paymentStatus = domain.PaymentRefunded
		}
	}

	if err := uc.bookingRepo.Cancel(ctx, booking.ID, req.Reason); err != nil {
		uc.logger.Error("DecideBooking: failed to cancel rejected booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
	}

	uc.logger.Info("DecideBooking: booking id=%d rejected, refunded_cents=%d", booking.ID, refunded)

	uc.notifier.Publish(notifier.KeyBookingRejected, map[string]interface{}{
		"booking_id":     booking.ID,
		"chef_id":        booking.ChefID,
		"refunded_cents": refunded,
		"reason":         req.Reason,
	})

	return &Response{
		BookingID:     booking.ID,
		Status:        string(domain.StatusCancelled),
		PaymentStatus: string(paymentStatus),
		RefundedCents: refunded,
	}, nil
}

// cancel отменяет бронирование без автоматического возврата
func (uc *UseCase) cancel(ctx context.Context, booking *domain.Booking, req *Request) (*Response, error) {
	if !booking.CanBeCancelled() {
		uc.logger.Warn("DecideBooking: cannot cancel booking id=%d in status=%s", booking.ID, booking.Status)
		return nil, fmt.Errorf("%w: cannot cancel %s booking", ErrInvalidTransition, booking.Status)
	}

	if err := uc.bookingRepo.Cancel(ctx, booking.ID, req.Reason); err != nil {
		uc.logger.Error("DecideBooking: failed to cancel booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
	}

	uc.logger.Info("DecideBooking: booking id=%d cancelled by %s", booking.ID, req.ActorRole)

	uc.notifier.Publish(notifier.KeyBookingCancelled, map[string]interface{}{
		"booking_id": booking.ID,
		"chef_id":    booking.ChefID,
		"by":         string(req.ActorRole),
		"reason":     req.Reason,
	})

	return &Response{
		BookingID:     booking.ID,
		Status:        string(domain.StatusCancelled),
		PaymentStatus: string(booking.PaymentStatus),
	}, nil
}

// autoRefund возвращает весь остаток доли менеджера по последней транзакции бронирования
// Уже полностью возвращённая транзакция пропускается
func (uc *UseCase) autoRefund(ctx context.Context, booking *domain.Booking, reason string) (*refund_transaction.Response, error) {
	transactions, err := uc.transactionRepo.GetByBookingID(ctx, booking.ID)
	if err != nil {
		uc.logger.Error("DecideBooking: failed to get transactions for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to get transactions: %v", ErrInternal, err)
	}

	var target *domain.PaymentTransaction
	for _, tx := range transactions {
		if tx.IsRefundable() && tx.Breakdown().MaxRefundableCents > 0 {
			target = tx
			break
		}
	}
	if target == nil {
		uc.logger.Info("DecideBooking: nothing to refund for booking id=%d", booking.ID)
		return nil, nil
	}

	refundReason := reason
	if strings.TrimSpace(refundReason) == "" {
		refundReason = "booking rejected by manager"
	}

	resp, err := uc.refunder.Execute(ctx, &refund_transaction.Request{
		TransactionID: target.ID,
		AmountCents:   target.Breakdown().MaxRefundableCents,
		Reason:        refundReason,
		ActorID:       0, // system
	})
	if err != nil {
		uc.logger.Error("DecideBooking: auto refund failed for tx id=%d: %v", target.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	return resp, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.ActorID <= 0 {
		return fmt.Errorf("%w: actorID must be positive", ErrInvalidInput)
	}
	if req.Action != ActionApprove && req.Action != ActionReject && req.Action != ActionCancel {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidInput, req.Action)
	}
	if (req.Action == ActionReject || req.Action == ActionCancel) && len(req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}
	return nil
}
