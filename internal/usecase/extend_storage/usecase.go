package extend_storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	bookingRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/booking"
	extensionRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/extension"
	payClient "github.com/kitchrent/KRM-SettlementService/internal/integrations/payservice"
	"github.com/kitchrent/KRM-SettlementService/internal/notifier"
	"github.com/kitchrent/KRM-SettlementService/internal/usecase/refund_transaction"
)

// UseCase workflow продления хранения: checkout шефа, подтверждение оплаты,
// решение менеджера
//
// Оплата всегда предшествует решению: менеджер рассматривает только
// оплаченные заявки, отклонение оплаченной заявки возвращает деньги
type UseCase struct {
	bookingRepo     BookingRepository
	extensionRepo   ExtensionRepository
	transactionRepo TransactionRepository
	listingClient   ListingServiceClient
	payClient       PayServiceClient
	refunder        RefundOrchestrator
	txManager       TransactionManager
	notifier        Notifier
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	extensionRepo ExtensionRepository,
	transactionRepo TransactionRepository,
	listingClient ListingServiceClient,
	payClient PayServiceClient,
	refunder RefundOrchestrator,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:     bookingRepo,
		extensionRepo:   extensionRepo,
		transactionRepo: transactionRepo,
		listingClient:   listingClient,
		payClient:       payClient,
		refunder:        refunder,
		txManager:       txManager,
		notifier:        notifier,
		logger:          logger,
	}
}

// Checkout создает заявку на продление с платёжным намерением
// Диапазон после продления проверяется на конфликты в сериализуемой транзакции
func (uc *UseCase) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	uc.logger.Info("ExtendStorage: checkout booking=%d, chef=%d, days=%d",
		req.BookingID, req.ChefID, req.ExtensionDays)

	if err := validateCheckout(req); err != nil {
		uc.logger.Warn("ExtendStorage: validation failed: %v", err)
		return nil, err
	}

	var response *CheckoutResponse

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("ExtendStorage: booking id=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("ExtendStorage: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		if !booking.IsStorage() || booking.EndDate == nil {
			return ErrNotStorageBooking
		}
		if booking.ChefID != req.ChefID {
			uc.logger.Warn("ExtendStorage: chef=%d is not owner of booking=%d", req.ChefID, booking.ID)
			return ErrForbidden
		}
		if booking.Status != domain.StatusConfirmed {
			uc.logger.Warn("ExtendStorage: booking id=%d in status=%s cannot be extended",
				booking.ID, booking.Status)
			return ErrBookingNotExtendable
		}

		// Только одна незакрытая заявка на бронирование
		if _, err := uc.extensionRepo.GetPendingByBookingID(txCtx, booking.ID); err == nil {
			uc.logger.Warn("ExtendStorage: booking id=%d already has a pending extension", booking.ID)
			return ErrExtensionAlreadyPending
		} else if !errors.Is(err, extensionRepo.ErrExtensionNotFound) {
			uc.logger.Error("ExtendStorage: failed to check pending extension: %v", err)
			return fmt.Errorf("%w: failed to check pending extension: %v", ErrInternal, err)
		}

		newEndDate := booking.EndDate.AddDate(0, 0, req.ExtensionDays)

		// Продлённый диапазон не должен пересекаться с чужими бронированиями
		if err := uc.checkRangeFree(txCtx, booking, newEndDate); err != nil {
			return err
		}

		listing, err := uc.listingClient.GetListing(txCtx, booking.ResourceID)
		if err != nil {
			uc.logger.Error("ExtendStorage: failed to get listing id=%d: %v", booking.ResourceID, err)
			return fmt.Errorf("%w: failed to get listing: %v", ErrInternal, err)
		}

		location, err := uc.listingClient.GetLocation(txCtx, booking.LocationID)
		if err != nil {
			uc.logger.Error("ExtendStorage: failed to get location id=%d: %v", booking.LocationID, err)
			return fmt.Errorf("%w: failed to get location: %v", ErrInternal, err)
		}

		base := int64(req.ExtensionDays) * listing.DailyRateCents
		fee := int64(math.Floor(float64(base)*location.ServiceFeeRate + 0.5))
		total := base + fee

		intent, err := uc.payClient.CreatePaymentIntent(txCtx, payClient.PaymentIntentRequest{
			AmountCents:         total,
			Currency:            "usd",
			PayerID:             req.ChefID,
			ConnectedAccountID:  location.ConnectedAccountID,
			ApplicationFeeCents: fee,
			IdempotencyKey:      fmt.Sprintf("extension-%d-%s", booking.ID, newEndDate.Format(domain.DateFormat)),
			Description:         fmt.Sprintf("storage extension, booking %d", booking.ID),
		})
		if err != nil {
			uc.logger.Error("ExtendStorage: failed to create payment intent: %v", err)
			return fmt.Errorf("%w: %v", ErrPaymentSetupFailed, err)
		}

		created, err := uc.extensionRepo.Create(txCtx, &domain.StorageExtension{
			BookingID:           booking.ID,
			ChefID:              req.ChefID,
			ExtensionDays:       req.ExtensionDays,
			NewEndDate:          newEndDate,
			BaseAmountCents:     base,
			ServiceFeeCents:     fee,
			TotalAmountCents:    total,
			ManagerRevenueCents: base,
			PaymentIntentRef:    &intent.Ref,
			Status:              domain.ExtensionPending,
		})
		if err != nil {
			uc.logger.Error("ExtendStorage: failed to create extension: %v", err)
			return fmt.Errorf("%w: failed to create extension: %v", ErrInternal, err)
		}

		response = &CheckoutResponse{
			ExtensionID:      created.ID,
			BookingID:        booking.ID,
			NewEndDate:       newEndDate,
			BaseAmountCents:  base,
			ServiceFeeCents:  fee,
			TotalAmountCents: total,
			PaymentIntentRef: intent.Ref,
			ClientSecret:     intent.ClientSecret,
			Status:           string(domain.ExtensionPending),
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("ExtendStorage: created extension id=%d for booking id=%d",
		response.ExtensionID, response.BookingID)

	uc.notifier.Publish(notifier.KeyExtensionCreated, map[string]interface{}{
		"extension_id": response.ExtensionID,
		"booking_id":   response.BookingID,
		"new_end_date": response.NewEndDate.Format(domain.DateFormat),
	})

	return response, nil
}

// ConfirmPayment фиксирует захваченную оплату продления в леджере
// и переводит заявку в paid
func (uc *UseCase) ConfirmPayment(ctx context.Context, req *ConfirmPaymentRequest) (*Response, error) {
	uc.logger.Info("ExtendStorage: confirm payment extension=%d, amount_cents=%d",
		req.ExtensionID, req.AmountCents)

	if req.ExtensionID <= 0 {
		return nil, fmt.Errorf("%w: extensionID must be positive", ErrInvalidInput)
	}
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amountCents must be positive", ErrInvalidInput)
	}
	if req.PaymentRef == "" {
		return nil, fmt.Errorf("%w: paymentRef is required", ErrInvalidInput)
	}

	var response *Response

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		ext, err := uc.getExtension(txCtx, req.ExtensionID)
		if err != nil {
			return err
		}

		if !ext.CanConfirmPayment() {
			uc.logger.Warn("ExtendStorage: cannot confirm payment for extension id=%d in status=%s",
				ext.ID, ext.Status)
			return fmt.Errorf("%w: cannot confirm payment for %s extension", ErrInvalidTransition, ext.Status)
		}

		// Комиссия процессора учитывается отдельно и долю менеджера не уменьшает
		managerRevenue := req.AmountCents - ext.ServiceFeeCents
		if managerRevenue < 0 {
			managerRevenue = 0
		}

		tx := &domain.PaymentTransaction{
			BookingID:           ext.BookingID,
			BookingType:         domain.BookingTypeStorage,
			AmountCents:         req.AmountCents,
			BaseAmountCents:     ext.BaseAmountCents,
			ServiceFeeCents:     ext.ServiceFeeCents,
			ManagerRevenueCents: managerRevenue,
			ProcessorFeeCents:   req.ProcessorFeeCents,
			Status:              domain.TransactionSucceeded,
			PaymentRef:          req.PaymentRef,
		}
		if err := tx.CheckInvariant(); err != nil {
			uc.logger.Error("ExtendStorage: %v", err)
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}

		created, err := uc.transactionRepo.Create(txCtx, tx)
		if err != nil {
			uc.logger.Error("ExtendStorage: failed to create transaction: %v", err)
			return fmt.Errorf("%w: failed to create transaction: %v", ErrInternal, err)
		}

		if err := uc.extensionRepo.MarkPaid(txCtx, ext.ID, created.ID); err != nil {
			uc.logger.Error("ExtendStorage: failed to mark extension id=%d paid: %v", ext.ID, err)
			return fmt.Errorf("%w: failed to mark extension paid: %v", ErrInternal, err)
		}

		response = &Response{
			ExtensionID: ext.ID,
			BookingID:   ext.BookingID,
			Status:      string(domain.ExtensionPaid),
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("ExtendStorage: extension id=%d paid", response.ExtensionID)
	return response, nil
}

// Approve применяет оплаченную заявку: дата окончания бронирования продлевается
func (uc *UseCase) Approve(ctx context.Context, req *DecideRequest) (*Response, error) {
	uc.logger.Info("ExtendStorage: approve extension=%d, manager=%d", req.ExtensionID, req.ManagerID)

	var response *Response

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		ext, booking, err := uc.loadForManager(txCtx, req.ExtensionID, req.ManagerID)
		if err != nil {
			return err
		}

		if !ext.CanBeDecided() {
			uc.logger.Warn("ExtendStorage: cannot approve extension id=%d in status=%s", ext.ID, ext.Status)
			return fmt.Errorf("%w: cannot approve %s extension", ErrInvalidTransition, ext.Status)
		}

		// Повторная проверка конфликтов: диапазон мог занять кто-то другой
		// между оплатой и решением
		if err := uc.checkRangeFree(txCtx, booking, ext.NewEndDate); err != nil {
			return err
		}

		if err := uc.bookingRepo.ExtendEndDate(txCtx, ext.BookingID, ext.NewEndDate); err != nil {
			uc.logger.Error("ExtendStorage: failed to extend booking id=%d: %v", ext.BookingID, err)
			return fmt.Errorf("%w: failed to extend booking: %v", ErrInternal, err)
		}

		if err := uc.extensionRepo.SetStatus(txCtx, ext.ID, domain.ExtensionCompleted); err != nil {
			uc.logger.Error("ExtendStorage: failed to complete extension id=%d: %v", ext.ID, err)
			return fmt.Errorf("%w: failed to complete extension: %v", ErrInternal, err)
		}

		newEnd := ext.NewEndDate
		response = &Response{
			ExtensionID: ext.ID,
			BookingID:   ext.BookingID,
			Status:      string(domain.ExtensionCompleted),
			NewEndDate:  &newEnd,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("ExtendStorage: extension id=%d completed, booking id=%d extended to %s",
		response.ExtensionID, response.BookingID, response.NewEndDate.Format(domain.DateFormat))

	uc.notifier.Publish(notifier.KeyExtensionDecided, map[string]interface{}{
		"extension_id": response.ExtensionID,
		"booking_id":   response.BookingID,
		"decision":     "approved",
		"new_end_date": response.NewEndDate.Format(domain.DateFormat),
	})

	return response, nil
}

// Reject отклоняет заявку
// Оплаченная заявка возвращает всю долю менеджера через оркестратор возвратов
func (uc *UseCase) Reject(ctx context.Context, req *DecideRequest) (*Response, error) {
	uc.logger.Info("ExtendStorage: reject extension=%d, manager=%d", req.ExtensionID, req.ManagerID)

	ext, _, err := uc.loadForManager(ctx, req.ExtensionID, req.ManagerID)
	if err != nil {
		return nil, err
	}

	// Неоплаченную заявку просто отклоняем
	if ext.Status == domain.ExtensionPending {
		if err := uc.extensionRepo.SetStatus(ctx, ext.ID, domain.ExtensionRejected); err != nil {
			uc.logger.Error("ExtendStorage: failed to reject extension id=%d: %v", ext.ID, err)
			return nil, fmt.Errorf("%w: failed to reject extension: %v", ErrInternal, err)
		}

		uc.publishDecision(ext, "rejected")
		return &Response{
			ExtensionID: ext.ID,
			BookingID:   ext.BookingID,
			Status:      string(domain.ExtensionRejected),
		}, nil
	}

	if !ext.CanBeDecided() {
		uc.logger.Warn("ExtendStorage: cannot reject extension id=%d in status=%s", ext.ID, ext.Status)
		return nil, fmt.Errorf("%w: cannot reject %s extension", ErrInvalidTransition, ext.Status)
	}

	// Оплаченная заявка: возвращаем деньги, затем закрываем заявку
	if ext.TransactionID == nil {
		uc.logger.Error("ExtendStorage: paid extension id=%d has no transaction", ext.ID)
		return nil, fmt.Errorf("%w: paid extension has no transaction", ErrInternal)
	}

	// Сумма возврата берётся из транзакции, а не из заявки:
	// фактический лимит определяет остаток доли менеджера в леджере
	tx, err := uc.transactionRepo.GetByID(ctx, *ext.TransactionID)
	if err != nil {
		uc.logger.Error("ExtendStorage: failed to get transaction id=%d: %v", *ext.TransactionID, err)
		return nil, fmt.Errorf("%w: failed to get transaction: %v", ErrInternal, err)
	}

	reason := req.Reason
	if strings.TrimSpace(reason) == "" {
		reason = "extension rejected by manager"
	}

	refundedCents := tx.RefundedCents
	if remaining := tx.Breakdown().MaxRefundableCents; remaining > 0 {
		refundResp, err := uc.refunder.Execute(ctx, &refund_transaction.Request{
			TransactionID: tx.ID,
			AmountCents:   remaining,
			Reason:        reason,
			ActorID:       req.ManagerID,
		})
		if err != nil {
			uc.logger.Error("ExtendStorage: refund failed for extension id=%d: %v", ext.ID, err)
			return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
		}
		refundedCents = refundResp.RefundedCents
	} else if tx.RefundedCents == 0 {
		uc.logger.Error("ExtendStorage: transaction id=%d has nothing to refund", tx.ID)
		return nil, fmt.Errorf("%w: transaction has nothing to refund", ErrInternal)
	}
	// Остаток нулевой при ненулевом возврате: прошлый reject успел вернуть
	// деньги, но не закрыл заявку. Дожимаем смену статуса без второго возврата

	if err := uc.extensionRepo.SetStatus(ctx, ext.ID, domain.ExtensionRefunded); err != nil {
		uc.logger.Error("ExtendStorage: failed to mark extension id=%d refunded: %v", ext.ID, err)
		return nil, fmt.Errorf("%w: failed to mark extension refunded: %v", ErrInternal, err)
	}

	uc.logger.Info("ExtendStorage: extension id=%d rejected, refunded_cents=%d", ext.ID, refundedCents)

	uc.publishDecision(ext, "refunded")

	return &Response{
		ExtensionID:   ext.ID,
		BookingID:     ext.BookingID,
		Status:        string(domain.ExtensionRefunded),
		RefundedCents: refundedCents,
	}, nil
}

// checkRangeFree проверяет, что диапазон (endDate, newEndDate] свободен
// от других активных бронирований ресурса
func (uc *UseCase) checkRangeFree(ctx context.Context, booking *domain.Booking, newEndDate time.Time) error {
	others, err := uc.bookingRepo.GetByResourceWithFilter(ctx, domain.ResourceBookingsFilter{
		ResourceID: booking.ResourceID,
	})
	if err != nil {
		uc.logger.Error("ExtendStorage: failed to get bookings: %v", err)
		return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	start := booking.EndDate.AddDate(0, 0, 1)
	for _, other := range others {
		if other.ID == booking.ID || !other.IsActive() || other.EndDate == nil {
			continue
		}
		if !start.After(*other.EndDate) && !other.BookingDate.After(newEndDate) {
			uc.logger.Warn("ExtendStorage: extended range conflicts with booking id=%d", other.ID)
			return ErrRangeConflict
		}
	}

	return nil
}

// loadForManager читает заявку и проверяет право менеджера локации
func (uc *UseCase) loadForManager(ctx context.Context, extensionID, managerID int64) (*domain.StorageExtension, *domain.Booking, error) {
	if extensionID <= 0 {
		return nil, nil, fmt.Errorf("%w: extensionID must be positive", ErrInvalidInput)
	}
	if managerID <= 0 {
		return nil, nil, fmt.Errorf("%w: managerID must be positive", ErrInvalidInput)
	}

	ext, err := uc.getExtension(ctx, extensionID)
	if err != nil {
		return nil, nil, err
	}

	booking, err := uc.bookingRepo.GetByID(ctx, ext.BookingID)
	if err != nil {
		uc.logger.Error("ExtendStorage: failed to get booking id=%d: %v", ext.BookingID, err)
		return nil, nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	location, err := uc.listingClient.GetLocation(ctx, booking.LocationID)
	if err != nil {
		uc.logger.Error("ExtendStorage: failed to get location id=%d: %v", booking.LocationID, err)
		return nil, nil, fmt.Errorf("%w: failed to get location: %v", ErrInternal, err)
	}

	if location.ManagerID != managerID {
		uc.logger.Warn("ExtendStorage: manager=%d does not manage location=%d", managerID, booking.LocationID)
		return nil, nil, ErrForbidden
	}

	return ext, booking, nil
}

func (uc *UseCase) getExtension(ctx context.Context, id int64) (*domain.StorageExtension, error) {
	ext, err := uc.extensionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, extensionRepo.ErrExtensionNotFound) {
			uc.logger.Warn("ExtendStorage: extension id=%d not found", id)
			return nil, ErrExtensionNotFound
		}
		uc.logger.Error("ExtendStorage: failed to get extension id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get extension: %v", ErrInternal, err)
	}
	return ext, nil
}

func (uc *UseCase) publishDecision(ext *domain.StorageExtension, decision string) {
	uc.notifier.Publish(notifier.KeyExtensionDecided, map[string]interface{}{
		"extension_id": ext.ID,
		"booking_id":   ext.BookingID,
		"decision":     decision,
	})
}

// validateCheckout валидирует запрос на создание заявки
func validateCheckout(req *CheckoutRequest) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.ChefID <= 0 {
		return fmt.Errorf("%w: chefID must be positive", ErrInvalidInput)
	}
	if req.ExtensionDays <= 0 {
		return fmt.Errorf("%w: extensionDays must be positive", ErrInvalidInput)
	}
	if req.ExtensionDays > domain.MaxExtensionDays {
		return fmt.Errorf("%w: extensionDays exceeds %d", ErrInvalidInput, domain.MaxExtensionDays)
	}
	return nil
}
