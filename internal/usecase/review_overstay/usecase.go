package review_overstay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	penaltyRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/penalty"
	payClient "github.com/kitchrent/KRM-SettlementService/internal/integrations/payservice"
	"github.com/kitchrent/KRM-SettlementService/internal/notifier"
)

// UseCase решения менеджера по штрафам за просрочку хранения
// Каждый переход статуса фиксируется в append-only истории
type UseCase struct {
	penaltyRepo   PenaltyRepository
	bookingRepo   BookingRepository
	listingClient ListingServiceClient
	payClient     PayServiceClient
	txManager     TransactionManager
	notifier      Notifier
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	penaltyRepo PenaltyRepository,
	bookingRepo BookingRepository,
	listingClient ListingServiceClient,
	payClient PayServiceClient,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		penaltyRepo:   penaltyRepo,
		bookingRepo:   bookingRepo,
		listingClient: listingClient,
		payClient:     payClient,
		txManager:     txManager,
		notifier:      notifier,
		logger:        logger,
	}
}

// Approve утверждает штраф, опционально корректируя сумму
func (uc *UseCase) Approve(ctx context.Context, req *ApproveRequest) (*Response, error) {
	uc.logger.Info("ReviewOverstay: approve penalty=%d, manager=%d", req.PenaltyID, req.ManagerID)

	if req.FinalAmountCents != nil && *req.FinalAmountCents < 0 {
		return nil, fmt.Errorf("%w: finalAmountCents must not be negative", ErrInvalidInput)
	}

	var response *Response

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		penalty, err := uc.loadForManager(txCtx, req.PenaltyID, req.ManagerID)
		if err != nil {
			return err
		}

		if !penalty.CanBeApproved() {
			uc.logger.Warn("ReviewOverstay: cannot approve penalty id=%d in status=%s", penalty.ID, penalty.Status)
			return fmt.Errorf("%w: cannot approve %s penalty", ErrInvalidTransition, penalty.Status)
		}

		if err := uc.penaltyRepo.Approve(txCtx, penalty.ID, req.FinalAmountCents); err != nil {
			uc.logger.Error("ReviewOverstay: failed to approve penalty id=%d: %v", penalty.ID, err)
			return fmt.Errorf("%w: failed to approve penalty: %v", ErrInternal, err)
		}

		if err := uc.appendHistory(txCtx, penalty, domain.PenaltyApproved, req.ManagerID, req.approveNotes()); err != nil {
			return err
		}

		amount := penalty.CandidateAmountCents
		if req.FinalAmountCents != nil {
			amount = *req.FinalAmountCents
		}

		response = &Response{
			PenaltyID:   penalty.ID,
			Status:      string(domain.PenaltyApproved),
			AmountCents: amount,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("ReviewOverstay: penalty id=%d approved, amount_cents=%d",
		response.PenaltyID, response.AmountCents)
	return response, nil
}

// Waive прощает штраф; причина обязательна и попадает в историю
func (uc *UseCase) Waive(ctx context.Context, req *WaiveRequest) (*Response, error) {
	uc.logger.Info("ReviewOverstay: waive penalty=%d, manager=%d", req.PenaltyID, req.ManagerID)

	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if len(req.Reason) > domain.MaxWaiveReasonLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxWaiveReasonLength)
	}

	var response *Response
	var bookingID int64

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		penalty, err := uc.loadForManager(txCtx, req.PenaltyID, req.ManagerID)
		if err != nil {
			return err
		}

		if !penalty.CanBeWaived() {
			uc.logger.Warn("ReviewOverstay: cannot waive penalty id=%d in status=%s", penalty.ID, penalty.Status)
			return fmt.Errorf("%w: cannot waive %s penalty", ErrInvalidTransition, penalty.Status)
		}

		if err := uc.penaltyRepo.Waive(txCtx, penalty.ID, req.Reason); err != nil {
			uc.logger.Error("ReviewOverstay: failed to waive penalty id=%d: %v", penalty.ID, err)
			return fmt.Errorf("%w: failed to waive penalty: %v", ErrInternal, err)
		}

		if err := uc.appendHistory(txCtx, penalty, domain.PenaltyWaived, req.ManagerID, &req.Reason); err != nil {
			return err
		}

		bookingID = penalty.BookingID
		response = &Response{
			PenaltyID:   penalty.ID,
			Status:      string(domain.PenaltyWaived),
			AmountCents: penalty.ChargeableAmountCents(),
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("ReviewOverstay: penalty id=%d waived", response.PenaltyID)

	uc.notifier.Publish(notifier.KeyPenaltyWaived, map[string]interface{}{
		"penalty_id": response.PenaltyID,
		"booking_id": bookingID,
		"reason":     req.Reason,
	})

	return response, nil
}

// Charge списывает утверждённый штраф с сохранённого платёжного метода шефа
// Сбой процессора переводит штраф в charge_failed; списание можно повторить
func (uc *UseCase) Charge(ctx context.Context, req *ChargeRequest) (*Response, error) {
	uc.logger.Info("ReviewOverstay: charge penalty=%d, manager=%d", req.PenaltyID, req.ManagerID)

	var response *Response
	var bookingID int64

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		penalty, err := uc.loadForManager(txCtx, req.PenaltyID, req.ManagerID)
		if err != nil {
			return err
		}

		if !penalty.CanBeCharged() {
			uc.logger.Warn("ReviewOverstay: cannot charge penalty id=%d in status=%s", penalty.ID, penalty.Status)
			return fmt.Errorf("%w: cannot charge %s penalty", ErrInvalidTransition, penalty.Status)
		}

		amount := penalty.ChargeableAmountCents()
		if amount <= 0 {
			return ErrNothingToCharge
		}

		booking, err := uc.bookingRepo.GetByID(txCtx, penalty.BookingID)
		if err != nil {
			uc.logger.Error("ReviewOverstay: failed to get booking id=%d: %v", penalty.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}
		bookingID = booking.ID

		location, err := uc.listingClient.GetLocation(txCtx, booking.LocationID)
		if err != nil {
			uc.logger.Error("ReviewOverstay: failed to get location id=%d: %v", booking.LocationID, err)
			return fmt.Errorf("%w: failed to get location: %v", ErrInternal, err)
		}

		result, err := uc.payClient.ChargeSavedMethod(txCtx, payClient.ChargeRequest{
			PayerID:            booking.ChefID,
			AmountCents:        amount,
			Currency:           "usd",
			ConnectedAccountID: location.ConnectedAccountID,
			Description:        fmt.Sprintf("overstay penalty, booking %d", booking.ID),
			IdempotencyKey:     fmt.Sprintf("penalty-%d", penalty.ID),
		})
		if err != nil {
			// Откатываем транзакцию и фиксируем charge_failed отдельно
			uc.logger.Error("ReviewOverstay: charge failed for penalty id=%d: %v", penalty.ID, err)
			return fmt.Errorf("%w: %v", ErrChargeFailed, err)
		}

		if err := uc.penaltyRepo.MarkCharged(txCtx, penalty.ID, result.ChargeRef); err != nil {
			uc.logger.Error("ReviewOverstay: failed to mark charged penalty id=%d: %v", penalty.ID, err)
			return fmt.Errorf("%w: failed to mark charged: %v", ErrInternal, err)
		}

		if err := uc.appendHistory(txCtx, penalty, domain.PenaltyCharged, req.ManagerID,
			strPtr(fmt.Sprintf("charged %d cents, ref %s", amount, result.ChargeRef))); err != nil {
			return err
		}

		response = &Response{
			PenaltyID:   penalty.ID,
			Status:      string(domain.PenaltyCharged),
			AmountCents: amount,
			ChargeRef:   &result.ChargeRef,
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrChargeFailed) {
			uc.recordChargeFailure(ctx, req.PenaltyID, req.ManagerID)
		}
		return nil, err
	}

	uc.logger.Info("ReviewOverstay: penalty id=%d charged, amount_cents=%d",
		response.PenaltyID, response.AmountCents)

	uc.notifier.Publish(notifier.KeyPenaltyCharged, map[string]interface{}{
		"penalty_id":   response.PenaltyID,
		"booking_id":   bookingID,
		"amount_cents": response.AmountCents,
		"charge_ref":   *response.ChargeRef,
	})

	return response, nil
}

// Resolve закрывает просрочку без списания из любого нетерминального состояния
func (uc *UseCase) Resolve(ctx context.Context, req *ResolveRequest) (*Response, error) {
	uc.logger.Info("ReviewOverstay: resolve penalty=%d, manager=%d, resolution=%s",
		req.PenaltyID, req.ManagerID, req.Resolution)

	switch req.Resolution {
	case domain.ResolutionExtended, domain.ResolutionRemoved, domain.ResolutionEscalated:
	default:
		return nil, fmt.Errorf("%w: unknown resolution %q", ErrInvalidInput, req.Resolution)
	}

	var response *Response
	var bookingID int64

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		penalty, err := uc.loadForManager(txCtx, req.PenaltyID, req.ManagerID)
		if err != nil {
			return err
		}

		if !penalty.CanBeResolved() {
			uc.logger.Warn("ReviewOverstay: cannot resolve penalty id=%d in status=%s", penalty.ID, penalty.Status)
			return fmt.Errorf("%w: cannot resolve %s penalty", ErrInvalidTransition, penalty.Status)
		}

		if err := uc.penaltyRepo.Resolve(txCtx, penalty.ID, req.Resolution); err != nil {
			uc.logger.Error("ReviewOverstay: failed to resolve penalty id=%d: %v", penalty.ID, err)
			return fmt.Errorf("%w: failed to resolve penalty: %v", ErrInternal, err)
		}

		notes := string(req.Resolution)
		if strings.TrimSpace(req.Notes) != "" {
			notes = fmt.Sprintf("%s: %s", req.Resolution, req.Notes)
		}
		if err := uc.appendHistory(txCtx, penalty, domain.PenaltyResolved, req.ManagerID, &notes); err != nil {
			return err
		}

		bookingID = penalty.BookingID
		response = &Response{
			PenaltyID:   penalty.ID,
			Status:      string(domain.PenaltyResolved),
			AmountCents: penalty.ChargeableAmountCents(),
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("ReviewOverstay: penalty id=%d resolved as %s", response.PenaltyID, req.Resolution)

	uc.notifier.Publish(notifier.KeyPenaltyResolved, map[string]interface{}{
		"penalty_id": response.PenaltyID,
		"booking_id": bookingID,
		"resolution": string(req.Resolution),
	})

	return response, nil
}

// loadForManager читает штраф с блокировкой и проверяет, что инициатор
// управляет локацией бронирования
func (uc *UseCase) loadForManager(ctx context.Context, penaltyID, managerID int64) (*domain.OverstayPenalty, error) {
	if penaltyID <= 0 {
		return nil, fmt.Errorf("%w: penaltyID must be positive", ErrInvalidInput)
	}
	if managerID <= 0 {
		return nil, fmt.Errorf("%w: managerID must be positive", ErrInvalidInput)
	}

	penalty, err := uc.penaltyRepo.GetByID(ctx, penaltyID)
	if err != nil {
		if errors.Is(err, penaltyRepo.ErrPenaltyNotFound) {
			uc.logger.Warn("ReviewOverstay: penalty id=%d not found", penaltyID)
			return nil, ErrPenaltyNotFound
		}
		uc.logger.Error("ReviewOverstay: failed to get penalty id=%d: %v", penaltyID, err)
		return nil, fmt.Errorf("%w: failed to get penalty: %v", ErrInternal, err)
	}

	booking, err := uc.bookingRepo.GetByID(ctx, penalty.BookingID)
	if err != nil {
		uc.logger.Error("ReviewOverstay: failed to get booking id=%d: %v", penalty.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	location, err := uc.listingClient.GetLocation(ctx, booking.LocationID)
	if err != nil {
		uc.logger.Error("ReviewOverstay: failed to get location id=%d: %v", booking.LocationID, err)
		return nil, fmt.Errorf("%w: failed to get location: %v", ErrInternal, err)
	}

	if location.ManagerID != managerID {
		uc.logger.Warn("ReviewOverstay: manager=%d does not manage location=%d", managerID, booking.LocationID)
		return nil, ErrForbidden
	}

	return penalty, nil
}

// recordChargeFailure фиксирует charge_failed после отката основной транзакции
// Лучшая попытка: ошибка здесь только логируется
func (uc *UseCase) recordChargeFailure(ctx context.Context, penaltyID, managerID int64) {
	penalty, err := uc.penaltyRepo.GetByID(ctx, penaltyID)
	if err != nil {
		uc.logger.Error("ReviewOverstay: failed to reload penalty id=%d after charge failure: %v", penaltyID, err)
		return
	}

	if err := uc.penaltyRepo.MarkChargeFailed(ctx, penaltyID); err != nil {
		uc.logger.Error("ReviewOverstay: failed to mark charge_failed penalty id=%d: %v", penaltyID, err)
		return
	}

	if err := uc.appendHistory(ctx, penalty, domain.PenaltyChargeFailed, managerID, strPtr("processor charge failed")); err != nil {
		uc.logger.Error("ReviewOverstay: failed to record charge failure history for penalty id=%d: %v", penaltyID, err)
	}
}

func (uc *UseCase) appendHistory(ctx context.Context, penalty *domain.OverstayPenalty, to domain.PenaltyStatus, managerID int64, notes *string) error {
	_, err := uc.penaltyRepo.AppendHistory(ctx, &domain.PenaltyHistoryEntry{
		PenaltyID:  penalty.ID,
		FromStatus: penalty.Status,
		ToStatus:   to,
		ManagerID:  &managerID,
		Notes:      notes,
	})
	if err != nil {
		uc.logger.Error("ReviewOverstay: failed to append history for penalty id=%d: %v", penalty.ID, err)
		return fmt.Errorf("%w: failed to append history: %v", ErrInternal, err)
	}
	return nil
}

func (req *ApproveRequest) approveNotes() *string {
	if req.FinalAmountCents == nil {
		return nil
	}
	s := fmt.Sprintf("amount adjusted to %d cents", *req.FinalAmountCents)
	return &s
}

func strPtr(s string) *string {
	return &s
}
