package detect_overstays

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	penaltyRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/penalty"
	policyRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/policy"
	"github.com/kitchrent/KRM-SettlementService/internal/notifier"
)

// UseCase периодический детектор просрочек хранения
//
// Проход идемпотентен: бронирование с незакрытой записью о просрочке
// пропускается, повторный запуск не создаёт дублей
type UseCase struct {
	bookingRepo   BookingRepository
	penaltyRepo   PenaltyRepository
	policyRepo    PolicyRepository
	listingClient ListingServiceClient
	timeProvider  TimeProvider
	notifier      Notifier
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	penaltyRepo PenaltyRepository,
	policyRepo PolicyRepository,
	listingClient ListingServiceClient,
	notifier Notifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		penaltyRepo:   penaltyRepo,
		policyRepo:    policyRepo,
		listingClient: listingClient,
		timeProvider:  &RealTimeProvider{},
		notifier:      notifier,
		logger:        logger,
	}
}

// Execute выполняет один проход детектора:
// создаёт grace_period записи для новых просрочек и переводит записи
// с истекшим льготным периодом в pending_review с рассчитанным штрафом
func (uc *UseCase) Execute(ctx context.Context) (*Report, error) {
	now := uc.timeProvider.Now()
	report := &Report{}

	overdue, err := uc.bookingRepo.GetOverdueStorage(ctx, now)
	if err != nil {
		uc.logger.Error("DetectOverstays: failed to get overdue bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get overdue bookings: %v", ErrInternal, err)
	}

	report.OverdueBookings = len(overdue)
	uc.logger.Info("DetectOverstays: %d overdue storage bookings", len(overdue))

	for _, booking := range overdue {
		if err := uc.detectOne(ctx, booking, now, report); err != nil {
			uc.logger.Error("DetectOverstays: booking id=%d: %v", booking.ID, err)
			report.Errors++
		}
	}

	if err := uc.promoteElapsed(ctx, now, report); err != nil {
		uc.logger.Error("DetectOverstays: promotion pass failed: %v", err)
		return report, err
	}

	uc.logger.Info("DetectOverstays: detected=%d promoted=%d errors=%d",
		report.Detected, report.Promoted, report.Errors)
	return report, nil
}

// detectOne создаёт запись grace_period для просроченного бронирования,
// если незакрытой записи по нему ещё нет
func (uc *UseCase) detectOne(ctx context.Context, booking *domain.Booking, now time.Time, report *Report) error {
	_, err := uc.penaltyRepo.GetActiveByBookingID(ctx, booking.ID)
	if err == nil {
		// Запись уже существует, повторный проход ничего не делает
		return nil
	}
	if !errors.Is(err, penaltyRepo.ErrPenaltyNotFound) {
		return fmt.Errorf("%w: failed to check existing penalty: %v", ErrInternal, err)
	}

	terms, err := uc.resolveTerms(ctx, booking)
	if err != nil {
		return err
	}

	graceEnds := time.Date(
		booking.EndDate.Year(), booking.EndDate.Month(), booking.EndDate.Day(),
		0, 0, 0, 0, time.UTC,
	).AddDate(0, 0, terms.GraceDays)

	created, err := uc.penaltyRepo.Create(ctx, &domain.OverstayPenalty{
		BookingID:   booking.ID,
		DetectedAt:  now,
		GraceEndsAt: graceEnds,
		Status:      domain.PenaltyGracePeriod,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create penalty: %v", ErrInternal, err)
	}

	if _, err := uc.penaltyRepo.AppendHistory(ctx, &domain.PenaltyHistoryEntry{
		PenaltyID:  created.ID,
		FromStatus: domain.PenaltyGracePeriod,
		ToStatus:   domain.PenaltyGracePeriod,
		Notes:      strPtr("detected by sweep"),
	}); err != nil {
		return fmt.Errorf("%w: failed to append history: %v", ErrInternal, err)
	}

	report.Detected++
	uc.logger.Info("DetectOverstays: created penalty id=%d for booking id=%d, grace ends %s",
		created.ID, booking.ID, graceEnds.Format(domain.DateFormat))

	uc.notifier.Publish(notifier.KeyPenaltyDetected, map[string]interface{}{
		"penalty_id":    created.ID,
		"booking_id":    booking.ID,
		"chef_id":       booking.ChefID,
		"grace_ends_at": graceEnds,
	})

	return nil
}

// promoteElapsed переводит записи с истекшим льготным периодом в pending_review
// Размер штрафа фиксируется на момент перевода
func (uc *UseCase) promoteElapsed(ctx context.Context, now time.Time, report *Report) error {
	pending, err := uc.penaltyRepo.ListByStatus(ctx, domain.PenaltyGracePeriod)
	if err != nil {
		return fmt.Errorf("%w: failed to list grace period penalties: %v", ErrInternal, err)
	}

	for _, p := range pending {
		if now.Before(p.GraceEndsAt) {
			continue
		}

		booking, err := uc.bookingRepo.GetByID(ctx, p.BookingID)
		if err != nil {
			uc.logger.Error("DetectOverstays: failed to get booking id=%d: %v", p.BookingID, err)
			report.Errors++
			continue
		}

		terms, err := uc.resolveTerms(ctx, booking)
		if err != nil {
			uc.logger.Error("DetectOverstays: failed to resolve terms for booking id=%d: %v", booking.ID, err)
			report.Errors++
			continue
		}

		candidate := domain.CandidatePenaltyCents(
			booking.DaysOverstayed(now),
			terms.MaxPenaltyDays,
			terms.DailyRateCents,
			terms.PenaltyRate,
		)

		if err := uc.penaltyRepo.Promote(ctx, p.ID, candidate); err != nil {
			uc.logger.Error("DetectOverstays: failed to promote penalty id=%d: %v", p.ID, err)
			report.Errors++
			continue
		}

		if _, err := uc.penaltyRepo.AppendHistory(ctx, &domain.PenaltyHistoryEntry{
			PenaltyID:  p.ID,
			FromStatus: domain.PenaltyGracePeriod,
			ToStatus:   domain.PenaltyPendingReview,
			Notes:      strPtr(fmt.Sprintf("grace elapsed, candidate %d cents", candidate)),
		}); err != nil {
			uc.logger.Error("DetectOverstays: failed to append history for penalty id=%d: %v", p.ID, err)
			report.Errors++
			continue
		}

		report.Promoted++
		uc.logger.Info("DetectOverstays: promoted penalty id=%d, candidate_cents=%d", p.ID, candidate)
	}

	return nil
}

// resolveTerms собирает действующие условия просрочки:
// дефолты локации, поверх — переопределения листинга
func (uc *UseCase) resolveTerms(ctx context.Context, booking *domain.Booking) (domain.OverstayTerms, error) {
	listing, err := uc.listingClient.GetListing(ctx, booking.ResourceID)
	if err != nil {
		return domain.OverstayTerms{}, fmt.Errorf("%w: failed to get listing: %v", ErrInternal, err)
	}

	policy, err := uc.policyRepo.GetByLocationID(ctx, booking.LocationID)
	if err != nil {
		if !errors.Is(err, policyRepo.ErrPolicyNotFound) {
			return domain.OverstayTerms{}, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
		}
		policy = domain.DefaultPolicy(booking.LocationID)
	}

	return domain.ResolveOverstayTerms(
		policy,
		listing.OverstayGraceDays,
		listing.OverstayPenaltyRate,
		listing.OverstayMaxDays,
		listing.DailyRateCents,
	), nil
}

func strPtr(s string) *string {
	return &s
}
