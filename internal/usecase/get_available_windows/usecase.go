package get_available_windows

import (
	"context"
	"errors"
	"fmt"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	scheduleRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/schedule"
)

// UseCase use case расчёта доступных окон ресурса на дату
type UseCase struct {
	scheduleRepo ScheduleRepository
	bookingRepo  BookingRepository
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(scheduleRepo ScheduleRepository, bookingRepo BookingRepository, logger Logger) *UseCase {
	return &UseCase{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		logger:       logger,
	}
}

// Execute вычисляет упорядоченный список свободных окон:
// рабочее окно (шаблон либо переопределение) минус активные бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.ResourceID <= 0 {
		return nil, fmt.Errorf("%w: resourceID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	uc.logger.Info("GetAvailableWindows: resource=%d, date=%s",
		req.ResourceID, req.Date.Format(domain.DateFormat))

	// 1. Переопределение на дату (если есть)
	override, err := uc.scheduleRepo.GetOverride(ctx, req.ResourceID, req.Date)
	if err != nil && !errors.Is(err, scheduleRepo.ErrOverrideNotFound) {
		uc.logger.Error("GetAvailableWindows: failed to get override: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedule override: %v", ErrInternal, err)
	}

	// 2. Еженедельный шаблон
	rules, err := uc.scheduleRepo.GetRules(ctx, req.ResourceID)
	if err != nil {
		uc.logger.Error("GetAvailableWindows: failed to get rules: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedule rules: %v", ErrInternal, err)
	}

	isOpen, window := effectiveWindow(rules, override, req.Date)
	if !isOpen {
		uc.logger.Info("GetAvailableWindows: resource=%d closed on %s",
			req.ResourceID, req.Date.Format(domain.DateFormat))
		return &Response{ResourceID: req.ResourceID, Date: req.Date, IsOpen: false, Windows: []Window{}}, nil
	}

	// 3. Активные бронирования на дату
	bookings, err := uc.bookingRepo.GetByResourceWithFilter(ctx, domain.ResourceBookingsFilter{
		ResourceID: req.ResourceID,
		Date:       &req.Date,
	})
	if err != nil {
		uc.logger.Error("GetAvailableWindows: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 4. Вырезаем занятые интервалы
	free := subtractBookings(*window, bookings)

	windows := make([]Window, 0, len(free))
	for _, w := range free {
		windows = append(windows, Window{Start: w.Start, End: w.End})
	}

	uc.logger.Info("GetAvailableWindows: resource=%d, date=%s, %d windows",
		req.ResourceID, req.Date.Format(domain.DateFormat), len(windows))

	return &Response{
		ResourceID: req.ResourceID,
		Date:       req.Date,
		IsOpen:     true,
		Windows:    windows,
	}, nil
}
