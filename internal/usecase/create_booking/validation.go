package create_booking

import (
	"fmt"
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
	"github.com/kitchrent/KRM-SettlementService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ChefID <= 0 {
		return fmt.Errorf("%w: chefID must be positive", ErrInvalidInput)
	}

	if req.ListingID <= 0 {
		return fmt.Errorf("%w: listingID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	hasInterval := req.StartTime != nil && req.EndTime != nil
	hasRange := req.EndDate != nil

	if !hasInterval && !hasRange {
		return fmt.Errorf("%w: either startTime/endTime or endDate is required", ErrInvalidInput)
	}

	if hasInterval {
		if err := req.StartTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
		}
		if err := req.EndTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid endTime format: %v", ErrInvalidInput, err)
		}
		if !req.StartTime.IsBefore(*req.EndTime) {
			return fmt.Errorf("%w: endTime must be after startTime", ErrInvalidInput)
		}
	}

	if hasRange && req.EndDate.Before(req.Date) {
		return fmt.Errorf("%w: endDate must not be before date", ErrInvalidInput)
	}

	return nil
}

// validateTypeMatchesRequest проверяет, что форма запроса соответствует типу листинга
func validateTypeMatchesRequest(listing *listingservice.Listing, req *Request) error {
	if listing.Type == string(domain.BookingTypeStorage) {
		if req.EndDate == nil {
			return fmt.Errorf("%w: endDate is required for storage bookings", ErrInvalidInput)
		}
		return nil
	}

	if req.StartTime == nil || req.EndTime == nil {
		return fmt.Errorf("%w: startTime and endTime are required for %s bookings", ErrInvalidInput, listing.Type)
	}
	return nil
}

// validateNotice проверяет минимальное время до начала бронирования
// Момент начала вычисляется в таймзоне локации; правило единое для всех типов
func validateNotice(req *Request, loc *time.Location, now time.Time, minNoticeHours int) error {
	var start time.Time

	if req.StartTime != nil {
		var err error
		start, err = req.StartTime.OnDate(req.Date, loc)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	} else {
		// Storage начинается с полуночи даты начала
		start = time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, loc)
	}

	if start.Before(now) {
		return ErrInvalidDate
	}

	if start.Sub(now) < time.Duration(minNoticeHours)*time.Hour {
		return fmt.Errorf("%w: must book at least %d hours in advance", ErrTooLateToBook, minNoticeHours)
	}

	return nil
}

// validateDuration проверяет минимальную длительность интервала
func validateDuration(start, end types.TimeString, minDurationMinutes int) error {
	minutes, err := start.MinutesBetween(end)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if minDurationMinutes <= 0 {
		minDurationMinutes = domain.DefaultMinBookingDurationMinutes
	}

	if minutes < minDurationMinutes {
		return fmt.Errorf("%w: minimum is %d minutes", ErrBelowMinimumDuration, minDurationMinutes)
	}

	return nil
}

// validateDailyLimit проверяет дневной лимит бронирований шефа
// Лимит 0 означает отсутствие ограничения
func validateDailyLimit(bookings []*domain.Booking, date time.Time, limit int) error {
	if limit <= 0 {
		return nil
	}

	count := 0
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		if sameDay(b.BookingDate, date) {
			count++
		}
	}

	if count >= limit {
		return fmt.Errorf("%w: limit is %d per day", ErrDailyLimitReached, limit)
	}

	return nil
}

// rangesOverlap проверяет пересечение двух включающих диапазонов дат
func rangesOverlap(start1, end1, start2, end2 time.Time) bool {
	return !start1.After(end2) && !start2.After(end1)
}

// sameDay проверяет, что две даты относятся к одному дню
func sameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
