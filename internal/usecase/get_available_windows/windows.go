package get_available_windows

import (
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
)

// effectiveWindow вычисляет рабочее окно ресурса на дату
// Переопределение на дату всегда приоритетнее еженедельного шаблона,
// включая полное закрытие дня
func effectiveWindow(rules []*domain.ScheduleRule, override *domain.ScheduleOverride, date time.Time) (bool, *domain.TimeWindow) {
	if override != nil {
		if override.IsClosed || override.OpenTime == nil || override.CloseTime == nil {
			return false, nil
		}
		return true, &domain.TimeWindow{Start: *override.OpenTime, End: *override.CloseTime}
	}

	weekday := date.Weekday()
	for _, rule := range rules {
		if rule.Weekday != weekday {
			continue
		}
		if !rule.IsOpen || rule.OpenTime == nil || rule.CloseTime == nil {
			return false, nil
		}
		return true, &domain.TimeWindow{Start: *rule.OpenTime, End: *rule.CloseTime}
	}

	// Нет строки расписания на этот день недели — ресурс закрыт
	return false, nil
}

// subtractBookings вырезает занятые интервалы из рабочего окна
// Storage бронирование накрывает дату целиком и блокирует весь день
func subtractBookings(window domain.TimeWindow, bookings []*domain.Booking) []domain.TimeWindow {
	windows := []domain.TimeWindow{window}

	for _, booking := range bookings {
		if !booking.IsActive() {
			continue
		}

		// Бронирование без интервала времени (storage) занимает весь день
		if booking.StartTime == nil || booking.EndTime == nil {
			return nil
		}

		windows = domain.SubtractInterval(windows, *booking.StartTime, *booking.EndTime)
	}

	return windows
}
