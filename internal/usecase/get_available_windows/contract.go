package get_available_windows

import (
	"context"
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetRules(ctx context.Context, resourceID int64) ([]*domain.ScheduleRule, error)
	GetOverride(ctx context.Context, resourceID int64, date time.Time) (*domain.ScheduleOverride, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByResourceWithFilter(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
