package domain

import "time"

// LocationPolicy правила локации, читаются валидатором бронирований
// и оркестратором возвратов; изменяются внешним CRUD слоем
type LocationPolicy struct {
	ID         int64
	LocationID int64

	CancellationPolicyHours int // за сколько часов можно отменить без удержаний
	MinBookingNoticeHours   int // минимальное время до начала бронирования
	DailyBookingLimit       int // лимит бронирований шефа на день (0 = без лимита)

	// Дефолты для просрочек хранения (листинг может переопределить)
	OverstayGraceDays      int
	OverstayPenaltyRate    float64
	OverstayMaxPenaltyDays int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultPolicy возвращает политику с дефолтными значениями
// Используется, когда для локации политика не настроена
func DefaultPolicy(locationID int64) *LocationPolicy {
	return &LocationPolicy{
		LocationID:              locationID,
		CancellationPolicyHours: DefaultCancellationPolicyHours,
		MinBookingNoticeHours:   DefaultMinBookingNoticeHours,
		DailyBookingLimit:       DefaultDailyBookingLimit,
		OverstayGraceDays:       DefaultOverstayGraceDays,
		OverstayPenaltyRate:     DefaultOverstayPenaltyRate,
		OverstayMaxPenaltyDays:  DefaultOverstayMaxPenaltyDays,
	}
}
