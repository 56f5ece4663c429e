package domain

// Default policy values
const (
	DefaultCancellationPolicyHours = 24
	DefaultMinBookingNoticeHours   = 2
	DefaultDailyBookingLimit       = 0 // 0 = без лимита

	DefaultOverstayGraceDays      = 2
	DefaultOverstayPenaltyRate    = 0.10
	DefaultOverstayMaxPenaltyDays = 30

	DefaultMinBookingDurationMinutes = 60
)

// Business validation constants
const (
	MaxRefundReasonLength       = 500
	MaxWaiveReasonLength        = 500
	MaxCancellationReasonLength = 500
	MaxExtensionDays            = 365
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы бронирований, занимающих свой интервал
// Используются при подсчёте конфликтов
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
