package domain

import (
	"time"

	"github.com/kitchrent/KRM-SettlementService/pkg/types"
)

// BookingType represents the kind of resource being booked
type BookingType string

const (
	BookingTypeKitchen   BookingType = "kitchen"
	BookingTypeStorage   BookingType = "storage"
	BookingTypeEquipment BookingType = "equipment"
	BookingTypeBundle    BookingType = "bundle"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentProcessing        PaymentStatus = "processing"
	PaymentPaid              PaymentStatus = "paid"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentRefunded          PaymentStatus = "refunded"
)

// Booking represents a reserved resource-time interval
// Kitchen/equipment bookings are intra-day ([StartTime, EndTime) on BookingDate),
// storage bookings are date-ranged ([BookingDate, EndDate])
type Booking struct {
	ID         int64
	ResourceID int64
	LocationID int64
	ChefID     int64
	Type       BookingType

	BookingDate time.Time         // дата бронирования (для storage — дата начала)
	EndDate     *time.Time        // только для storage
	StartTime   *types.TimeString // только для kitchen/equipment
	EndTime     *types.TimeString

	Status           BookingStatus
	PaymentStatus    PaymentStatus
	PaymentIntentRef *string
	TotalPriceCents  int64

	// ContentsPresent для storage: вещи шефа всё ещё в хранении
	// Выставляется внешним CRUD слоем, здесь читается детектором просрочек
	ContentsPresent bool

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking occupies its interval
// Active bookings participate in conflict detection
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsPaid returns true if money has been captured for this booking
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentPaid || b.PaymentStatus == PaymentPartiallyRefunded
}

// IsStorage returns true for date-ranged storage bookings
func (b *Booking) IsStorage() bool {
	return b.Type == BookingTypeStorage
}

// DaysOverstayed returns how many full days have passed since the storage
// booking's end date. Zero for non-storage bookings and bookings still in term.
func (b *Booking) DaysOverstayed(now time.Time) int {
	if !b.IsStorage() || b.EndDate == nil {
		return 0
	}
	end := time.Date(b.EndDate.Year(), b.EndDate.Month(), b.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	cur := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(cur.Sub(end).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Overlaps reports whether the booking's interval overlaps [start, end)
// on the same date. Boundary-touching intervals do not overlap.
func (b *Booking) Overlaps(start, end types.TimeString) bool {
	if b.StartTime == nil || b.EndTime == nil {
		return false
	}
	return b.StartTime.IsBefore(end) && b.EndTime.IsAfter(start)
}

// ResourceBookingsFilter фильтр для выборки бронирований ресурса
type ResourceBookingsFilter struct {
	ResourceID      int64
	Date            *time.Time // бронирования, активные в эту дату (для storage — диапазон накрывает дату)
	Status          *BookingStatus
	IncludeInactive bool
}
