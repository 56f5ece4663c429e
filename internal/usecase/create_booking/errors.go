package create_booking

import "errors"

var (
	// ErrListingNotFound возвращается, когда листинг не найден
	ErrListingNotFound = errors.New("create_booking: listing not found")

	// ErrListingInactive возвращается, когда листинг снят с публикации
	ErrListingInactive = errors.New("create_booking: listing is not active")

	// ErrLocationNotFound возвращается, когда локация листинга не найдена
	ErrLocationNotFound = errors.New("create_booking: location not found")

	// ErrInvalidDate возвращается при некорректной дате бронирования
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrResourceClosed возвращается, когда ресурс закрыт в указанную дату
	ErrResourceClosed = errors.New("create_booking: resource is closed on this date")

	// ErrOutsideAvailability возвращается, когда интервал не помещается
	// целиком ни в одно свободное окно
	ErrOutsideAvailability = errors.New("create_booking: interval is outside available windows")

	// ErrBelowMinimumDuration возвращается, когда длительность меньше минимума листинга
	ErrBelowMinimumDuration = errors.New("create_booking: duration is below listing minimum")

	// ErrTooLateToBook возвращается, когда бронирование нарушает minBookingNoticeHours
	ErrTooLateToBook = errors.New("create_booking: too late to book this interval")

	// ErrSlotAlreadyBooked возвращается, когда интервал пересекается с активным бронированием
	ErrSlotAlreadyBooked = errors.New("create_booking: interval is already booked")

	// ErrDailyLimitReached возвращается, когда шеф исчерпал дневной лимит бронирований
	ErrDailyLimitReached = errors.New("create_booking: daily booking limit reached")

	// ErrLocationNotPayable возвращается, когда подключённый аккаунт локации
	// не может принимать платежи
	ErrLocationNotPayable = errors.New("create_booking: location account cannot accept payments")

	// ErrPaymentSetupFailed возвращается, когда процессор не смог создать платёжное намерение
	ErrPaymentSetupFailed = errors.New("create_booking: failed to set up payment")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
