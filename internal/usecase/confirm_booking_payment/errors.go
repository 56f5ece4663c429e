package confirm_booking_payment

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("confirm_booking_payment: booking not found")

	// ErrAlreadyCaptured возвращается при повторном подтверждении того же платежа
	ErrAlreadyCaptured = errors.New("confirm_booking_payment: payment already captured")

	// ErrAmountsInconsistent возвращается, когда суммы платежа нарушают инвариант леджера
	ErrAmountsInconsistent = errors.New("confirm_booking_payment: payment amounts are inconsistent")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("confirm_booking_payment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("confirm_booking_payment: internal error")
)
