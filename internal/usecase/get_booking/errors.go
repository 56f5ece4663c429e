package get_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("get_booking: booking not found")

	// ErrForbidden возвращается, когда бронирование недоступно этому пользователю
	ErrForbidden = errors.New("get_booking: booking is not visible to this user")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_booking: internal error")
)
