package decide_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("decide_booking: booking not found")

	// ErrForbidden возвращается, когда действие недоступно этому пользователю
	ErrForbidden = errors.New("decide_booking: action is not allowed for this user")

	// ErrInvalidTransition возвращается, когда действие неприменимо к текущему статусу
	ErrInvalidTransition = errors.New("decide_booking: invalid status transition")

	// ErrRefundFailed возвращается, когда автоматический возврат при отклонении не прошёл
	// Бронирование остаётся в прежнем статусе
	ErrRefundFailed = errors.New("decide_booking: automatic refund failed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("decide_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("decide_booking: internal error")
)
