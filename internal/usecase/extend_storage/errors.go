package extend_storage

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("extend_storage: booking not found")

	// ErrExtensionNotFound возвращается, когда заявка на продление не найдена
	ErrExtensionNotFound = errors.New("extend_storage: extension not found")

	// ErrNotStorageBooking возвращается для бронирований другого типа
	ErrNotStorageBooking = errors.New("extend_storage: booking is not a storage booking")

	// ErrForbidden возвращается, когда действие недоступно этому пользователю
	ErrForbidden = errors.New("extend_storage: action is not allowed for this user")

	// ErrBookingNotExtendable возвращается, когда бронирование нельзя продлить
	ErrBookingNotExtendable = errors.New("extend_storage: booking cannot be extended")

	// ErrExtensionAlreadyPending возвращается, когда по бронированию уже есть
	// незакрытая заявка на продление
	ErrExtensionAlreadyPending = errors.New("extend_storage: booking already has a pending extension")

	// ErrRangeConflict возвращается, когда продлённый диапазон пересекается
	// с другим активным бронированием ресурса
	ErrRangeConflict = errors.New("extend_storage: extended range conflicts with another booking")

	// ErrInvalidTransition возвращается, когда действие неприменимо к статусу заявки
	ErrInvalidTransition = errors.New("extend_storage: invalid status transition")

	// ErrPaymentSetupFailed возвращается, когда процессор не смог создать платёжное намерение
	ErrPaymentSetupFailed = errors.New("extend_storage: failed to set up payment")

	// ErrRefundFailed возвращается, когда возврат при отклонении оплаченной заявки не прошёл
	ErrRefundFailed = errors.New("extend_storage: refund failed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("extend_storage: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("extend_storage: internal error")
)
