package review_overstay

import "errors"

var (
	// ErrPenaltyNotFound возвращается, когда запись о просрочке не найдена
	ErrPenaltyNotFound = errors.New("review_overstay: penalty not found")

	// ErrForbidden возвращается, когда действие недоступно этому пользователю
	ErrForbidden = errors.New("review_overstay: action is not allowed for this user")

	// ErrInvalidTransition возвращается, когда действие неприменимо к текущему статусу
	ErrInvalidTransition = errors.New("review_overstay: invalid status transition")

	// ErrChargeFailed возвращается, когда списание у процессора не прошло
	// Штраф переходит в charge_failed и остаётся доступным для повтора
	ErrChargeFailed = errors.New("review_overstay: charge failed")

	// ErrNothingToCharge возвращается при попытке списать нулевой штраф
	ErrNothingToCharge = errors.New("review_overstay: penalty amount is zero")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("review_overstay: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("review_overstay: internal error")
)
