package payservice

import "errors"

var (
	// ErrProcessor возвращается, когда процессор отклонил операцию
	// Вызывающая сторона обязана откатить свою транзакцию
	ErrProcessor = errors.New("payment processor rejected operation")

	// ErrNoSavedMethod возвращается, когда у плательщика нет сохранённого
	// платёжного метода для списания
	ErrNoSavedMethod = errors.New("payer has no saved payment method")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("payservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("payservice client: invalid response")
)
