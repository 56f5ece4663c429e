package refund_transaction

import "errors"

var (
	// ErrTransactionNotFound возвращается, когда транзакция не найдена
	ErrTransactionNotFound = errors.New("refund_transaction: transaction not found")

	// ErrNotRefundable возвращается, когда по транзакции возврат невозможен:
	// уже возвращена полностью или нет доли менеджера
	ErrNotRefundable = errors.New("refund_transaction: transaction is not refundable")

	// ErrAmountExceedsRefundable возвращается, когда запрошенная сумма
	// превышает остаток доли менеджера
	ErrAmountExceedsRefundable = errors.New("refund_transaction: amount exceeds max refundable")

	// ErrMissingPaymentRef возвращается, когда у транзакции нет ссылки на платёж процессора
	ErrMissingPaymentRef = errors.New("refund_transaction: transaction has no payment reference")

	// ErrForbidden возвращается, когда инициатор не управляет локацией бронирования
	ErrForbidden = errors.New("refund_transaction: actor does not manage booking location")

	// ErrLedgerCorrupted возвращается, когда суммы транзакции нарушают инвариант
	// Автоматический возврат остановлен до ручного разбора
	ErrLedgerCorrupted = errors.New("refund_transaction: ledger invariant violated")

	// ErrProcessorFailed возвращается, когда процессор отклонил возврат
	// Запись в БД остаётся нетронутой
	ErrProcessorFailed = errors.New("refund_transaction: payment processor failed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("refund_transaction: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("refund_transaction: internal error")
)
