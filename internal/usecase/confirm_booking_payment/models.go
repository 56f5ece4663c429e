package confirm_booking_payment

// Request модель подтверждения захвата платежа
// Суммы приходят от платёжного процессора
type Request struct {
	BookingID         int64  // ID бронирования
	AmountCents       int64  // Полная захваченная сумма
	BaseAmountCents   int64  // Сумма без налога
	ServiceFeeCents   int64  // Комиссия платформы
	ProcessorFeeCents int64  // Комиссия процессора
	PaymentRef        string // Ссылка на payment intent процессора
}

// Response модель созданной записи леджера
type Response struct {
	TransactionID       int64  // ID транзакции
	BookingID           int64  // ID бронирования
	AmountCents         int64  // Захваченная сумма
	ManagerRevenueCents int64  // Доля менеджера
	Status              string // Статус транзакции
}
