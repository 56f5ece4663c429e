package extend_storage

import "time"

// CheckoutRequest запрос шефа на продление хранения
type CheckoutRequest struct {
	BookingID     int64 // ID storage бронирования
	ChefID        int64 // Владелец бронирования
	ExtensionDays int   // На сколько дней продлить
}

// CheckoutResponse модель созданной заявки с платёжными реквизитами
type CheckoutResponse struct {
	ExtensionID int64     // ID заявки
	BookingID   int64     // ID бронирования
	NewEndDate  time.Time // Дата окончания после продления

	BaseAmountCents  int64  // Стоимость продления
	ServiceFeeCents  int64  // Комиссия платформы
	TotalAmountCents int64  // Итоговая сумма
	PaymentIntentRef string // Ссылка на платёжное намерение
	ClientSecret     string // Секрет для подтверждения оплаты на клиенте

	Status string // Статус заявки
}

// ConfirmPaymentRequest подтверждение захвата оплаты продления
type ConfirmPaymentRequest struct {
	ExtensionID       int64  // ID заявки
	AmountCents       int64  // Полная захваченная сумма
	ProcessorFeeCents int64  // Комиссия процессора
	PaymentRef        string // Ссылка на payment intent процессора
}

// DecideRequest решение менеджера по оплаченной заявке
type DecideRequest struct {
	ExtensionID int64  // ID заявки
	ManagerID   int64  // Менеджер локации
	Reason      string // Причина (для reject)
}

// Response модель ответа с состоянием заявки
type Response struct {
	ExtensionID   int64      // ID заявки
	BookingID     int64      // ID бронирования
	Status        string     // Статус заявки
	NewEndDate    *time.Time // Новая дата окончания (после approve)
	RefundedCents int64      // Возвращено при отклонении оплаченной заявки
}
