package domain

import "time"

// ExtensionStatus статус заявки на продление хранения
type ExtensionStatus string

const (
	ExtensionPending   ExtensionStatus = "pending"   // checkout создан, оплата не подтверждена
	ExtensionPaid      ExtensionStatus = "paid"      // оплата захвачена, ожидает решения менеджера
	ExtensionApproved  ExtensionStatus = "approved"  // одобрено, применяется к бронированию
	ExtensionRejected  ExtensionStatus = "rejected"  // отклонено до оплаты
	ExtensionCompleted ExtensionStatus = "completed" // дата окончания бронирования продлена
	ExtensionRefunded  ExtensionStatus = "refunded"  // отклонено после оплаты, деньги возвращены
)

// StorageExtension оплаченная, но ещё не применённая заявка на продление хранения
type StorageExtension struct {
	ID        int64
	BookingID int64
	ChefID    int64

	ExtensionDays int
	NewEndDate    time.Time

	BaseAmountCents     int64
	ServiceFeeCents     int64
	TotalAmountCents    int64
	ManagerRevenueCents int64

	PaymentIntentRef *string
	TransactionID    *int64 // заполняется после подтверждения оплаты

	Status ExtensionStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal возвращает true для конечных состояний заявки
func (e *StorageExtension) IsTerminal() bool {
	return e.Status == ExtensionCompleted || e.Status == ExtensionRefunded || e.Status == ExtensionRejected
}

// CanConfirmPayment возвращает true, если заявка ожидает подтверждения оплаты
func (e *StorageExtension) CanConfirmPayment() bool {
	return e.Status == ExtensionPending
}

// CanBeDecided возвращает true, если заявка ожидает решения менеджера
func (e *StorageExtension) CanBeDecided() bool {
	return e.Status == ExtensionPaid
}
