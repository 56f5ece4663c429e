package decide_booking

// Action решение по бронированию
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

// Role роль инициатора решения
type Role string

const (
	RoleManager Role = "manager"
	RoleChef    Role = "chef"
)

// Request модель запроса решения по бронированию
type Request struct {
	BookingID int64  // ID бронирования
	ActorID   int64  // Кто принимает решение
	ActorRole Role   // Роль инициатора
	Action    Action // approve / reject / cancel
	Reason    string // Причина (для reject/cancel)
}

// Response модель ответа с результатом решения
type Response struct {
	BookingID     int64  // ID бронирования
	Status        string // Новый статус бронирования
	PaymentStatus string // Платёжный статус после решения
	RefundedCents int64  // Сумма автоматического возврата (0, если не было)
}
