package create_booking

import (
	"time"

	"github.com/kitchrent/KRM-SettlementService/pkg/types"
)

// Request модель запроса на создание бронирования
// Для kitchen/equipment обязательны StartTime/EndTime, для storage — EndDate
type Request struct {
	ChefID    int64             // ID шефа
	ListingID int64             // ID листинга (он же ресурс)
	Date      time.Time         // Дата бронирования (для storage — дата начала)
	EndDate   *time.Time        // Дата окончания (только storage)
	StartTime *types.TimeString // Время начала (kitchen/equipment)
	EndTime   *types.TimeString // Время окончания (kitchen/equipment)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID         int64      // ID бронирования
	ChefID     int64      // ID шефа
	ResourceID int64      // ID ресурса
	LocationID int64      // ID локации
	Type       string     // Тип бронирования
	Date       time.Time  // Дата
	EndDate    *time.Time // Дата окончания (storage)

	StartTime *types.TimeString // Время начала
	EndTime   *types.TimeString // Время окончания

	Status        string // Статус бронирования
	PaymentStatus string // Платёжный статус

	BaseAmountCents  int64  // Стоимость аренды
	ServiceFeeCents  int64  // Комиссия платформы
	TotalPriceCents  int64  // Итоговая сумма
	PaymentIntentRef string // Ссылка на платёжное намерение
	ClientSecret     string // Секрет для подтверждения оплаты на клиенте

	CreatedAt time.Time // Время создания
}
