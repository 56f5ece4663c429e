package get_available_windows

import (
	"time"

	"github.com/kitchrent/KRM-SettlementService/pkg/types"
)

// Request модель запроса доступных окон ресурса
type Request struct {
	ResourceID int64     // ID ресурса
	Date       time.Time // Дата (без времени)
}

// Window одно непрерывное окно доступности
type Window struct {
	Start types.TimeString // Начало окна
	End   types.TimeString // Конец окна
}

// Response модель ответа с доступными окнами
type Response struct {
	ResourceID int64     // ID ресурса
	Date       time.Time // Дата
	IsOpen     bool      // Ресурс вообще доступен в эту дату
	Windows    []Window  // Упорядоченные непересекающиеся окна
}
