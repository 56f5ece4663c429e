package review_overstay

import "github.com/kitchrent/KRM-SettlementService/internal/domain"

// ApproveRequest запрос на утверждение штрафа
type ApproveRequest struct {
	PenaltyID        int64  // ID штрафа
	ManagerID        int64  // Менеджер локации
	FinalAmountCents *int64 // Скорректированная сумма (опционально)
}

// WaiveRequest запрос на прощение штрафа
type WaiveRequest struct {
	PenaltyID int64  // ID штрафа
	ManagerID int64  // Менеджер локации
	Reason    string // Причина прощения (обязательна для аудита)
}

// ChargeRequest запрос на списание утверждённого штрафа
type ChargeRequest struct {
	PenaltyID int64 // ID штрафа
	ManagerID int64 // Менеджер локации
}

// ResolveRequest запрос на закрытие просрочки без списания
type ResolveRequest struct {
	PenaltyID  int64                 // ID штрафа
	ManagerID  int64                 // Менеджер локации
	Resolution domain.ResolutionType // extended / removed / escalated
	Notes      string                // Заметки (опционально)
}

// Response модель ответа с новым состоянием штрафа
type Response struct {
	PenaltyID   int64   // ID штрафа
	Status      string  // Новый статус
	AmountCents int64   // Действующая сумма штрафа
	ChargeRef   *string // Ссылка на списание (после успешного charge)
}
