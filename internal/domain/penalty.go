package domain

import (
	"math"
	"time"
)

// PenaltyStatus статус записи о просрочке хранения
type PenaltyStatus string

const (
	PenaltyGracePeriod   PenaltyStatus = "grace_period"
	PenaltyPendingReview PenaltyStatus = "pending_review"
	PenaltyApproved      PenaltyStatus = "approved"
	PenaltyCharged       PenaltyStatus = "charged"
	PenaltyChargeFailed  PenaltyStatus = "charge_failed"
	PenaltyWaived        PenaltyStatus = "waived"
	PenaltyResolved      PenaltyStatus = "resolved"
)

// ResolutionType способ закрытия просрочки без списания
type ResolutionType string

const (
	ResolutionExtended  ResolutionType = "extended"
	ResolutionRemoved   ResolutionType = "removed"
	ResolutionEscalated ResolutionType = "escalated"
)

// OverstayPenalty запись о просрочке хранения
// Создаётся периодическим детектором, изменяется только решениями менеджера
// и шагом списания; физически не удаляется
type OverstayPenalty struct {
	ID        int64
	BookingID int64

	DetectedAt  time.Time
	GraceEndsAt time.Time

	CandidateAmountCents int64  // рассчитанный штраф
	FinalAmountCents     *int64 // скорректированный менеджером (опционально)

	Status      PenaltyStatus
	Resolution  *ResolutionType
	WaiveReason *string
	ChargeRef   *string // ссылка на списание у процессора

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal возвращает true для конечных состояний
func (p *OverstayPenalty) IsTerminal() bool {
	return p.Status == PenaltyCharged || p.Status == PenaltyWaived || p.Status == PenaltyResolved
}

// CanBeApproved возвращает true, если штраф ожидает решения менеджера
func (p *OverstayPenalty) CanBeApproved() bool {
	return p.Status == PenaltyPendingReview || p.Status == PenaltyChargeFailed
}

// CanBeWaived возвращает true, если штраф можно простить
func (p *OverstayPenalty) CanBeWaived() bool {
	return p.Status == PenaltyPendingReview || p.Status == PenaltyChargeFailed
}

// CanBeCharged возвращает true, если по штрафу можно запускать списание
// charge_failed остаётся retryable
func (p *OverstayPenalty) CanBeCharged() bool {
	return p.Status == PenaltyApproved || p.Status == PenaltyChargeFailed
}

// CanBeResolved возвращает true для любого нетерминального состояния
func (p *OverstayPenalty) CanBeResolved() bool {
	return !p.IsTerminal()
}

// ChargeableAmountCents возвращает сумму к списанию:
// скорректированную менеджером, если она задана, иначе рассчитанную
func (p *OverstayPenalty) ChargeableAmountCents() int64 {
	if p.FinalAmountCents != nil {
		return *p.FinalAmountCents
	}
	return p.CandidateAmountCents
}

// CandidatePenaltyCents рассчитывает штраф за просрочку:
// min(daysOverstayed, maxPenaltyDays) × dailyRate × penaltyRate
// Результат округляется до цента (half up)
func CandidatePenaltyCents(daysOverstayed, maxPenaltyDays int, dailyRateCents int64, penaltyRate float64) int64 {
	days := daysOverstayed
	if maxPenaltyDays > 0 && days > maxPenaltyDays {
		days = maxPenaltyDays
	}
	if days <= 0 || dailyRateCents <= 0 || penaltyRate <= 0 {
		return 0
	}
	return int64(math.Floor(float64(days)*float64(dailyRateCents)*penaltyRate + 0.5))
}

// PenaltyHistoryEntry запись append-only истории переходов штрафа
// Обязательна для разбора споров: хранит менеджера, время и заметки
type PenaltyHistoryEntry struct {
	ID         int64
	PenaltyID  int64
	FromStatus PenaltyStatus
	ToStatus   PenaltyStatus
	ManagerID  *int64 // nil для системных переходов (детектор, авто-списание)
	Notes      *string
	CreatedAt  time.Time
}

// OverstayTerms действующие условия просрочки для конкретного хранения
type OverstayTerms struct {
	GraceDays      int
	PenaltyRate    float64
	MaxPenaltyDays int
	DailyRateCents int64
}

// ResolveOverstayTerms комбинирует дефолты локации с переопределениями листинга
// Переопределение листинга всегда приоритетнее
func ResolveOverstayTerms(policy *LocationPolicy, graceDays *int, penaltyRate *float64, maxPenaltyDays *int, dailyRateCents int64) OverstayTerms {
	terms := OverstayTerms{
		GraceDays:      DefaultOverstayGraceDays,
		PenaltyRate:    DefaultOverstayPenaltyRate,
		MaxPenaltyDays: DefaultOverstayMaxPenaltyDays,
		DailyRateCents: dailyRateCents,
	}
	if policy != nil {
		terms.GraceDays = policy.OverstayGraceDays
		terms.PenaltyRate = policy.OverstayPenaltyRate
		terms.MaxPenaltyDays = policy.OverstayMaxPenaltyDays
	}
	if graceDays != nil {
		terms.GraceDays = *graceDays
	}
	if penaltyRate != nil {
		terms.PenaltyRate = *penaltyRate
	}
	if maxPenaltyDays != nil {
		terms.MaxPenaltyDays = *maxPenaltyDays
	}
	return terms
}
