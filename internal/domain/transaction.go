package domain

import (
	"errors"
	"fmt"
	"time"
)

// TransactionStatus статус платёжной транзакции
// Статус всегда производная от RefundedCents и ManagerRevenueCents, не хранится независимо
type TransactionStatus string

const (
	TransactionSucceeded         TransactionStatus = "succeeded"
	TransactionPartiallyRefunded TransactionStatus = "partially_refunded"
	TransactionRefunded          TransactionStatus = "refunded"
)

var (
	// ErrLedgerCorrupted возвращается, когда суммы транзакции нарушают инвариант
	// 0 <= refunded <= managerRevenue <= amount. Автоматические возвраты по такой
	// записи должны быть остановлены до ручного разбора
	ErrLedgerCorrupted = errors.New("domain: ledger invariant violated")

	// ErrNotRefundableTransaction возвращается для транзакций без доли менеджера:
	// возврат через unified-модель невозможен, это ошибка конфигурации тарифа
	ErrNotRefundableTransaction = errors.New("domain: transaction has no manager revenue to refund against")
)

// PaymentTransaction одна строка на каждый захваченный платёж
// Все суммы в минорных единицах валюты (центах)
type PaymentTransaction struct {
	ID          int64
	BookingID   int64
	BookingType BookingType

	AmountCents         int64 // полная захваченная сумма
	BaseAmountCents     int64 // сумма без налога
	ServiceFeeCents     int64 // комиссия платформы
	ManagerRevenueCents int64 // доля менеджера (переведена на connected счёт)
	ProcessorFeeCents   int64 // комиссия процессора (не возвращается)
	RefundedCents       int64 // накопленная сумма возвратов

	Status     TransactionStatus
	PaymentRef string // ссылка на payment intent процессора

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefundBreakdown расчёт максимально возможного возврата
// Unified-модель: сумма возврата покупателю всегда равна сумме,
// снимаемой с connected счёта менеджера
type RefundBreakdown struct {
	MaxRefundableCents           int64 // максимум к возврату покупателю
	MaxDeductibleCents           int64 // максимум к снятию с баланса менеджера
	RemainingManagerBalanceCents int64 // остаток доли менеджера
}

// Breakdown вычисляет лимиты возврата для транзакции
// Оба лимита ограничены остатком доли менеджера, а не полной суммой платежа:
// комиссия процессора менеджеру не возвращается
func (t *PaymentTransaction) Breakdown() RefundBreakdown {
	remaining := t.ManagerRevenueCents - t.RefundedCents
	if remaining < 0 {
		remaining = 0
	}
	return RefundBreakdown{
		MaxRefundableCents:           remaining,
		MaxDeductibleCents:           remaining,
		RemainingManagerBalanceCents: remaining,
	}
}

// DeriveStatus вычисляет статус из сумм
// refunded, если возвращена вся доля менеджера; partially_refunded, если часть
func DeriveStatus(refundedCents, managerRevenueCents int64) TransactionStatus {
	switch {
	case managerRevenueCents > 0 && refundedCents >= managerRevenueCents:
		return TransactionRefunded
	case refundedCents > 0:
		return TransactionPartiallyRefunded
	default:
		return TransactionSucceeded
	}
}

// CheckInvariant проверяет money-conservation инвариант записи
// Нарушение означает баг или порчу данных, а не ошибку пользователя
func (t *PaymentTransaction) CheckInvariant() error {
	if t.RefundedCents < 0 ||
		t.RefundedCents > t.AmountCents ||
		t.ManagerRevenueCents < 0 ||
		t.ManagerRevenueCents > t.AmountCents ||
		t.RefundedCents > t.ManagerRevenueCents {
		return fmt.Errorf("%w: tx id=%d amount=%d managerRevenue=%d refunded=%d",
			ErrLedgerCorrupted, t.ID, t.AmountCents, t.ManagerRevenueCents, t.RefundedCents)
	}
	return nil
}

// IsRefundable возвращает true, если по транзакции ещё возможен возврат
func (t *PaymentTransaction) IsRefundable() bool {
	return t.Status == TransactionSucceeded || t.Status == TransactionPartiallyRefunded
}

// BookingPaymentStatus возвращает paymentStatus бронирования,
// соответствующий состоянию транзакции после возврата
func (t *PaymentTransaction) BookingPaymentStatus() PaymentStatus {
	switch DeriveStatus(t.RefundedCents, t.ManagerRevenueCents) {
	case TransactionRefunded:
		return PaymentRefunded
	case TransactionPartiallyRefunded:
		return PaymentPartiallyRefunded
	default:
		return PaymentPaid
	}
}

// RefundLogEntry запись аудита возврата
// Отдельная append-only таблица вместо metadata-блоба на транзакции
type RefundLogEntry struct {
	ID                  int64
	TransactionID       int64
	RefundRef           string // id возврата у процессора
	TransferReversalRef string // id отмены трансфера у процессора
	AmountCents         int64
	Reason              string
	ActorID             int64 // кто инициировал: менеджер или system (0)
	CreatedAt           time.Time
}
