package refund_transaction

// Request модель запроса на возврат
type Request struct {
	TransactionID int64  // ID транзакции
	AmountCents   int64  // Сумма возврата в центах
	Reason        string // Причина возврата (обязательна для аудита)
	ActorID       int64  // Кто инициировал (0 = system)
}

// Response модель ответа с результатом возврата
type Response struct {
	RefundID           string // ID возврата у процессора
	TransferReversalID string // ID отмены трансфера у процессора
	Status             string // Новый статус транзакции
	RefundedCents      int64  // Накопленная сумма возвратов
	MaxRefundableCents int64  // Остаток, доступный к возврату
}
