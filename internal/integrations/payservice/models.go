package payservice

// PaymentIntentRequest запрос на создание платёжного намерения
type PaymentIntentRequest struct {
	AmountCents          int64  `json:"amount_cents"`
	Currency             string `json:"currency"`
	PayerID              int64  `json:"payer_id"`
	ConnectedAccountID   string `json:"connected_account_id"`
	ApplicationFeeCents  int64  `json:"application_fee_cents"`
	IdempotencyKey       string `json:"idempotency_key"`
	Description          string `json:"description"`
}

// PaymentIntent платёжное намерение процессора
type PaymentIntent struct {
	Ref          string `json:"ref"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// RefundRequest запрос на возврат с реверсом трансфера
type RefundRequest struct {
	PaymentRef     string `json:"payment_ref"`
	AmountCents    int64  `json:"amount_cents"`
	Reason         string `json:"reason"`
	IdempotencyKey string `json:"idempotency_key"`
}

// RefundResult результат возврата у процессора
type RefundResult struct {
	RefundID           string `json:"refund_id"`
	TransferReversalID string `json:"transfer_reversal_id"`
	Status             string `json:"status"`
}

// ChargeRequest запрос на списание с сохранённого платёжного метода
type ChargeRequest struct {
	PayerID            int64  `json:"payer_id"`
	AmountCents        int64  `json:"amount_cents"`
	Currency           string `json:"currency"`
	ConnectedAccountID string `json:"connected_account_id"`
	Description        string `json:"description"`
	IdempotencyKey     string `json:"idempotency_key"`
}

// ChargeResult результат списания
type ChargeResult struct {
	ChargeRef string `json:"charge_ref"`
	Status    string `json:"status"`
}

// AccountStatus статус подключённого аккаунта менеджера
type AccountStatus struct {
	AccountID      string `json:"account_id"`
	PayoutsEnabled bool   `json:"payouts_enabled"`
	ChargesEnabled bool   `json:"charges_enabled"`
}

// ErrorResponse модель ошибки от PayService
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
