package get_transaction

import (
	"time"

	getTransaction "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_transaction"
)

// RefundItemResponse элемент аудита возвратов
type RefundItemResponse struct {
	RefundRef           string    `json:"refundRef"`
	TransferReversalRef string    `json:"transferReversalRef"`
	AmountCents         int64     `json:"amountCents"`
	Reason              string    `json:"reason"`
	ActorID             int64     `json:"actorId"`
	CreatedAt           time.Time `json:"createdAt"`
}

// TransactionResponse HTTP response model
type TransactionResponse struct {
	ID          int64  `json:"id"`
	BookingID   int64  `json:"bookingId"`
	BookingType string `json:"bookingType"`

	AmountCents         int64 `json:"amountCents"`
	BaseAmountCents     int64 `json:"baseAmountCents"`
	ServiceFeeCents     int64 `json:"serviceFeeCents"`
	ManagerRevenueCents int64 `json:"managerRevenueCents"`
	ProcessorFeeCents   int64 `json:"processorFeeCents"`
	RefundedCents       int64 `json:"refundedCents"`

	Status     string `json:"status"`
	PaymentRef string `json:"paymentRef"`

	MaxRefundableCents           int64 `json:"maxRefundableCents"`
	RemainingManagerBalanceCents int64 `json:"remainingManagerBalanceCents"`

	Refunds []RefundItemResponse `json:"refunds"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromUseCaseResponse(resp *getTransaction.Response) *TransactionResponse {
	refunds := make([]RefundItemResponse, 0, len(resp.Refunds))
	for _, ref := range resp.Refunds {
		refunds = append(refunds, RefundItemResponse{
			RefundRef:           ref.RefundRef,
			TransferReversalRef: ref.TransferReversalRef,
			AmountCents:         ref.AmountCents,
			Reason:              ref.Reason,
			ActorID:             ref.ActorID,
			CreatedAt:           ref.CreatedAt,
		})
	}

	return &TransactionResponse{
		ID:                           resp.ID,
		BookingID:                    resp.BookingID,
		BookingType:                  resp.BookingType,
		AmountCents:                  resp.AmountCents,
		BaseAmountCents:              resp.BaseAmountCents,
		ServiceFeeCents:              resp.ServiceFeeCents,
		ManagerRevenueCents:          resp.ManagerRevenueCents,
		ProcessorFeeCents:            resp.ProcessorFeeCents,
		RefundedCents:                resp.RefundedCents,
		Status:                       resp.Status,
		PaymentRef:                   resp.PaymentRef,
		MaxRefundableCents:           resp.MaxRefundableCents,
		RemainingManagerBalanceCents: resp.RemainingManagerBalanceCents,
		Refunds:                      refunds,
		CreatedAt:                    resp.CreatedAt,
		UpdatedAt:                    resp.UpdatedAt,
	}
}
