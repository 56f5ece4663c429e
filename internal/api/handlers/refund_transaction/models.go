package refund_transaction

import (
	refundTransaction "github.com/kitchrent/KRM-SettlementService/internal/usecase/refund_transaction"
)

// RefundRequest HTTP request model
type RefundRequest struct {
	AmountCents int64  `json:"amountCents"`
	Reason      string `json:"reason"`
}

// RefundResponse HTTP response model
type RefundResponse struct {
	RefundID           string `json:"refundId"`
	TransferReversalID string `json:"transferReversalId"`
	Status             string `json:"status"`
	RefundedCents      int64  `json:"refundedCents"`
	MaxRefundableCents int64  `json:"maxRefundableCents"`
}

func (r *RefundRequest) ToUseCaseRequest(transactionID, actorID int64) *refundTransaction.Request {
	return &refundTransaction.Request{
		TransactionID: transactionID,
		AmountCents:   r.AmountCents,
		Reason:        r.Reason,
		ActorID:       actorID,
	}
}

func FromUseCaseResponse(resp *refundTransaction.Response) *RefundResponse {
	return &RefundResponse{
		RefundID:           resp.RefundID,
		TransferReversalID: resp.TransferReversalID,
		Status:             resp.Status,
		RefundedCents:      resp.RefundedCents,
		MaxRefundableCents: resp.MaxRefundableCents,
	}
}
