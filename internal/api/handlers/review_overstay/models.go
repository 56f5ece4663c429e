package review_overstay

import (
	reviewOverstay "github.com/kitchrent/KRM-SettlementService/internal/usecase/review_overstay"
)

// ApproveRequest HTTP request model для подтверждения штрафа
type ApproveRequest struct {
	FinalAmountCents *int64 `json:"finalAmountCents,omitempty"`
}

// WaiveRequest HTTP request model для прощения штрафа
type WaiveRequest struct {
	Reason string `json:"reason"`
}

// ResolveRequest HTTP request model для закрытия без списания
type ResolveRequest struct {
	Resolution string `json:"resolution"`
	Notes      string `json:"notes,omitempty"`
}

// PenaltyResponse HTTP response model
type PenaltyResponse struct {
	PenaltyID   int64   `json:"penaltyId"`
	Status      string  `json:"status"`
	AmountCents int64   `json:"amountCents"`
	ChargeRef   *string `json:"chargeRef,omitempty"`
}

func FromUseCaseResponse(resp *reviewOverstay.Response) *PenaltyResponse {
	return &PenaltyResponse{
		PenaltyID:   resp.PenaltyID,
		Status:      resp.Status,
		AmountCents: resp.AmountCents,
		ChargeRef:   resp.ChargeRef,
	}
}
