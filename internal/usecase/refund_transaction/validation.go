package refund_transaction

import (
	"fmt"
	"strings"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.TransactionID <= 0 {
		return fmt.Errorf("%w: transactionID must be positive", ErrInvalidInput)
	}

	if req.AmountCents <= 0 {
		return fmt.Errorf("%w: amountCents must be positive", ErrInvalidInput)
	}

	if strings.TrimSpace(req.Reason) == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	if len(req.Reason) > domain.MaxRefundReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxRefundReasonLength)
	}

	return nil
}
