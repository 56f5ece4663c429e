package refund_transaction

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kitchrent/KRM-SettlementService/internal/api/handlers"
	"github.com/kitchrent/KRM-SettlementService/internal/api/middleware"
	refundTransaction "github.com/kitchrent/KRM-SettlementService/internal/usecase/refund_transaction"
)

const (
	msgInvalidTransactionID = "некорректный ID транзакции"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgManagerOnly          = "возвраты доступны только менеджеру"
	msgForeignLocation      = "возвраты доступны только менеджеру локации"
	msgTransactionNotFound  = "транзакция не найдена"
	msgNotRefundable        = "возврат по этой транзакции невозможен"
	msgAmountExceeds        = "сумма превышает остаток, доступный к возврату"
	msgMissingPaymentRef    = "у транзакции нет ссылки на платёж процессора"
	msgProcessorFailed      = "процессор отклонил возврат, попробуйте позже"
)

const roleManager = "manager"

type Handler struct {
	useCase RefundTransactionUseCase
	logger  Logger
}

func NewHandler(useCase RefundTransactionUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/transactions/{id}/refund
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	transactionID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /transactions/{id}/refund - Invalid transaction ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTransactionID)
		return
	}

	// Ручные возвраты делает только менеджер; автоматические идут
	// внутри сервиса мимо HTTP слоя
	if middleware.UserRole(r.Context()) != roleManager {
		h.logger.Warn("POST /transactions/{id}/refund - Forbidden for role %q: transaction_id=%d",
			middleware.UserRole(r.Context()), transactionID)
		handlers.RespondError(w, http.StatusForbidden, msgManagerOnly)
		return
	}

	var req RefundRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /transactions/{id}/refund - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	actorID := middleware.UserID(r.Context())

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(transactionID, actorID))
	if err != nil {
		switch {
		case errors.Is(err, refundTransaction.ErrTransactionNotFound):
			h.logger.Warn("POST /transactions/{id}/refund - Transaction not found: transaction_id=%d", transactionID)
			handlers.RespondNotFound(w, msgTransactionNotFound)

		case errors.Is(err, refundTransaction.ErrForbidden):
			h.logger.Warn("POST /transactions/{id}/refund - Forbidden: transaction_id=%d, actor_id=%d",
				transactionID, actorID)
			handlers.RespondError(w, http.StatusForbidden, msgForeignLocation)

		case errors.Is(err, refundTransaction.ErrNotRefundable):
			h.logger.Warn("POST /transactions/{id}/refund - Not refundable: transaction_id=%d", transactionID)
			handlers.RespondError(w, http.StatusConflict, msgNotRefundable)

		case errors.Is(err, refundTransaction.ErrAmountExceedsRefundable):
			h.logger.Warn("POST /transactions/{id}/refund - Amount exceeds refundable: transaction_id=%d, amount=%d",
				transactionID, req.AmountCents)
			handlers.RespondError(w, http.StatusConflict, msgAmountExceeds)

		case errors.Is(err, refundTransaction.ErrMissingPaymentRef):
			h.logger.Warn("POST /transactions/{id}/refund - Missing payment ref: transaction_id=%d", transactionID)
			handlers.RespondError(w, http.StatusConflict, msgMissingPaymentRef)

		case errors.Is(err, refundTransaction.ErrProcessorFailed):
			h.logger.Error("POST /transactions/{id}/refund - Processor failed: transaction_id=%d, error=%v",
				transactionID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgProcessorFailed)

		case errors.Is(err, refundTransaction.ErrInvalidInput):
			h.logger.Warn("POST /transactions/{id}/refund - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			// Сюда же попадает ErrLedgerCorrupted: наружу он не детализируется
			h.logger.Error("POST /transactions/{id}/refund - Failed: transaction_id=%d, error=%v",
				transactionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /transactions/{id}/refund - Refund issued: transaction_id=%d, amount=%d, actor_id=%d",
		transactionID, req.AmountCents, actorID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
