package get_transaction

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kitchrent/KRM-SettlementService/internal/api/handlers"
	"github.com/kitchrent/KRM-SettlementService/internal/api/middleware"
	getTransaction "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_transaction"
)

const (
	msgInvalidTransactionID = "некорректный ID транзакции"
	msgTransactionNotFound  = "транзакция не найдена"
	msgForbidden            = "транзакция недоступна этому пользователю"
)

type Handler struct {
	useCase GetTransactionUseCase
	logger  Logger
}

func NewHandler(useCase GetTransactionUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/transactions/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	transactionID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /transactions/{id} - Invalid transaction ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTransactionID)
		return
	}

	actorID := middleware.UserID(r.Context())

	result, err := h.useCase.Execute(r.Context(), &getTransaction.Request{
		TransactionID: transactionID,
		ActorID:       actorID,
	})
	if err != nil {
		switch {
		case errors.Is(err, getTransaction.ErrTransactionNotFound):
			handlers.RespondNotFound(w, msgTransactionNotFound)

		case errors.Is(err, getTransaction.ErrForbidden):
			h.logger.Warn("GET /transactions/{id} - Forbidden: transaction_id=%d, actor_id=%d",
				transactionID, actorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, getTransaction.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidTransactionID)

		default:
			h.logger.Error("GET /transactions/{id} - Failed: transaction_id=%d, error=%v", transactionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
