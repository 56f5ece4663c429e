package review_overstay

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kitchrent/KRM-SettlementService/internal/api/handlers"
	"github.com/kitchrent/KRM-SettlementService/internal/api/middleware"
	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	reviewOverstay "github.com/kitchrent/KRM-SettlementService/internal/usecase/review_overstay"
)

const (
	msgInvalidPenaltyID   = "некорректный ID штрафа"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidResolution  = "некорректный способ закрытия, ожидается extended, removed или escalated"
	msgPenaltyNotFound    = "запись о просрочке не найдена"
	msgForbidden          = "действие недоступно этому пользователю"
	msgInvalidTransition  = "действие неприменимо к текущему статусу штрафа"
	msgNothingToCharge    = "сумма штрафа нулевая, списывать нечего"
	msgChargeFailed       = "списание не прошло, попробуйте позже"
)

type Handler struct {
	useCase ReviewOverstayUseCase
	logger  Logger
}

func NewHandler(useCase ReviewOverstayUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// HandleApprove POST /api/v1/overstays/{id}/approve
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	penaltyID, ok := h.penaltyID(w, r, "approve")
	if !ok {
		return
	}

	var req ApproveRequest
	if r.ContentLength > 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("POST /overstays/{id}/approve - Invalid request body: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	result, err := h.useCase.Approve(r.Context(), &reviewOverstay.ApproveRequest{
		PenaltyID:        penaltyID,
		ManagerID:        middleware.UserID(r.Context()),
		FinalAmountCents: req.FinalAmountCents,
	})
	h.respond(w, "approve", penaltyID, result, err)
}

// HandleWaive POST /api/v1/overstays/{id}/waive
func (h *Handler) HandleWaive(w http.ResponseWriter, r *http.Request) {
	penaltyID, ok := h.penaltyID(w, r, "waive")
	if !ok {
		return
	}

	var req WaiveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /overstays/{id}/waive - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Waive(r.Context(), &reviewOverstay.WaiveRequest{
		PenaltyID: penaltyID,
		ManagerID: middleware.UserID(r.Context()),
		Reason:    req.Reason,
	})
	h.respond(w, "waive", penaltyID, result, err)
}

// HandleCharge POST /api/v1/overstays/{id}/charge
func (h *Handler) HandleCharge(w http.ResponseWriter, r *http.Request) {
	penaltyID, ok := h.penaltyID(w, r, "charge")
	if !ok {
		return
	}

	result, err := h.useCase.Charge(r.Context(), &reviewOverstay.ChargeRequest{
		PenaltyID: penaltyID,
		ManagerID: middleware.UserID(r.Context()),
	})
	h.respond(w, "charge", penaltyID, result, err)
}

// HandleResolve POST /api/v1/overstays/{id}/resolve
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	penaltyID, ok := h.penaltyID(w, r, "resolve")
	if !ok {
		return
	}

	var req ResolveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /overstays/{id}/resolve - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resolution := domain.ResolutionType(req.Resolution)
	switch resolution {
	case domain.ResolutionExtended, domain.ResolutionRemoved, domain.ResolutionEscalated:
	default:
		handlers.RespondBadRequest(w, msgInvalidResolution)
		return
	}

	result, err := h.useCase.Resolve(r.Context(), &reviewOverstay.ResolveRequest{
		PenaltyID:  penaltyID,
		ManagerID:  middleware.UserID(r.Context()),
		Resolution: resolution,
		Notes:      req.Notes,
	})
	h.respond(w, "resolve", penaltyID, result, err)
}

func (h *Handler) penaltyID(w http.ResponseWriter, r *http.Request, action string) (int64, bool) {
	penaltyID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /overstays/{id}/%s - Invalid penalty ID: %v", action, err)
		handlers.RespondBadRequest(w, msgInvalidPenaltyID)
		return 0, false
	}
	return penaltyID, true
}

func (h *Handler) respond(w http.ResponseWriter, action string, penaltyID int64, result *reviewOverstay.Response, err error) {
	if err != nil {
		switch {
		case errors.Is(err, reviewOverstay.ErrPenaltyNotFound):
			h.logger.Warn("POST /overstays/{id}/%s - Penalty not found: penalty_id=%d", action, penaltyID)
			handlers.RespondNotFound(w, msgPenaltyNotFound)

		case errors.Is(err, reviewOverstay.ErrForbidden):
			h.logger.Warn("POST /overstays/{id}/%s - Forbidden: penalty_id=%d", action, penaltyID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reviewOverstay.ErrInvalidTransition):
			h.logger.Warn("POST /overstays/{id}/%s - Invalid transition: penalty_id=%d", action, penaltyID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		case errors.Is(err, reviewOverstay.ErrNothingToCharge):
			h.logger.Warn("POST /overstays/{id}/%s - Nothing to charge: penalty_id=%d", action, penaltyID)
			handlers.RespondError(w, http.StatusConflict, msgNothingToCharge)

		case errors.Is(err, reviewOverstay.ErrChargeFailed):
			h.logger.Error("POST /overstays/{id}/%s - Charge failed: penalty_id=%d, error=%v",
				action, penaltyID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgChargeFailed)

		case errors.Is(err, reviewOverstay.ErrInvalidInput):
			h.logger.Warn("POST /overstays/{id}/%s - Invalid input: %v", action, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /overstays/{id}/%s - Failed: penalty_id=%d, error=%v", action, penaltyID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /overstays/{id}/%s - Applied: penalty_id=%d, status=%s", action, penaltyID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
