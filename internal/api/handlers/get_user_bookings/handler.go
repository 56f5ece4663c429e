package get_user_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kitchrent/KRM-SettlementService/internal/api/handlers"
	"github.com/kitchrent/KRM-SettlementService/internal/api/middleware"
	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	getUserBookings "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_user_bookings"
)

const (
	msgInvalidUserID = "некорректный ID пользователя"
	msgInvalidStatus = "некорректный фильтр status"
	msgForbidden     = "список бронирований недоступен этому пользователю"
)

type Handler struct {
	useCase GetUserBookingsUseCase
	logger  Logger
}

func NewHandler(useCase GetUserBookingsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/users/{userId}/bookings?status=pending
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /users/{userId}/bookings - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	var statusFilter *domain.BookingStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.BookingStatus(raw)
		switch status {
		case domain.StatusPending, domain.StatusConfirmed, domain.StatusCancelled:
			statusFilter = &status
		default:
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
	}

	actorID := middleware.UserID(r.Context())

	result, err := h.useCase.Execute(r.Context(), &getUserBookings.Request{
		UserID:  userID,
		ActorID: actorID,
		Status:  statusFilter,
	})
	if err != nil {
		switch {
		case errors.Is(err, getUserBookings.ErrForbidden):
			h.logger.Warn("GET /users/{userId}/bookings - Forbidden: user_id=%d, actor_id=%d", userID, actorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, getUserBookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidUserID)

		default:
			h.logger.Error("GET /users/{userId}/bookings - Failed: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
