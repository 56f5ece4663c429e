package decide_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kitchrent/KRM-SettlementService/internal/api/handlers"
	"github.com/kitchrent/KRM-SettlementService/internal/api/middleware"
	decideBooking "github.com/kitchrent/KRM-SettlementService/internal/usecase/decide_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnknownAction      = "неизвестное действие"
	msgBookingNotFound    = "бронирование не найдено"
	msgForbidden          = "действие недоступно этому пользователю"
	msgInvalidTransition  = "действие неприменимо к текущему статусу бронирования"
	msgRefundFailed       = "не удалось выполнить возврат, бронирование не изменено"
)

type Handler struct {
	useCase DecideBookingUseCase
	action  decideBooking.Action
	logger  Logger
}

// NewHandler создаёт обработчик для одного действия: approve, reject или cancel.
// Роут регистрируется отдельно на каждое действие
func NewHandler(useCase DecideBookingUseCase, action decideBooking.Action, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		action:  action,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{id}/approve|reject|cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/%s - Invalid booking ID: %v", h.action, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Тело опционально: approve идёт без тела
	var req DecideBookingRequest
	if r.ContentLength > 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("POST /bookings/{id}/%s - Invalid request body: %v", h.action, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	actorID := middleware.UserID(r.Context())
	role := decideBooking.Role(middleware.UserRole(r.Context()))
	if role == "" {
		// По умолчанию шеф: менеджерские действия проверит usecase по локации
		role = decideBooking.RoleChef
	}

	result, err := h.useCase.Execute(r.Context(), &decideBooking.Request{
		BookingID: bookingID,
		ActorID:   actorID,
		ActorRole: role,
		Action:    h.action,
		Reason:    req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, decideBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/%s - Booking not found: booking_id=%d", h.action, bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, decideBooking.ErrForbidden):
			h.logger.Warn("POST /bookings/{id}/%s - Forbidden: booking_id=%d, actor_id=%d",
				h.action, bookingID, actorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, decideBooking.ErrInvalidTransition):
			h.logger.Warn("POST /bookings/{id}/%s - Invalid transition: booking_id=%d", h.action, bookingID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		case errors.Is(err, decideBooking.ErrRefundFailed):
			h.logger.Error("POST /bookings/{id}/%s - Refund failed: booking_id=%d, error=%v",
				h.action, bookingID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgRefundFailed)

		case errors.Is(err, decideBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/%s - Invalid input: %v", h.action, err)
			handlers.RespondBadRequest(w, msgUnknownAction)

		default:
			h.logger.Error("POST /bookings/{id}/%s - Failed: booking_id=%d, error=%v",
				h.action, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/%s - Decision applied: booking_id=%d, status=%s",
		h.action, bookingID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
