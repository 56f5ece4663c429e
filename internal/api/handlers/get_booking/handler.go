package get_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kitchrent/KRM-SettlementService/internal/api/handlers"
	"github.com/kitchrent/KRM-SettlementService/internal/api/middleware"
	getBooking "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_booking"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgBookingNotFound  = "бронирование не найдено"
	msgForbidden        = "бронирование недоступно этому пользователю"
)

type Handler struct {
	useCase GetBookingUseCase
	logger  Logger
}

func NewHandler(useCase GetBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actorID := middleware.UserID(r.Context())

	result, err := h.useCase.Execute(r.Context(), &getBooking.Request{
		BookingID: bookingID,
		ActorID:   actorID,
	})
	if err != nil {
		switch {
		case errors.Is(err, getBooking.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, getBooking.ErrForbidden):
			h.logger.Warn("GET /bookings/{id} - Forbidden: booking_id=%d, actor_id=%d", bookingID, actorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, getBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBookingID)

		default:
			h.logger.Error("GET /bookings/{id} - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
