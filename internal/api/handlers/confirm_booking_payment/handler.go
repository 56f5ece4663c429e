package confirm_booking_payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kitchrent/KRM-SettlementService/internal/api/handlers"
	confirmPayment "github.com/kitchrent/KRM-SettlementService/internal/usecase/confirm_booking_payment"
)

const (
	msgInvalidBookingID    = "некорректный ID бронирования"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgBookingNotFound     = "бронирование не найдено"
	msgAlreadyCaptured     = "платёж по этому бронированию уже подтверждён"
	msgAmountsInconsistent = "суммы платежа не сходятся"
)

type Handler struct {
	useCase ConfirmBookingPaymentUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmBookingPaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{id}/payment-confirmed
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/payment-confirmed - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req ConfirmPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/payment-confirmed - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(bookingID))
	if err != nil {
		switch {
		case errors.Is(err, confirmPayment.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/payment-confirmed - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, confirmPayment.ErrAlreadyCaptured):
			h.logger.Warn("POST /bookings/{id}/payment-confirmed - Already captured: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgAlreadyCaptured)

		case errors.Is(err, confirmPayment.ErrAmountsInconsistent):
			h.logger.Warn("POST /bookings/{id}/payment-confirmed - Amounts inconsistent: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgAmountsInconsistent)

		case errors.Is(err, confirmPayment.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/payment-confirmed - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /bookings/{id}/payment-confirmed - Failed: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/payment-confirmed - Payment captured: booking_id=%d, transaction_id=%d",
		bookingID, result.TransactionID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
