package create_booking

import (
	"errors"
	"net/http"

	"github.com/kitchrent/KRM-SettlementService/internal/api/handlers"
	"github.com/kitchrent/KRM-SettlementService/internal/api/middleware"
	createBooking "github.com/kitchrent/KRM-SettlementService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgListingNotFound      = "листинг не найден"
	msgListingInactive      = "листинг недоступен для бронирования"
	msgLocationNotFound     = "локация не найдена"
	msgResourceClosed       = "ресурс закрыт в выбранную дату"
	msgOutsideAvailability  = "интервал вне доступных окон"
	msgBelowMinimumDuration = "длительность меньше минимальной для этого листинга"
	msgTooLateToBook        = "слишком поздно для бронирования этого интервала"
	msgSlotAlreadyBooked    = "интервал уже занят"
	msgDailyLimitReached    = "достигнут дневной лимит бронирований"
	msgInvalidBookingDate   = "некорректная дата бронирования"
	msgLocationNotPayable   = "локация пока не принимает платежи"
	msgPaymentSetupFailed   = "не удалось подготовить оплату, попробуйте позже"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	chefID := middleware.UserID(r.Context())

	useCaseReq, err := req.ToUseCaseRequest(chefID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotAlreadyBooked):
			h.logger.Warn("POST /bookings - Slot already booked: chef_id=%d, listing_id=%d", chefID, req.ListingID)
			handlers.RespondError(w, http.StatusConflict, msgSlotAlreadyBooked)

		case errors.Is(err, createBooking.ErrListingNotFound):
			h.logger.Warn("POST /bookings - Listing not found: listing_id=%d", req.ListingID)
			handlers.RespondNotFound(w, msgListingNotFound)

		case errors.Is(err, createBooking.ErrLocationNotFound):
			h.logger.Warn("POST /bookings - Location not found: listing_id=%d", req.ListingID)
			handlers.RespondNotFound(w, msgLocationNotFound)

		case errors.Is(err, createBooking.ErrListingInactive):
			h.logger.Warn("POST /bookings - Listing inactive: listing_id=%d", req.ListingID)
			handlers.RespondBadRequest(w, msgListingInactive)

		case errors.Is(err, createBooking.ErrResourceClosed):
			h.logger.Warn("POST /bookings - Resource closed: chef_id=%d, listing_id=%d", chefID, req.ListingID)
			handlers.RespondBadRequest(w, msgResourceClosed)

		case errors.Is(err, createBooking.ErrOutsideAvailability):
			h.logger.Warn("POST /bookings - Outside availability: chef_id=%d, listing_id=%d", chefID, req.ListingID)
			handlers.RespondBadRequest(w, msgOutsideAvailability)

		case errors.Is(err, createBooking.ErrBelowMinimumDuration):
			h.logger.Warn("POST /bookings - Below minimum duration: chef_id=%d, listing_id=%d", chefID, req.ListingID)
			handlers.RespondBadRequest(w, msgBelowMinimumDuration)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			h.logger.Warn("POST /bookings - Too late to book: chef_id=%d, listing_id=%d", chefID, req.ListingID)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrDailyLimitReached):
			h.logger.Warn("POST /bookings - Daily limit reached: chef_id=%d", chefID)
			handlers.RespondError(w, http.StatusConflict, msgDailyLimitReached)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Invalid booking date: chef_id=%d, listing_id=%d", chefID, req.ListingID)
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createBooking.ErrLocationNotPayable):
			h.logger.Warn("POST /bookings - Location cannot accept payments: listing_id=%d", req.ListingID)
			handlers.RespondError(w, http.StatusConflict, msgLocationNotPayable)

		case errors.Is(err, createBooking.ErrPaymentSetupFailed):
			h.logger.Error("POST /bookings - Payment setup failed: chef_id=%d, listing_id=%d, error=%v",
				chefID, req.ListingID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgPaymentSetupFailed)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: chef_id=%d, listing_id=%d, error=%v",
				chefID, req.ListingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, chef_id=%d, listing_id=%d",
		result.ID, chefID, req.ListingID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
