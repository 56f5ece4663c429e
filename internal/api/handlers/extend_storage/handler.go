package extend_storage

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kitchrent/KRM-SettlementService/internal/api/handlers"
	"github.com/kitchrent/KRM-SettlementService/internal/api/middleware"
	extendStorage "github.com/kitchrent/KRM-SettlementService/internal/usecase/extend_storage"
)

const (
	msgInvalidBookingID        = "некорректный ID бронирования"
	msgInvalidExtensionID      = "некорректный ID заявки на продление"
	msgInvalidRequestBody      = "некорректное тело запроса"
	msgBookingNotFound         = "бронирование не найдено"
	msgExtensionNotFound       = "заявка на продление не найдена"
	msgNotStorageBooking       = "продление доступно только для бронирований хранения"
	msgForbidden               = "действие недоступно этому пользователю"
	msgBookingNotExtendable    = "бронирование нельзя продлить"
	msgExtensionAlreadyPending = "по бронированию уже есть незакрытая заявка на продление"
	msgRangeConflict           = "продлённый период пересекается с другим бронированием"
	msgInvalidTransition       = "действие неприменимо к текущему статусу заявки"
	msgPaymentSetupFailed      = "не удалось подготовить оплату, попробуйте позже"
	msgRefundFailed            = "не удалось выполнить возврат, заявка не изменена"
)

type Handler struct {
	useCase ExtendStorageUseCase
	logger  Logger
}

func NewHandler(useCase ExtendStorageUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// HandleCheckout POST /api/v1/storage-bookings/{id}/extension-checkout
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /storage-bookings/{id}/extension-checkout - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req CheckoutRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /storage-bookings/{id}/extension-checkout - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	chefID := middleware.UserID(r.Context())

	result, err := h.useCase.Checkout(r.Context(), &extendStorage.CheckoutRequest{
		BookingID:     bookingID,
		ChefID:        chefID,
		ExtensionDays: req.ExtensionDays,
	})
	if err != nil {
		switch {
		case errors.Is(err, extendStorage.ErrBookingNotFound):
			h.logger.Warn("POST /storage-bookings/{id}/extension-checkout - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, extendStorage.ErrNotStorageBooking):
			h.logger.Warn("POST /storage-bookings/{id}/extension-checkout - Not a storage booking: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgNotStorageBooking)

		case errors.Is(err, extendStorage.ErrForbidden):
			h.logger.Warn("POST /storage-bookings/{id}/extension-checkout - Forbidden: booking_id=%d, chef_id=%d",
				bookingID, chefID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, extendStorage.ErrBookingNotExtendable):
			h.logger.Warn("POST /storage-bookings/{id}/extension-checkout - Not extendable: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgBookingNotExtendable)

		case errors.Is(err, extendStorage.ErrExtensionAlreadyPending):
			h.logger.Warn("POST /storage-bookings/{id}/extension-checkout - Already pending: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgExtensionAlreadyPending)

		case errors.Is(err, extendStorage.ErrRangeConflict):
			h.logger.Warn("POST /storage-bookings/{id}/extension-checkout - Range conflict: booking_id=%d, days=%d",
				bookingID, req.ExtensionDays)
			handlers.RespondError(w, http.StatusConflict, msgRangeConflict)

		case errors.Is(err, extendStorage.ErrPaymentSetupFailed):
			h.logger.Error("POST /storage-bookings/{id}/extension-checkout - Payment setup failed: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgPaymentSetupFailed)

		case errors.Is(err, extendStorage.ErrInvalidInput):
			h.logger.Warn("POST /storage-bookings/{id}/extension-checkout - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /storage-bookings/{id}/extension-checkout - Failed: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /storage-bookings/{id}/extension-checkout - Extension created: booking_id=%d, extension_id=%d",
		bookingID, result.ExtensionID)
	handlers.RespondJSON(w, http.StatusCreated, FromCheckoutResponse(result))
}

// HandleConfirmPayment POST /api/v1/extensions/{id}/payment-confirmed
func (h *Handler) HandleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	extensionID, ok := h.extensionID(w, r, "payment-confirmed")
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /extensions/{id}/payment-confirmed - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.ConfirmPayment(r.Context(), &extendStorage.ConfirmPaymentRequest{
		ExtensionID:       extensionID,
		AmountCents:       req.AmountCents,
		ProcessorFeeCents: req.ProcessorFeeCents,
		PaymentRef:        req.PaymentRef,
	})
	h.respond(w, "payment-confirmed", extensionID, result, err)
}

// HandleApprove POST /api/v1/extensions/{id}/approve
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	extensionID, ok := h.extensionID(w, r, "approve")
	if !ok {
		return
	}

	result, err := h.useCase.Approve(r.Context(), &extendStorage.DecideRequest{
		ExtensionID: extensionID,
		ManagerID:   middleware.UserID(r.Context()),
	})
	h.respond(w, "approve", extensionID, result, err)
}

// HandleReject POST /api/v1/extensions/{id}/reject
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	extensionID, ok := h.extensionID(w, r, "reject")
	if !ok {
		return
	}

	var req DecideRequest
	if r.ContentLength > 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("POST /extensions/{id}/reject - Invalid request body: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	result, err := h.useCase.Reject(r.Context(), &extendStorage.DecideRequest{
		ExtensionID: extensionID,
		ManagerID:   middleware.UserID(r.Context()),
		Reason:      req.Reason,
	})
	h.respond(w, "reject", extensionID, result, err)
}

func (h *Handler) extensionID(w http.ResponseWriter, r *http.Request, action string) (int64, bool) {
	extensionID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /extensions/{id}/%s - Invalid extension ID: %v", action, err)
		handlers.RespondBadRequest(w, msgInvalidExtensionID)
		return 0, false
	}
	return extensionID, true
}

func (h *Handler) respond(w http.ResponseWriter, action string, extensionID int64, result *extendStorage.Response, err error) {
	if err != nil {
		switch {
		case errors.Is(err, extendStorage.ErrExtensionNotFound):
			h.logger.Warn("POST /extensions/{id}/%s - Extension not found: extension_id=%d", action, extensionID)
			handlers.RespondNotFound(w, msgExtensionNotFound)

		case errors.Is(err, extendStorage.ErrForbidden):
			h.logger.Warn("POST /extensions/{id}/%s - Forbidden: extension_id=%d", action, extensionID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, extendStorage.ErrInvalidTransition):
			h.logger.Warn("POST /extensions/{id}/%s - Invalid transition: extension_id=%d", action, extensionID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		case errors.Is(err, extendStorage.ErrRangeConflict):
			h.logger.Warn("POST /extensions/{id}/%s - Range conflict: extension_id=%d", action, extensionID)
			handlers.RespondError(w, http.StatusConflict, msgRangeConflict)

		case errors.Is(err, extendStorage.ErrRefundFailed):
			h.logger.Error("POST /extensions/{id}/%s - Refund failed: extension_id=%d, error=%v",
				action, extensionID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgRefundFailed)

		case errors.Is(err, extendStorage.ErrInvalidInput):
			h.logger.Warn("POST /extensions/{id}/%s - Invalid input: %v", action, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /extensions/{id}/%s - Failed: extension_id=%d, error=%v", action, extensionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /extensions/{id}/%s - Applied: extension_id=%d, status=%s", action, extensionID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
