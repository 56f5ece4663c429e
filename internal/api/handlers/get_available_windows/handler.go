package get_available_windows

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/kitchrent/KRM-SettlementService/internal/api/handlers"
	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	getWindows "github.com/kitchrent/KRM-SettlementService/internal/usecase/get_available_windows"
)

const (
	msgInvalidResourceID = "некорректный ID ресурса"
	msgInvalidDate       = "некорректный параметр date, ожидается YYYY-MM-DD"
)

// WindowResponse одно окно доступности
type WindowResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailableWindowsResponse HTTP response model
type AvailableWindowsResponse struct {
	ResourceID int64            `json:"resourceId"`
	Date       string           `json:"date"`
	IsOpen     bool             `json:"isOpen"`
	Windows    []WindowResponse `json:"windows"`
}

type Handler struct {
	useCase GetAvailableWindowsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableWindowsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{resourceId}/available-windows?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resourceID, err := strconv.ParseInt(mux.Vars(r)["resourceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /resources/{id}/available-windows - Invalid resource ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}

	date, err := time.Parse(domain.DateFormat, r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Warn("GET /resources/{id}/available-windows - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getWindows.Request{
		ResourceID: resourceID,
		Date:       date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getWindows.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidResourceID)
		default:
			h.logger.Error("GET /resources/{id}/available-windows - Failed: resource_id=%d, error=%v",
				resourceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	windows := make([]WindowResponse, 0, len(result.Windows))
	for _, win := range result.Windows {
		windows = append(windows, WindowResponse{Start: win.Start.String(), End: win.End.String()})
	}

	handlers.RespondJSON(w, http.StatusOK, &AvailableWindowsResponse{
		ResourceID: result.ResourceID,
		Date:       result.Date.Format(domain.DateFormat),
		IsOpen:     result.IsOpen,
		Windows:    windows,
	})
}
