package get_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	bookingRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/booking"
	"github.com/kitchrent/KRM-SettlementService/pkg/types"
)

// Request модель запроса бронирования
type Request struct {
	BookingID int64 // ID бронирования
	ActorID   int64 // Кто запрашивает
}

// Response модель ответа с бронированием
type Response struct {
	ID         int64             // ID бронирования
	ResourceID int64             // ID ресурса
	LocationID int64             // ID локации
	ChefID     int64             // ID шефа
	Type       string            // Тип бронирования
	Date       time.Time         // Дата
	EndDate    *time.Time        // Дата окончания (storage)
	StartTime  *types.TimeString // Время начала
	EndTime    *types.TimeString // Время окончания

	Status          string // Статус
	PaymentStatus   string // Платёжный статус
	TotalPriceCents int64  // Итоговая сумма
	ContentsPresent bool   // Вещи в хранении (storage)

	CancellationReason *string    // Причина отмены
	CancelledAt        *time.Time // Время отмены
	CreatedAt          time.Time  // Время создания
	UpdatedAt          time.Time  // Время обновления
}

// UseCase use case просмотра бронирования
// Бронирование видят его владелец и менеджер локации
type UseCase struct {
	bookingRepo   BookingRepository
	listingClient ListingServiceClient
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, listingClient ListingServiceClient, logger Logger) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		listingClient: listingClient,
		logger:        logger,
	}
}

// Execute возвращает бронирование с проверкой видимости
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.ActorID <= 0 {
		return nil, fmt.Errorf("%w: actorID must be positive", ErrInvalidInput)
	}

	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("GetBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("GetBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if booking.ChefID != req.ActorID {
		location, err := uc.listingClient.GetLocation(ctx, booking.LocationID)
		if err != nil {
			uc.logger.Error("GetBooking: failed to get location id=%d: %v", booking.LocationID, err)
			return nil, fmt.Errorf("%w: failed to get location: %v", ErrInternal, err)
		}
		if location.ManagerID != req.ActorID {
			uc.logger.Warn("GetBooking: booking id=%d is not visible to actor=%d", booking.ID, req.ActorID)
			return nil, ErrForbidden
		}
	}

	return toResponse(booking), nil
}

func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:                 b.ID,
		ResourceID:         b.ResourceID,
		LocationID:         b.LocationID,
		ChefID:             b.ChefID,
		Type:               string(b.Type),
		Date:               b.BookingDate,
		EndDate:            b.EndDate,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		TotalPriceCents:    b.TotalPriceCents,
		ContentsPresent:    b.ContentsPresent,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}
