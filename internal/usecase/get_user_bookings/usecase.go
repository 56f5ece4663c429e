package get_user_bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/pkg/types"
)

var (
	// ErrForbidden возвращается при попытке посмотреть чужой список
	ErrForbidden = errors.New("get_user_bookings: list is not visible to this user")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_user_bookings: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_user_bookings: internal error")
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByChefID(ctx context.Context, chefID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Request модель запроса списка бронирований пользователя
type Request struct {
	UserID  int64                 // Чей список
	ActorID int64                 // Кто запрашивает
	Status  *domain.BookingStatus // Фильтр по статусу (опционально)
}

// BookingItem одно бронирование в списке
type BookingItem struct {
	ID              int64             // ID бронирования
	ResourceID      int64             // ID ресурса
	Type            string            // Тип бронирования
	Date            time.Time         // Дата
	EndDate         *time.Time        // Дата окончания (storage)
	StartTime       *types.TimeString // Время начала
	EndTime         *types.TimeString // Время окончания
	Status          string            // Статус
	PaymentStatus   string            // Платёжный статус
	TotalPriceCents int64             // Итоговая сумма
}

// Response модель ответа со списком бронирований
type Response struct {
	UserID   int64         // Владелец списка
	Bookings []BookingItem // Бронирования, новые первыми
}

// UseCase use case списка бронирований шефа
// Свой список видит только сам шеф
type UseCase struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, logger Logger) *UseCase {
	return &UseCase{bookingRepo: bookingRepo, logger: logger}
}

// Execute возвращает список бронирований пользователя
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if req.ActorID != req.UserID {
		uc.logger.Warn("GetUserBookings: actor=%d requested list of user=%d", req.ActorID, req.UserID)
		return nil, ErrForbidden
	}

	bookings, err := uc.bookingRepo.GetByChefID(ctx, req.UserID, req.Status)
	if err != nil {
		uc.logger.Error("GetUserBookings: failed to get bookings for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	items := make([]BookingItem, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, BookingItem{
			ID:              b.ID,
			ResourceID:      b.ResourceID,
			Type:            string(b.Type),
			Date:            b.BookingDate,
			EndDate:         b.EndDate,
			StartTime:       b.StartTime,
			EndTime:         b.EndTime,
			Status:          string(b.Status),
			PaymentStatus:   string(b.PaymentStatus),
			TotalPriceCents: b.TotalPriceCents,
		})
	}

	return &Response{UserID: req.UserID, Bookings: items}, nil
}
