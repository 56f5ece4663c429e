package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/pkg/dbmetrics"
	"github.com/kitchrent/KRM-SettlementService/pkg/psqlbuilder"
	"github.com/kitchrent/KRM-SettlementService/pkg/types"
)

var bookingColumns = []string{
	"id",
	"resource_id",
	"location_id",
	"chef_id",
	"booking_type",
	"booking_date",
	"end_date",
	"start_time",
	"end_time",
	"status",
	"payment_status",
	"payment_intent_ref",
	"total_price_cents",
	"contents_present",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её —
// вставка после проверки конфликтов обязана идти в той же транзакции,
// что и чтение занятых интервалов с FOR UPDATE
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"resource_id",
			"location_id",
			"chef_id",
			"booking_type",
			"booking_date",
			"end_date",
			"start_time",
			"end_time",
			"status",
			"payment_status",
			"payment_intent_ref",
			"total_price_cents",
			"contents_present",
		).
		Values(
			booking.ResourceID,
			booking.LocationID,
			booking.ChefID,
			booking.Type,
			booking.BookingDate,
			booking.EndDate,
			booking.StartTime,
			booking.EndTime,
			booking.Status,
			booking.PaymentStatus,
			booking.PaymentIntentRef,
			booking.TotalPriceCents,
			booking.ContentsPresent,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByResourceWithFilter получает бронирования ресурса с фильтрацией по дате и статусу
// Для storage бронирований дата считается занятой, если попадает в [booking_date, end_date]
//
// Если вызов идёт в транзакции и указана дата, строки блокируются FOR UPDATE —
// так два конкурентных создания бронирования на один ресурс сериализуются
func (r *Repository) GetByResourceWithFilter(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"resource_id": filter.ResourceID})

	if filter.Date != nil {
		date := *filter.Date
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.Eq{"booking_date": date},
			squirrel.And{
				squirrel.Eq{"booking_type": domain.BookingTypeStorage},
				squirrel.LtOrEq{"booking_date": date},
				squirrel.GtOrEq{"end_date": date},
			},
		})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		activeStatusStrings := make([]string, len(domain.ActiveStatuses))
		for i, s := range domain.ActiveStatuses {
			activeStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatusStrings})
	}

	selectBuilder = selectBuilder.OrderBy("booking_date ASC, start_time ASC NULLS FIRST")

	// Блокировка строк для валидации конфликтов внутри транзакции
	if dbmetrics.IsInTransaction(ctx) && filter.Date != nil {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByResourceWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByResourceWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByChefID получает список бронирований шефа
// Опционально фильтрует по статусу
func (r *Repository) GetByChefID(ctx context.Context, chefID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"chef_id": chefID}).
		OrderBy("booking_date DESC, start_time DESC NULLS LAST")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByChefID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByChefID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetOverdueStorage получает storage бронирования, у которых дата окончания прошла,
// а вещи всё ещё помечены как находящиеся в хранении
// Используется детектором просрочек
func (r *Repository) GetOverdueStorage(ctx context.Context, asOf time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"booking_type": domain.BookingTypeStorage}).
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.Eq{"contents_present": true}).
		Where(squirrel.Lt{"end_date": asOf}).
		OrderBy("end_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOverdueStorage - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverdueStorage - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "UpdateStatus", query, args)
}

// SetPaymentStatus обновляет платёжный статус бронирования
// Опционально записывает ссылку на payment intent процессора
func (r *Repository) SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, paymentIntentRef *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("payment_status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if paymentIntentRef != nil {
		updateBuilder = updateBuilder.Set("payment_intent_ref", *paymentIntentRef)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetPaymentStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "SetPaymentStatus", query, args)
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "Cancel", query, args)
}

// ExtendEndDate продлевает дату окончания storage бронирования
// Вызывается при применении одобренного продления
func (r *Repository) ExtendEndDate(ctx context.Context, id int64, newEndDate time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("end_date", newEndDate).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"booking_type": domain.BookingTypeStorage}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ExtendEndDate - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "ExtendEndDate", query, args)
}

// execExpectingRow выполняет запрос и требует хотя бы одну затронутую строку
func (r *Repository) execExpectingRow(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку результата в бронирование
func (r *Repository) scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime
	var startTime, endTime sql.NullString

	err := row.Scan(
		&booking.ID,
		&booking.ResourceID,
		&booking.LocationID,
		&booking.ChefID,
		&booking.Type,
		&booking.BookingDate,
		&booking.EndDate,
		&startTime,
		&endTime,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.PaymentIntentRef,
		&booking.TotalPriceCents,
		&booking.ContentsPresent,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	// Время хранится в postgres time, приводим к "HH:MM"
	if st, err := parseNullableTime(startTime); err != nil {
		return nil, err
	} else {
		booking.StartTime = st
	}
	if et, err := parseNullableTime(endTime); err != nil {
		return nil, err
	} else {
		booking.EndTime = et
	}

	return &booking, nil
}

func parseNullableTime(v sql.NullString) (*types.TimeString, error) {
	if !v.Valid {
		return nil, nil
	}
	s := v.String
	if len(s) >= 5 {
		s = s[:5]
	}
	ts, err := types.NewTimeStringFromString(s)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
