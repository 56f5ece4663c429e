package extension

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/pkg/dbmetrics"
	"github.com/kitchrent/KRM-SettlementService/pkg/psqlbuilder"
)

var extensionColumns = []string{
	"id",
	"booking_id",
	"chef_id",
	"extension_days",
	"new_end_date",
	"base_amount_cents",
	"service_fee_cents",
	"total_amount_cents",
	"manager_revenue_cents",
	"payment_intent_ref",
	"transaction_id",
	"status",
	"created_at",
	"updated_at",
}

// Repository репозиторий заявок на продление хранения
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория продлений
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает заявку на продление
func (r *Repository) Create(ctx context.Context, e *domain.StorageExtension) (*domain.StorageExtension, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("storage_extensions").
		Columns(
			"booking_id",
			"chef_id",
			"extension_days",
			"new_end_date",
			"base_amount_cents",
			"service_fee_cents",
			"total_amount_cents",
			"manager_revenue_cents",
			"payment_intent_ref",
			"status",
		).
		Values(
			e.BookingID,
			e.ChefID,
			e.ExtensionDays,
			e.NewEndDate,
			e.BaseAmountCents,
			e.ServiceFeeCents,
			e.TotalAmountCents,
			e.ManagerRevenueCents,
			e.PaymentIntentRef,
			e.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&e.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time

	return e, nil
}

// GetByID получает заявку по ID
// В транзакции блокирует строку FOR UPDATE: подтверждение оплаты и решение
// менеджера по одной заявке сериализуются
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.StorageExtension, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(extensionColumns...).
		From("storage_extensions").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	e, err := r.scanExtension(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrExtensionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan extension: %v", ErrScanRow, err)
	}

	return e, nil
}

// GetPendingByBookingID возвращает незавершённую заявку бронирования, если есть
// Одновременно допускается только одна незавершённая заявка на бронирование
func (r *Repository) GetPendingByBookingID(ctx context.Context, bookingID int64) (*domain.StorageExtension, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(extensionColumns...).
		From("storage_extensions").
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.Eq{"status": []string{
			string(domain.ExtensionPending),
			string(domain.ExtensionPaid),
			string(domain.ExtensionApproved),
		}}).
		OrderBy("id DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetPendingByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	e, err := r.scanExtension(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrExtensionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetPendingByBookingID - scan extension: %v", ErrScanRow, err)
	}

	return e, nil
}

// MarkPaid фиксирует подтверждение оплаты и связывает заявку с транзакцией
func (r *Repository) MarkPaid(ctx context.Context, id int64, transactionID int64) error {
	return r.update(ctx, "MarkPaid", psqlbuilder.Update("storage_extensions").
		Set("status", domain.ExtensionPaid).
		Set("transaction_id", transactionID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.ExtensionPending}))
}

// SetStatus переводит заявку в указанный статус
func (r *Repository) SetStatus(ctx context.Context, id int64, status domain.ExtensionStatus) error {
	return r.update(ctx, "SetStatus", psqlbuilder.Update("storage_extensions").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

func (r *Repository) update(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrExtensionNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanExtension сканирует одну строку результата в заявку
func (r *Repository) scanExtension(row rowScanner) (*domain.StorageExtension, error) {
	var e domain.StorageExtension
	var createdAt, updatedAt sql.NullTime
	var paymentIntentRef sql.NullString
	var transactionID sql.NullInt64

	err := row.Scan(
		&e.ID,
		&e.BookingID,
		&e.ChefID,
		&e.ExtensionDays,
		&e.NewEndDate,
		&e.BaseAmountCents,
		&e.ServiceFeeCents,
		&e.TotalAmountCents,
		&e.ManagerRevenueCents,
		&paymentIntentRef,
		&transactionID,
		&e.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paymentIntentRef.Valid {
		e.PaymentIntentRef = &paymentIntentRef.String
	}
	if transactionID.Valid {
		e.TransactionID = &transactionID.Int64
	}

	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time

	return &e, nil
}
