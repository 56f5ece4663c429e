package transaction

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/pkg/dbmetrics"
	"github.com/kitchrent/KRM-SettlementService/pkg/psqlbuilder"
)

var transactionColumns = []string{
	"id",
	"booking_id",
	"booking_type",
	"amount_cents",
	"base_amount_cents",
	"service_fee_cents",
	"manager_revenue_cents",
	"processor_fee_cents",
	"refunded_cents",
	"status",
	"payment_ref",
	"created_at",
	"updated_at",
}

// Repository репозиторий платёжных транзакций (settlement ledger)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория транзакций
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись о захваченном платеже
func (r *Repository) Create(ctx context.Context, tx *domain.PaymentTransaction) (*domain.PaymentTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payment_transactions").
		Columns(
			"booking_id",
			"booking_type",
			"amount_cents",
			"base_amount_cents",
			"service_fee_cents",
			"manager_revenue_cents",
			"processor_fee_cents",
			"refunded_cents",
			"status",
			"payment_ref",
		).
		Values(
			tx.BookingID,
			tx.BookingType,
			tx.AmountCents,
			tx.BaseAmountCents,
			tx.ServiceFeeCents,
			tx.ManagerRevenueCents,
			tx.ProcessorFeeCents,
			tx.RefundedCents,
			tx.Status,
			tx.PaymentRef,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&tx.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	tx.CreatedAt = createdAt.Time
	tx.UpdatedAt = updatedAt.Time

	return tx, nil
}

// GetByID получает транзакцию по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.PaymentTransaction, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает транзакцию по ID с блокировкой строки
// Обязателен для read-compute-write цикла возврата: два конкурентных возврата
// по одной транзакции не должны пройти проверку лимита по устаревшему refunded_cents
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.PaymentTransaction, error) {
	return r.getByID(ctx, id, true)
}

func (r *Repository) getByID(ctx context.Context, id int64, forUpdate bool) (*domain.PaymentTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(transactionColumns...).
		From("payment_transactions").
		Where(squirrel.Eq{"id": id})

	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	tx, err := r.scanTransaction(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan transaction: %v", ErrScanRow, err)
	}

	return tx, nil
}

// GetByBookingID получает транзакции бронирования (новые первыми)
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) ([]*domain.PaymentTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(transactionColumns...).
		From("payment_transactions").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	transactions := make([]*domain.PaymentTransaction, 0)
	for rows.Next() {
		tx, err := r.scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByBookingID - scan row: %v", ErrScanRow, err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - rows error: %v", ErrScanRow, err)
	}

	return transactions, nil
}

// ApplyRefund применяет возврат одной атомарной операцией update-and-return:
// записывает новый накопленный refunded_cents и производный статус,
// возвращает обновлённую строку без отдельного повторного чтения
func (r *Repository) ApplyRefund(ctx context.Context, id int64, newRefundedCents int64, newStatus domain.TransactionStatus) (*domain.PaymentTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payment_transactions").
		Set("refunded_cents", newRefundedCents).
		Set("status", newStatus).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(transactionColumns)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ApplyRefund - build update query: %v", ErrBuildQuery, err)
	}

	tx, err := r.scanTransaction(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: ApplyRefund - scan transaction: %v", ErrScanRow, err)
	}

	return tx, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTransaction сканирует одну строку результата в транзакцию
func (r *Repository) scanTransaction(row rowScanner) (*domain.PaymentTransaction, error) {
	var tx domain.PaymentTransaction
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&tx.ID,
		&tx.BookingID,
		&tx.BookingType,
		&tx.AmountCents,
		&tx.BaseAmountCents,
		&tx.ServiceFeeCents,
		&tx.ManagerRevenueCents,
		&tx.ProcessorFeeCents,
		&tx.RefundedCents,
		&tx.Status,
		&tx.PaymentRef,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.CreatedAt = createdAt.Time
	tx.UpdatedAt = updatedAt.Time

	return &tx, nil
}

func joinColumns(columns []string) string {
	result := ""
	for i, c := range columns {
		if i > 0 {
			result += ", "
		}
		result += c
	}
	return result
}
