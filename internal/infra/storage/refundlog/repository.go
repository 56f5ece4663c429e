package refundlog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/pkg/dbmetrics"
	"github.com/kitchrent/KRM-SettlementService/pkg/psqlbuilder"
)

// Repository append-only журнал возвратов
// Записи никогда не обновляются и не удаляются — это аудиторский след
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр журнала возвратов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет запись о выполненном возврате
func (r *Repository) Append(ctx context.Context, entry *domain.RefundLogEntry) (*domain.RefundLogEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("refund_log").
		Columns(
			"transaction_id",
			"refund_ref",
			"transfer_reversal_ref",
			"amount_cents",
			"reason",
			"actor_id",
		).
		Values(
			entry.TransactionID,
			entry.RefundRef,
			entry.TransferReversalRef,
			entry.AmountCents,
			entry.Reason,
			entry.ActorID,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}

	entry.CreatedAt = createdAt.Time

	return entry, nil
}

// ListByTransaction возвращает журнал возвратов транзакции в порядке добавления
func (r *Repository) ListByTransaction(ctx context.Context, transactionID int64) ([]*domain.RefundLogEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"transaction_id",
		"refund_ref",
		"transfer_reversal_ref",
		"amount_cents",
		"reason",
		"actor_id",
		"created_at",
	).
		From("refund_log").
		Where(squirrel.Eq{"transaction_id": transactionID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByTransaction - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByTransaction - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.RefundLogEntry, 0)
	for rows.Next() {
		var entry domain.RefundLogEntry
		var createdAt sql.NullTime

		err := rows.Scan(
			&entry.ID,
			&entry.TransactionID,
			&entry.RefundRef,
			&entry.TransferReversalRef,
			&entry.AmountCents,
			&entry.Reason,
			&entry.ActorID,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByTransaction - scan row: %v", ErrScanRow, err)
		}

		entry.CreatedAt = createdAt.Time
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByTransaction - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}
