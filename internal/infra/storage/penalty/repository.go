package penalty

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/pkg/dbmetrics"
	"github.com/kitchrent/KRM-SettlementService/pkg/psqlbuilder"
)

var penaltyColumns = []string{
	"id",
	"booking_id",
	"detected_at",
	"grace_ends_at",
	"candidate_amount_cents",
	"final_amount_cents",
	"status",
	"resolution",
	"waive_reason",
	"charge_ref",
	"created_at",
	"updated_at",
}

// terminalStatuses конечные статусы: запись с таким статусом не блокирует
// повторную детекцию той же просрочки
var terminalStatuses = []string{
	string(domain.PenaltyCharged),
	string(domain.PenaltyWaived),
	string(domain.PenaltyResolved),
}

// Repository репозиторий записей о просрочках хранения
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория просрочек
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись о просрочке
func (r *Repository) Create(ctx context.Context, p *domain.OverstayPenalty) (*domain.OverstayPenalty, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("overstay_penalties").
		Columns(
			"booking_id",
			"detected_at",
			"grace_ends_at",
			"candidate_amount_cents",
			"status",
		).
		Values(
			p.BookingID,
			p.DetectedAt,
			p.GraceEndsAt,
			p.CandidateAmountCents,
			p.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

// GetByID получает запись о просрочке по ID
// В транзакции блокирует строку FOR UPDATE: решения менеджера и списание
// по одной записи сериализуются
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.OverstayPenalty, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(penaltyColumns...).
		From("overstay_penalties").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	p, err := r.scanPenalty(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPenaltyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan penalty: %v", ErrScanRow, err)
	}

	return p, nil
}

// GetActiveByBookingID возвращает нетерминальную запись по бронированию, если есть
// Детектор проверяет её перед созданием новой записи — просрочка не дублируется
func (r *Repository) GetActiveByBookingID(ctx context.Context, bookingID int64) (*domain.OverstayPenalty, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(penaltyColumns...).
		From("overstay_penalties").
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.NotEq{"status": terminalStatuses}).
		OrderBy("id DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	p, err := r.scanPenalty(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPenaltyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByBookingID - scan penalty: %v", ErrScanRow, err)
	}

	return p, nil
}

// ListByStatus возвращает записи в указанном статусе (старые первыми)
func (r *Repository) ListByStatus(ctx context.Context, status domain.PenaltyStatus) ([]*domain.OverstayPenalty, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(penaltyColumns...).
		From("overstay_penalties").
		Where(squirrel.Eq{"status": status}).
		OrderBy("grace_ends_at ASC, id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByStatus - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByStatus - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	penalties := make([]*domain.OverstayPenalty, 0)
	for rows.Next() {
		p, err := r.scanPenalty(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByStatus - scan row: %v", ErrScanRow, err)
		}
		penalties = append(penalties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByStatus - rows error: %v", ErrScanRow, err)
	}

	return penalties, nil
}

// Promote переводит запись из grace_period в pending_review
// с актуализированной суммой штрафа
func (r *Repository) Promote(ctx context.Context, id int64, candidateAmountCents int64) error {
	return r.update(ctx, "Promote", psqlbuilder.Update("overstay_penalties").
		Set("status", domain.PenaltyPendingReview).
		Set("candidate_amount_cents", candidateAmountCents).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.PenaltyGracePeriod}))
}

// Approve фиксирует одобрение штрафа менеджером
// finalAmountCents nil означает согласие с рассчитанной суммой
func (r *Repository) Approve(ctx context.Context, id int64, finalAmountCents *int64) error {
	return r.update(ctx, "Approve", psqlbuilder.Update("overstay_penalties").
		Set("status", domain.PenaltyApproved).
		Set("final_amount_cents", finalAmountCents).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// Waive фиксирует прощение штрафа с обязательной причиной
func (r *Repository) Waive(ctx context.Context, id int64, reason string) error {
	return r.update(ctx, "Waive", psqlbuilder.Update("overstay_penalties").
		Set("status", domain.PenaltyWaived).
		Set("waive_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// MarkCharged фиксирует успешное списание штрафа
func (r *Repository) MarkCharged(ctx context.Context, id int64, chargeRef string) error {
	return r.update(ctx, "MarkCharged", psqlbuilder.Update("overstay_penalties").
		Set("status", domain.PenaltyCharged).
		Set("charge_ref", chargeRef).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// MarkChargeFailed фиксирует неудачное списание; запись остаётся retryable
func (r *Repository) MarkChargeFailed(ctx context.Context, id int64) error {
	return r.update(ctx, "MarkChargeFailed", psqlbuilder.Update("overstay_penalties").
		Set("status", domain.PenaltyChargeFailed).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// Resolve закрывает запись без финансовых действий
func (r *Repository) Resolve(ctx context.Context, id int64, resolution domain.ResolutionType) error {
	return r.update(ctx, "Resolve", psqlbuilder.Update("overstay_penalties").
		Set("status", domain.PenaltyResolved).
		Set("resolution", resolution).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// AppendHistory добавляет запись в append-only историю переходов
func (r *Repository) AppendHistory(ctx context.Context, entry *domain.PenaltyHistoryEntry) (*domain.PenaltyHistoryEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("overstay_penalty_history").
		Columns(
			"penalty_id",
			"from_status",
			"to_status",
			"manager_id",
			"notes",
		).
		Values(
			entry.PenaltyID,
			entry.FromStatus,
			entry.ToStatus,
			entry.ManagerID,
			entry.Notes,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: AppendHistory - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: AppendHistory - execute insert: %v", ErrExecQuery, err)
	}

	entry.CreatedAt = createdAt.Time

	return entry, nil
}

// ListHistory возвращает историю переходов записи в порядке добавления
func (r *Repository) ListHistory(ctx context.Context, penaltyID int64) ([]*domain.PenaltyHistoryEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"penalty_id",
		"from_status",
		"to_status",
		"manager_id",
		"notes",
		"created_at",
	).
		From("overstay_penalty_history").
		Where(squirrel.Eq{"penalty_id": penaltyID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListHistory - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.PenaltyHistoryEntry, 0)
	for rows.Next() {
		var entry domain.PenaltyHistoryEntry
		var createdAt sql.NullTime

		err := rows.Scan(
			&entry.ID,
			&entry.PenaltyID,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.ManagerID,
			&entry.Notes,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListHistory - scan row: %v", ErrScanRow, err)
		}

		entry.CreatedAt = createdAt.Time
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListHistory - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
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
		return ErrPenaltyNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPenalty сканирует одну строку результата в запись о просрочке
func (r *Repository) scanPenalty(row rowScanner) (*domain.OverstayPenalty, error) {
	var p domain.OverstayPenalty
	var createdAt, updatedAt sql.NullTime
	var resolution, waiveReason, chargeRef sql.NullString
	var finalAmount sql.NullInt64

	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.DetectedAt,
		&p.GraceEndsAt,
		&p.CandidateAmountCents,
		&finalAmount,
		&p.Status,
		&resolution,
		&waiveReason,
		&chargeRef,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if finalAmount.Valid {
		p.FinalAmountCents = &finalAmount.Int64
	}
	if resolution.Valid {
		res := domain.ResolutionType(resolution.String)
		p.Resolution = &res
	}
	if waiveReason.Valid {
		p.WaiveReason = &waiveReason.String
	}
	if chargeRef.Valid {
		p.ChargeRef = &chargeRef.String
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}
