package policy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	"github.com/kitchrent/KRM-SettlementService/pkg/dbmetrics"
	"github.com/kitchrent/KRM-SettlementService/pkg/psqlbuilder"
)

// Repository репозиторий политик локаций
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByLocationID получает политику локации
// Если политика не настроена, возвращает ErrPolicyNotFound —
// вызывающая сторона подставляет дефолты
func (r *Repository) GetByLocationID(ctx context.Context, locationID int64) (*domain.LocationPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"location_id",
		"cancellation_policy_hours",
		"min_booking_notice_hours",
		"daily_booking_limit",
		"overstay_grace_days",
		"overstay_penalty_rate",
		"overstay_max_penalty_days",
		"created_at",
		"updated_at",
	).
		From("location_policies").
		Where(squirrel.Eq{"location_id": locationID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByLocationID - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.LocationPolicy
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.LocationID,
		&p.CancellationPolicyHours,
		&p.MinBookingNoticeHours,
		&p.DailyBookingLimit,
		&p.OverstayGraceDays,
		&p.OverstayPenaltyRate,
		&p.OverstayMaxPenaltyDays,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByLocationID - scan policy: %v", ErrScanRow, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}
