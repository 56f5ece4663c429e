package schedule

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

// Repository репозиторий расписаний доступности ресурсов
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetRules получает еженедельное расписание ресурса
func (r *Repository) GetRules(ctx context.Context, resourceID int64) ([]*domain.ScheduleRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"resource_id",
		"weekday",
		"is_open",
		"open_time",
		"close_time",
	).
		From("resource_schedules").
		Where(squirrel.Eq{"resource_id": resourceID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRules - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetRules - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]*domain.ScheduleRule, 0)

	for rows.Next() {
		var rule domain.ScheduleRule
		var weekday int
		var openTime, closeTime sql.NullString

		err = rows.Scan(
			&rule.ID,
			&rule.ResourceID,
			&weekday,
			&rule.IsOpen,
			&openTime,
			&closeTime,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetRules - scan row: %v", ErrScanRow, err)
		}

		rule.Weekday = time.Weekday(weekday)
		if rule.OpenTime, err = parseNullableTime(openTime); err != nil {
			return nil, fmt.Errorf("%w: GetRules - parse open_time: %v", ErrScanRow, err)
		}
		if rule.CloseTime, err = parseNullableTime(closeTime); err != nil {
			return nil, fmt.Errorf("%w: GetRules - parse close_time: %v", ErrScanRow, err)
		}

		rules = append(rules, &rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetRules - rows error: %v", ErrScanRow, err)
	}

	return rules, nil
}

// GetOverride получает переопределение расписания на конкретную дату
func (r *Repository) GetOverride(ctx context.Context, resourceID int64, date time.Time) (*domain.ScheduleOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"resource_id",
		"date",
		"is_closed",
		"open_time",
		"close_time",
	).
		From("resource_schedule_overrides").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Eq{"date": date}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOverride - build select query: %v", ErrBuildQuery, err)
	}

	var override domain.ScheduleOverride
	var openTime, closeTime sql.NullString

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&override.ID,
		&override.ResourceID,
		&override.Date,
		&override.IsClosed,
		&openTime,
		&closeTime,
	)
	if err == sql.ErrNoRows {
		return nil, ErrOverrideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverride - scan override: %v", ErrScanRow, err)
	}

	if override.OpenTime, err = parseNullableTime(openTime); err != nil {
		return nil, fmt.Errorf("%w: GetOverride - parse open_time: %v", ErrScanRow, err)
	}
	if override.CloseTime, err = parseNullableTime(closeTime); err != nil {
		return nil, fmt.Errorf("%w: GetOverride - parse close_time: %v", ErrScanRow, err)
	}

	return &override, nil
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
