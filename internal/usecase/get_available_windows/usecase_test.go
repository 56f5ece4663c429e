package get_available_windows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	scheduleRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/schedule"
	"github.com/kitchrent/KRM-SettlementService/pkg/ptr"
	"github.com/kitchrent/KRM-SettlementService/pkg/types"
)

type mockScheduleRepo struct {
	getRulesFn    func(ctx context.Context, resourceID int64) ([]*domain.ScheduleRule, error)
	getOverrideFn func(ctx context.Context, resourceID int64, date time.Time) (*domain.ScheduleOverride, error)
}

func (m *mockScheduleRepo) GetRules(ctx context.Context, resourceID int64) ([]*domain.ScheduleRule, error) {
	return m.getRulesFn(ctx, resourceID)
}

func (m *mockScheduleRepo) GetOverride(ctx context.Context, resourceID int64, date time.Time) (*domain.ScheduleOverride, error) {
	return m.getOverrideFn(ctx, resourceID, date)
}

type mockBookingRepo struct {
	getByResourceWithFilterFn func(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error)
}

func (m *mockBookingRepo) GetByResourceWithFilter(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
	return m.getByResourceWithFilterFn(ctx, filter)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func mustTS(t *testing.T, s string) types.TimeString {
	t.Helper()
	v, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return v
}

// 2026-03-09 это понедельник
var monday = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

func mondayRule(t *testing.T, open, close string) *domain.ScheduleRule {
	t.Helper()
	return &domain.ScheduleRule{
		ResourceID: 1,
		Weekday:    time.Monday,
		IsOpen:     true,
		OpenTime:   ptr.Ptr(mustTS(t, open)),
		CloseTime:  ptr.Ptr(mustTS(t, close)),
	}
}

func noOverride(ctx context.Context, resourceID int64, date time.Time) (*domain.ScheduleOverride, error) {
	return nil, scheduleRepo.ErrOverrideNotFound
}

func TestExecute_WeeklyRuleMinusBookings(t *testing.T) {
	schedule := &mockScheduleRepo{
		getRulesFn: func(_ context.Context, _ int64) ([]*domain.ScheduleRule, error) {
			return []*domain.ScheduleRule{mondayRule(t, "09:00", "18:00")}, nil
		},
		getOverrideFn: noOverride,
	}
	bookings := &mockBookingRepo{
		getByResourceWithFilterFn: func(_ context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
			assert.Equal(t, int64(1), filter.ResourceID)
			require.NotNil(t, filter.Date)
			return []*domain.Booking{
				{
					Status:    domain.StatusConfirmed,
					StartTime: ptr.Ptr(mustTS(t, "12:00")),
					EndTime:   ptr.Ptr(mustTS(t, "14:00")),
				},
			}, nil
		},
	}

	uc := NewUseCase(schedule, bookings, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: monday})
	require.NoError(t, err)

	assert.True(t, resp.IsOpen)
	require.Len(t, resp.Windows, 2)
	assert.Equal(t, "09:00", resp.Windows[0].Start.String())
	assert.Equal(t, "12:00", resp.Windows[0].End.String())
	assert.Equal(t, "14:00", resp.Windows[1].Start.String())
	assert.Equal(t, "18:00", resp.Windows[1].End.String())
}

func TestExecute_OverrideWinsOverWeeklyRule(t *testing.T) {
	schedule := &mockScheduleRepo{
		getRulesFn: func(_ context.Context, _ int64) ([]*domain.ScheduleRule, error) {
			return []*domain.ScheduleRule{mondayRule(t, "09:00", "18:00")}, nil
		},
		getOverrideFn: func(_ context.Context, _ int64, _ time.Time) (*domain.ScheduleOverride, error) {
			return &domain.ScheduleOverride{
				ResourceID: 1,
				Date:       monday,
				OpenTime:   ptr.Ptr(mustTS(t, "10:00")),
				CloseTime:  ptr.Ptr(mustTS(t, "15:00")),
			}, nil
		},
	}
	bookings := &mockBookingRepo{
		getByResourceWithFilterFn: func(_ context.Context, _ domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
			return nil, nil
		},
	}

	uc := NewUseCase(schedule, bookings, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: monday})
	require.NoError(t, err)

	require.Len(t, resp.Windows, 1)
	assert.Equal(t, "10:00", resp.Windows[0].Start.String())
	assert.Equal(t, "15:00", resp.Windows[0].End.String())
}

func TestExecute_ClosingOverrideClosesOpenDay(t *testing.T) {
	bookingsQueried := false
	schedule := &mockScheduleRepo{
		getRulesFn: func(_ context.Context, _ int64) ([]*domain.ScheduleRule, error) {
			return []*domain.ScheduleRule{mondayRule(t, "09:00", "18:00")}, nil
		},
		getOverrideFn: func(_ context.Context, _ int64, _ time.Time) (*domain.ScheduleOverride, error) {
			return &domain.ScheduleOverride{ResourceID: 1, Date: monday, IsClosed: true}, nil
		},
	}
	bookings := &mockBookingRepo{
		getByResourceWithFilterFn: func(_ context.Context, _ domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
			bookingsQueried = true
			return nil, nil
		},
	}

	uc := NewUseCase(schedule, bookings, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: monday})
	require.NoError(t, err)

	assert.False(t, resp.IsOpen)
	assert.Empty(t, resp.Windows)
	assert.False(t, bookingsQueried)
}

func TestExecute_NoRuleForWeekdayMeansClosed(t *testing.T) {
	schedule := &mockScheduleRepo{
		getRulesFn: func(_ context.Context, _ int64) ([]*domain.ScheduleRule, error) {
			return nil, nil
		},
		getOverrideFn: noOverride,
	}

	uc := NewUseCase(schedule, &mockBookingRepo{}, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: monday})
	require.NoError(t, err)
	assert.False(t, resp.IsOpen)
}

func TestExecute_StorageBookingBlocksWholeDay(t *testing.T) {
	schedule := &mockScheduleRepo{
		getRulesFn: func(_ context.Context, _ int64) ([]*domain.ScheduleRule, error) {
			return []*domain.ScheduleRule{mondayRule(t, "09:00", "18:00")}, nil
		},
		getOverrideFn: noOverride,
	}
	bookings := &mockBookingRepo{
		getByResourceWithFilterFn: func(_ context.Context, _ domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
			// Storage бронирование без интервала времени
			return []*domain.Booking{{Type: domain.BookingTypeStorage, Status: domain.StatusConfirmed}}, nil
		},
	}

	uc := NewUseCase(schedule, bookings, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: monday})
	require.NoError(t, err)

	assert.True(t, resp.IsOpen)
	assert.Empty(t, resp.Windows)
}

func TestExecute_CancelledBookingsAreIgnored(t *testing.T) {
	schedule := &mockScheduleRepo{
		getRulesFn: func(_ context.Context, _ int64) ([]*domain.ScheduleRule, error) {
			return []*domain.ScheduleRule{mondayRule(t, "09:00", "18:00")}, nil
		},
		getOverrideFn: noOverride,
	}
	bookings := &mockBookingRepo{
		getByResourceWithFilterFn: func(_ context.Context, _ domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
			return []*domain.Booking{
				{
					Status:    domain.StatusCancelled,
					StartTime: ptr.Ptr(mustTS(t, "12:00")),
					EndTime:   ptr.Ptr(mustTS(t, "14:00")),
				},
			}, nil
		},
	}

	uc := NewUseCase(schedule, bookings, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: monday})
	require.NoError(t, err)

	require.Len(t, resp.Windows, 1)
	assert.Equal(t, "09:00", resp.Windows[0].Start.String())
	assert.Equal(t, "18:00", resp.Windows[0].End.String())
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := NewUseCase(&mockScheduleRepo{}, &mockBookingRepo{}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{ResourceID: 0, Date: monday})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = uc.Execute(context.Background(), &Request{ResourceID: 1})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
