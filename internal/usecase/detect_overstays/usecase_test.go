package detect_overstays

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	penaltyRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/penalty"
	policyRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/policy"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
)

type mockBookingRepo struct {
	getOverdueStorageFn func(ctx context.Context, asOf time.Time) ([]*domain.Booking, error)
	getByIDFn           func(ctx context.Context, id int64) (*domain.Booking, error)
}

func (m *mockBookingRepo) GetOverdueStorage(ctx context.Context, asOf time.Time) ([]*domain.Booking, error) {
	return m.getOverdueStorageFn(ctx, asOf)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.getByIDFn(ctx, id)
}

type mockPenaltyRepo struct {
	getActiveByBookingIDFn func(ctx context.Context, bookingID int64) (*domain.OverstayPenalty, error)
	createFn               func(ctx context.Context, p *domain.OverstayPenalty) (*domain.OverstayPenalty, error)
	listByStatusFn         func(ctx context.Context, status domain.PenaltyStatus) ([]*domain.OverstayPenalty, error)
	promoteFn              func(ctx context.Context, id int64, candidateAmountCents int64) error
	appendHistoryFn        func(ctx context.Context, entry *domain.PenaltyHistoryEntry) (*domain.PenaltyHistoryEntry, error)
}

func (m *mockPenaltyRepo) GetActiveByBookingID(ctx context.Context, bookingID int64) (*domain.OverstayPenalty, error) {
	return m.getActiveByBookingIDFn(ctx, bookingID)
}

func (m *mockPenaltyRepo) Create(ctx context.Context, p *domain.OverstayPenalty) (*domain.OverstayPenalty, error) {
	return m.createFn(ctx, p)
}

func (m *mockPenaltyRepo) ListByStatus(ctx context.Context, status domain.PenaltyStatus) ([]*domain.OverstayPenalty, error) {
	return m.listByStatusFn(ctx, status)
}

func (m *mockPenaltyRepo) Promote(ctx context.Context, id int64, candidateAmountCents int64) error {
	return m.promoteFn(ctx, id, candidateAmountCents)
}

func (m *mockPenaltyRepo) AppendHistory(ctx context.Context, entry *domain.PenaltyHistoryEntry) (*domain.PenaltyHistoryEntry, error) {
	return m.appendHistoryFn(ctx, entry)
}

type mockPolicyRepo struct {
	getByLocationIDFn func(ctx context.Context, locationID int64) (*domain.LocationPolicy, error)
}

func (m *mockPolicyRepo) GetByLocationID(ctx context.Context, locationID int64) (*domain.LocationPolicy, error) {
	return m.getByLocationIDFn(ctx, locationID)
}

type mockListingClient struct {
	getListingFn func(ctx context.Context, listingID int64) (*listingservice.Listing, error)
}

func (m *mockListingClient) GetListing(ctx context.Context, listingID int64) (*listingservice.Listing, error) {
	return m.getListingFn(ctx, listingID)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type mockNotifier struct {
	published []string
}

func (m *mockNotifier) Publish(routingKey string, payload map[string]interface{}) {
	m.published = append(m.published, routingKey)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var sweepNow = time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)

func overdueStorageBooking() *domain.Booking {
	endDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID:              1,
		ResourceID:      2,
		LocationID:      3,
		ChefID:          5,
		Type:            domain.BookingTypeStorage,
		EndDate:         &endDate,
		Status:          domain.StatusConfirmed,
		ContentsPresent: true,
	}
}

func storageListing() *listingservice.Listing {
	return &listingservice.Listing{
		ID:             2,
		LocationID:     3,
		Type:           string(domain.BookingTypeStorage),
		DailyRateCents: 5000,
	}
}

func newDetector(bookings *mockBookingRepo, penalties *mockPenaltyRepo, events *mockNotifier) *UseCase {
	uc := NewUseCase(
		bookings,
		penalties,
		&mockPolicyRepo{getByLocationIDFn: func(_ context.Context, _ int64) (*domain.LocationPolicy, error) {
			return nil, policyRepo.ErrPolicyNotFound
		}},
		&mockListingClient{getListingFn: func(_ context.Context, _ int64) (*listingservice.Listing, error) {
			return storageListing(), nil
		}},
		events,
		nopLogger{},
	)
	uc.timeProvider = fixedTime{now: sweepNow}
	return uc
}

func TestExecute_DetectsNewOverstay(t *testing.T) {
	booking := overdueStorageBooking()

	var created *domain.OverstayPenalty
	penalties := &mockPenaltyRepo{
		getActiveByBookingIDFn: func(_ context.Context, _ int64) (*domain.OverstayPenalty, error) {
			return nil, penaltyRepo.ErrPenaltyNotFound
		},
		createFn: func(_ context.Context, p *domain.OverstayPenalty) (*domain.OverstayPenalty, error) {
			created = p
			out := *p
			out.ID = 10
			return &out, nil
		},
		listByStatusFn: func(_ context.Context, _ domain.PenaltyStatus) ([]*domain.OverstayPenalty, error) {
			return nil, nil
		},
		appendHistoryFn: func(_ context.Context, e *domain.PenaltyHistoryEntry) (*domain.PenaltyHistoryEntry, error) {
			return e, nil
		},
	}
	bookings := &mockBookingRepo{
		getOverdueStorageFn: func(_ context.Context, _ time.Time) ([]*domain.Booking, error) {
			return []*domain.Booking{booking}, nil
		},
	}
	events := &mockNotifier{}

	report, err := newDetector(bookings, penalties, events).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.OverdueBookings)
	assert.Equal(t, 1, report.Detected)
	assert.Equal(t, 0, report.Errors)

	require.NotNil(t, created)
	assert.Equal(t, domain.PenaltyGracePeriod, created.Status)
	// endDate 2026-03-10 + дефолтные 2 дня льготного периода
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), created.GraceEndsAt)
	assert.Len(t, events.published, 1)
}

func TestExecute_SweepIsIdempotent(t *testing.T) {
	booking := overdueStorageBooking()

	createCalled := false
	penalties := &mockPenaltyRepo{
		getActiveByBookingIDFn: func(_ context.Context, _ int64) (*domain.OverstayPenalty, error) {
			return &domain.OverstayPenalty{ID: 10, BookingID: booking.ID, Status: domain.PenaltyGracePeriod, GraceEndsAt: sweepNow.AddDate(0, 0, 1)}, nil
		},
		createFn: func(_ context.Context, p *domain.OverstayPenalty) (*domain.OverstayPenalty, error) {
			createCalled = true
			return p, nil
		},
		listByStatusFn: func(_ context.Context, _ domain.PenaltyStatus) ([]*domain.OverstayPenalty, error) {
			return nil, nil
		},
	}
	bookings := &mockBookingRepo{
		getOverdueStorageFn: func(_ context.Context, _ time.Time) ([]*domain.Booking, error) {
			return []*domain.Booking{booking}, nil
		},
	}

	report, err := newDetector(bookings, penalties, &mockNotifier{}).Execute(context.Background())
	require.NoError(t, err)

	assert.False(t, createCalled)
	assert.Equal(t, 0, report.Detected)
	assert.Equal(t, 0, report.Errors)
}

func TestExecute_PromotesElapsedGracePeriod(t *testing.T) {
	booking := overdueStorageBooking()

	var promotedID int64
	var promotedAmount int64
	penalties := &mockPenaltyRepo{
		getActiveByBookingIDFn: func(_ context.Context, _ int64) (*domain.OverstayPenalty, error) {
			return &domain.OverstayPenalty{ID: 10, Status: domain.PenaltyGracePeriod}, nil
		},
		listByStatusFn: func(_ context.Context, status domain.PenaltyStatus) ([]*domain.OverstayPenalty, error) {
			require.Equal(t, domain.PenaltyGracePeriod, status)
			return []*domain.OverstayPenalty{
				{ID: 10, BookingID: booking.ID, GraceEndsAt: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), Status: domain.PenaltyGracePeriod},
				// Льготный период ещё не истёк
				{ID: 11, BookingID: 99, GraceEndsAt: sweepNow.AddDate(0, 0, 2), Status: domain.PenaltyGracePeriod},
			}, nil
		},
		promoteFn: func(_ context.Context, id int64, candidateAmountCents int64) error {
			promotedID = id
			promotedAmount = candidateAmountCents
			return nil
		},
		appendHistoryFn: func(_ context.Context, e *domain.PenaltyHistoryEntry) (*domain.PenaltyHistoryEntry, error) {
			return e, nil
		},
	}
	bookings := &mockBookingRepo{
		getOverdueStorageFn: func(_ context.Context, _ time.Time) ([]*domain.Booking, error) {
			return []*domain.Booking{booking}, nil
		},
		getByIDFn: func(_ context.Context, id int64) (*domain.Booking, error) {
			require.Equal(t, booking.ID, id)
			return booking, nil
		},
	}

	report, err := newDetector(bookings, penalties, &mockNotifier{}).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Promoted)
	assert.Equal(t, int64(10), promotedID)
	// 5 дней просрочки × 5000 центов × 10% (дефолтная ставка)
	assert.Equal(t, int64(2500), promotedAmount)
}
