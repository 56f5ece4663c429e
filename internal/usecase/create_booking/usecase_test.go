package create_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	policyRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/policy"
	scheduleRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/schedule"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/payservice"
	"github.com/kitchrent/KRM-SettlementService/pkg/ptr"
	"github.com/kitchrent/KRM-SettlementService/pkg/types"
)

type mockBookingRepo struct {
	createFn        func(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	getByResourceFn func(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error)
	getByChefFn     func(ctx context.Context, chefID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if m.createFn == nil {
		created := *booking
		created.ID = 100
		return &created, nil
	}
	return m.createFn(ctx, booking)
}

func (m *mockBookingRepo) GetByResourceWithFilter(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
	if m.getByResourceFn == nil {
		return nil, nil
	}
	return m.getByResourceFn(ctx, filter)
}

func (m *mockBookingRepo) GetByChefID(ctx context.Context, chefID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	if m.getByChefFn == nil {
		return nil, nil
	}
	return m.getByChefFn(ctx, chefID, status)
}

type mockScheduleRepo struct {
	getRulesFn    func(ctx context.Context, resourceID int64) ([]*domain.ScheduleRule, error)
	getOverrideFn func(ctx context.Context, resourceID int64, date time.Time) (*domain.ScheduleOverride, error)
}

func (m *mockScheduleRepo) GetRules(ctx context.Context, resourceID int64) ([]*domain.ScheduleRule, error) {
	if m.getRulesFn == nil {
		return nil, nil
	}
	return m.getRulesFn(ctx, resourceID)
}

func (m *mockScheduleRepo) GetOverride(ctx context.Context, resourceID int64, date time.Time) (*domain.ScheduleOverride, error) {
	if m.getOverrideFn == nil {
		return nil, scheduleRepo.ErrOverrideNotFound
	}
	return m.getOverrideFn(ctx, resourceID, date)
}

type mockPolicyRepo struct {
	getByLocationFn func(ctx context.Context, locationID int64) (*domain.LocationPolicy, error)
}

func (m *mockPolicyRepo) GetByLocationID(ctx context.Context, locationID int64) (*domain.LocationPolicy, error) {
	if m.getByLocationFn == nil {
		return nil, policyRepo.ErrPolicyNotFound
	}
	return m.getByLocationFn(ctx, locationID)
}

type mockListingClient struct {
	getListingFn  func(ctx context.Context, listingID int64) (*listingservice.Listing, error)
	getLocationFn func(ctx context.Context, locationID int64) (*listingservice.Location, error)
}

func (m *mockListingClient) GetListing(ctx context.Context, listingID int64) (*listingservice.Listing, error) {
	return m.getListingFn(ctx, listingID)
}

func (m *mockListingClient) GetLocation(ctx context.Context, locationID int64) (*listingservice.Location, error) {
	return m.getLocationFn(ctx, locationID)
}

type mockPayClient struct {
	createIntentFn     func(ctx context.Context, req payservice.PaymentIntentRequest) (*payservice.PaymentIntent, error)
	getAccountStatusFn func(ctx context.Context, accountID string) (*payservice.AccountStatus, error)
}

func (m *mockPayClient) CreatePaymentIntent(ctx context.Context, req payservice.PaymentIntentRequest) (*payservice.PaymentIntent, error) {
	if m.createIntentFn == nil {
		return &payservice.PaymentIntent{Ref: "pi_1", ClientSecret: "secret_1"}, nil
	}
	return m.createIntentFn(ctx, req)
}

func (m *mockPayClient) GetAccountStatus(ctx context.Context, accountID string) (*payservice.AccountStatus, error) {
	if m.getAccountStatusFn == nil {
		return &payservice.AccountStatus{AccountID: accountID, ChargesEnabled: true, PayoutsEnabled: true}, nil
	}
	return m.getAccountStatusFn(ctx, accountID)
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

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

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

func tstr(s string) *types.TimeString {
	v := types.TimeString(s)
	return &v
}

// Бронируем на субботу 2026-05-02, "сейчас" — утро пятницы
var (
	testNow      = time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC)
	saturday     = time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC)
	saturdayRule = &domain.ScheduleRule{
		ResourceID: 2,
		Weekday:    time.Saturday,
		IsOpen:     true,
		OpenTime:   tstr("09:00"),
		CloseTime:  tstr("18:00"),
	}
)

func kitchenListing() *listingservice.Listing {
	return &listingservice.Listing{
		ID:                 2,
		LocationID:         3,
		Type:               string(domain.BookingTypeKitchen),
		HourlyRateCents:    6000,
		MinDurationMinutes: 60,
		IsActive:           true,
	}
}

func storageListing() *listingservice.Listing {
	return &listingservice.Listing{
		ID:             2,
		LocationID:     3,
		Type:           string(domain.BookingTypeStorage),
		DailyRateCents: 5000,
		IsActive:       true,
	}
}

func listingClientWith(listing *listingservice.Listing) *mockListingClient {
	return &mockListingClient{
		getListingFn: func(_ context.Context, _ int64) (*listingservice.Listing, error) {
			return listing, nil
		},
		getLocationFn: func(_ context.Context, _ int64) (*listingservice.Location, error) {
			return &listingservice.Location{
				ID:                 3,
				ManagerID:          9,
				Timezone:           "UTC",
				ServiceFeeRate:     0.10,
				ConnectedAccountID: "acct_1",
			}, nil
		},
	}
}

func saturdaySchedule() *mockScheduleRepo {
	return &mockScheduleRepo{
		getRulesFn: func(_ context.Context, _ int64) ([]*domain.ScheduleRule, error) {
			return []*domain.ScheduleRule{saturdayRule}, nil
		},
	}
}

func newTestUseCase(
	bookings *mockBookingRepo,
	schedules *mockScheduleRepo,
	policies *mockPolicyRepo,
	listings *mockListingClient,
	pay *mockPayClient,
	events *mockNotifier,
) *UseCase {
	uc := NewUseCase(bookings, schedules, policies, listings, pay, fakeTxManager{}, events, nopLogger{})
	uc.timeProvider = fixedTime{now: testNow}
	return uc
}

func kitchenRequest() *Request {
	return &Request{
		ChefID:    5,
		ListingID: 2,
		Date:      saturday,
		StartTime: tstr("10:00"),
		EndTime:   tstr("12:00"),
	}
}

func TestExecute_Kitchen(t *testing.T) {
	var createdBooking *domain.Booking
	bookings := &mockBookingRepo{
		createFn: func(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
			createdBooking = booking
			created := *booking
			created.ID = 100
			return &created, nil
		},
	}

	var intentReq payservice.PaymentIntentRequest
	pay := &mockPayClient{
		createIntentFn: func(_ context.Context, req payservice.PaymentIntentRequest) (*payservice.PaymentIntent, error) {
			intentReq = req
			return &payservice.PaymentIntent{Ref: "pi_1", ClientSecret: "secret_1"}, nil
		},
	}
	events := &mockNotifier{}

	uc := newTestUseCase(bookings, saturdaySchedule(), &mockPolicyRepo{}, listingClientWith(kitchenListing()), pay, events)

	resp, err := uc.Execute(context.Background(), kitchenRequest())
	require.NoError(t, err)

	// 2 часа по 6000 плюс 10% комиссии платформы
	assert.Equal(t, int64(12000), resp.BaseAmountCents)
	assert.Equal(t, int64(1200), resp.ServiceFeeCents)
	assert.Equal(t, int64(13200), resp.TotalPriceCents)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, string(domain.PaymentPending), resp.PaymentStatus)
	assert.Equal(t, "pi_1", resp.PaymentIntentRef)
	assert.Equal(t, "secret_1", resp.ClientSecret)

	assert.Equal(t, int64(13200), intentReq.AmountCents)
	assert.Equal(t, int64(1200), intentReq.ApplicationFeeCents)
	assert.Equal(t, "booking-5-2-2026-05-02", intentReq.IdempotencyKey)

	require.NotNil(t, createdBooking)
	assert.Equal(t, domain.BookingTypeKitchen, createdBooking.Type)
	assert.False(t, createdBooking.ContentsPresent)

	assert.Len(t, events.published, 1)
}

func TestExecute_Storage(t *testing.T) {
	var createdBooking *domain.Booking
	bookings := &mockBookingRepo{
		createFn: func(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
			createdBooking = booking
			created := *booking
			created.ID = 100
			return &created, nil
		},
	}

	uc := newTestUseCase(bookings, &mockScheduleRepo{}, &mockPolicyRepo{}, listingClientWith(storageListing()), &mockPayClient{}, &mockNotifier{})

	resp, err := uc.Execute(context.Background(), &Request{
		ChefID:    5,
		ListingID: 2,
		Date:      saturday,
		EndDate:   ptr.Ptr(saturday.AddDate(0, 0, 2)),
	})
	require.NoError(t, err)

	// 3 дня включительно по 5000 плюс 10% комиссии
	assert.Equal(t, int64(15000), resp.BaseAmountCents)
	assert.Equal(t, int64(1500), resp.ServiceFeeCents)
	assert.Equal(t, int64(16500), resp.TotalPriceCents)

	require.NotNil(t, createdBooking)
	assert.Equal(t, domain.BookingTypeStorage, createdBooking.Type)
	assert.True(t, createdBooking.ContentsPresent)
}

func TestExecute_SlotAlreadyBooked(t *testing.T) {
	bookings := &mockBookingRepo{
		getByResourceFn: func(_ context.Context, _ domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
			return []*domain.Booking{
				{
					ID:          7,
					Type:        domain.BookingTypeKitchen,
					Status:      domain.StatusConfirmed,
					BookingDate: saturday,
					StartTime:   tstr("11:00"),
					EndTime:     tstr("13:00"),
				},
			}, nil
		},
	}

	uc := newTestUseCase(bookings, saturdaySchedule(), &mockPolicyRepo{}, listingClientWith(kitchenListing()), &mockPayClient{}, &mockNotifier{})

	_, err := uc.Execute(context.Background(), kitchenRequest())
	assert.True(t, errors.Is(err, ErrSlotAlreadyBooked))
}

func TestExecute_BoundaryTouchingIntervalsDoNotConflict(t *testing.T) {
	bookings := &mockBookingRepo{
		getByResourceFn: func(_ context.Context, _ domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
			return []*domain.Booking{
				{
					ID:          7,
					Type:        domain.BookingTypeKitchen,
					Status:      domain.StatusConfirmed,
					BookingDate: saturday,
					StartTime:   tstr("12:00"),
					EndTime:     tstr("14:00"),
				},
			}, nil
		},
	}

	uc := newTestUseCase(bookings, saturdaySchedule(), &mockPolicyRepo{}, listingClientWith(kitchenListing()), &mockPayClient{}, &mockNotifier{})

	_, err := uc.Execute(context.Background(), kitchenRequest())
	assert.NoError(t, err)
}

func TestExecute_OutsideWorkingWindow(t *testing.T) {
	uc := newTestUseCase(&mockBookingRepo{}, saturdaySchedule(), &mockPolicyRepo{}, listingClientWith(kitchenListing()), &mockPayClient{}, &mockNotifier{})

	req := kitchenRequest()
	req.StartTime = tstr("17:00")
	req.EndTime = tstr("19:00")

	_, err := uc.Execute(context.Background(), req)
	assert.True(t, errors.Is(err, ErrOutsideAvailability))
}

func TestExecute_ResourceClosed(t *testing.T) {
	t.Run("no rule for weekday", func(t *testing.T) {
		uc := newTestUseCase(&mockBookingRepo{}, &mockScheduleRepo{}, &mockPolicyRepo{}, listingClientWith(kitchenListing()), &mockPayClient{}, &mockNotifier{})

		_, err := uc.Execute(context.Background(), kitchenRequest())
		assert.True(t, errors.Is(err, ErrResourceClosed))
	})

	t.Run("override closes an open day", func(t *testing.T) {
		schedules := saturdaySchedule()
		schedules.getOverrideFn = func(_ context.Context, _ int64, _ time.Time) (*domain.ScheduleOverride, error) {
			return &domain.ScheduleOverride{ResourceID: 2, Date: saturday, IsClosed: true}, nil
		}

		uc := newTestUseCase(&mockBookingRepo{}, schedules, &mockPolicyRepo{}, listingClientWith(kitchenListing()), &mockPayClient{}, &mockNotifier{})

		_, err := uc.Execute(context.Background(), kitchenRequest())
		assert.True(t, errors.Is(err, ErrResourceClosed))
	})
}

func TestExecute_NoticeRules(t *testing.T) {
	uc := newTestUseCase(&mockBookingRepo{}, saturdaySchedule(), &mockPolicyRepo{}, listingClientWith(kitchenListing()), &mockPayClient{}, &mockNotifier{})

	t.Run("start in the past", func(t *testing.T) {
		req := kitchenRequest()
		req.Date = testNow.AddDate(0, 0, -1)

		_, err := uc.Execute(context.Background(), req)
		assert.True(t, errors.Is(err, ErrInvalidDate))
	})

	t.Run("inside minimum notice", func(t *testing.T) {
		// "Сейчас" пятница 08:00, бронь на пятницу 09:00 нарушает двухчасовой дефолт
		req := kitchenRequest()
		req.Date = time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
		req.StartTime = tstr("09:00")
		req.EndTime = tstr("11:00")

		fridayRule := *saturdayRule
		fridayRule.Weekday = time.Friday
		schedules := &mockScheduleRepo{
			getRulesFn: func(_ context.Context, _ int64) ([]*domain.ScheduleRule, error) {
				return []*domain.ScheduleRule{&fridayRule}, nil
			},
		}
		uc := newTestUseCase(&mockBookingRepo{}, schedules, &mockPolicyRepo{}, listingClientWith(kitchenListing()), &mockPayClient{}, &mockNotifier{})

		_, err := uc.Execute(context.Background(), req)
		assert.True(t, errors.Is(err, ErrTooLateToBook))
	})
}

func TestExecute_DailyLimit(t *testing.T) {
	policies := &mockPolicyRepo{
		getByLocationFn: func(_ context.Context, locationID int64) (*domain.LocationPolicy, error) {
			policy := domain.DefaultPolicy(locationID)
			policy.DailyBookingLimit = 1
			return policy, nil
		},
	}
	bookings := &mockBookingRepo{
		getByChefFn: func(_ context.Context, _ int64, _ *domain.BookingStatus) ([]*domain.Booking, error) {
			return []*domain.Booking{
				{ID: 7, Status: domain.StatusConfirmed, BookingDate: saturday},
			}, nil
		},
	}

	uc := newTestUseCase(bookings, saturdaySchedule(), policies, listingClientWith(kitchenListing()), &mockPayClient{}, &mockNotifier{})

	_, err := uc.Execute(context.Background(), kitchenRequest())
	assert.True(t, errors.Is(err, ErrDailyLimitReached))
}

func TestExecute_BelowMinimumDuration(t *testing.T) {
	listing := kitchenListing()
	listing.MinDurationMinutes = 120

	uc := newTestUseCase(&mockBookingRepo{}, saturdaySchedule(), &mockPolicyRepo{}, listingClientWith(listing), &mockPayClient{}, &mockNotifier{})

	req := kitchenRequest()
	req.EndTime = tstr("11:00")

	_, err := uc.Execute(context.Background(), req)
	assert.True(t, errors.Is(err, ErrBelowMinimumDuration))
}

func TestExecute_StorageRangeConflict(t *testing.T) {
	bookings := &mockBookingRepo{
		getByResourceFn: func(_ context.Context, _ domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
			return []*domain.Booking{
				{
					ID:          7,
					Type:        domain.BookingTypeStorage,
					Status:      domain.StatusConfirmed,
					BookingDate: saturday.AddDate(0, 0, 1),
					EndDate:     ptr.Ptr(saturday.AddDate(0, 0, 5)),
				},
			}, nil
		},
	}

	uc := newTestUseCase(bookings, &mockScheduleRepo{}, &mockPolicyRepo{}, listingClientWith(storageListing()), &mockPayClient{}, &mockNotifier{})

	_, err := uc.Execute(context.Background(), &Request{
		ChefID:    5,
		ListingID: 2,
		Date:      saturday,
		EndDate:   ptr.Ptr(saturday.AddDate(0, 0, 2)),
	})
	assert.True(t, errors.Is(err, ErrSlotAlreadyBooked))
}

func TestExecute_ProcessorFailureRollsBack(t *testing.T) {
	bookings := &mockBookingRepo{
		createFn: func(_ context.Context, _ *domain.Booking) (*domain.Booking, error) {
			t.Fatal("booking must not be created when payment setup fails")
			return nil, nil
		},
	}
	pay := &mockPayClient{
		createIntentFn: func(_ context.Context, _ payservice.PaymentIntentRequest) (*payservice.PaymentIntent, error) {
			return nil, payservice.ErrProcessor
		},
	}
	events := &mockNotifier{}

	uc := newTestUseCase(bookings, saturdaySchedule(), &mockPolicyRepo{}, listingClientWith(kitchenListing()), pay, events)

	_, err := uc.Execute(context.Background(), kitchenRequest())
	assert.True(t, errors.Is(err, ErrPaymentSetupFailed))
	assert.Empty(t, events.published)
}

func TestExecute_ListingChecks(t *testing.T) {
	t.Run("inactive listing", func(t *testing.T) {
		listing := kitchenListing()
		listing.IsActive = false

		uc := newTestUseCase(&mockBookingRepo{}, saturdaySchedule(), &mockPolicyRepo{}, listingClientWith(listing), &mockPayClient{}, &mockNotifier{})

		_, err := uc.Execute(context.Background(), kitchenRequest())
		assert.True(t, errors.Is(err, ErrListingInactive))
	})

	t.Run("listing not found", func(t *testing.T) {
		listings := &mockListingClient{
			getListingFn: func(_ context.Context, _ int64) (*listingservice.Listing, error) {
				return nil, listingservice.ErrListingNotFound
			},
		}

		uc := newTestUseCase(&mockBookingRepo{}, saturdaySchedule(), &mockPolicyRepo{}, listings, &mockPayClient{}, &mockNotifier{})

		_, err := uc.Execute(context.Background(), kitchenRequest())
		assert.True(t, errors.Is(err, ErrListingNotFound))
	})

	t.Run("charges disabled on location account", func(t *testing.T) {
		pay := &mockPayClient{
			getAccountStatusFn: func(_ context.Context, accountID string) (*payservice.AccountStatus, error) {
				return &payservice.AccountStatus{AccountID: accountID, ChargesEnabled: false}, nil
			},
		}

		uc := newTestUseCase(&mockBookingRepo{}, saturdaySchedule(), &mockPolicyRepo{}, listingClientWith(kitchenListing()), pay, &mockNotifier{})

		_, err := uc.Execute(context.Background(), kitchenRequest())
		assert.True(t, errors.Is(err, ErrLocationNotPayable))
	})

	t.Run("storage request against kitchen listing", func(t *testing.T) {
		uc := newTestUseCase(&mockBookingRepo{}, saturdaySchedule(), &mockPolicyRepo{}, listingClientWith(kitchenListing()), &mockPayClient{}, &mockNotifier{})

		_, err := uc.Execute(context.Background(), &Request{
			ChefID:    5,
			ListingID: 2,
			Date:      saturday,
			EndDate:   ptr.Ptr(saturday.AddDate(0, 0, 2)),
		})
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}

func TestExecute_Validation(t *testing.T) {
	uc := newTestUseCase(&mockBookingRepo{}, saturdaySchedule(), &mockPolicyRepo{}, listingClientWith(kitchenListing()), &mockPayClient{}, &mockNotifier{})

	tests := []struct {
		name string
		req  *Request
	}{
		{"zero chef id", &Request{ChefID: 0, ListingID: 2, Date: saturday, StartTime: tstr("10:00"), EndTime: tstr("12:00")}},
		{"no interval and no range", &Request{ChefID: 5, ListingID: 2, Date: saturday}},
		{"end before start", &Request{ChefID: 5, ListingID: 2, Date: saturday, StartTime: tstr("12:00"), EndTime: tstr("10:00")}},
		{"end date before date", &Request{ChefID: 5, ListingID: 2, Date: saturday, EndDate: ptr.Ptr(saturday.AddDate(0, 0, -1))}},
		{"malformed time", &Request{ChefID: 5, ListingID: 2, Date: saturday, StartTime: tstr("10am"), EndTime: tstr("12:00")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}
