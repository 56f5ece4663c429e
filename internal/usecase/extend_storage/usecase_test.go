package extend_storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	extensionRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/extension"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
	"github.com/kitchrent/KRM-SettlementService/internal/integrations/payservice"
	"github.com/kitchrent/KRM-SettlementService/internal/usecase/refund_transaction"
	"github.com/kitchrent/KRM-SettlementService/pkg/ptr"
)

type mockBookingRepo struct {
	getByIDFn       func(ctx context.Context, id int64) (*domain.Booking, error)
	getByResourceFn func(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error)
	extendEndDateFn func(ctx context.Context, id int64, newEndDate time.Time) error
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockBookingRepo) GetByResourceWithFilter(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
	if m.getByResourceFn == nil {
		return nil, nil
	}
	return m.getByResourceFn(ctx, filter)
}

func (m *mockBookingRepo) ExtendEndDate(ctx context.Context, id int64, newEndDate time.Time) error {
	return m.extendEndDateFn(ctx, id, newEndDate)
}

type mockExtensionRepo struct {
	createFn     func(ctx context.Context, e *domain.StorageExtension) (*domain.StorageExtension, error)
	getByIDFn    func(ctx context.Context, id int64) (*domain.StorageExtension, error)
	getPendingFn func(ctx context.Context, bookingID int64) (*domain.StorageExtension, error)
	markPaidFn   func(ctx context.Context, id int64, transactionID int64) error
	setStatusFn  func(ctx context.Context, id int64, status domain.ExtensionStatus) error
}

func (m *mockExtensionRepo) Create(ctx context.Context, e *domain.StorageExtension) (*domain.StorageExtension, error) {
	return m.createFn(ctx, e)
}

func (m *mockExtensionRepo) GetByID(ctx context.Context, id int64) (*domain.StorageExtension, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockExtensionRepo) GetPendingByBookingID(ctx context.Context, bookingID int64) (*domain.StorageExtension, error) {
	if m.getPendingFn == nil {
		return nil, extensionRepo.ErrExtensionNotFound
	}
	return m.getPendingFn(ctx, bookingID)
}

func (m *mockExtensionRepo) MarkPaid(ctx context.Context, id int64, transactionID int64) error {
	return m.markPaidFn(ctx, id, transactionID)
}

func (m *mockExtensionRepo) SetStatus(ctx context.Context, id int64, status domain.ExtensionStatus) error {
	return m.setStatusFn(ctx, id, status)
}

type mockTransactionRepo struct {
	createFn  func(ctx context.Context, tx *domain.PaymentTransaction) (*domain.PaymentTransaction, error)
	getByIDFn func(ctx context.Context, id int64) (*domain.PaymentTransaction, error)
}

func (m *mockTransactionRepo) Create(ctx context.Context, tx *domain.PaymentTransaction) (*domain.PaymentTransaction, error) {
	return m.createFn(ctx, tx)
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, id int64) (*domain.PaymentTransaction, error) {
	if m.getByIDFn == nil {
		return extensionTransaction(), nil
	}
	return m.getByIDFn(ctx, id)
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
	createIntentFn func(ctx context.Context, req payservice.PaymentIntentRequest) (*payservice.PaymentIntent, error)
}

func (m *mockPayClient) CreatePaymentIntent(ctx context.Context, req payservice.PaymentIntentRequest) (*payservice.PaymentIntent, error) {
	return m.createIntentFn(ctx, req)
}

type mockRefunder struct {
	executeFn func(ctx context.Context, req *refund_transaction.Request) (*refund_transaction.Response, error)
}

func (m *mockRefunder) Execute(ctx context.Context, req *refund_transaction.Request) (*refund_transaction.Response, error) {
	return m.executeFn(ctx, req)
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

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func confirmedStorageBooking() *domain.Booking {
	return &domain.Booking{
		ID:          1,
		ResourceID:  2,
		LocationID:  3,
		ChefID:      5,
		Type:        domain.BookingTypeStorage,
		Status:      domain.StatusConfirmed,
		BookingDate: date(2026, time.April, 1),
		EndDate:     ptr.Ptr(date(2026, time.April, 10)),
	}
}

func bookingRepoWith(b *domain.Booking) *mockBookingRepo {
	return &mockBookingRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.Booking, error) { return b, nil },
	}
}

func listingClientFull() *mockListingClient {
	return &mockListingClient{
		getListingFn: func(_ context.Context, _ int64) (*listingservice.Listing, error) {
			return &listingservice.Listing{ID: 2, DailyRateCents: 5000}, nil
		},
		getLocationFn: func(_ context.Context, _ int64) (*listingservice.Location, error) {
			return &listingservice.Location{ID: 3, ManagerID: 9, ServiceFeeRate: 0.15, ConnectedAccountID: "acct_1"}, nil
		},
	}
}

func paidExtension() *domain.StorageExtension {
	return &domain.StorageExtension{
		ID:                  20,
		BookingID:           1,
		ChefID:              5,
		ExtensionDays:       7,
		NewEndDate:          date(2026, time.April, 17),
		BaseAmountCents:     35000,
		ServiceFeeCents:     5250,
		TotalAmountCents:    40250,
		ManagerRevenueCents: 35000,
		TransactionID:       ptr.Ptr(int64(42)),
		Status:              domain.ExtensionPaid,
	}
}

func extensionTransaction() *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		ID:                  42,
		BookingID:           1,
		BookingType:         domain.BookingTypeStorage,
		AmountCents:         40250,
		BaseAmountCents:     35000,
		ServiceFeeCents:     5250,
		ManagerRevenueCents: 35000,
		ProcessorFeeCents:   1200,
		Status:              domain.TransactionSucceeded,
		PaymentRef:          "pi_ext_1",
	}
}

func TestCheckout(t *testing.T) {
	var createdExt *domain.StorageExtension
	extensions := &mockExtensionRepo{
		createFn: func(_ context.Context, e *domain.StorageExtension) (*domain.StorageExtension, error) {
			createdExt = e
			created := *e
			created.ID = 20
			return &created, nil
		},
	}

	var intentReq payservice.PaymentIntentRequest
	pay := &mockPayClient{
		createIntentFn: func(_ context.Context, req payservice.PaymentIntentRequest) (*payservice.PaymentIntent, error) {
			intentReq = req
			return &payservice.PaymentIntent{Ref: "pi_ext_1", ClientSecret: "secret_1"}, nil
		},
	}
	events := &mockNotifier{}

	uc := NewUseCase(bookingRepoWith(confirmedStorageBooking()), extensions, &mockTransactionRepo{},
		listingClientFull(), pay, &mockRefunder{}, fakeTxManager{}, events, nopLogger{})

	resp, err := uc.Checkout(context.Background(), &CheckoutRequest{BookingID: 1, ChefID: 5, ExtensionDays: 7})
	require.NoError(t, err)

	// 7 дней по 5000 плюс 15% комиссии платформы
	assert.Equal(t, int64(35000), resp.BaseAmountCents)
	assert.Equal(t, int64(5250), resp.ServiceFeeCents)
	assert.Equal(t, int64(40250), resp.TotalAmountCents)
	assert.Equal(t, date(2026, time.April, 17), resp.NewEndDate)
	assert.Equal(t, "pi_ext_1", resp.PaymentIntentRef)
	assert.Equal(t, "secret_1", resp.ClientSecret)
	assert.Equal(t, string(domain.ExtensionPending), resp.Status)

	assert.Equal(t, int64(40250), intentReq.AmountCents)
	assert.Equal(t, int64(5250), intentReq.ApplicationFeeCents)
	assert.Equal(t, "extension-1-2026-04-17", intentReq.IdempotencyKey)

	require.NotNil(t, createdExt)
	assert.Equal(t, domain.ExtensionPending, createdExt.Status)
	assert.Equal(t, int64(35000), createdExt.ManagerRevenueCents)

	assert.Len(t, events.published, 1)
}

func TestCheckout_RangeConflict(t *testing.T) {
	bookings := bookingRepoWith(confirmedStorageBooking())
	bookings.getByResourceFn = func(_ context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
		return []*domain.Booking{
			{
				ID:          8,
				ResourceID:  2,
				Type:        domain.BookingTypeStorage,
				Status:      domain.StatusConfirmed,
				BookingDate: date(2026, time.April, 15),
				EndDate:     ptr.Ptr(date(2026, time.April, 20)),
			},
		}, nil
	}

	uc := NewUseCase(bookings, &mockExtensionRepo{}, &mockTransactionRepo{},
		listingClientFull(), &mockPayClient{}, &mockRefunder{}, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	_, err := uc.Checkout(context.Background(), &CheckoutRequest{BookingID: 1, ChefID: 5, ExtensionDays: 7})
	assert.True(t, errors.Is(err, ErrRangeConflict))
}

func TestCheckout_IgnoresCancelledNeighbours(t *testing.T) {
	bookings := bookingRepoWith(confirmedStorageBooking())
	bookings.getByResourceFn = func(_ context.Context, _ domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
		return []*domain.Booking{
			{
				ID:          8,
				Type:        domain.BookingTypeStorage,
				Status:      domain.StatusCancelled,
				BookingDate: date(2026, time.April, 15),
				EndDate:     ptr.Ptr(date(2026, time.April, 20)),
			},
		}, nil
	}
	extensions := &mockExtensionRepo{
		createFn: func(_ context.Context, e *domain.StorageExtension) (*domain.StorageExtension, error) {
			created := *e
			created.ID = 20
			return &created, nil
		},
	}
	pay := &mockPayClient{
		createIntentFn: func(_ context.Context, _ payservice.PaymentIntentRequest) (*payservice.PaymentIntent, error) {
			return &payservice.PaymentIntent{Ref: "pi_ext_1", ClientSecret: "secret_1"}, nil
		},
	}

	uc := NewUseCase(bookings, extensions, &mockTransactionRepo{},
		listingClientFull(), pay, &mockRefunder{}, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	_, err := uc.Checkout(context.Background(), &CheckoutRequest{BookingID: 1, ChefID: 5, ExtensionDays: 7})
	assert.NoError(t, err)
}

func TestCheckout_AlreadyPending(t *testing.T) {
	extensions := &mockExtensionRepo{
		getPendingFn: func(_ context.Context, _ int64) (*domain.StorageExtension, error) {
			return &domain.StorageExtension{ID: 19, Status: domain.ExtensionPending}, nil
		},
	}

	uc := NewUseCase(bookingRepoWith(confirmedStorageBooking()), extensions, &mockTransactionRepo{},
		listingClientFull(), &mockPayClient{}, &mockRefunder{}, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	_, err := uc.Checkout(context.Background(), &CheckoutRequest{BookingID: 1, ChefID: 5, ExtensionDays: 7})
	assert.True(t, errors.Is(err, ErrExtensionAlreadyPending))
}

func TestCheckout_Rejections(t *testing.T) {
	kitchen := confirmedStorageBooking()
	kitchen.Type = domain.BookingTypeKitchen
	kitchen.EndDate = nil

	pending := confirmedStorageBooking()
	pending.Status = domain.StatusPending

	tests := []struct {
		name    string
		booking *domain.Booking
		chefID  int64
		wantErr error
	}{
		{"not a storage booking", kitchen, 5, ErrNotStorageBooking},
		{"foreign chef", confirmedStorageBooking(), 77, ErrForbidden},
		{"unconfirmed booking", pending, 5, ErrBookingNotExtendable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewUseCase(bookingRepoWith(tt.booking), &mockExtensionRepo{}, &mockTransactionRepo{},
				listingClientFull(), &mockPayClient{}, &mockRefunder{}, fakeTxManager{}, &mockNotifier{}, nopLogger{})

			_, err := uc.Checkout(context.Background(), &CheckoutRequest{BookingID: 1, ChefID: tt.chefID, ExtensionDays: 7})
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestCheckout_Validation(t *testing.T) {
	uc := NewUseCase(&mockBookingRepo{}, &mockExtensionRepo{}, &mockTransactionRepo{},
		listingClientFull(), &mockPayClient{}, &mockRefunder{}, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	tests := []struct {
		name string
		req  *CheckoutRequest
	}{
		{"zero days", &CheckoutRequest{BookingID: 1, ChefID: 5, ExtensionDays: 0}},
		{"too many days", &CheckoutRequest{BookingID: 1, ChefID: 5, ExtensionDays: domain.MaxExtensionDays + 1}},
		{"zero booking id", &CheckoutRequest{BookingID: 0, ChefID: 5, ExtensionDays: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Checkout(context.Background(), tt.req)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestConfirmPayment(t *testing.T) {
	ext := paidExtension()
	ext.Status = domain.ExtensionPending
	ext.TransactionID = nil

	var markedTxID int64
	extensions := &mockExtensionRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.StorageExtension, error) { return ext, nil },
		markPaidFn: func(_ context.Context, _ int64, transactionID int64) error {
			markedTxID = transactionID
			return nil
		},
	}

	var createdTx *domain.PaymentTransaction
	transactions := &mockTransactionRepo{
		createFn: func(_ context.Context, tx *domain.PaymentTransaction) (*domain.PaymentTransaction, error) {
			createdTx = tx
			created := *tx
			created.ID = 42
			return &created, nil
		},
	}

	uc := NewUseCase(&mockBookingRepo{}, extensions, transactions,
		listingClientFull(), &mockPayClient{}, &mockRefunder{}, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	resp, err := uc.ConfirmPayment(context.Background(), &ConfirmPaymentRequest{
		ExtensionID:       20,
		AmountCents:       40250,
		ProcessorFeeCents: 1200,
		PaymentRef:        "pi_ext_1",
	})
	require.NoError(t, err)

	require.NotNil(t, createdTx)
	assert.Equal(t, domain.BookingTypeStorage, createdTx.BookingType)
	assert.Equal(t, int64(35000), createdTx.BaseAmountCents)
	// Доля менеджера = сумма минус сервисный сбор; комиссия процессора её не уменьшает
	assert.Equal(t, int64(35000), createdTx.ManagerRevenueCents)
	assert.Equal(t, int64(1200), createdTx.ProcessorFeeCents)
	assert.Equal(t, "pi_ext_1", createdTx.PaymentRef)

	assert.Equal(t, int64(42), markedTxID)
	assert.Equal(t, string(domain.ExtensionPaid), resp.Status)
}

func TestConfirmPayment_InvalidTransition(t *testing.T) {
	ext := paidExtension()

	extensions := &mockExtensionRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.StorageExtension, error) { return ext, nil },
	}

	uc := NewUseCase(&mockBookingRepo{}, extensions, &mockTransactionRepo{},
		listingClientFull(), &mockPayClient{}, &mockRefunder{}, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	_, err := uc.ConfirmPayment(context.Background(), &ConfirmPaymentRequest{
		ExtensionID: 20, AmountCents: 40250, PaymentRef: "pi_ext_1",
	})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestApprove(t *testing.T) {
	ext := paidExtension()

	var extendedTo time.Time
	bookings := bookingRepoWith(confirmedStorageBooking())
	bookings.extendEndDateFn = func(_ context.Context, _ int64, newEndDate time.Time) error {
		extendedTo = newEndDate
		return nil
	}

	var setStatus domain.ExtensionStatus
	extensions := &mockExtensionRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.StorageExtension, error) { return ext, nil },
		setStatusFn: func(_ context.Context, _ int64, status domain.ExtensionStatus) error {
			setStatus = status
			return nil
		},
	}
	events := &mockNotifier{}

	uc := NewUseCase(bookings, extensions, &mockTransactionRepo{},
		listingClientFull(), &mockPayClient{}, &mockRefunder{}, fakeTxManager{}, events, nopLogger{})

	resp, err := uc.Approve(context.Background(), &DecideRequest{ExtensionID: 20, ManagerID: 9})
	require.NoError(t, err)

	assert.Equal(t, ext.NewEndDate, extendedTo)
	assert.Equal(t, domain.ExtensionCompleted, setStatus)
	assert.Equal(t, string(domain.ExtensionCompleted), resp.Status)
	require.NotNil(t, resp.NewEndDate)
	assert.Equal(t, ext.NewEndDate, *resp.NewEndDate)
	assert.Len(t, events.published, 1)
}

func TestApprove_RangeTakenBetweenPaymentAndDecision(t *testing.T) {
	ext := paidExtension()

	bookings := bookingRepoWith(confirmedStorageBooking())
	bookings.getByResourceFn = func(_ context.Context, _ domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
		return []*domain.Booking{
			{
				ID:          8,
				Type:        domain.BookingTypeStorage,
				Status:      domain.StatusConfirmed,
				BookingDate: date(2026, time.April, 12),
				EndDate:     ptr.Ptr(date(2026, time.April, 14)),
			},
		}, nil
	}

	extensions := &mockExtensionRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.StorageExtension, error) { return ext, nil },
	}

	uc := NewUseCase(bookings, extensions, &mockTransactionRepo{},
		listingClientFull(), &mockPayClient{}, &mockRefunder{}, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	_, err := uc.Approve(context.Background(), &DecideRequest{ExtensionID: 20, ManagerID: 9})
	assert.True(t, errors.Is(err, ErrRangeConflict))
}

func TestReject_PendingWithoutRefund(t *testing.T) {
	ext := paidExtension()
	ext.Status = domain.ExtensionPending
	ext.TransactionID = nil

	var setStatus domain.ExtensionStatus
	extensions := &mockExtensionRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.StorageExtension, error) { return ext, nil },
		setStatusFn: func(_ context.Context, _ int64, status domain.ExtensionStatus) error {
			setStatus = status
			return nil
		},
	}
	refunder := &mockRefunder{
		executeFn: func(_ context.Context, _ *refund_transaction.Request) (*refund_transaction.Response, error) {
			t.Fatal("refund must not be called for an unpaid extension")
			return nil, nil
		},
	}

	uc := NewUseCase(bookingRepoWith(confirmedStorageBooking()), extensions, &mockTransactionRepo{},
		listingClientFull(), &mockPayClient{}, refunder, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	resp, err := uc.Reject(context.Background(), &DecideRequest{ExtensionID: 20, ManagerID: 9})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtensionRejected, setStatus)
	assert.Equal(t, string(domain.ExtensionRejected), resp.Status)
	assert.Zero(t, resp.RefundedCents)
}

func TestReject_PaidRefundsManagerRevenue(t *testing.T) {
	ext := paidExtension()

	var setStatus domain.ExtensionStatus
	extensions := &mockExtensionRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.StorageExtension, error) { return ext, nil },
		setStatusFn: func(_ context.Context, _ int64, status domain.ExtensionStatus) error {
			setStatus = status
			return nil
		},
	}

	var refundReq *refund_transaction.Request
	refunder := &mockRefunder{
		executeFn: func(_ context.Context, req *refund_transaction.Request) (*refund_transaction.Response, error) {
			refundReq = req
			return &refund_transaction.Response{RefundedCents: req.AmountCents}, nil
		},
	}
	events := &mockNotifier{}

	uc := NewUseCase(bookingRepoWith(confirmedStorageBooking()), extensions, &mockTransactionRepo{},
		listingClientFull(), &mockPayClient{}, refunder, fakeTxManager{}, events, nopLogger{})

	resp, err := uc.Reject(context.Background(), &DecideRequest{ExtensionID: 20, ManagerID: 9})
	require.NoError(t, err)

	require.NotNil(t, refundReq)
	assert.Equal(t, int64(42), refundReq.TransactionID)
	assert.Equal(t, int64(35000), refundReq.AmountCents)
	assert.Equal(t, "extension rejected by manager", refundReq.Reason)
	assert.Equal(t, int64(9), refundReq.ActorID)

	assert.Equal(t, domain.ExtensionRefunded, setStatus)
	assert.Equal(t, string(domain.ExtensionRefunded), resp.Status)
	assert.Equal(t, int64(35000), resp.RefundedCents)
	assert.Len(t, events.published, 1)
}

func TestReject_RefundAmountTakenFromLedger(t *testing.T) {
	// Сумма на заявке может разойтись с леджером; к возврату идёт
	// доступный остаток транзакции, иначе оркестратор отклонит запрос
	ext := paidExtension()
	ext.ManagerRevenueCents = 36000

	extensions := &mockExtensionRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.StorageExtension, error) { return ext, nil },
		setStatusFn: func(_ context.Context, _ int64, _ domain.ExtensionStatus) error {
			return nil
		},
	}
	transactions := &mockTransactionRepo{
		getByIDFn: func(_ context.Context, id int64) (*domain.PaymentTransaction, error) {
			assert.Equal(t, int64(42), id)
			return extensionTransaction(), nil
		},
	}
	refunder := &mockRefunder{
		executeFn: func(_ context.Context, req *refund_transaction.Request) (*refund_transaction.Response, error) {
			if req.AmountCents > 35000 {
				return nil, refund_transaction.ErrAmountExceedsRefundable
			}
			return &refund_transaction.Response{RefundedCents: req.AmountCents}, nil
		},
	}

	uc := NewUseCase(bookingRepoWith(confirmedStorageBooking()), extensions, transactions,
		listingClientFull(), &mockPayClient{}, refunder, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	resp, err := uc.Reject(context.Background(), &DecideRequest{ExtensionID: 20, ManagerID: 9})
	require.NoError(t, err)
	assert.Equal(t, int64(35000), resp.RefundedCents)
}

func TestReject_RetryAfterRefundAlreadyApplied(t *testing.T) {
	// Прошлый reject вернул деньги, но упал до смены статуса заявки.
	// Повтор закрывает заявку без второго обращения к процессору
	ext := paidExtension()

	var setStatus domain.ExtensionStatus
	extensions := &mockExtensionRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.StorageExtension, error) { return ext, nil },
		setStatusFn: func(_ context.Context, _ int64, status domain.ExtensionStatus) error {
			setStatus = status
			return nil
		},
	}
	transactions := &mockTransactionRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.PaymentTransaction, error) {
			tx := extensionTransaction()
			tx.RefundedCents = tx.ManagerRevenueCents
			tx.Status = domain.TransactionRefunded
			return tx, nil
		},
	}
	refunder := &mockRefunder{
		executeFn: func(_ context.Context, _ *refund_transaction.Request) (*refund_transaction.Response, error) {
			t.Fatal("refund must not be repeated for a fully refunded transaction")
			return nil, nil
		},
	}

	uc := NewUseCase(bookingRepoWith(confirmedStorageBooking()), extensions, transactions,
		listingClientFull(), &mockPayClient{}, refunder, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	resp, err := uc.Reject(context.Background(), &DecideRequest{ExtensionID: 20, ManagerID: 9})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtensionRefunded, setStatus)
	assert.Equal(t, string(domain.ExtensionRefunded), resp.Status)
	assert.Equal(t, int64(35000), resp.RefundedCents)
}

func TestReject_RefundFailureKeepsExtensionPaid(t *testing.T) {
	ext := paidExtension()

	extensions := &mockExtensionRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.StorageExtension, error) { return ext, nil },
		setStatusFn: func(_ context.Context, _ int64, _ domain.ExtensionStatus) error {
			t.Fatal("extension status must not change when refund fails")
			return nil
		},
	}
	refunder := &mockRefunder{
		executeFn: func(_ context.Context, _ *refund_transaction.Request) (*refund_transaction.Response, error) {
			return nil, refund_transaction.ErrProcessorFailed
		},
	}

	uc := NewUseCase(bookingRepoWith(confirmedStorageBooking()), extensions, &mockTransactionRepo{},
		listingClientFull(), &mockPayClient{}, refunder, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	_, err := uc.Reject(context.Background(), &DecideRequest{ExtensionID: 20, ManagerID: 9})
	assert.True(t, errors.Is(err, ErrRefundFailed))
}

func TestDecide_ForeignManagerForbidden(t *testing.T) {
	ext := paidExtension()

	extensions := &mockExtensionRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.StorageExtension, error) { return ext, nil },
	}

	uc := NewUseCase(bookingRepoWith(confirmedStorageBooking()), extensions, &mockTransactionRepo{},
		listingClientFull(), &mockPayClient{}, &mockRefunder{}, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	_, err := uc.Approve(context.Background(), &DecideRequest{ExtensionID: 20, ManagerID: 77})
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = uc.Reject(context.Background(), &DecideRequest{ExtensionID: 20, ManagerID: 77})
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestDecide_CompletedExtensionRejected(t *testing.T) {
	ext := paidExtension()
	ext.Status = domain.ExtensionCompleted

	extensions := &mockExtensionRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.StorageExtension, error) { return ext, nil },
	}

	uc := NewUseCase(bookingRepoWith(confirmedStorageBooking()), extensions, &mockTransactionRepo{},
		listingClientFull(), &mockPayClient{}, &mockRefunder{}, fakeTxManager{}, &mockNotifier{}, nopLogger{})

	_, err := uc.Approve(context.Background(), &DecideRequest{ExtensionID: 20, ManagerID: 9})
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	_, err = uc.Reject(context.Background(), &DecideRequest{ExtensionID: 20, ManagerID: 9})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}
