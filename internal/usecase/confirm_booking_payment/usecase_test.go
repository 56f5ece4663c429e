package confirm_booking_payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
)

type mockBookingRepo struct {
	getByIDFn          func(ctx context.Context, id int64) (*domain.Booking, error)
	setPaymentStatusFn func(ctx context.Context, id int64, status domain.PaymentStatus, paymentIntentRef *string) error
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockBookingRepo) SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, paymentIntentRef *string) error {
	return m.setPaymentStatusFn(ctx, id, status, paymentIntentRef)
}

type mockTransactionRepo struct {
	createFn         func(ctx context.Context, tx *domain.PaymentTransaction) (*domain.PaymentTransaction, error)
	getByBookingIDFn func(ctx context.Context, bookingID int64) ([]*domain.PaymentTransaction, error)
}

func (m *mockTransactionRepo) Create(ctx context.Context, tx *domain.PaymentTransaction) (*domain.PaymentTransaction, error) {
	return m.createFn(ctx, tx)
}

func (m *mockTransactionRepo) GetByBookingID(ctx context.Context, bookingID int64) ([]*domain.PaymentTransaction, error) {
	if m.getByBookingIDFn == nil {
		return nil, nil
	}
	return m.getByBookingIDFn(ctx, bookingID)
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func pendingKitchenBooking() *mockBookingRepo {
	return &mockBookingRepo{
		getByIDFn: func(_ context.Context, _ int64) (*domain.Booking, error) {
			return &domain.Booking{
				ID:            7,
				Type:          domain.BookingTypeKitchen,
				Status:        domain.StatusPending,
				PaymentStatus: domain.PaymentPending,
			}, nil
		},
		setPaymentStatusFn: func(_ context.Context, _ int64, _ domain.PaymentStatus, _ *string) error {
			return nil
		},
	}
}

func captureRequest() *Request {
	return &Request{
		BookingID:         7,
		AmountCents:       13200,
		BaseAmountCents:   12000,
		ServiceFeeCents:   1200,
		ProcessorFeeCents: 400,
		PaymentRef:        "pi_123",
	}
}

func TestExecute(t *testing.T) {
	bookings := pendingKitchenBooking()

	var markedStatus domain.PaymentStatus
	bookings.setPaymentStatusFn = func(_ context.Context, id int64, status domain.PaymentStatus, ref *string) error {
		require.Equal(t, int64(7), id)
		require.NotNil(t, ref)
		assert.Equal(t, "pi_123", *ref)
		markedStatus = status
		return nil
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

	uc := NewUseCase(bookings, transactions, fakeTxManager{}, nopLogger{})

	resp, err := uc.Execute(context.Background(), captureRequest())
	require.NoError(t, err)

	require.NotNil(t, createdTx)
	assert.Equal(t, domain.BookingTypeKitchen, createdTx.BookingType)
	assert.Equal(t, int64(13200), createdTx.AmountCents)
	// Доля менеджера = сумма минус сервисный сбор; комиссия процессора её не уменьшает
	assert.Equal(t, int64(12000), createdTx.ManagerRevenueCents)
	assert.Equal(t, int64(400), createdTx.ProcessorFeeCents)
	assert.Equal(t, domain.TransactionSucceeded, createdTx.Status)
	assert.Zero(t, createdTx.RefundedCents)

	assert.Equal(t, domain.PaymentPaid, markedStatus)

	assert.Equal(t, int64(42), resp.TransactionID)
	assert.Equal(t, int64(12000), resp.ManagerRevenueCents)
	assert.Equal(t, string(domain.TransactionSucceeded), resp.Status)
}

func TestExecute_DuplicateRefRejected(t *testing.T) {
	transactions := &mockTransactionRepo{
		getByBookingIDFn: func(_ context.Context, _ int64) ([]*domain.PaymentTransaction, error) {
			return []*domain.PaymentTransaction{
				{ID: 41, BookingID: 7, PaymentRef: "pi_123"},
			}, nil
		},
		createFn: func(_ context.Context, _ *domain.PaymentTransaction) (*domain.PaymentTransaction, error) {
			t.Fatal("duplicate capture must not create a second ledger row")
			return nil, nil
		},
	}

	uc := NewUseCase(pendingKitchenBooking(), transactions, fakeTxManager{}, nopLogger{})

	_, err := uc.Execute(context.Background(), captureRequest())
	assert.True(t, errors.Is(err, ErrAlreadyCaptured))
}

func TestExecute_SecondCaptureWithNewRef(t *testing.T) {
	transactions := &mockTransactionRepo{
		getByBookingIDFn: func(_ context.Context, _ int64) ([]*domain.PaymentTransaction, error) {
			return []*domain.PaymentTransaction{
				{ID: 41, BookingID: 7, PaymentRef: "pi_older"},
			}, nil
		},
		createFn: func(_ context.Context, tx *domain.PaymentTransaction) (*domain.PaymentTransaction, error) {
			created := *tx
			created.ID = 42
			return &created, nil
		},
	}

	uc := NewUseCase(pendingKitchenBooking(), transactions, fakeTxManager{}, nopLogger{})

	resp, err := uc.Execute(context.Background(), captureRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.TransactionID)
}

func TestExecute_AmountsInconsistent(t *testing.T) {
	uc := NewUseCase(pendingKitchenBooking(), &mockTransactionRepo{}, fakeTxManager{}, nopLogger{})

	req := captureRequest()
	req.ServiceFeeCents = 13500

	_, err := uc.Execute(context.Background(), req)
	assert.True(t, errors.Is(err, ErrAmountsInconsistent))
}

func TestExecute_Validation(t *testing.T) {
	uc := NewUseCase(pendingKitchenBooking(), &mockTransactionRepo{}, fakeTxManager{}, nopLogger{})

	tests := []struct {
		name   string
		mutate func(req *Request)
	}{
		{"zero booking id", func(req *Request) { req.BookingID = 0 }},
		{"zero amount", func(req *Request) { req.AmountCents = 0 }},
		{"negative fee", func(req *Request) { req.ServiceFeeCents = -1 }},
		{"missing payment ref", func(req *Request) { req.PaymentRef = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := captureRequest()
			tt.mutate(req)

			_, err := uc.Execute(context.Background(), req)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}
