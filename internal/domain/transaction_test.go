package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakdown(t *testing.T) {
	tests := []struct {
		name          string
		tx            PaymentTransaction
		wantRemaining int64
	}{
		{
			name: "no refunds yet",
			tx: PaymentTransaction{
				AmountCents:         10000,
				ManagerRevenueCents: 8200,
				RefundedCents:       0,
			},
			wantRemaining: 8200,
		},
		{
			name: "partial refund reduces the limit",
			tx: PaymentTransaction{
				AmountCents:         10000,
				ManagerRevenueCents: 8200,
				RefundedCents:       3000,
			},
			wantRemaining: 5200,
		},
		{
			name: "fully refunded",
			tx: PaymentTransaction{
				AmountCents:         10000,
				ManagerRevenueCents: 8200,
				RefundedCents:       8200,
			},
			wantRemaining: 0,
		},
		{
			name: "over-refunded record clamps to zero",
			tx: PaymentTransaction{
				AmountCents:         10000,
				ManagerRevenueCents: 8200,
				RefundedCents:       9000,
			},
			wantRemaining: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.tx.Breakdown()
			assert.Equal(t, tt.wantRemaining, b.MaxRefundableCents)
			// Unified-модель: возврат покупателю равен снятию с менеджера
			assert.Equal(t, b.MaxRefundableCents, b.MaxDeductibleCents)
			assert.Equal(t, b.MaxRefundableCents, b.RemainingManagerBalanceCents)
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name           string
		refunded       int64
		managerRevenue int64
		want           TransactionStatus
	}{
		{"untouched", 0, 8200, TransactionSucceeded},
		{"partial", 3000, 8200, TransactionPartiallyRefunded},
		{"full manager share", 8200, 8200, TransactionRefunded},
		{"above manager share", 9000, 8200, TransactionRefunded},
		{"zero manager revenue never becomes refunded", 0, 0, TransactionSucceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.refunded, tt.managerRevenue))
		})
	}
}

func TestCheckInvariant(t *testing.T) {
	valid := PaymentTransaction{
		ID:                  1,
		AmountCents:         10000,
		ManagerRevenueCents: 8200,
		RefundedCents:       3000,
	}
	require.NoError(t, valid.CheckInvariant())

	tests := []struct {
		name string
		tx   PaymentTransaction
	}{
		{"negative refunded", PaymentTransaction{AmountCents: 10000, ManagerRevenueCents: 8200, RefundedCents: -1}},
		{"refunded above amount", PaymentTransaction{AmountCents: 10000, ManagerRevenueCents: 8200, RefundedCents: 10001}},
		{"negative manager revenue", PaymentTransaction{AmountCents: 10000, ManagerRevenueCents: -1}},
		{"manager revenue above amount", PaymentTransaction{AmountCents: 10000, ManagerRevenueCents: 10001}},
		{"refunded above manager revenue", PaymentTransaction{AmountCents: 10000, ManagerRevenueCents: 8200, RefundedCents: 8300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.CheckInvariant()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLedgerCorrupted))
		})
	}
}

func TestBookingPaymentStatus(t *testing.T) {
	tx := PaymentTransaction{ManagerRevenueCents: 8200}

	tx.RefundedCents = 0
	assert.Equal(t, PaymentPaid, tx.BookingPaymentStatus())

	tx.RefundedCents = 1
	assert.Equal(t, PaymentPartiallyRefunded, tx.BookingPaymentStatus())

	tx.RefundedCents = 8200
	assert.Equal(t, PaymentRefunded, tx.BookingPaymentStatus())
}

func TestIsRefundable(t *testing.T) {
	tx := PaymentTransaction{Status: TransactionSucceeded}
	assert.True(t, tx.IsRefundable())

	tx.Status = TransactionPartiallyRefunded
	assert.True(t, tx.IsRefundable())

	tx.Status = TransactionRefunded
	assert.False(t, tx.IsRefundable())
}
