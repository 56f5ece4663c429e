package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kitchrent/KRM-SettlementService/pkg/ptr"
)

func TestCandidatePenaltyCents(t *testing.T) {
	tests := []struct {
		name           string
		days           int
		maxDays        int
		dailyRateCents int64
		rate           float64
		want           int64
	}{
		{"single day at 10%", 1, 30, 5000, 0.10, 500},
		{"three days at 10%", 3, 30, 5000, 0.10, 1500},
		{"capped at max days", 45, 30, 5000, 0.10, 15000},
		{"zero max days means no cap", 45, 0, 5000, 0.10, 22500},
		{"rounding half up", 1, 30, 333, 0.10, 33},
		{"rounding half up boundary", 1, 30, 335, 0.10, 34},
		{"zero days", 0, 30, 5000, 0.10, 0},
		{"negative days", -2, 30, 5000, 0.10, 0},
		{"zero rate", 3, 30, 5000, 0, 0},
		{"zero daily rate", 3, 30, 0, 0.10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CandidatePenaltyCents(tt.days, tt.maxDays, tt.dailyRateCents, tt.rate)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPenaltyStatePredicates(t *testing.T) {
	tests := []struct {
		status     PenaltyStatus
		canApprove bool
		canWaive   bool
		canCharge  bool
		canResolve bool
		terminal   bool
	}{
		{PenaltyGracePeriod, false, false, false, true, false},
		{PenaltyPendingReview, true, true, false, true, false},
		{PenaltyApproved, false, false, true, true, false},
		{PenaltyChargeFailed, true, true, true, true, false},
		{PenaltyCharged, false, false, false, false, true},
		{PenaltyWaived, false, false, false, false, true},
		{PenaltyResolved, false, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			p := OverstayPenalty{Status: tt.status}
			assert.Equal(t, tt.canApprove, p.CanBeApproved(), "CanBeApproved")
			assert.Equal(t, tt.canWaive, p.CanBeWaived(), "CanBeWaived")
			assert.Equal(t, tt.canCharge, p.CanBeCharged(), "CanBeCharged")
			assert.Equal(t, tt.canResolve, p.CanBeResolved(), "CanBeResolved")
			assert.Equal(t, tt.terminal, p.IsTerminal(), "IsTerminal")
		})
	}
}

func TestChargeableAmountCents(t *testing.T) {
	p := OverstayPenalty{CandidateAmountCents: 1500}
	assert.Equal(t, int64(1500), p.ChargeableAmountCents())

	p.FinalAmountCents = ptr.Ptr(int64(1000))
	assert.Equal(t, int64(1000), p.ChargeableAmountCents())
}

func TestResolveOverstayTerms(t *testing.T) {
	t.Run("defaults when nothing configured", func(t *testing.T) {
		terms := ResolveOverstayTerms(nil, nil, nil, nil, 5000)
		assert.Equal(t, DefaultOverstayGraceDays, terms.GraceDays)
		assert.Equal(t, DefaultOverstayPenaltyRate, terms.PenaltyRate)
		assert.Equal(t, DefaultOverstayMaxPenaltyDays, terms.MaxPenaltyDays)
		assert.Equal(t, int64(5000), terms.DailyRateCents)
	})

	t.Run("policy overrides defaults", func(t *testing.T) {
		policy := &LocationPolicy{
			OverstayGraceDays:      5,
			OverstayPenaltyRate:    0.25,
			OverstayMaxPenaltyDays: 10,
		}
		terms := ResolveOverstayTerms(policy, nil, nil, nil, 5000)
		assert.Equal(t, 5, terms.GraceDays)
		assert.Equal(t, 0.25, terms.PenaltyRate)
		assert.Equal(t, 10, terms.MaxPenaltyDays)
	})

	t.Run("listing overrides win over policy", func(t *testing.T) {
		policy := &LocationPolicy{
			OverstayGraceDays:      5,
			OverstayPenaltyRate:    0.25,
			OverstayMaxPenaltyDays: 10,
		}
		terms := ResolveOverstayTerms(policy, ptr.Ptr(1), ptr.Ptr(0.50), ptr.Ptr(7), 5000)
		assert.Equal(t, 1, terms.GraceDays)
		assert.Equal(t, 0.50, terms.PenaltyRate)
		assert.Equal(t, 7, terms.MaxPenaltyDays)
	})
}
