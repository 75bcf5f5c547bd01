package processor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"decision_engine/internal/config"
)

func TestLoanCalculator_CreditScore(t *testing.T) {
	c := NewLoanCalculator(config.DefaultConstants())

	tests := []struct {
		modifier, amount, period int
		want                     string
	}{
		{100, 4000, 12, "0.03"},
		{100, 2000, 12, "0.06"},
		{100, 2000, 20, "0.1"},
		{1000, 10000, 12, "0.12"},
		{300, 3600, 12, "0.1"},
		{0, 5000, 24, "0"},
	}

	for _, tt := range tests {
		got := c.CreditScore(tt.modifier, tt.amount, tt.period)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"score(%d, %d, %d) = %s, want %s", tt.modifier, tt.amount, tt.period, got, tt.want)
	}

	assert.True(t, c.CreditScore(100, 0, 12).IsZero())
}

func TestLoanCalculator_IsApprovable(t *testing.T) {
	c := NewLoanCalculator(config.DefaultConstants())

	assert.True(t, c.IsApprovable(100, 2000, 20), "score exactly at threshold")
	assert.False(t, c.IsApprovable(100, 2000, 19))
	assert.False(t, c.IsApprovable(100, 4000, 12))
	assert.True(t, c.IsApprovable(1000, 10000, 12))
	assert.False(t, c.IsApprovable(0, 2000, 48))
}

func TestLoanCalculator_MaxApprovableAmount(t *testing.T) {
	c := NewLoanCalculator(config.DefaultConstants())

	assert.Equal(t, 2000, c.MaxApprovableAmount(100, 12), "raised to the floor")
	assert.Equal(t, 3000, c.MaxApprovableAmount(100, 30))
	assert.Equal(t, 3600, c.MaxApprovableAmount(300, 12))
	assert.Equal(t, 10000, c.MaxApprovableAmount(300, 48), "capped at the ceiling")
	assert.Equal(t, 10000, c.MaxApprovableAmount(1000, 12))
}

func TestLoanCalculator_MaxApprovableAmount_WithinBounds(t *testing.T) {
	c := NewLoanCalculator(config.DefaultConstants())

	for modifier := 1; modifier <= 2000; modifier += 37 {
		for period := 1; period <= 60; period++ {
			got := c.MaxApprovableAmount(modifier, period)
			assert.GreaterOrEqual(t, got, 2000)
			assert.LessOrEqual(t, got, 10000)
		}
	}
}

func TestLoanCalculator_MaxApprovableAmount_Monotonic(t *testing.T) {
	c := NewLoanCalculator(config.DefaultConstants())

	for _, modifier := range []int{100, 300, 1000} {
		prev := c.MaxApprovableAmount(modifier, 12)
		for period := 13; period <= 48; period++ {
			got := c.MaxApprovableAmount(modifier, period)
			assert.GreaterOrEqual(t, got, prev, "modifier %d period %d", modifier, period)
			prev = got
		}
	}
}

func TestLoanCalculator_BestApprovableAmount(t *testing.T) {
	c := NewLoanCalculator(config.DefaultConstants())

	tests := []struct {
		name             string
		modifier, period int
		want             int
		wantOK           bool
	}{
		{"segment 1 below twenty months", 100, 12, 0, false},
		{"segment 1 at nineteen months", 100, 19, 0, false},
		{"segment 1 at twenty months", 100, 20, 2000, true},
		{"segment 1 at two years", 100, 24, 2400, true},
		{"segment 2 at one year", 300, 12, 3600, true},
		{"segment 3 at one year", 1000, 12, 10000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.BestApprovableAmount(tt.modifier, tt.period)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoanCalculator_BestApprovableAmount_StepsFromCeiling(t *testing.T) {
	constants := config.DefaultConstants()
	c := NewLoanCalculator(constants)

	for _, modifier := range []int{constants.Segment1Modifier, constants.Segment2Modifier, constants.Segment3Modifier} {
		for period := constants.MinLoanPeriod; period <= constants.MaxLoanPeriod; period++ {
			ceiling := c.MaxApprovableAmount(modifier, period)
			got, ok := c.BestApprovableAmount(modifier, period)
			if !ok {
				continue
			}
			assert.GreaterOrEqual(t, got, constants.MinLoanAmount)
			assert.LessOrEqual(t, got, ceiling)
			assert.Zero(t, (ceiling-got)%constants.AmountStep, "modifier %d period %d", modifier, period)
			assert.True(t, c.IsApprovable(modifier, got, period))
		}
	}
}

func TestLoanCalculator_BestApprovableAmount_ScansBelowCeiling(t *testing.T) {
	constants := config.DefaultConstants()
	constants.ScoreThreshold = decimal.RequireFromString("0.2")
	c := NewLoanCalculator(constants)

	// approvable only while modifier*period >= 2*amount: 12000 >= 2*6000
	got, ok := c.BestApprovableAmount(1000, 12)
	assert.True(t, ok)
	assert.Equal(t, 6000, got)

	_, ok = c.BestApprovableAmount(300, 12)
	assert.False(t, ok)
}
