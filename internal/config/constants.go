package config

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Constants holds the decision engine's business constants. Values are loaded
// once at startup and handed to components by value, so a running request can
// never observe a change.
type Constants struct {
	MinLoanAmount int
	MaxLoanAmount int
	MinLoanPeriod int
	MaxLoanPeriod int

	// Upper bounds (exclusive) of the last-four-digit ranges of the identity code.
	DebtSegmentBound int
	Segment1Bound    int
	Segment2Bound    int

	Segment1Modifier int
	Segment2Modifier int
	Segment3Modifier int

	MinAge        int
	LifetimeBound int

	AmountStep     int
	ScoreThreshold decimal.Decimal
}

func DefaultConstants() Constants {
	return Constants{
		MinLoanAmount:    2000,
		MaxLoanAmount:    10000,
		MinLoanPeriod:    12,
		MaxLoanPeriod:    48,
		DebtSegmentBound: 2500,
		Segment1Bound:    5000,
		Segment2Bound:    7500,
		Segment1Modifier: 100,
		Segment2Modifier: 300,
		Segment3Modifier: 1000,
		MinAge:           18,
		LifetimeBound:    76,
		AmountStep:       100,
		ScoreThreshold:   decimal.New(1, -1),
	}
}

// MaxEligibleAge is the oldest age that may still apply: the lifetime bound
// net of the minimum loan period in whole years.
func (c Constants) MaxEligibleAge() int {
	return c.LifetimeBound - c.MinLoanPeriod/12
}

func (c Constants) Validate() error {
	var errs []error

	if c.MinLoanAmount <= 0 || c.MinLoanAmount > c.MaxLoanAmount {
		errs = append(errs, fmt.Errorf("loan amount range [%d, %d] is invalid", c.MinLoanAmount, c.MaxLoanAmount))
	}
	if c.MinLoanPeriod <= 0 || c.MinLoanPeriod > c.MaxLoanPeriod {
		errs = append(errs, fmt.Errorf("loan period range [%d, %d] is invalid", c.MinLoanPeriod, c.MaxLoanPeriod))
	}
	if !(0 < c.DebtSegmentBound && c.DebtSegmentBound < c.Segment1Bound && c.Segment1Bound < c.Segment2Bound && c.Segment2Bound <= 9999) {
		errs = append(errs, fmt.Errorf("segment bounds %d/%d/%d must be ascending within 1..9999",
			c.DebtSegmentBound, c.Segment1Bound, c.Segment2Bound))
	}
	if c.Segment1Modifier <= 0 || c.Segment2Modifier <= 0 || c.Segment3Modifier <= 0 {
		errs = append(errs, errors.New("segment credit modifiers must be positive"))
	}
	if c.MinAge <= 0 || c.MinAge >= c.MaxEligibleAge() {
		errs = append(errs, fmt.Errorf("age range [%d, %d] is invalid", c.MinAge, c.MaxEligibleAge()))
	}
	if c.AmountStep <= 0 {
		errs = append(errs, fmt.Errorf("amount step must be positive, got %d", c.AmountStep))
	}
	if !c.ScoreThreshold.IsPositive() {
		errs = append(errs, fmt.Errorf("score threshold must be positive, got %s", c.ScoreThreshold))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid constants: %w", errors.Join(errs...))
	}
	return nil
}
