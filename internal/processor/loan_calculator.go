package processor

import (
	"github.com/shopspring/decimal"

	"decision_engine/internal/config"
)

// LoanCalculator scores amount/period pairs and searches for the largest
// approvable amount.
type LoanCalculator struct {
	minAmount int
	maxAmount int
	step      int
	threshold decimal.Decimal
}

func NewLoanCalculator(constants config.Constants) *LoanCalculator {
	return &LoanCalculator{
		minAmount: constants.MinLoanAmount,
		maxAmount: constants.MaxLoanAmount,
		step:      constants.AmountStep,
		threshold: constants.ScoreThreshold,
	}
}

// CreditScore computes (modifier * period) / (amount * 10). A non-positive
// amount scores zero.
func (c *LoanCalculator) CreditScore(modifier, amount, period int) decimal.Decimal {
	if amount <= 0 {
		return decimal.Zero
	}
	numerator := decimal.NewFromInt(int64(modifier) * int64(period))
	denominator := decimal.NewFromInt(int64(amount) * 10)
	return numerator.Div(denominator)
}

func (c *LoanCalculator) IsApprovable(modifier, amount, period int) bool {
	return c.CreditScore(modifier, amount, period).GreaterThanOrEqual(c.threshold)
}

// MaxApprovableAmount clamps modifier*period into the loan amount bounds. The
// result is a ceiling only; at low modifiers it may not itself be approvable.
func (c *LoanCalculator) MaxApprovableAmount(modifier, period int) int {
	return min(max(modifier*period, c.minAmount), c.maxAmount)
}

// BestApprovableAmount scans down from MaxApprovableAmount in fixed steps to
// the minimum amount and returns the first approvable amount. It reports
// false if none qualifies at this period.
func (c *LoanCalculator) BestApprovableAmount(modifier, period int) (int, bool) {
	for amount := c.MaxApprovableAmount(modifier, period); amount >= c.minAmount; amount -= c.step {
		if c.IsApprovable(modifier, amount, period) {
			return amount, true
		}
	}
	return 0, false
}
