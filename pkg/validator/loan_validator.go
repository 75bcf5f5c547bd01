package validator

import (
	"fmt"

	"decision_engine/internal/config"
	"decision_engine/internal/domain"
)

// LoanInputValidator checks the requested amount and period against the
// configured bounds (inclusive on both ends).
type LoanInputValidator struct {
	constants config.Constants
}

func NewLoanInputValidator(constants config.Constants) *LoanInputValidator {
	return &LoanInputValidator{constants: constants}
}

func (v *LoanInputValidator) ValidateAmount(amount int) error {
	if amount < v.constants.MinLoanAmount || amount > v.constants.MaxLoanAmount {
		return fmt.Errorf("%w: %d is outside [%d, %d]",
			domain.ErrInvalidLoanAmount, amount, v.constants.MinLoanAmount, v.constants.MaxLoanAmount)
	}
	return nil
}

func (v *LoanInputValidator) ValidatePeriod(period int) error {
	if period < v.constants.MinLoanPeriod || period > v.constants.MaxLoanPeriod {
		return fmt.Errorf("%w: %d months is outside [%d, %d]",
			domain.ErrInvalidLoanPeriod, period, v.constants.MinLoanPeriod, v.constants.MaxLoanPeriod)
	}
	return nil
}

type AgeValidator struct {
	minAge int
	maxAge int
}

func NewAgeValidator(constants config.Constants) *AgeValidator {
	return &AgeValidator{
		minAge: constants.MinAge,
		maxAge: constants.MaxEligibleAge(),
	}
}

func (v *AgeValidator) Validate(age int) error {
	if age < v.minAge {
		return fmt.Errorf("%w: applicant must be at least %d years old", domain.ErrInvalidAge, v.minAge)
	}
	if age > v.maxAge {
		return fmt.Errorf("%w: applicant exceeds the maximum eligible age of %d", domain.ErrInvalidAge, v.maxAge)
	}
	return nil
}
