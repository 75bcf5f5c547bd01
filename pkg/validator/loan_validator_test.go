package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"decision_engine/internal/config"
	"decision_engine/internal/domain"
)

func TestLoanInputValidator_ValidateAmount(t *testing.T) {
	v := NewLoanInputValidator(config.DefaultConstants())

	for _, amount := range []int{2000, 2100, 5000, 10000} {
		assert.NoError(t, v.ValidateAmount(amount), "amount %d", amount)
	}
	for _, amount := range []int{-1, 0, 1999, 10001, 15000} {
		assert.ErrorIs(t, v.ValidateAmount(amount), domain.ErrInvalidLoanAmount, "amount %d", amount)
	}
}

func TestLoanInputValidator_ValidatePeriod(t *testing.T) {
	v := NewLoanInputValidator(config.DefaultConstants())

	for _, period := range []int{12, 24, 48} {
		assert.NoError(t, v.ValidatePeriod(period), "period %d", period)
	}
	for _, period := range []int{0, 11, 49, 60} {
		assert.ErrorIs(t, v.ValidatePeriod(period), domain.ErrInvalidLoanPeriod, "period %d", period)
	}
}

func TestAgeValidator_Validate(t *testing.T) {
	v := NewAgeValidator(config.DefaultConstants())

	tests := []struct {
		age     int
		wantErr bool
	}{
		{17, true},
		{18, false},
		{40, false},
		{75, false},
		{76, true},
	}

	for _, tt := range tests {
		err := v.Validate(tt.age)
		if tt.wantErr {
			assert.ErrorIs(t, err, domain.ErrInvalidAge, "age %d", tt.age)
		} else {
			assert.NoError(t, err, "age %d", tt.age)
		}
	}
}

func TestAgeValidator_Messages(t *testing.T) {
	v := NewAgeValidator(config.DefaultConstants())

	assert.EqualError(t, v.Validate(17), "invalid age: applicant must be at least 18 years old")
	assert.EqualError(t, v.Validate(76), "invalid age: applicant exceeds the maximum eligible age of 75")
}
