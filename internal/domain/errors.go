package domain

import "errors"

// Input validation errors. Always caused by caller supplied data.
var (
	ErrInvalidIdentityCode = errors.New("invalid personal ID code")
	ErrInvalidAge          = errors.New("invalid age")
	ErrInvalidLoanAmount   = errors.New("invalid loan amount")
	ErrInvalidLoanPeriod   = errors.New("invalid loan period")
)

// ErrNoValidLoan is a business rejection: the input was valid but no
// amount/period combination can be offered.
var ErrNoValidLoan = errors.New("no valid loan")

// ReasonOf maps a validation error to its FailureReason. It returns an empty
// reason for errors outside the validation taxonomy.
func ReasonOf(err error) FailureReason {
	switch {
	case errors.Is(err, ErrInvalidIdentityCode):
		return ReasonInvalidIdentityCode
	case errors.Is(err, ErrInvalidAge):
		return ReasonInvalidAge
	case errors.Is(err, ErrInvalidLoanAmount):
		return ReasonInvalidLoanAmount
	case errors.Is(err, ErrInvalidLoanPeriod):
		return ReasonInvalidLoanPeriod
	default:
		return ""
	}
}

// IsValidationError reports whether err belongs to the input validation taxonomy.
func IsValidationError(err error) bool {
	return ReasonOf(err) != ""
}
