package domain

// LoanRequest is the applicant's ask. Nothing is enforced at construction;
// the decision processor validates every field.
type LoanRequest struct {
	PersonalCode string
	Amount       int
	Period       int
}

type FailureReason string

const (
	ReasonInvalidIdentityCode FailureReason = "invalid_identity_code"
	ReasonInvalidAge          FailureReason = "invalid_age"
	ReasonInvalidLoanAmount   FailureReason = "invalid_loan_amount"
	ReasonInvalidLoanPeriod   FailureReason = "invalid_loan_period"
)

// Decision is either an approved amount/period pair or a failure reason with
// a human readable message. Never both.
type Decision struct {
	Amount  int
	Period  int
	Reason  FailureReason
	Message string
}

func NewApproval(amount, period int) Decision {
	return Decision{Amount: amount, Period: period}
}

// NewRejection folds a validation error into a failed Decision.
func NewRejection(err error) Decision {
	return Decision{
		Reason:  ReasonOf(err),
		Message: err.Error(),
	}
}

func (d Decision) Approved() bool {
	return d.Reason == "" && d.Amount > 0
}
