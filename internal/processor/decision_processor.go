package processor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"decision_engine/internal/config"
	"decision_engine/internal/domain"
	"decision_engine/pkg/validator"
)

const tracerName = "decision_engine/internal/processor"

// DecisionProcessor turns a loan request into a Decision. It holds no
// per-request state and is safe for concurrent use.
type DecisionProcessor struct {
	identity   *validator.IdentityCodeValidator
	ages       *validator.AgeValidator
	inputs     *validator.LoanInputValidator
	classifier *SegmentClassifier
	calculator *LoanCalculator
	constants  config.Constants
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option customises a DecisionProcessor.
type Option func(*DecisionProcessor)

// WithTracerProvider records spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *DecisionProcessor) {
		p.tracer = tp.Tracer(tracerName)
	}
}

// NewDecisionProcessor wires the processor's collaborators from constants.
// now is the clock used for age checks; nil means time.Now.
func NewDecisionProcessor(constants config.Constants, now func() time.Time, logger *slog.Logger, opts ...Option) *DecisionProcessor {
	if logger == nil {
		logger = slog.Default()
	}

	p := &DecisionProcessor{
		identity:   validator.NewIdentityCodeValidator(now),
		ages:       validator.NewAgeValidator(constants),
		inputs:     validator.NewLoanInputValidator(constants),
		classifier: NewSegmentClassifier(constants),
		calculator: NewLoanCalculator(constants),
		constants:  constants,
		tracer:     otel.Tracer(tracerName),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Decide runs validation, segment classification and the amount/period
// search. Validation failures come back as a rejected Decision with a nil
// error. domain.ErrNoValidLoan is returned when the applicant is in debt or
// no combination clears the score threshold. Any other error is unexpected.
func (p *DecisionProcessor) Decide(ctx context.Context, req domain.LoanRequest) (domain.Decision, error) {
	ctx, span := p.tracer.Start(ctx, "DecisionProcessor.Decide", trace.WithAttributes(
		attribute.Int("loan.requested_amount", req.Amount),
		attribute.Int("loan.requested_period", req.Period),
	))
	defer span.End()

	if err := p.validate(req); err != nil {
		if !domain.IsValidationError(err) {
			return domain.Decision{}, p.fail(span, err)
		}
		decision := domain.NewRejection(err)
		span.SetAttributes(attribute.String("decision.reason", string(decision.Reason)))
		p.logger.InfoContext(ctx, "Loan request rejected",
			slog.String("personal_code", MaskCode(req.PersonalCode)),
			slog.String("reason", string(decision.Reason)),
			slog.String("message", decision.Message))
		return decision, nil
	}

	segment, err := p.classifier.Classify(req.PersonalCode)
	if err != nil {
		return domain.Decision{}, p.fail(span, fmt.Errorf("classify validated code: %w", err))
	}
	span.SetAttributes(attribute.String("credit.segment", segment.String()))

	if !segment.HasCredit() {
		return domain.Decision{}, p.noLoan(ctx, span, req, fmt.Errorf("%w due to debt", domain.ErrNoValidLoan))
	}
	modifier := segment.Modifier

	if p.calculator.IsApprovable(modifier, req.Amount, req.Period) {
		amount := p.calculator.MaxApprovableAmount(modifier, req.Period)
		return p.approve(ctx, span, req, segment, amount, req.Period), nil
	}

	if amount, ok := p.calculator.BestApprovableAmount(modifier, req.Period); ok {
		if amount < p.constants.MinLoanAmount {
			return domain.Decision{}, p.fail(span, fmt.Errorf("best amount %d below minimum %d", amount, p.constants.MinLoanAmount))
		}
		return p.approve(ctx, span, req, segment, amount, req.Period), nil
	}

	for period := req.Period + 1; period <= p.constants.MaxLoanPeriod; period++ {
		if err := ctx.Err(); err != nil {
			return domain.Decision{}, p.fail(span, err)
		}
		if amount, ok := p.calculator.BestApprovableAmount(modifier, period); ok {
			return p.approve(ctx, span, req, segment, amount, period), nil
		}
	}

	return domain.Decision{}, p.noLoan(ctx, span, req, fmt.Errorf("%w found", domain.ErrNoValidLoan))
}

// validate checks identity code, age, amount and period, in that order.
func (p *DecisionProcessor) validate(req domain.LoanRequest) error {
	if err := p.identity.Validate(req.PersonalCode); err != nil {
		return err
	}

	age, err := p.identity.AgeOf(req.PersonalCode)
	if err != nil {
		return err
	}
	if err := p.ages.Validate(age); err != nil {
		return err
	}

	if err := p.inputs.ValidateAmount(req.Amount); err != nil {
		return err
	}
	return p.inputs.ValidatePeriod(req.Period)
}

func (p *DecisionProcessor) approve(
	ctx context.Context,
	span trace.Span,
	req domain.LoanRequest,
	segment domain.CreditSegment,
	amount, period int,
) domain.Decision {
	span.SetAttributes(
		attribute.Int("loan.approved_amount", amount),
		attribute.Int("loan.approved_period", period),
	)
	p.logger.InfoContext(ctx, "Loan approved",
		slog.String("personal_code", MaskCode(req.PersonalCode)),
		slog.String("segment", segment.String()),
		slog.Int("amount", amount),
		slog.Int("period", period),
		slog.Bool("period_extended", period != req.Period))
	return domain.NewApproval(amount, period)
}

func (p *DecisionProcessor) noLoan(ctx context.Context, span trace.Span, req domain.LoanRequest, err error) error {
	span.SetAttributes(attribute.String("decision.reason", err.Error()))
	p.logger.InfoContext(ctx, "No valid loan",
		slog.String("personal_code", MaskCode(req.PersonalCode)),
		slog.String("reason", err.Error()))
	return err
}

func (p *DecisionProcessor) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

const maskedCodeLength = 11

// MaskCode keeps the century digit and the last four digits of a well-formed
// identity code so logs never carry the full birth date. Anything else is
// fully masked to a fixed width.
func MaskCode(code string) string {
	if len(code) != maskedCodeLength || !allDigits(code) {
		return strings.Repeat("*", maskedCodeLength)
	}
	return code[:1] + strings.Repeat("*", maskedCodeLength-5) + code[maskedCodeLength-4:]
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
