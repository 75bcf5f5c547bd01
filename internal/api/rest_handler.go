package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"decision_engine/internal/domain"
	"decision_engine/pkg/crypto"
	"decision_engine/pkg/metrics"
)

const (
	DecisionIDHeader = "X-Decision-ID"
	SignatureHeader  = "X-Decision-Signature"

	serviceName           = "decision_engine"
	serviceVersion        = "1.0.0"
	defaultRequestTimeout = 30 * time.Second
	unexpectedErrorMsg    = "an unexpected error occurred"
	maxRequestBytes       = 1 << 16
)

// DecisionService decides a single loan request.
type DecisionService interface {
	Decide(ctx context.Context, req domain.LoanRequest) (domain.Decision, error)
}

type APIHandler struct {
	service        DecisionService
	metrics        *metrics.MetricsCollector
	signer         *crypto.Signer
	logger         *slog.Logger
	requestTimeout time.Duration
}

// NewAPIHandler accepts nil metrics and a nil signer; both are then no-ops.
func NewAPIHandler(
	service DecisionService,
	metrics *metrics.MetricsCollector,
	signer *crypto.Signer,
	logger *slog.Logger,
	requestTimeout time.Duration,
) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return &APIHandler{
		service:        service,
		metrics:        metrics,
		signer:         signer,
		logger:         logger,
		requestTimeout: requestTimeout,
	}
}

type DecisionRequest struct {
	PersonalCode string `json:"personalCode"`
	LoanAmount   int    `json:"loanAmount"`
	LoanPeriod   int    `json:"loanPeriod"`
}

func (r DecisionRequest) toDomain() domain.LoanRequest {
	return domain.LoanRequest{
		PersonalCode: r.PersonalCode,
		Amount:       r.LoanAmount,
		Period:       r.LoanPeriod,
	}
}

// DecisionResponse carries either the approved terms or an error message,
// never both.
type DecisionResponse struct {
	LoanAmount   *int   `json:"loanAmount,omitempty"`
	LoanPeriod   *int   `json:"loanPeriod,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func (h *APIHandler) RequestDecisionHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	decisionID := uuid.NewString()
	w.Header().Set(DecisionIDHeader, decisionID)

	var req DecisionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.sendError(w, decisionID, "invalid request body", http.StatusBadRequest)
		return
	}

	decision, err := h.service.Decide(ctx, req.toDomain())
	duration := time.Since(startTime)

	switch {
	case errors.Is(err, domain.ErrNoValidLoan):
		h.metrics.RecordDecision(metrics.OutcomeNoLoan, duration)
		h.sendError(w, decisionID, err.Error(), http.StatusNotFound)

	case err != nil:
		h.metrics.RecordDecision(metrics.OutcomeError, duration)
		h.logger.ErrorContext(ctx, "Loan decision failed",
			slog.String("decision_id", decisionID),
			slog.String("error", err.Error()))
		h.sendError(w, decisionID, unexpectedErrorMsg, http.StatusInternalServerError)

	case !decision.Approved():
		h.metrics.RecordDecision(metrics.OutcomeRejected, duration)
		h.sendError(w, decisionID, decision.Message, http.StatusBadRequest)

	default:
		h.metrics.RecordDecision(metrics.OutcomeApproved, duration)
		h.metrics.RecordApproval(decision.Amount, decision.Period != req.LoanPeriod)
		h.sendDecision(w, decisionID, DecisionResponse{
			LoanAmount: &decision.Amount,
			LoanPeriod: &decision.Period,
		}, http.StatusOK)
		h.logger.InfoContext(ctx, "Loan decision issued",
			slog.String("decision_id", decisionID),
			slog.Int("amount", decision.Amount),
			slog.Int("period", decision.Period),
			slog.Duration("duration", duration))
	}
}

func (h *APIHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   serviceVersion,
	}
	h.sendJSON(w, response, http.StatusOK)
}

func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, map[string]string{"name": serviceName, "status": "ok"}, http.StatusOK)
}

// sendDecision encodes the body up front so the signature covers exactly the
// bytes that go on the wire.
func (h *APIHandler) sendDecision(w http.ResponseWriter, decisionID string, resp DecisionResponse, statusCode int) {
	body, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error("Failed to encode decision response", slog.String("error", err.Error()))
		http.Error(w, unexpectedErrorMsg, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if h.signer.Enabled() {
		w.Header().Set(SignatureHeader, h.signer.SignDecision(decisionID, body))
	}
	w.WriteHeader(statusCode)

	if _, err := w.Write(body); err != nil {
		h.logger.Error("Failed to write decision response", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) sendError(w http.ResponseWriter, decisionID, message string, statusCode int) {
	h.sendDecision(w, decisionID, DecisionResponse{ErrorMessage: message}, statusCode)

	h.logger.Warn("API error response",
		slog.String("decision_id", decisionID),
		slog.String("message", message),
		slog.Int("status", statusCode))
}

func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Post("/loan/decision", h.RequestDecisionHandler)
	r.Get("/api/health", h.HealthCheckHandler)
	r.Get("/", h.RootHandler)
}
