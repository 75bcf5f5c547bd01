package internal_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"decision_engine/internal/api"
	"decision_engine/internal/config"
	"decision_engine/internal/processor"
	"decision_engine/pkg/crypto"
	"decision_engine/pkg/metrics"
)

const signingKey = "integration-secret"

type testEnv struct {
	server  *httptest.Server
	metrics *metrics.MetricsCollector
	signer  *crypto.Signer
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	clock := func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }

	proc := processor.NewDecisionProcessor(config.DefaultConstants(), clock, logger)
	metricsCollector := metrics.NewMetricsCollector(logger)
	signer := crypto.NewSigner(signingKey, logger)
	handler := api.NewAPIHandler(proc, metricsCollector, signer, logger, time.Second)

	server := httptest.NewServer(api.NewRouter(handler, []string{"*"}))
	t.Cleanup(server.Close)

	return &testEnv{
		server:  server,
		metrics: metricsCollector,
		signer:  signer,
	}
}

type decisionResult struct {
	status    int
	body      []byte
	response  api.DecisionResponse
	id        string
	signature string
}

func postDecision(env *testEnv, req api.DecisionRequest) (decisionResult, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return decisionResult{}, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := http.Post(env.server.URL+"/loan/decision", "application/json", bytes.NewReader(b))
	if err != nil {
		return decisionResult{}, fmt.Errorf("post decision: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decisionResult{}, fmt.Errorf("read body: %w", err)
	}

	result := decisionResult{
		status:    resp.StatusCode,
		body:      body,
		id:        resp.Header.Get(api.DecisionIDHeader),
		signature: resp.Header.Get(api.SignatureHeader),
	}
	if err := json.Unmarshal(body, &result.response); err != nil {
		return decisionResult{}, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

func callDecision(t *testing.T, env *testEnv, req api.DecisionRequest) decisionResult {
	t.Helper()
	result, err := postDecision(env, req)
	if err != nil {
		t.Fatalf("decision call failed: %v", err)
	}
	return result
}

func assertApproved(t *testing.T, got decisionResult, amount, period int) {
	t.Helper()
	if got.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", got.status, got.body)
	}
	if got.response.LoanAmount == nil || *got.response.LoanAmount != amount {
		t.Fatalf("expected amount %d, got %s", amount, got.body)
	}
	if got.response.LoanPeriod == nil || *got.response.LoanPeriod != period {
		t.Fatalf("expected period %d, got %s", period, got.body)
	}
	if got.response.ErrorMessage != "" {
		t.Fatalf("expected no error message, got %q", got.response.ErrorMessage)
	}
}

func TestIntegration_Segment3MaximumApproval(t *testing.T) {
	env := setup(t)

	got := callDecision(t, env, api.DecisionRequest{PersonalCode: "49002018004", LoanAmount: 10000, LoanPeriod: 12})

	assertApproved(t, got, 10000, 12)
}

func TestIntegration_Segment1PeriodExtension(t *testing.T) {
	env := setup(t)

	got := callDecision(t, env, api.DecisionRequest{PersonalCode: "49002013008", LoanAmount: 4000, LoanPeriod: 12})

	assertApproved(t, got, 2000, 20)
}

func TestIntegration_Segment2LowerAmount(t *testing.T) {
	env := setup(t)

	got := callDecision(t, env, api.DecisionRequest{PersonalCode: "49002016000", LoanAmount: 5000, LoanPeriod: 12})

	assertApproved(t, got, 3600, 12)
}

func TestIntegration_DebtIsNotFound(t *testing.T) {
	env := setup(t)

	got := callDecision(t, env, api.DecisionRequest{PersonalCode: "49002010965", LoanAmount: 4000, LoanPeriod: 12})

	if got.status != http.StatusNotFound {
		t.Fatalf("expected 404 for debt, got %d", got.status)
	}
	if got.response.ErrorMessage != "no valid loan due to debt" {
		t.Fatalf("unexpected error message %q", got.response.ErrorMessage)
	}
	if got.response.LoanAmount != nil || got.response.LoanPeriod != nil {
		t.Fatalf("expected no loan terms, got %s", got.body)
	}
}

func TestIntegration_ValidationFailures(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name    string
		req     api.DecisionRequest
		message string
	}{
		{"bad checksum", api.DecisionRequest{PersonalCode: "49002010966", LoanAmount: 4000, LoanPeriod: 12}, "invalid personal ID code"},
		{"too young", api.DecisionRequest{PersonalCode: "50706163007", LoanAmount: 4000, LoanPeriod: 12}, "invalid age"},
		{"too old", api.DecisionRequest{PersonalCode: "34906153001", LoanAmount: 4000, LoanPeriod: 12}, "invalid age"},
		{"amount too large", api.DecisionRequest{PersonalCode: "49002010965", LoanAmount: 15000, LoanPeriod: 12}, "invalid loan amount"},
		{"period too short", api.DecisionRequest{PersonalCode: "49002013008", LoanAmount: 4000, LoanPeriod: 6}, "invalid loan period"},
		{"missing fields", api.DecisionRequest{}, "invalid personal ID code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := callDecision(t, env, tt.req)

			if got.status != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", got.status)
			}
			if !strings.HasPrefix(got.response.ErrorMessage, tt.message) {
				t.Fatalf("expected message starting with %q, got %q", tt.message, got.response.ErrorMessage)
			}
			if got.response.LoanAmount != nil || got.response.LoanPeriod != nil {
				t.Fatalf("expected no loan terms, got %s", got.body)
			}
		})
	}
}

func TestIntegration_ResponsesAreSigned(t *testing.T) {
	env := setup(t)

	got := callDecision(t, env, api.DecisionRequest{PersonalCode: "49002013008", LoanAmount: 2000, LoanPeriod: 24})

	assertApproved(t, got, 2400, 24)
	if got.id == "" || got.signature == "" {
		t.Fatalf("expected decision id and signature headers")
	}
	if err := env.signer.VerifyDecision(got.id, got.body, got.signature); err != nil {
		t.Fatalf("signature verification failed: %v", err)
	}
}

func TestIntegration_MetricsEndpoint(t *testing.T) {
	env := setup(t)
	callDecision(t, env, api.DecisionRequest{PersonalCode: "49002013008", LoanAmount: 4000, LoanPeriod: 12})
	callDecision(t, env, api.DecisionRequest{PersonalCode: "49002010965", LoanAmount: 4000, LoanPeriod: 12})

	metricsServer := httptest.NewServer(env.metrics.NewMetricsServer("").Handler)
	defer metricsServer.Close()

	resp, err := http.Get(metricsServer.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`loan_decisions_total{outcome="approved"} 1`,
		`loan_decisions_total{outcome="no_loan"} 1`,
		`loan_period_extended_total 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("expected metrics to contain %q", want)
		}
	}
}

func TestIntegration_ConcurrentDecisions(t *testing.T) {
	env := setup(t)
	req := api.DecisionRequest{PersonalCode: "49002016000", LoanAmount: 5000, LoanPeriod: 12}

	var wg sync.WaitGroup
	results := make([]decisionResult, 20)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = postDecision(env, req)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatalf("concurrent decision failed: %v", err)
		}
	}

	ids := make(map[string]struct{}, len(results))
	for _, got := range results {
		assertApproved(t, got, 3600, 12)
		ids[got.id] = struct{}{}
	}
	if len(ids) != len(results) {
		t.Fatalf("expected %d distinct decision ids, got %d", len(results), len(ids))
	}
}
