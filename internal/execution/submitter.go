// Package execution turns approved trade signals into exchange orders,
// enforcing the halt switch, the policy engine, and the risk monitor in
// that order, and recording telemetry for every exchange call.
package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"whale-desk/internal/domain"
	"whale-desk/internal/exchange"
	"whale-desk/internal/idhash"
	"whale-desk/internal/risk"
)

// Rejection reasons returned in Result.Reason.
const (
	ReasonKillSwitch = "kill_switch_active"
	ReasonPolicy     = "policy_rejected"
	ReasonRiskAlert  = "risk_alert"
)

// HaltSwitch is the kill-switch view the submitter needs.
type HaltSwitch interface {
	IsActive() bool
}

// PolicyChecker validates a proposed trade against policy limits.
type PolicyChecker interface {
	Validate(trade domain.ProposedTrade, portfolio domain.PortfolioState, exposures map[string]float64) (bool, map[string]risk.CheckResult)
}

// RiskMonitor aggregates open positions into metrics and alerts.
type RiskMonitor interface {
	Metrics(positions []domain.PositionSnapshot) *domain.RiskMetrics
}

// OrderClient submits one market order to the exchange.
type OrderClient interface {
	CreateOrder(ctx context.Context, order exchange.OrderRequest) (json.RawMessage, error)
}

// Result is the outcome of one submission attempt.
type Result struct {
	SubmissionID string
	Success      bool
	Reason       string                      // rejection reason, empty on success
	Checks       map[string]risk.CheckResult // policy checks that ran, on policy rejection
	Alerts       []domain.RiskAlert          // risk alerts, on risk rejection
	Response     json.RawMessage             // exchange response, on success
}

// Submitter runs the pre-trade gauntlet and submits surviving signals.
type Submitter struct {
	halt     HaltSwitch
	policy   PolicyChecker
	monitor  RiskMonitor
	client   OrderClient
	recorder *Recorder
}

// NewSubmitter creates a submitter.
func NewSubmitter(halt HaltSwitch, policy PolicyChecker, monitor RiskMonitor, client OrderClient, recorder *Recorder) *Submitter {
	return &Submitter{
		halt:     halt,
		policy:   policy,
		monitor:  monitor,
		client:   client,
		recorder: recorder,
	}
}

// Submit checks the signal against the kill switch, the policy engine and
// the risk monitor, then sends the order. An exchange error is returned to
// the caller after the failure is recorded; there is no retry here because
// a timed-out order may still have filled.
func (s *Submitter) Submit(ctx context.Context, signal domain.TradeSignal, portfolio domain.PortfolioState, positions []domain.PositionSnapshot, exposures map[string]float64) (*Result, error) {
	submissionID := idhash.ComputeSubmissionID(signal.Asset, signal.Side, signal.SignalTime)

	if s.halt.IsActive() {
		return &Result{SubmissionID: submissionID, Reason: ReasonKillSwitch}, nil
	}

	approved, checks := s.policy.Validate(signal.Proposed(), portfolio, exposures)
	if !approved {
		return &Result{SubmissionID: submissionID, Reason: ReasonPolicy, Checks: checks}, nil
	}

	metrics := s.monitor.Metrics(positions)
	if metrics.HasCritical() {
		return &Result{SubmissionID: submissionID, Reason: ReasonRiskAlert, Alerts: metrics.Alerts}, nil
	}

	order := exchange.OrderRequest{
		InstID:  signal.Asset,
		TdMode:  "cross",
		Side:    strings.ToLower(signal.Side),
		OrdType: "market",
		Sz:      strconv.FormatFloat(signal.Quantity, 'f', -1, 64),
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order payload: %w", err)
	}

	response, err := s.client.CreateOrder(ctx, order)
	if err != nil {
		s.recorder.RecordFailure(ctx, payload, err)
		return &Result{SubmissionID: submissionID, Reason: "exchange_error"}, fmt.Errorf("create order %s: %w", signal.Asset, err)
	}

	s.recorder.RecordSuccess(ctx, payload, response)
	return &Result{SubmissionID: submissionID, Success: true, Response: response}, nil
}
