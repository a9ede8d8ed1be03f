package risk

import (
	"strings"

	"whale-desk/internal/domain"
)

// Check names, in evaluation order.
const (
	CheckRiskLimit         = "risk_limit"
	CheckDrawdown          = "drawdown"
	CheckCorrelation       = "correlation"
	CheckFrequency         = "frequency"
	CheckWalletCredibility = "wallet_credibility"
)

// MinWalletCredibility is the floor below which a source wallet is not
// trusted to drive a trade.
const MinWalletCredibility = 3.0

// ReasonOK marks a passed check.
const ReasonOK = "ok"

// CheckResult is the outcome of a single policy check.
type CheckResult struct {
	Passed bool
	Reason string
}

// Engine runs the ordered policy checks against a proposed trade. Every
// check is hard: the first failure rejects the trade and evaluation stops,
// so the returned map holds only the checks that ran.
type Engine struct {
	limits Limits

	// SoftFailureTolerance is reserved for a future advisory mode where up
	// to N non-critical failures still approve the trade. Zero keeps every
	// check hard.
	SoftFailureTolerance int
}

// NewEngine creates a policy engine over the given limits.
func NewEngine(limits Limits) *Engine {
	return &Engine{limits: limits}
}

// Validate runs the checks in order. exposures holds signed exposure per
// correlation key; keys suffixed "_same" count toward the same-direction
// limit.
func (e *Engine) Validate(trade domain.ProposedTrade, portfolio domain.PortfolioState, exposures map[string]float64) (bool, map[string]CheckResult) {
	checks := []struct {
		name string
		run  func() CheckResult
	}{
		{CheckRiskLimit, func() CheckResult { return e.checkRiskLimit(trade) }},
		{CheckDrawdown, func() CheckResult { return e.checkDrawdown(portfolio) }},
		{CheckCorrelation, func() CheckResult { return e.checkCorrelation(portfolio, exposures) }},
		{CheckFrequency, func() CheckResult { return e.checkFrequency(portfolio) }},
		{CheckWalletCredibility, func() CheckResult { return e.checkWalletCredibility(trade) }},
	}

	results := make(map[string]CheckResult, len(checks))
	for _, c := range checks {
		result := c.run()
		results[c.name] = result
		if !result.Passed {
			return false, results
		}
	}
	return true, results
}

func (e *Engine) checkRiskLimit(trade domain.ProposedTrade) CheckResult {
	limits := e.limits.SinglePosition
	if trade.SizePercent > limits.MaxSizePercent {
		return CheckResult{Reason: "size_limit"}
	}
	if trade.Leverage > limits.MaxLeverage {
		return CheckResult{Reason: "leverage_limit"}
	}
	if trade.RRRatio < limits.MinRRRatio {
		return CheckResult{Reason: "rr_ratio"}
	}
	return CheckResult{Passed: true, Reason: ReasonOK}
}

func (e *Engine) checkDrawdown(portfolio domain.PortfolioState) CheckResult {
	limits := e.limits.Drawdown
	breaches := ""
	add := func(window string) {
		if breaches != "" {
			breaches += ","
		}
		breaches += window
	}
	if portfolio.DrawdownDaily > limits.Daily {
		add("daily")
	}
	if portfolio.DrawdownWeekly > limits.Weekly {
		add("weekly")
	}
	if portfolio.DrawdownMonthly > limits.Monthly {
		add("monthly")
	}
	if breaches != "" {
		return CheckResult{Reason: breaches}
	}
	return CheckResult{Passed: true, Reason: ReasonOK}
}

func (e *Engine) checkCorrelation(portfolio domain.PortfolioState, exposures map[string]float64) CheckResult {
	if portfolio.CorrelationRisk > e.limits.Portfolio.MaxCorrelationRisk {
		return CheckResult{Reason: "portfolio_correlation"}
	}
	sameDirection := 0.0
	for key, exposure := range exposures {
		if strings.HasSuffix(key, "_same") {
			sameDirection += exposure
		}
	}
	if sameDirection > e.limits.Correlation.SameDirection {
		return CheckResult{Reason: "same_direction"}
	}
	return CheckResult{Passed: true, Reason: ReasonOK}
}

func (e *Engine) checkFrequency(portfolio domain.PortfolioState) CheckResult {
	limits := e.limits.Portfolio
	if portfolio.OpenPositions >= limits.MaxOpenPositions {
		return CheckResult{Reason: "too_many_positions"}
	}
	if portfolio.DailyTrades >= limits.MaxDailyTrades {
		return CheckResult{Reason: "trade_frequency"}
	}
	if portfolio.TotalRisk > limits.MaxTotalRisk {
		return CheckResult{Reason: "total_risk"}
	}
	return CheckResult{Passed: true, Reason: ReasonOK}
}

func (e *Engine) checkWalletCredibility(trade domain.ProposedTrade) CheckResult {
	if trade.WalletCredibility < MinWalletCredibility {
		return CheckResult{Reason: "low_wallet_credibility"}
	}
	return CheckResult{Passed: true, Reason: ReasonOK}
}
