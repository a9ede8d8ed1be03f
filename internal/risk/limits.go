// Package risk validates proposed trades against static policy limits and
// aggregates open-position risk into alert-worthy metrics.
package risk

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SinglePositionLimits bound one trade.
type SinglePositionLimits struct {
	MaxSizePercent float64 `yaml:"max_size_percent"`
	MaxLeverage    float64 `yaml:"max_leverage"`
	MinRRRatio     float64 `yaml:"min_rr_ratio"`
}

// DrawdownLimits bound peak-to-trough loss per window, in percent.
type DrawdownLimits struct {
	Daily   float64 `yaml:"daily"`
	Weekly  float64 `yaml:"weekly"`
	Monthly float64 `yaml:"monthly"`
}

// PortfolioLimits bound portfolio-wide state.
type PortfolioLimits struct {
	MaxOpenPositions   int     `yaml:"max_open_positions"`
	MaxDailyTrades     int     `yaml:"max_daily_trades"`
	MaxTotalRisk       float64 `yaml:"max_total_risk"`
	MaxCorrelationRisk float64 `yaml:"max_correlation_risk"`
}

// CorrelationLimits bound co-moving exposure.
type CorrelationLimits struct {
	SameDirection float64 `yaml:"same_direction"`
}

// Limits is the full numeric configuration surface consumed by the policy
// engine and the risk monitor.
type Limits struct {
	SinglePosition SinglePositionLimits `yaml:"single_position"`
	Drawdown       DrawdownLimits       `yaml:"drawdown_limits"`
	Portfolio      PortfolioLimits      `yaml:"portfolio"`
	Correlation    CorrelationLimits    `yaml:"correlation_limits"`
}

// DefaultLimits returns permissive limits; production values come from
// the risk-limits YAML file.
func DefaultLimits() Limits {
	return Limits{
		SinglePosition: SinglePositionLimits{
			MaxSizePercent: 1.0,
			MaxLeverage:    10,
			MinRRRatio:     1.0,
		},
		Drawdown: DrawdownLimits{
			Daily:   100.0,
			Weekly:  100.0,
			Monthly: 100.0,
		},
		Portfolio: PortfolioLimits{
			MaxOpenPositions:   100,
			MaxDailyTrades:     100,
			MaxTotalRisk:       1.0,
			MaxCorrelationRisk: 1.0,
		},
		Correlation: CorrelationLimits{
			SameDirection: 1.0,
		},
	}
}

// LoadLimits reads a YAML limits file on top of the defaults, so a partial
// file only overrides the keys it names.
func LoadLimits(path string) (Limits, error) {
	limits := DefaultLimits()

	data, err := os.ReadFile(path)
	if err != nil {
		return limits, fmt.Errorf("read risk limits: %w", err)
	}
	if err := yaml.Unmarshal(data, &limits); err != nil {
		return limits, fmt.Errorf("parse risk limits: %w", err)
	}
	return limits, nil
}
