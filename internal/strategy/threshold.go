package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/glitchx7/clore-monitor/internal/model"
)

// DefaultThresholdPct is the share of total spend below which the balance is low.
var DefaultThresholdPct = decimal.New(1, -1) // 0.1

// Evaluate compares balance with pct of spend. It has no side effects; the
// caller decides how to report a triggered decision.
//
// With zero spend the threshold is zero, so a non-negative balance never triggers.
func Evaluate(totalBalance, totalSpend, pct decimal.Decimal) model.ThresholdDecision {
	threshold := totalSpend.Mul(pct)
	return model.ThresholdDecision{
		TotalBalance: totalBalance,
		TotalSpend:   totalSpend,
		Threshold:    threshold,
		Triggered:    totalBalance.LessThan(threshold),
	}
}
