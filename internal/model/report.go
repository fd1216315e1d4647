package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ThresholdDecision is the outcome of comparing balance against a share of spend.
type ThresholdDecision struct {
	TotalBalance decimal.Decimal
	TotalSpend   decimal.Decimal
	Threshold    decimal.Decimal
	Triggered    bool
}

// ProbeResult captures the outcome of one SSH reachability probe.
type ProbeResult struct {
	OrderID string
	Host    string
	Port    int
	OK      bool
	Latency time.Duration
	Err     error
}

// CycleReport summarises one run of the checks.
type CycleReport struct {
	RunID        string
	StartedAt    time.Time
	Duration     time.Duration
	TotalBalance decimal.Decimal
	TotalSpend   decimal.Decimal
	Decision     *ThresholdDecision // nil when wallet data was unavailable
	Offline      []string           // order IDs that failed a probe
	Problems     int
}
