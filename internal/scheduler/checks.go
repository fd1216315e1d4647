package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glitchx7/clore-monitor/internal/calculator"
	"github.com/glitchx7/clore-monitor/internal/collector"
	"github.com/glitchx7/clore-monitor/internal/metrics"
	"github.com/glitchx7/clore-monitor/internal/model"
	"github.com/glitchx7/clore-monitor/internal/notifier"
	"github.com/glitchx7/clore-monitor/internal/strategy"
)

// ReachabilityProber probes orders and reports per-endpoint results.
type ReachabilityProber interface {
	Probe(ctx context.Context, orders []model.Order) []model.ProbeResult
}

// Checker runs one monitoring cycle. Every failure degrades to a zero
// result plus an alert; nothing it calls can abort the cycle.
type Checker struct {
	Source       collector.Source
	Alerter      notifier.Alerter
	Prober       ReachabilityProber
	ThresholdPct decimal.Decimal
	Currency     string
	// SuppressAllClear drops "No problems found!" when the cycle raised a problem.
	SuppressAllClear bool
	Logger           *slog.Logger
}

// RunChecks performs the full cycle: wallet balance and threshold, spend,
// SSH reachability, then the closing summary alerts. Orders are fetched
// fresh for every step that needs them.
func (c *Checker) RunChecks(ctx context.Context) *model.CycleReport {
	rep := &model.CycleReport{RunID: uuid.NewString(), StartedAt: time.Now()}
	log := c.Logger.With("run_id", rep.RunID)
	log.Info("running checks", "source", c.Source.Name())

	c.Alerter.Alert(ctx, notifier.MsgPerformingChecks)

	rep.TotalBalance = c.checkWalletBalances(ctx, log, rep)
	rep.TotalSpend = c.totalSpend(ctx, log, rep)
	c.checkSSHPorts(ctx, log, rep)

	c.Alerter.Alert(ctx, notifier.FormatSummary(rep.TotalBalance, rep.TotalSpend))
	if rep.Problems > 0 && c.SuppressAllClear {
		log.Info("all-clear suppressed", "problems", rep.Problems)
	} else {
		c.Alerter.Alert(ctx, notifier.MsgNoProblems)
	}

	rep.Duration = time.Since(rep.StartedAt)
	metrics.CycleDuration.Observe(rep.Duration.Seconds())
	metrics.TotalBalance.Set(rep.TotalBalance.InexactFloat64())
	metrics.TotalSpend.Set(rep.TotalSpend.InexactFloat64())
	log.Info("checks finished",
		"total_balance", rep.TotalBalance.String(),
		"total_spend", rep.TotalSpend.String(),
		"problems", rep.Problems,
		"offline", len(rep.Offline),
		"duration", rep.Duration)
	return rep
}

// checkWalletBalances returns the total balance and evaluates it against the
// spend threshold. Without wallet data the threshold is not evaluated.
func (c *Checker) checkWalletBalances(ctx context.Context, log *slog.Logger, rep *model.CycleReport) decimal.Decimal {
	wallets, err := c.Source.Wallets(ctx)
	if err != nil {
		rep.Problems++
		var fe *collector.FetchError
		if !errors.As(err, &fe) || fe.Kind != collector.KindMalformed {
			log.Error("wallets unavailable, skipping balance check", "error", err)
			return decimal.Zero
		}
		log.Error("malformed wallets response", "error", err)
		c.Alerter.Alert(ctx, notifier.FormatMalformed("wallets", fe.Detail))
	}

	balance := calculator.TotalBalance(wallets)
	spend := c.totalSpend(ctx, log, rep)
	decision := strategy.Evaluate(balance, spend, c.ThresholdPct)
	rep.Decision = &decision

	log.Info("balance evaluated",
		"total_balance", balance.String(),
		"threshold", decision.Threshold.String(),
		"currency", c.Currency,
		"triggered", decision.Triggered)
	if decision.Triggered {
		rep.Problems++
		c.Alerter.Alert(ctx, notifier.FormatLowBalance(decision.TotalBalance, decision.Threshold, c.Currency))
	}
	return balance
}

func (c *Checker) totalSpend(ctx context.Context, log *slog.Logger, rep *model.CycleReport) decimal.Decimal {
	orders, ok := c.fetchOrders(ctx, log, rep)
	if !ok {
		return decimal.Zero
	}
	spend := calculator.TotalSpend(orders)
	log.Info("total spend", "total_spend", spend.String(), "orders", len(orders))
	return spend
}

func (c *Checker) checkSSHPorts(ctx context.Context, log *slog.Logger, rep *model.CycleReport) {
	orders, ok := c.fetchOrders(ctx, log, rep)
	if !ok {
		return
	}

	seen := make(map[string]bool)
	for _, r := range c.Prober.Probe(ctx, orders) {
		if r.OK {
			continue
		}
		rep.Problems++
		if !seen[r.OrderID] {
			seen[r.OrderID] = true
			rep.Offline = append(rep.Offline, r.OrderID)
		}
	}
}

// fetchOrders alerts on any failure to obtain a usable order list.
func (c *Checker) fetchOrders(ctx context.Context, log *slog.Logger, rep *model.CycleReport) ([]model.Order, bool) {
	orders, err := c.Source.Orders(ctx)
	if err == nil {
		return orders, true
	}

	rep.Problems++
	detail := "no data"
	var fe *collector.FetchError
	if errors.As(err, &fe) && fe.Kind == collector.KindMalformed {
		detail = fe.Detail
	}
	log.Error("orders unavailable", "error", err)
	c.Alerter.Alert(ctx, notifier.FormatMalformed("orders", detail))
	return nil, false
}
