package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clore_monitor_fetch_attempts_total",
		Help: "Upstream API requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	AlertsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clore_monitor_alerts_total",
		Help: "Alert deliveries by channel and status",
	}, []string{"channel", "status"})

	ProbeResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clore_monitor_ssh_probes_total",
		Help: "SSH reachability probes by result",
	}, []string{"result"})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clore_monitor_cycle_duration_seconds",
		Help:    "Wall time of a full check cycle, including retry backoff",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	})

	TotalBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clore_monitor_total_balance",
		Help: "Total wallet balance seen in the last cycle",
	})

	TotalSpend = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clore_monitor_total_spend",
		Help: "Total order spend seen in the last cycle",
	})
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listener started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics listener failed", "error", err)
	}
}
