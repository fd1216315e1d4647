package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/glitchx7/clore-monitor/internal/collector"
	"github.com/glitchx7/clore-monitor/internal/config"
	"github.com/glitchx7/clore-monitor/internal/logger"
	"github.com/glitchx7/clore-monitor/internal/metrics"
	"github.com/glitchx7/clore-monitor/internal/notifier"
	"github.com/glitchx7/clore-monitor/internal/prober"
	"github.com/glitchx7/clore-monitor/internal/recorder"
	"github.com/glitchx7/clore-monitor/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)
	log.Info("clore-monitor starting", "base_url", cfg.Clore.BaseURL, "schedule", cfg.Schedule.Cron)

	// Alert sink
	notifiers := []notifier.Notifier{
		notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, cfg.Telegram.MinInterval),
	}
	if cfg.Webhook.URL != "" {
		notifiers = append(notifiers, notifier.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Secret))
	}
	alerter := notifier.NewDispatcher(log, notifiers...)

	// Debug archive
	rec := recorder.Multi{recorder.NewFileRecorder(cfg.Debug.RawResponseFile)}
	if cfg.Debug.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Debug.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite recorder failed, archiving to file only", "error", err)
		} else {
			rec = append(rec, sr)
		}
	}
	defer rec.Close()

	// Upstream API
	fetcher := collector.NewFetcher(collector.NewHTTPClient(cfg.Proxy, cfg.Clore.RequestTimeout), alerter, rec, log)
	fetcher.MaxRetries = cfg.Checks.MaxRetries
	fetcher.Unit = cfg.Checks.RetryUnit
	source := collector.NewCloreClient(cfg.Clore.BaseURL, cfg.Clore.APIToken, fetcher, log)

	pr := prober.New(alerter, cfg.Checks.ProbeTimeout, log)
	pr.SuppressOnlineOnFailure = cfg.Alerts.SuppressAllClear

	checker := &scheduler.Checker{
		Source:           source,
		Alerter:          alerter,
		Prober:           pr,
		ThresholdPct:     cfg.Checks.Threshold,
		Currency:         cfg.Checks.Currency,
		SuppressAllClear: cfg.Alerts.SuppressAllClear,
		Logger:           log,
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.Listen != "" {
		go metrics.Serve(ctx, cfg.Metrics.Listen, log)
	}

	sched := scheduler.NewScheduler(ctx, checker, log)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()

	if cfg.Schedule.RunOnStart {
		log.Info("run_on_start enabled, executing checks now")
		sched.RunNowAsync()
	}

	log.Info("clore-monitor is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, waiting for running checks")
	sched.Stop()
	cancel()
	log.Info("clore-monitor stopped")
	return nil
}
