package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/glitchx7/clore-monitor/internal/logger"
)

// Scheduler fires the check cycle on a cron schedule. A cycle never starts
// while the previous one is still running, whether it was started by cron
// or by RunNow.
type Scheduler struct {
	Cron    *cron.Cron
	Checker *Checker
	Ctx     context.Context
	Logger  *slog.Logger

	job cron.Job
	wg  sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, checker *Checker, log *slog.Logger) *Scheduler {
	cl := logger.CronLogger{L: log}
	s := &Scheduler{
		Cron:    cron.New(cron.WithSeconds(), cron.WithLogger(cl)),
		Checker: checker,
		Ctx:     ctx,
		Logger:  log,
	}
	s.job = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.checkTask))
	return s
}

// Register schedules the check cycle.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddJob(spec, s.job); err != nil {
		return fmt.Errorf("register check task: %w", err)
	}
	s.Logger.Info("check task registered", "schedule", spec)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes the check cycle immediately (RUN_ON_START), subject to the
// same no-overlap rule as scheduled runs.
func (s *Scheduler) RunNow() {
	s.wg.Add(1)
	defer s.wg.Done()
	s.job.Run()
}

// RunNowAsync starts RunNow in a goroutine. The cycle is tracked before this
// returns, so a Stop issued right after still waits for it.
func (s *Scheduler) RunNowAsync() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.job.Run()
	}()
}

func (s *Scheduler) checkTask() {
	s.Checker.RunChecks(s.Ctx)
}
