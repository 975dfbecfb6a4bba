package watch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs validation on a fixed cron schedule, independent of
// filesystem events. Feeds served over network mounts do not always
// deliver change notifications, so a periodic sweep backs the watcher
// up.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler parses the standard five-field cron expression and
// registers run to fire on it.
func NewScheduler(spec string, logger *slog.Logger, run func() error) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(func() {
		logger.Info("scheduled validation starting")
		if err := run(); err != nil {
			logger.Error("scheduled validation failed", "error", err)
		}
	}))
	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins firing jobs and stops them when the context ends.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	go func() {
		<-ctx.Done()
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.logger.Info("scheduler stopped")
	}()
}
