package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/user/job-harvester/internal/domain"
	"github.com/user/job-harvester/internal/usecase"
	"go.uber.org/zap"
)

// RunFunc starts one harvest.
type RunFunc func(ctx context.Context) (*domain.RunSummary, error)

// Scheduler triggers harvests on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	run    RunFunc
	logger *zap.Logger
}

// New registers run on schedule, a standard five-field cron expression.
// Overlapping triggers are skipped while a run is still going.
func New(schedule string, run RunFunc, logger *zap.Logger) (*Scheduler, error) {
	cl := cronLogger{log: logger.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		run:    run,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid harvest schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running harvest to finish or
// for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runOnce() {
	s.logger.Info("Scheduled harvest starting")
	summary, err := s.run(context.Background())
	switch {
	case errors.Is(err, usecase.ErrRunInProgress):
		s.logger.Warn("Scheduled harvest skipped, another run is in progress")
	case err != nil:
		s.logger.Error("Scheduled harvest failed", zap.Error(err))
	default:
		s.logger.Info("Scheduled harvest complete",
			zap.String("run_id", summary.ID),
			zap.Int("inserted", summary.Inserted))
	}
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
