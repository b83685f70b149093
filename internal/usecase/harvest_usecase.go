package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/job-harvester/internal/domain"
	"github.com/user/job-harvester/internal/harvest"
	"github.com/user/job-harvester/internal/monitoring"
	"github.com/user/job-harvester/internal/repository"
	"go.uber.org/zap"
)

var ErrRunInProgress = errors.New("a harvest run is already in progress")

// Harvester is the page-walking engine a run drives.
type Harvester interface {
	Harvest(queries []domain.Query, maxPages int, results *domain.Results) harvest.Stats
}

// ListingWriter persists a run's listings to the output file.
type ListingWriter interface {
	Write(listings []domain.Listing) (bool, error)
}

// RunOptions selects what a run searches for.
type RunOptions struct {
	Keywords  []string
	Locations []string
	MaxPages  int
}

// HarvestUseCase runs complete harvests: collect, write the JSON output and
// ingest into the job board. Only one run executes at a time.
type HarvestUseCase struct {
	harvester Harvester
	writer    ListingWriter
	jobs      repository.JobRepository
	runs      repository.RunRepository
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	lockTTL   time.Duration
	defaults  RunOptions

	mu      sync.Mutex
	results *domain.Results
	now     func() time.Time
}

// NewHarvestUseCase wires a run. jobs and runs may be nil, in which case
// ingestion and cross-process locking are skipped.
func NewHarvestUseCase(
	h Harvester,
	w ListingWriter,
	jobs repository.JobRepository,
	runs repository.RunRepository,
	m *monitoring.Metrics,
	l *zap.Logger,
	lockTTL time.Duration,
	defaults RunOptions,
) *HarvestUseCase {
	if lockTTL <= 0 {
		lockTTL = 2 * time.Hour
	}
	return &HarvestUseCase{
		harvester: h,
		writer:    w,
		jobs:      jobs,
		runs:      runs,
		metrics:   m,
		logger:    l,
		lockTTL:   lockTTL,
		defaults:  defaults,
		results:   domain.NewResults(),
		now:       time.Now,
	}
}

// RunDefault runs with the configured keywords, locations and page limit.
func (uc *HarvestUseCase) RunDefault(ctx context.Context) (*domain.RunSummary, error) {
	return uc.Run(ctx, uc.defaults)
}

// Run executes one harvest. It returns ErrRunInProgress when another run
// holds the lock. A failed output write is recorded in the summary only; a
// failed ingest is recorded and also returned.
func (uc *HarvestUseCase) Run(ctx context.Context, opts RunOptions) (*domain.RunSummary, error) {
	if !uc.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer uc.mu.Unlock()

	runID := uuid.NewString()
	if uc.runs != nil {
		ok, err := uc.runs.AcquireLock(ctx, runID, uc.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrRunInProgress
		}
		defer func() {
			if err := uc.runs.ReleaseLock(context.WithoutCancel(ctx), runID); err != nil {
				uc.logger.Warn("could not release run lock", zap.String("run_id", runID), zap.Error(err))
			}
		}()
	}

	summary := &domain.RunSummary{ID: runID, StartedAt: uc.now().UTC()}
	log := uc.logger.With(zap.String("run_id", runID))

	uc.results.Clear()
	queries := harvest.ExpandQueries(opts.Keywords, opts.Locations)
	stats := uc.harvester.Harvest(queries, opts.MaxPages, uc.results)
	listings := uc.results.Items()

	summary.Queries = stats.Queries
	summary.Pages = stats.Pages
	summary.Harvested = len(listings)

	var errs []string
	written, err := uc.writer.Write(listings)
	if err != nil {
		uc.metrics.IncErrorsTotal("output_failed")
		errs = append(errs, err.Error())
	}
	summary.OutputWritten = written

	var ingestErr error
	if uc.jobs != nil && len(listings) > 0 {
		inserted, err := uc.jobs.Ingest(ctx, listings)
		summary.Inserted = inserted
		if err != nil {
			uc.metrics.IncErrorsTotal("ingest_failed")
			log.Error("could not store jobs", zap.Error(err))
			errs = append(errs, err.Error())
			ingestErr = fmt.Errorf("ingest jobs: %w", err)
		}
	}
	summary.Error = strings.Join(errs, "; ")

	summary.FinishedAt = uc.now().UTC()
	uc.metrics.ObserveRunDuration(summary.FinishedAt.Sub(summary.StartedAt).Seconds())

	if uc.runs != nil {
		if err := uc.runs.SaveLastRun(context.WithoutCancel(ctx), *summary); err != nil {
			log.Warn("could not record run summary", zap.Error(err))
		}
	}

	log.Info("Harvest run finished",
		zap.Int("queries", summary.Queries),
		zap.Int("pages", summary.Pages),
		zap.Int("harvested", summary.Harvested),
		zap.Int("inserted", summary.Inserted),
		zap.Bool("output_written", summary.OutputWritten))

	return summary, ingestErr
}

// Listings returns what the latest run collected. They stay available when
// the output write fails.
func (uc *HarvestUseCase) Listings() []domain.Listing {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.results.Items()
}

// LastRun returns the summary of the latest finished run.
func (uc *HarvestUseCase) LastRun(ctx context.Context) (*domain.RunSummary, error) {
	if uc.runs == nil {
		return nil, repository.ErrNoRuns
	}
	return uc.runs.LastRun(ctx)
}
