package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/job-harvester/internal/domain"
)

var ErrNoRuns = errors.New("no harvest run recorded")

// RunRepository coordinates harvest runs across processes.
type RunRepository interface {
	// AcquireLock takes the run lock for owner. It reports false if another
	// owner holds it. The lock expires after ttl.
	AcquireLock(ctx context.Context, owner string, ttl time.Duration) (bool, error)
	// ReleaseLock frees the lock if owner still holds it.
	ReleaseLock(ctx context.Context, owner string) error
	// SaveLastRun records the summary of the latest finished run.
	SaveLastRun(ctx context.Context, summary domain.RunSummary) error
	// LastRun returns the latest summary or ErrNoRuns.
	LastRun(ctx context.Context) (*domain.RunSummary, error)
}
