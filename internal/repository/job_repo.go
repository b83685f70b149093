package repository

import (
	"context"
	"errors"

	"github.com/user/job-harvester/internal/domain"
)

var ErrJobNotFound = errors.New("job not found")

// JobRepository defines the contract for the job board's listing storage.
type JobRepository interface {
	// Ingest stores listings not seen before, matched on title, company and link.
	// It returns how many were inserted.
	Ingest(ctx context.Context, listings []domain.Listing) (int, error)
	// List returns one page of jobs matching the filter, newest first.
	List(ctx context.Context, filter domain.JobFilter) (*domain.JobPage, error)
	// Get returns a single job or ErrJobNotFound.
	Get(ctx context.Context, id int64) (*domain.Job, error)
	// DistinctSearchedTitles lists the non-empty keywords jobs were found with.
	DistinctSearchedTitles(ctx context.Context) ([]string, error)
	// DistinctSearchedLocations lists the non-empty locations jobs were found with.
	DistinctSearchedLocations(ctx context.Context) ([]string, error)
}
