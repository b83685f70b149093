package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/job-harvester/internal/domain"
	"github.com/user/job-harvester/internal/repository"
)

var baseTime = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func testListing(i int, title, location string) domain.Listing {
	return domain.Listing{
		Title:            title,
		Company:          fmt.Sprintf("Company %d", i),
		Location:         location,
		Link:             fmt.Sprintf("https://www.linkedin.com/jobs/view/%d", i),
		Source:           domain.SourceLinkedIn,
		CrawledAt:        baseTime.Add(time.Duration(i) * time.Minute),
		Experience:       domain.ExperienceUnspecified,
		SearchedTitle:    title,
		SearchedLocation: location,
	}
}

func truncateJobs(t *testing.T, s *PostgresStore) {
	t.Helper()
	_, err := s.db.Exec(context.Background(), "TRUNCATE jobs RESTART IDENTITY")
	require.NoError(t, err)
}

func TestPostgresStore(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()

	t.Run("ingest skips stored listings", func(t *testing.T) {
		truncateJobs(t, store)
		a := testListing(1, "Backend Engineer", "Pune")
		b := testListing(2, "Frontend Engineer", "Noida")
		c := testListing(3, "QA Engineer", "Delhi")

		inserted, err := store.Ingest(ctx, []domain.Listing{a, b})
		require.NoError(t, err)
		assert.Equal(t, 2, inserted)

		inserted, err = store.Ingest(ctx, []domain.Listing{a, b})
		require.NoError(t, err)
		assert.Equal(t, 0, inserted)

		// Same title, company and link found by another query still counts as stored.
		again := a
		again.SearchedLocation = "Mumbai"
		inserted, err = store.Ingest(ctx, []domain.Listing{again, c, c})
		require.NoError(t, err)
		assert.Equal(t, 1, inserted)

		page, err := store.List(ctx, domain.JobFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.TotalJobs)
	})

	t.Run("failed ingest stores nothing", func(t *testing.T) {
		truncateJobs(t, store)
		bad := testListing(2, "Broken\x00Title", "Pune")

		inserted, err := store.Ingest(ctx, []domain.Listing{testListing(1, "Backend Engineer", "Pune"), bad})
		require.Error(t, err)
		assert.Equal(t, 0, inserted)

		page, err := store.List(ctx, domain.JobFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), page.TotalJobs)
	})

	t.Run("list pages newest first", func(t *testing.T) {
		truncateJobs(t, store)
		var listings []domain.Listing
		for i := 0; i < 5; i++ {
			listings = append(listings, testListing(i, "Backend Engineer", "Pune"))
		}
		_, err := store.Ingest(ctx, listings)
		require.NoError(t, err)

		first, err := store.List(ctx, domain.JobFilter{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 1, first.CurrentPage)
		assert.Equal(t, 3, first.TotalPages)
		assert.Equal(t, int64(5), first.TotalJobs)
		require.Len(t, first.Jobs, 2)
		assert.Equal(t, listings[4], first.Jobs[0].Listing)
		assert.Equal(t, listings[3], first.Jobs[1].Listing)

		last, err := store.List(ctx, domain.JobFilter{Page: 3, Limit: 2})
		require.NoError(t, err)
		require.Len(t, last.Jobs, 1)
		assert.Equal(t, listings[0], last.Jobs[0].Listing)

		beyond, err := store.List(ctx, domain.JobFilter{Page: 4, Limit: 2})
		require.NoError(t, err)
		assert.Empty(t, beyond.Jobs)
	})

	t.Run("list filters", func(t *testing.T) {
		truncateJobs(t, store)
		_, err := store.Ingest(ctx, []domain.Listing{
			testListing(1, "Backend Engineer", "Pune"),
			testListing(2, "Senior Backend Developer", "Mumbai"),
			testListing(3, "Data Scientist", "Pune"),
		})
		require.NoError(t, err)

		page, err := store.List(ctx, domain.JobFilter{Title: "BACKEND"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.TotalJobs)

		page, err = store.List(ctx, domain.JobFilter{Title: "backend", SearchedLocation: "pun"})
		require.NoError(t, err)
		require.Len(t, page.Jobs, 1)
		assert.Equal(t, "Backend Engineer", page.Jobs[0].Title)

		page, err = store.List(ctx, domain.JobFilter{Source: "linkedin"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), page.TotalJobs)

		page, err = store.List(ctx, domain.JobFilter{Source: domain.SourceLinkedIn, Company: "company 3"})
		require.NoError(t, err)
		require.Len(t, page.Jobs, 1)
		assert.Equal(t, "Data Scientist", page.Jobs[0].Title)
	})

	t.Run("get", func(t *testing.T) {
		truncateJobs(t, store)
		l := testListing(1, "Backend Engineer", "Pune")
		_, err := store.Ingest(ctx, []domain.Listing{l})
		require.NoError(t, err)

		page, err := store.List(ctx, domain.JobFilter{})
		require.NoError(t, err)
		require.Len(t, page.Jobs, 1)

		job, err := store.Get(ctx, page.Jobs[0].ID)
		require.NoError(t, err)
		assert.Equal(t, l, job.Listing)

		_, err = store.Get(ctx, 999)
		assert.ErrorIs(t, err, repository.ErrJobNotFound)
	})

	t.Run("distinct searched values", func(t *testing.T) {
		truncateJobs(t, store)
		_, err := store.Ingest(ctx, []domain.Listing{
			testListing(1, "QA Engineer", "Pune"),
			testListing(2, "Backend Engineer", ""),
			testListing(3, "Backend Engineer", "Delhi"),
		})
		require.NoError(t, err)

		titles, err := store.DistinctSearchedTitles(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Backend Engineer", "QA Engineer"}, titles)

		locations, err := store.DistinctSearchedLocations(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Delhi", "Pune"}, locations)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}
