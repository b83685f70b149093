package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/job-harvester/internal/domain"
	"github.com/user/job-harvester/internal/repository"
	"github.com/user/job-harvester/pkg/utils"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS jobs (
	id BIGSERIAL PRIMARY KEY,
	fingerprint TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	location TEXT NOT NULL,
	link TEXT NOT NULL,
	source TEXT NOT NULL,
	crawled_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	experience TEXT NOT NULL DEFAULT 'Not specified',
	searched_title TEXT NOT NULL DEFAULT '',
	searched_location TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_jobs_crawled_at ON jobs(crawled_at DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_searched_title ON jobs(searched_title);
`

const jobColumns = `id, title, company, location, link, source, crawled_at, experience, searched_title, searched_location`

// PostgresStore keeps harvested jobs in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

var _ repository.JobRepository = (*PostgresStore)(nil)

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Ingest inserts listings in one transaction. Rows already stored under the
// same title, company and link are skipped and not counted. On error nothing
// is stored and the count is zero.
func (s *PostgresStore) Ingest(ctx context.Context, listings []domain.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin ingest: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, l := range listings {
		batch.Queue(
			`INSERT INTO jobs (fingerprint, title, company, location, link, source, crawled_at, experience, searched_title, searched_location)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (fingerprint) DO NOTHING`,
			utils.Fingerprint(l.Title, l.Company, l.Link),
			l.Title, l.Company, l.Location, l.Link, l.Source,
			l.CrawledAt, l.Experience, l.SearchedTitle, l.SearchedLocation,
		)
	}

	inserted, err := execBatch(tx.SendBatch(ctx, batch), len(listings))
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit ingest: %w", err)
	}
	return inserted, nil
}

func execBatch(results pgx.BatchResults, n int) (int, error) {
	defer results.Close()

	inserted := 0
	for i := 0; i < n; i++ {
		tag, err := results.Exec()
		if err != nil {
			return 0, fmt.Errorf("batch insert failed at row %d: %w", i, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, results.Close()
}

func (s *PostgresStore) List(ctx context.Context, filter domain.JobFilter) (*domain.JobPage, error) {
	page, limit := normalizePaging(filter)
	where, args := buildWhere(filter)

	var total int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM jobs "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM jobs %s ORDER BY crawled_at DESC, id DESC LIMIT $%d OFFSET $%d",
		jobColumns, where, len(args)+1, len(args)+2)
	rows, err := s.db.Query(ctx, query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs, err := pgx.CollectRows(rows, scanJob)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	return &domain.JobPage{
		Jobs:        jobs,
		CurrentPage: page,
		TotalPages:  totalPages(total, limit),
		TotalJobs:   total,
	}, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*domain.Job, error) {
	rows, err := s.db.Query(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	job, err := pgx.CollectExactlyOneRow(rows, scanJob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	return &job, nil
}

func (s *PostgresStore) DistinctSearchedTitles(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "searched_title")
}

func (s *PostgresStore) DistinctSearchedLocations(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "searched_location")
}

func (s *PostgresStore) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(
		"SELECT DISTINCT %[1]s FROM jobs WHERE %[1]s <> '' ORDER BY %[1]s", column))
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func scanJob(row pgx.CollectableRow) (domain.Job, error) {
	var (
		j         domain.Job
		crawledAt time.Time
	)
	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Link, &j.Source,
		&crawledAt, &j.Experience, &j.SearchedTitle, &j.SearchedLocation)
	j.CrawledAt = crawledAt.UTC()
	return j, err
}
