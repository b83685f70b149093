package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// PageSize is the number of listings the search site returns per page.
	PageSize = 25

	SourceLinkedIn        = "LinkedIn"
	ExperienceUnspecified = "Not specified"
)

// Query is one (keyword, location) pair driving a paginated search.
// An empty Location means any location.
type Query struct {
	Keyword  string
	Location string
}

// LocationLabel is the location as it should read in log lines.
func (q Query) LocationLabel() string {
	if q.Location == "" {
		return "any location"
	}
	return q.Location
}

// PageRequest addresses a single page of a Query.
type PageRequest struct {
	Query Query
	Index int
}

func (p PageRequest) Offset() int {
	return p.Index * PageSize
}

// URL builds the search URL for the page. Only spaces are escaped.
func (p PageRequest) URL(baseURL string) string {
	return fmt.Sprintf("%s?keywords=%s&location=%s&start=%d",
		baseURL,
		escapeSpaces(p.Query.Keyword),
		escapeSpaces(p.Query.Location),
		p.Offset(),
	)
}

func escapeSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "%20")
}

// Listing is one extracted job posting. Field order is the serialized order.
type Listing struct {
	Title            string    `json:"title"`
	Company          string    `json:"company"`
	Location         string    `json:"location"`
	Link             string    `json:"link"`
	Source           string    `json:"source"`
	CrawledAt        time.Time `json:"crawled_at"`
	Experience       string    `json:"experience"`
	SearchedTitle    string    `json:"searched_title"`
	SearchedLocation string    `json:"searched_location"`
}

// Job is a Listing as stored by the job board.
type Job struct {
	ID int64 `json:"id"`
	Listing
}

// JobFilter holds the job board query parameters.
type JobFilter struct {
	Page             int
	Limit            int
	Title            string
	Location         string
	Company          string
	Experience       string
	Source           string
	SearchedTitle    string
	SearchedLocation string
}

// JobPage is one page of job board results.
type JobPage struct {
	Jobs        []Job `json:"jobs"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalJobs   int64 `json:"totalJobs"`
}

// RunSummary describes a finished harvest run.
type RunSummary struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Queries       int       `json:"queries"`
	Pages         int       `json:"pages"`
	Harvested     int       `json:"harvested"`
	Inserted      int       `json:"inserted"`
	OutputWritten bool      `json:"output_written"`
	Error         string    `json:"error,omitempty"`
}
