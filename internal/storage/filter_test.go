package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/user/job-harvester/internal/domain"
)

func TestBuildWhere(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.JobFilter
		where  string
		args   []any
	}{
		{
			name:   "no filters",
			filter: domain.JobFilter{Page: 3},
			where:  "",
		},
		{
			name:   "title and source",
			filter: domain.JobFilter{Title: "engineer", Source: "LinkedIn"},
			where:  "WHERE title ILIKE $1 AND source = $2",
			args:   []any{"%engineer%", "LinkedIn"},
		},
		{
			name: "every filter",
			filter: domain.JobFilter{
				Title: "a", Location: "b", Company: "c", Experience: "d",
				Source: "e", SearchedTitle: "f", SearchedLocation: "g",
			},
			where: "WHERE title ILIKE $1 AND location ILIKE $2 AND company ILIKE $3 AND experience ILIKE $4" +
				" AND source = $5 AND searched_title ILIKE $6 AND searched_location ILIKE $7",
			args: []any{"%a%", "%b%", "%c%", "%d%", "e", "%f%", "%g%"},
		},
		{
			name:   "wildcards are literal",
			filter: domain.JobFilter{Company: "100%_remote"},
			where:  "WHERE company ILIKE $1",
			args:   []any{`%100\%\_remote%`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildWhere(tt.filter)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestNormalizePaging(t *testing.T) {
	page, limit := normalizePaging(domain.JobFilter{})
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	page, limit = normalizePaging(domain.JobFilter{Page: 4, Limit: 500})
	assert.Equal(t, 4, page)
	assert.Equal(t, 100, limit)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 10))
	assert.Equal(t, 1, totalPages(10, 10))
	assert.Equal(t, 2, totalPages(11, 10))
}
