package storage

import (
	"fmt"
	"strings"

	"github.com/user/job-harvester/internal/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// normalizePaging applies the job board's paging defaults.
func normalizePaging(f domain.JobFilter) (page, limit int) {
	page, limit = f.Page, f.Limit
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// buildWhere turns a filter into a WHERE clause and its positional args.
// Text filters match case-insensitively anywhere in the column; source must
// match exactly.
func buildWhere(f domain.JobFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	contains := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, "%"+escapeLike(value)+"%")
		conds = append(conds, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
	}

	contains("title", f.Title)
	contains("location", f.Location)
	contains("company", f.Company)
	contains("experience", f.Experience)
	if f.Source != "" {
		args = append(args, f.Source)
		conds = append(conds, fmt.Sprintf("source = $%d", len(args)))
	}
	contains("searched_title", f.SearchedTitle)
	contains("searched_location", f.SearchedLocation)

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
