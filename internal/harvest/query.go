package harvest

import "github.com/user/job-harvester/internal/domain"

const DefaultKeyword = "Software Engineer"

// ExpandQueries returns the keyword-major cross product of keywords and
// locations. Input order is kept on both axes and repeated pairs are not
// collapsed. No keywords means DefaultKeyword; no locations means any location.
func ExpandQueries(keywords, locations []string) []domain.Query {
	if len(keywords) == 0 {
		keywords = []string{DefaultKeyword}
	}
	if len(locations) == 0 {
		locations = []string{""}
	}

	queries := make([]domain.Query, 0, len(keywords)*len(locations))
	for _, keyword := range keywords {
		for _, location := range locations {
			queries = append(queries, domain.Query{Keyword: keyword, Location: location})
		}
	}
	return queries
}
