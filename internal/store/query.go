package store

import (
	"fmt"
	"strings"
	"time"
)

// Listing defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 15
)

// ArticleFilter holds the optional filter criteria and pagination cursor for
// an article listing. Zero values mean "not provided".
type ArticleFilter struct {
	// Source is an exact match on rss_source.
	Source string
	// Keyword matches articles whose keyword set contains the value.
	Keyword string
	// Search is a case-insensitive substring match over title OR summary.
	Search string
	// StartDate and EndDate are inclusive bounds on published_at. A caller
	// with a date-only end bound must expand it to end-of-day itself; the
	// builder takes the value as-is.
	StartDate *time.Time
	EndDate   *time.Time

	Page  int
	Limit int
}

// normalize applies pagination defaults. Non-positive page/limit fall back
// rather than failing.
func (f ArticleFilter) normalize() ArticleFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	return f
}

// buildArticleQueries translates a filter into a count query and a page-data
// query against the given article table. Filter values are returned as bound
// arguments, never interpolated into the SQL text.
//
// Predicates consume placeholders in a fixed order (source, keyword, search,
// startDate, endDate) so placeholder numbering is deterministic. The data
// query appends limit and offset as the two final placeholders; countArgs is
// a prefix of dataArgs.
func buildArticleQueries(table string, f ArticleFilter) (countSQL, dataSQL string, countArgs, dataArgs []any) {
	var conds []string
	var args []any

	if f.Source != "" {
		args = append(args, f.Source)
		conds = append(conds, fmt.Sprintf("rss_source = $%d", len(args)))
	}
	if f.Keyword != "" {
		args = append(args, f.Keyword)
		conds = append(conds, fmt.Sprintf("$%d = ANY(keywords)", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR summary ILIKE $%d)", n, n))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		conds = append(conds, fmt.Sprintf("published_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		conds = append(conds, fmt.Sprintf("published_at <= $%d", len(args)))
	}

	var where string
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	countSQL = "SELECT COUNT(*) FROM " + table + where
	dataSQL = fmt.Sprintf(
		"SELECT id, article_url, rss_source, title, summary, keywords, published_at, created_at FROM %s%s ORDER BY published_at DESC, id DESC LIMIT $%d OFFSET $%d",
		table, where, len(args)+1, len(args)+2,
	)

	countArgs = args
	dataArgs = append(append([]any{}, args...), f.Limit, (f.Page-1)*f.Limit)
	return countSQL, dataSQL, countArgs, dataArgs
}

// totalPages computes ceil(total/limit).
func totalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
