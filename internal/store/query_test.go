package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArticleQueries_NoFilters(t *testing.T) {
	t.Parallel()

	f := ArticleFilter{}.normalize()
	countSQL, dataSQL, countArgs, dataArgs := buildArticleQueries("processed_articles", f)

	assert.Equal(t, "SELECT COUNT(*) FROM processed_articles", countSQL)
	assert.NotContains(t, dataSQL, "WHERE")
	assert.Contains(t, dataSQL, "ORDER BY published_at DESC, id DESC LIMIT $1 OFFSET $2")
	assert.Empty(t, countArgs)
	assert.Equal(t, []any{DefaultLimit, 0}, dataArgs)
}

func TestBuildArticleQueries_AllFiltersNumberDeterministically(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	f := ArticleFilter{
		Source:    "TechCrunch",
		Keyword:   "golang",
		Search:    "compiler",
		StartDate: &start,
		EndDate:   &end,
		Page:      3,
		Limit:     10,
	}.normalize()

	countSQL, dataSQL, countArgs, dataArgs := buildArticleQueries("processed_articles", f)

	want := "SELECT COUNT(*) FROM processed_articles WHERE rss_source = $1 AND $2 = ANY(keywords) AND (title ILIKE $3 OR summary ILIKE $3) AND published_at >= $4 AND published_at <= $5"
	assert.Equal(t, want, countSQL)
	assert.Contains(t, dataSQL, "WHERE rss_source = $1 AND $2 = ANY(keywords) AND (title ILIKE $3 OR summary ILIKE $3) AND published_at >= $4 AND published_at <= $5")
	assert.Contains(t, dataSQL, "LIMIT $6 OFFSET $7")

	require.Equal(t, []any{"TechCrunch", "golang", "%compiler%", start, end}, countArgs)
	require.Len(t, dataArgs, 7)
	assert.Equal(t, countArgs, dataArgs[:5])
	assert.Equal(t, 10, dataArgs[5])
	assert.Equal(t, 20, dataArgs[6])
}

func TestBuildArticleQueries_PartialFiltersRenumber(t *testing.T) {
	t.Parallel()

	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := ArticleFilter{Keyword: "ai", EndDate: &end}.normalize()

	countSQL, _, countArgs, _ := buildArticleQueries("arxiv_processed_articles", f)

	assert.Equal(t,
		"SELECT COUNT(*) FROM arxiv_processed_articles WHERE $1 = ANY(keywords) AND published_at <= $2",
		countSQL)
	assert.Equal(t, []any{"ai", end}, countArgs)
}

func TestBuildArticleQueries_FilterValuesNeverReachSQLText(t *testing.T) {
	t.Parallel()

	hostile := `'; DROP TABLE processed_articles; --`
	f := ArticleFilter{Source: hostile, Keyword: hostile, Search: hostile}.normalize()

	countSQL, dataSQL, countArgs, _ := buildArticleQueries("processed_articles", f)

	assert.NotContains(t, countSQL, "DROP TABLE")
	assert.NotContains(t, dataSQL, "DROP TABLE")
	assert.NotContains(t, countSQL, "'")
	// The hostile value travels only as a bound argument.
	assert.Equal(t, hostile, countArgs[0])
	assert.Equal(t, hostile, countArgs[1])
	assert.Equal(t, "%"+hostile+"%", countArgs[2])
}

func TestArticleFilterNormalize_DefaultsApply(t *testing.T) {
	t.Parallel()

	f := ArticleFilter{Page: 0, Limit: -3}.normalize()
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)

	f = ArticleFilter{Page: 7, Limit: 50}.normalize()
	assert.Equal(t, 7, f.Page)
	assert.Equal(t, 50, f.Limit)
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total, limit, want int
	}{
		{0, 15, 0},
		{1, 15, 1},
		{15, 15, 1},
		{16, 15, 2},
		{20, 15, 2},
		{45, 15, 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, totalPages(tc.total, tc.limit), "total=%d limit=%d", tc.total, tc.limit)
	}
}
