package store

import (
	"context"
	"fmt"
)

// ListArticles returns one page of articles for the content type, applying
// the filter's criteria and pagination. A page past the end of the result set
// yields an empty page, not an error.
func (s *Store) ListArticles(ctx context.Context, ct ContentType, filter ArticleFilter) (ArticlePage, error) {
	f := filter.normalize()
	countSQL, dataSQL, countArgs, dataArgs := buildArticleQueries(ct.articlesTable(), f)

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return ArticlePage{}, fmt.Errorf("count articles: %w", err)
	}

	rows, err := s.pool.Query(ctx, dataSQL, dataArgs...)
	if err != nil {
		return ArticlePage{}, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		var a Article
		if err := rows.Scan(
			&a.ID,
			&a.ArticleURL,
			&a.RSSSource,
			&a.Title,
			&a.Summary,
			&a.Keywords,
			&a.PublishedAt,
			&a.CreatedAt,
		); err != nil {
			return ArticlePage{}, fmt.Errorf("scan article: %w", err)
		}
		if a.Keywords == nil {
			a.Keywords = []string{}
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return ArticlePage{}, fmt.Errorf("iterate articles: %w", err)
	}

	return ArticlePage{
		Articles: articles,
		Pagination: Pagination{
			Total:      total,
			Page:       f.Page,
			Limit:      f.Limit,
			TotalPages: totalPages(total, f.Limit),
		},
	}, nil
}

// Metadata returns per-source article counts and the top-20 keyword
// frequencies for the content type.
func (s *Store) Metadata(ctx context.Context, ct ContentType) (Metadata, error) {
	table := ct.articlesTable()

	sources, err := s.queryNameCounts(ctx, fmt.Sprintf(
		"SELECT rss_source AS name, COUNT(*) AS count FROM %s GROUP BY rss_source ORDER BY count DESC", table))
	if err != nil {
		return Metadata{}, fmt.Errorf("count sources: %w", err)
	}

	keywords, err := s.queryNameCounts(ctx, fmt.Sprintf(
		"SELECT keyword AS name, COUNT(*) AS count FROM (SELECT unnest(keywords) AS keyword FROM %s) AS k GROUP BY keyword ORDER BY count DESC LIMIT 20", table))
	if err != nil {
		return Metadata{}, fmt.Errorf("count keywords: %w", err)
	}

	return Metadata{Sources: sources, Keywords: keywords}, nil
}

func (s *Store) queryNameCounts(ctx context.Context, sql string) ([]NameCount, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := []NameCount{}
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, fmt.Errorf("scan count row: %w", err)
		}
		counts = append(counts, nc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate count rows: %w", err)
	}
	return counts, nil
}

// ClearArticles bulk-deletes articles whose rss_source exactly matches the
// given name and reports how many rows went away. Source rows are untouched.
func (s *Store) ClearArticles(ctx context.Context, ct ContentType, rssSource string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE rss_source = $1", ct.articlesTable()), rssSource)
	if err != nil {
		return 0, fmt.Errorf("clear articles: %w", err)
	}
	return tag.RowsAffected(), nil
}
