package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceColumns() []string {
	return []string{"id", "name", "url", "custom_prompt"}
}

func newSourceTestStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	st, err := NewWithPool(mock, map[ContentType]string{
		ContentTypeNews:  "default news prompt",
		ContentTypePaper: "default paper prompt",
	})
	require.NoError(t, err)
	return st, mock
}

func TestListSources_OrdersByID(t *testing.T) {
	t.Parallel()

	st, mock := newSourceTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, url, custom_prompt FROM rss_sources ORDER BY id ASC")).
		WillReturnRows(pgxmock.NewRows(sourceColumns()).
			AddRow(1, "TechCrunch", "https://techcrunch.com/feed", "p1").
			AddRow(2, "Ars Technica", "https://arstechnica.com/feed", "p2"))

	sources, err := st.ListSources(context.Background(), ContentTypeNews)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, 1, sources[0].ID)
	assert.Equal(t, "Ars Technica", sources[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSource_AppliesDefaultPrompt(t *testing.T) {
	t.Parallel()

	st, mock := newSourceTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO arxiv_rss_sources (name, url, custom_prompt) VALUES ($1, $2, $3) RETURNING id, name, url, custom_prompt")).
		WithArgs("arXiv cs.CL", "https://arxiv.org/rss/cs.CL", "default paper prompt").
		WillReturnRows(pgxmock.NewRows(sourceColumns()).
			AddRow(5, "arXiv cs.CL", "https://arxiv.org/rss/cs.CL", "default paper prompt"))

	src, err := st.CreateSource(context.Background(), ContentTypePaper, Source{
		Name: "arXiv cs.CL",
		URL:  "https://arxiv.org/rss/cs.CL",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, src.ID)
	assert.Equal(t, "default paper prompt", src.CustomPrompt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSource_DuplicateURL(t *testing.T) {
	t.Parallel()

	st, mock := newSourceTestStore(t)

	mock.ExpectQuery("INSERT INTO rss_sources").
		WithArgs("TechCrunch2", "https://techcrunch.com/feed", "custom").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	_, err := st.CreateSource(context.Background(), ContentTypeNews, Source{
		Name:         "TechCrunch2",
		URL:          "https://techcrunch.com/feed",
		CustomPrompt: "custom",
	})
	require.ErrorIs(t, err, ErrDuplicateSource)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSource_FullReplace(t *testing.T) {
	t.Parallel()

	st, mock := newSourceTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE rss_sources SET name = $1, url = $2, custom_prompt = $3 WHERE id = $4 RETURNING id, name, url, custom_prompt")).
		WithArgs("Renamed", "https://example.com/feed", "", 3).
		WillReturnRows(pgxmock.NewRows(sourceColumns()).
			AddRow(3, "Renamed", "https://example.com/feed", ""))

	src, err := st.UpdateSource(context.Background(), ContentTypeNews, Source{
		ID:   3,
		Name: "Renamed",
		URL:  "https://example.com/feed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", src.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSource_MissingID(t *testing.T) {
	t.Parallel()

	st, mock := newSourceTestStore(t)

	mock.ExpectQuery("UPDATE rss_sources").
		WithArgs("x", "https://x.dev/feed", "", 99).
		WillReturnError(pgx.ErrNoRows)

	_, err := st.UpdateSource(context.Background(), ContentTypeNews, Source{ID: 99, Name: "x", URL: "https://x.dev/feed"})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSource_ReturnsDeletedRow(t *testing.T) {
	t.Parallel()

	st, mock := newSourceTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM rss_sources WHERE id = $1 RETURNING id, name, url, custom_prompt")).
		WithArgs(4).
		WillReturnRows(pgxmock.NewRows(sourceColumns()).
			AddRow(4, "Old", "https://old.dev/feed", "p"))

	src, err := st.DeleteSource(context.Background(), ContentTypeNews, 4)
	require.NoError(t, err)
	assert.Equal(t, "Old", src.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSource_MissingID(t *testing.T) {
	t.Parallel()

	st, mock := newSourceTestStore(t)

	mock.ExpectQuery("DELETE FROM rss_sources").
		WithArgs(404).
		WillReturnError(pgx.ErrNoRows)

	_, err := st.DeleteSource(context.Background(), ContentTypeNews, 404)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: pgUniqueViolation}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
}
