package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the Postgres error code for a unique constraint hit.
const pgUniqueViolation = "23505"

// ListSources returns all source definitions for the content type, ordered
// by id.
func (s *Store) ListSources(ctx context.Context, ct ContentType) ([]Source, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf("SELECT id, name, url, custom_prompt FROM %s ORDER BY id ASC", ct.sourcesTable()))
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	sources := []Source{}
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.ID, &src.Name, &src.URL, &src.CustomPrompt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

// CreateSource inserts a source definition. A blank custom prompt takes the
// content type's configured default. A duplicate URL reports
// ErrDuplicateSource and creates nothing.
func (s *Store) CreateSource(ctx context.Context, ct ContentType, src Source) (Source, error) {
	if src.CustomPrompt == "" {
		src.CustomPrompt = s.defaultPrompt(ct)
	}
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf("INSERT INTO %s (name, url, custom_prompt) VALUES ($1, $2, $3) RETURNING id, name, url, custom_prompt", ct.sourcesTable()),
		src.Name, src.URL, src.CustomPrompt,
	).Scan(&src.ID, &src.Name, &src.URL, &src.CustomPrompt)
	if err != nil {
		if isUniqueViolation(err) {
			return Source{}, ErrDuplicateSource
		}
		return Source{}, fmt.Errorf("insert source: %w", err)
	}
	return src, nil
}

// UpdateSource replaces every mutable field of the source with the given id.
func (s *Store) UpdateSource(ctx context.Context, ct ContentType, src Source) (Source, error) {
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf("UPDATE %s SET name = $1, url = $2, custom_prompt = $3 WHERE id = $4 RETURNING id, name, url, custom_prompt", ct.sourcesTable()),
		src.Name, src.URL, src.CustomPrompt, src.ID,
	).Scan(&src.ID, &src.Name, &src.URL, &src.CustomPrompt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Source{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return Source{}, ErrDuplicateSource
		}
		return Source{}, fmt.Errorf("update source: %w", err)
	}
	return src, nil
}

// DeleteSource removes the source row only; articles referencing its name by
// value stay put.
func (s *Store) DeleteSource(ctx context.Context, ct ContentType, id int) (Source, error) {
	var src Source
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = $1 RETURNING id, name, url, custom_prompt", ct.sourcesTable()), id,
	).Scan(&src.ID, &src.Name, &src.URL, &src.CustomPrompt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Source{}, ErrNotFound
		}
		return Source{}, fmt.Errorf("delete source: %w", err)
	}
	return src, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
