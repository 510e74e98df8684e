// Package store provides Postgres-backed persistence for articles and
// RSS sources, partitioned by content type.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContentType selects which pair of tables (sources/articles) an operation
// targets.
type ContentType string

// Supported content types.
const (
	ContentTypeNews  ContentType = "news"
	ContentTypePaper ContentType = "paper"
)

// ParseContentType normalizes a query-string type value. Anything other than
// "paper" is treated as news, matching the dashboard's historical behavior.
func ParseContentType(s string) ContentType {
	if strings.EqualFold(strings.TrimSpace(s), string(ContentTypePaper)) {
		return ContentTypePaper
	}
	return ContentTypeNews
}

func (ct ContentType) sourcesTable() string {
	if ct == ContentTypePaper {
		return "arxiv_rss_sources"
	}
	return "rss_sources"
}

func (ct ContentType) articlesTable() string {
	if ct == ContentTypePaper {
		return "arxiv_processed_articles"
	}
	return "processed_articles"
}

// managedDBDomains lists hosts of managed Postgres offerings that reject
// plaintext connections; a DSN pointing at one gets sslmode=require unless
// the caller already chose an sslmode.
var managedDBDomains = []string{"rlwy.net", "railway.internal"}

// Config controls the Postgres connection pool and source defaults.
type Config struct {
	DSN      string
	MaxConns int32
	MinConns int32

	// DefaultPrompts supplies the custom_prompt applied to sources created
	// without one, keyed by content type.
	DefaultPrompts map[ContentType]string
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// Store issues single-statement queries against the article and source
// tables. It owns the connection pool; construct once at startup and Close
// on shutdown.
type Store struct {
	pool           querier
	defaultPrompts map[ContentType]string
}

// New connects a Store using the provided config and verifies the connection
// with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(normalizeDSN(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool, defaultPrompts: cfg.DefaultPrompts}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for testing).
func NewWithPool(pool querier, defaultPrompts map[ContentType]string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool, defaultPrompts: defaultPrompts}, nil
}

// Ping reports whether the store can reach Postgres.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) defaultPrompt(ct ContentType) string {
	return s.defaultPrompts[ct]
}

// normalizeDSN forces TLS for managed-DB hosts that require it. A DSN that
// already carries an sslmode is left alone.
func normalizeDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return dsn
	}
	host := u.Hostname()
	managed := false
	for _, domain := range managedDBDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			managed = true
			break
		}
	}
	if !managed {
		return dsn
	}
	q := u.Query()
	if q.Get("sslmode") != "" {
		return dsn
	}
	q.Set("sslmode", "require")
	u.RawQuery = q.Encode()
	return u.String()
}
