// Package api exposes the JSON HTTP interface for the dashboard service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/feedboard/feedboard/internal/metrics"
	"github.com/feedboard/feedboard/internal/store"
	"github.com/feedboard/feedboard/internal/trigger"
)

// Store is the persistence surface the handlers consume.
type Store interface {
	ListArticles(ctx context.Context, ct store.ContentType, filter store.ArticleFilter) (store.ArticlePage, error)
	Metadata(ctx context.Context, ct store.ContentType) (store.Metadata, error)
	ClearArticles(ctx context.Context, ct store.ContentType, rssSource string) (int64, error)
	ListSources(ctx context.Context, ct store.ContentType) ([]store.Source, error)
	CreateSource(ctx context.Context, ct store.ContentType, src store.Source) (store.Source, error)
	UpdateSource(ctx context.Context, ct store.ContentType, src store.Source) (store.Source, error)
	DeleteSource(ctx context.Context, ct store.ContentType, id int) (store.Source, error)
	Ping(ctx context.Context) error
}

// Gate is the admin session check the admin routes sit behind.
type Gate interface {
	Login(username, password string) bool
	IssueCookie() (*http.Cookie, error)
	Authenticated(r *http.Request) bool
}

// Trigger fires the external scraping webhook.
type Trigger interface {
	Fire(ctx context.Context, auth trigger.BasicAuth) error
}

// Server wires HTTP handlers to the store, session gate and trigger proxy.
type Server struct {
	router  chi.Router
	store   Store
	gate    Gate
	trigger Trigger
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(st Store, gate Gate, proxy Trigger, logger *zap.Logger) *Server {
	metrics.Init()

	s := &Server{
		store:   st,
		gate:    gate,
		trigger: proxy,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/metadata", s.getMetadata)
		r.Get("/articles", s.getArticles)

		r.Route("/rss-sources", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/", s.listSources)
			r.Post("/", s.createSource)
			r.Put("/{id}", s.updateSource)
			r.Delete("/{id}", s.deleteSource)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Get("/check-session", s.checkSession)

			r.Group(func(r chi.Router) {
				r.Use(s.requireSession)
				r.Delete("/clear-articles", s.clearArticles)
				r.Get("/trigger-update", s.triggerUpdate)
				r.Post("/trigger-update", s.triggerUpdate)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("Readiness ping failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requireSession rejects requests without a valid admin session. It never
// leaks partial data on failure.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.gate.Authenticated(r) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

// requestIDFrom extracts the request ID stamped by requestIDMiddleware.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
