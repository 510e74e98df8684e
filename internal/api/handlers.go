package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/feedboard/feedboard/internal/metrics"
	"github.com/feedboard/feedboard/internal/store"
	"github.com/feedboard/feedboard/internal/trigger"
)

// dateOnly is the format the dashboard's date pickers submit.
const dateOnly = "2006-01-02"

func (s *Server) getMetadata(w http.ResponseWriter, r *http.Request) {
	ct := store.ParseContentType(r.URL.Query().Get("type"))
	meta, err := s.store.Metadata(r.Context(), ct)
	if err != nil {
		s.storeError(w, err, "Failed to fetch metadata")
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) getArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ct := store.ParseContentType(q.Get("type"))

	filter := store.ArticleFilter{
		Source:  q.Get("source"),
		Keyword: q.Get("keyword"),
		Search:  q.Get("search"),
		// Malformed numerics fall back to defaults rather than failing.
		Page:  atoiOrZero(q.Get("page")),
		Limit: atoiOrZero(q.Get("limit")),
	}

	startDate, err := parseDateBound(q.Get("startDate"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	endDate, err := parseDateBound(q.Get("endDate"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	filter.StartDate = startDate
	filter.EndDate = endDate

	metrics.ObserveArticleQuery(string(ct))

	page, err := s.store.ListArticles(r.Context(), ct, filter)
	if err != nil {
		s.storeError(w, err, "Failed to fetch articles")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) listSources(w http.ResponseWriter, r *http.Request) {
	ct := store.ParseContentType(r.URL.Query().Get("type"))
	sources, err := s.store.ListSources(r.Context(), ct)
	if err != nil {
		s.storeError(w, err, "Failed to fetch sources")
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

type sourceRequest struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	CustomPrompt string `json:"custom_prompt"`
	Type         string `json:"type"`
}

func (s *Server) createSource(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	ct := store.ParseContentType(req.Type)
	src, err := s.store.CreateSource(r.Context(), ct, store.Source{
		Name:         req.Name,
		URL:          req.URL,
		CustomPrompt: req.CustomPrompt,
	})
	if err != nil {
		s.storeError(w, err, "Failed to add source")
		return
	}
	writeJSON(w, http.StatusCreated, src)
}

func (s *Server) updateSource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid source id")
		return
	}
	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ct := store.ParseContentType(firstNonEmpty(req.Type, r.URL.Query().Get("type")))
	src, err := s.store.UpdateSource(r.Context(), ct, store.Source{
		ID:           id,
		Name:         req.Name,
		URL:          req.URL,
		CustomPrompt: req.CustomPrompt,
	})
	if err != nil {
		s.storeError(w, err, "Failed to update source")
		return
	}
	writeJSON(w, http.StatusOK, src)
}

func (s *Server) deleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid source id")
		return
	}
	ct := store.ParseContentType(r.URL.Query().Get("type"))
	src, err := s.store.DeleteSource(r.Context(), ct, id)
	if err != nil {
		s.storeError(w, err, "Failed to delete source")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": src})
}

func (s *Server) clearArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rssSource := q.Get("rss_source")
	if rssSource == "" {
		writeError(w, http.StatusBadRequest, "rss_source parameter is required")
		return
	}
	ct := store.ParseContentType(q.Get("type"))
	count, err := s.store.ClearArticles(r.Context(), ct, rssSource)
	if err != nil {
		s.storeError(w, err, "Failed to delete articles")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": count})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !s.gate.Login(req.Username, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	cookie, err := s.gate.IssueCookie()
	if err != nil {
		s.logger.Error("Session token signing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) checkSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": s.gate.Authenticated(r)})
}

func (s *Server) triggerUpdate(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if r.Body != nil {
		// The body is optional; GET triggers carry none.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	err := s.trigger.Fire(r.Context(), trigger.BasicAuth{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		var statusErr *trigger.StatusError
		if errors.As(err, &statusErr) {
			metrics.ObserveTrigger("upstream_error")
			writeError(w, statusErr.Code, fmt.Sprintf("Backend returned %d: %s", statusErr.Code, statusErr.Body))
			return
		}
		metrics.ObserveTrigger("proxy_failure")
		s.logger.Error("Trigger proxy failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to trigger backend")
		return
	}
	metrics.ObserveTrigger("ok")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Triggered successfully"})
}

// storeError maps store sentinels onto HTTP statuses; anything else logs the
// detail and surfaces a generic 500.
func (s *Server) storeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Source not found")
	case errors.Is(err, store.ErrDuplicateSource):
		writeError(w, http.StatusConflict, "RSS Source URL already exists")
	default:
		s.logger.Error("Store operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// parseDateBound accepts RFC 3339 timestamps or date-only values. A date-only
// end bound expands to end-of-day so the range stays inclusive.
func parseDateBound(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", value, err)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
