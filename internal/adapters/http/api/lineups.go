package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleLineups handles GET /lineups?sort=METRIC&limit=N.
func (s *Server) handleLineups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	metric := strings.TrimSpace(q.Get("sort"))
	if metric == "" {
		metric = "minutes"
	}

	n := min(defaultLimit, s.maxLimit)
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			s.fail(w, r, fmt.Errorf("limit %q: %w", raw, ErrBadRequest))
			return
		}
		if v > s.maxLimit {
			s.fail(w, r, fmt.Errorf("limit %d > %d: %w", v, s.maxLimit, ErrLimitExceeded))
			return
		}
		n = v
	}

	rows, err := s.deps.TopLineups(r.Context(), metric, n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleLineup handles GET /lineups/{key}.
func (s *Server) handleLineup(w http.ResponseWriter, r *http.Request) {
	key, err := lineupKey(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	row, err := s.deps.Lineup(r.Context(), key)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleProgression handles GET /lineups/{key}/progression and
// GET /progression?lineup=KEY.
func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	key, err := lineupKey(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.deps.LineupProgression(r.Context(), key)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// lineupKey reads the key path parameter, or the lineup query parameter on
// routes without one. Keys may hold "?" for missing slots, which clients
// send escaped.
func lineupKey(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "key")
	if raw == "" {
		key := r.URL.Query().Get("lineup")
		if strings.TrimSpace(key) == "" {
			return "", fmt.Errorf("missing lineup: %w", ErrBadRequest)
		}
		return key, nil
	}
	key, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("lineup key %q: %w", raw, ErrBadRequest)
	}
	return key, nil
}
