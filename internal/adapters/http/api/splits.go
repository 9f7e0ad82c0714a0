package api

import (
	"fmt"
	"net/http"
	"strconv"
)

const defaultComboSize = 3

// handleCombos handles GET /combos?size=K&min_minutes=M.
func (s *Server) handleCombos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	size := defaultComboSize
	if raw := q.Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			s.fail(w, r, fmt.Errorf("size %q: %w", raw, ErrBadRequest))
			return
		}
		size = v
	}

	var minMinutes float64
	if raw := q.Get("min_minutes"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			s.fail(w, r, fmt.Errorf("min_minutes %q: %w", raw, ErrBadRequest))
			return
		}
		minMinutes = v
	}

	rows, err := s.deps.Combos(r.Context(), size, minMinutes)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handlePlayers handles GET /players?q=NAME.
func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.deps.Players(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
