package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/okian/lineups/internal/adapters/repository"
	"github.com/okian/lineups/internal/domain/derive"
	"github.com/okian/lineups/internal/domain/interval"
	"github.com/okian/lineups/internal/domain/model"
	"github.com/okian/lineups/internal/domain/splits"
)

func (s *Service) setRoster(r model.Roster) {
	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()
	s.roster = r
}

func (s *Service) currentRoster() model.Roster {
	s.rosterMu.RLock()
	defer s.rosterMu.RUnlock()
	return s.roster
}

// RunID returns the id of the stored report, or "" before the first run.
func (s *Service) RunID(ctx context.Context) string {
	rep, err := s.store.Latest(ctx)
	if err != nil {
		return ""
	}
	return rep.RunID
}

// TopLineups returns up to n lineups of the latest report ordered by metric.
func (s *Service) TopLineups(ctx context.Context, metric string, n int) ([]derive.Row, error) {
	return s.store.TopN(ctx, metric, n)
}

// Lineup returns one lineup of the latest report.
func (s *Service) Lineup(ctx context.Context, key string) (derive.Row, error) {
	return s.store.Lineup(ctx, key)
}

// LineupProgression returns one lineup's rows across intervals.
func (s *Service) LineupProgression(ctx context.Context, key string) ([]interval.Row, error) {
	return s.store.Progression(ctx, key)
}

// Combos builds the size-player combination table from the latest report.
func (s *Service) Combos(ctx context.Context, size int, minMinutes float64) ([]splits.ComboRow, error) {
	rep, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return splits.Combos(rep.Lineups, size, minMinutes)
}

// Players returns the individual split of the latest report. A non-empty
// query keeps players whose label or roster name fuzzy-matches it, closest
// first; otherwise rows keep PM_p40 order.
func (s *Service) Players(ctx context.Context, query string) ([]splits.PlayerRow, error) {
	rep, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	for _, p := range s.currentRoster().Players() {
		names[p.Label] = p.Name
	}

	rows := splits.Individuals(rep.Lineups, rep.Team)
	out := make([]splits.PlayerRow, 0, len(rows))
	query = strings.TrimSpace(query)
	dist := map[string]int{}
	for _, r := range rows {
		r.Name = names[r.Player]
		if query != "" {
			d := matchDistance(query, r.Player, r.Name)
			if d < 0 {
				continue
			}
			dist[r.Player] = d
		}
		out = append(out, r)
	}
	if query != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return dist[out[i].Player] < dist[out[j].Player]
		})
	}
	return out, nil
}

// matchDistance returns the best fuzzy distance of query against the label
// and name, or -1 when neither matches.
func matchDistance(query, label, name string) int {
	best := -1
	for _, target := range []string{label, name} {
		if target == "" {
			continue
		}
		if d := fuzzy.RankMatchNormalizedFold(query, target); d >= 0 && (best < 0 || d < best) {
			best = d
		}
	}
	return best
}

// IsNotFound reports whether err means the report or lineup does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrNoReport)
}
