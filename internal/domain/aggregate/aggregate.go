// Package aggregate groups stints by lineup and sums their base counting
// statistics. Derived ratios are never summed here; see package derive.
package aggregate

import (
	"sort"

	"github.com/okian/lineups/internal/domain/lineup"
	"github.com/okian/lineups/internal/domain/model"
)

// Group is one lineup's summed base stats within a scope.
type Group struct {
	Lineup lineup.Lineup
	Stints int
	Games  []string // distinct provenance tags, in first-seen order
	Totals model.BaseStats
}

// Resolver is the subset of lineup.Resolver the aggregator needs.
type Resolver interface {
	Resolve(slots [model.SlotCount]model.Slot) lineup.Lineup
}

// ByLineup resolves each stint's lineup and sums base stats per key. Output is
// ordered by key so a scope always produces the same sequence.
func ByLineup(stints []model.Stint, r Resolver) []Group {
	idx := make(map[string]int)
	var groups []Group
	seenGame := make(map[string]map[string]bool)

	for _, s := range stints {
		l := r.Resolve(s.Slots)
		i, ok := idx[l.Key]
		if !ok {
			i = len(groups)
			idx[l.Key] = i
			groups = append(groups, Group{Lineup: l})
			seenGame[l.Key] = make(map[string]bool)
		}
		g := &groups[i]
		g.Stints++
		g.Totals = g.Totals.Add(s.Stats)
		if s.Game != "" && !seenGame[l.Key][s.Game] {
			seenGame[l.Key][s.Game] = true
			g.Games = append(g.Games, s.Game)
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Lineup.Key < groups[j].Lineup.Key
	})
	return groups
}
