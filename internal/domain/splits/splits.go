// Package splits re-cuts a derived lineup table into N-player combinations and
// individual players. Like the lineup table, every rating is re-derived from
// summed points, possessions and time.
package splits

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/lineups/internal/domain/derive"
	"github.com/okian/lineups/internal/domain/lineup"
	"github.com/okian/lineups/internal/domain/model"
)

// ErrComboSize is returned for combination sizes outside 2..5.
var ErrComboSize = errors.New("combo size must be between 2 and 5")

// ComboRow is one N-player combination's totals and ratings.
type ComboRow struct {
	Players    string  `csv:"players" json:"players" msgpack:"players"`
	Size       int     `csv:"size" json:"size" msgpack:"size"`
	Lineups    int     `csv:"lineups" json:"lineups" msgpack:"lineups"`
	Minutes    float64 `csv:"minutes" json:"minutes" msgpack:"minutes"`
	PtsFor     float64 `csv:"pts_for" json:"pts_for" msgpack:"pts_for"`
	PtsAgainst float64 `csv:"pts_against" json:"pts_against" msgpack:"pts_against"`
	OPoss      float64 `csv:"o_poss" json:"o_poss" msgpack:"o_poss"`
	DPoss      float64 `csv:"d_poss" json:"d_poss" msgpack:"d_poss"`
	PlusMinus  float64 `csv:"plus_minus" json:"plus_minus" msgpack:"plus_minus"`
	OffRtg     float64 `csv:"off_rtg" json:"off_rtg" msgpack:"off_rtg"`
	DefRtg     float64 `csv:"def_rtg" json:"def_rtg" msgpack:"def_rtg"`
	NetRtg     float64 `csv:"net_rtg" json:"net_rtg" msgpack:"net_rtg"`
	PMp40      float64 `csv:"PM_p40" json:"PM_p40" msgpack:"PM_p40"`
	RelPMp40   float64 `csv:"rel_PM_p40" json:"rel_PM_p40" msgpack:"rel_PM_p40"`
	RelOffRtg  float64 `csv:"rel_off_rtg" json:"rel_off_rtg" msgpack:"rel_off_rtg"`
	RelDefRtg  float64 `csv:"rel_def_rtg" json:"rel_def_rtg" msgpack:"rel_def_rtg"`
	RelNetRtg  float64 `csv:"rel_net_rtg" json:"rel_net_rtg" msgpack:"rel_net_rtg"`

	Members []string `csv:"-" json:"members" msgpack:"members"`
}

// PlayerRow is one player's on-floor totals across every lineup they appear in.
type PlayerRow struct {
	Player     string  `csv:"player" json:"player" msgpack:"player"`
	Name       string  `csv:"name" json:"name,omitempty" msgpack:"name,omitempty"`
	Lineups    int     `csv:"lineups" json:"lineups" msgpack:"lineups"`
	Minutes    float64 `csv:"minutes" json:"minutes" msgpack:"minutes"`
	PlusMinus  float64 `csv:"plus_minus" json:"plus_minus" msgpack:"plus_minus"`
	OPoss      float64 `csv:"o_poss" json:"o_poss" msgpack:"o_poss"`
	DPoss      float64 `csv:"d_poss" json:"d_poss" msgpack:"d_poss"`
	PtsFor     float64 `csv:"pts_for" json:"pts_for" msgpack:"pts_for"`
	PtsAgainst float64 `csv:"pts_against" json:"pts_against" msgpack:"pts_against"`
	OffRtg     float64 `csv:"off_rtg" json:"off_rtg" msgpack:"off_rtg"`
	DefRtg     float64 `csv:"def_rtg" json:"def_rtg" msgpack:"def_rtg"`
	NetRtg     float64 `csv:"net_rtg" json:"net_rtg" msgpack:"net_rtg"`
	PMp40      float64 `csv:"PM_p40" json:"PM_p40" msgpack:"PM_p40"`
	TeamPMp40  float64 `csv:"team_PM_p40" json:"team_PM_p40" msgpack:"team_PM_p40"`
	TeamOffRtg float64 `csv:"team_off_rtg" json:"team_off_rtg" msgpack:"team_off_rtg"`
	TeamDefRtg float64 `csv:"team_def_rtg" json:"team_def_rtg" msgpack:"team_def_rtg"`
}

type totals struct {
	lineups    int
	secs       float64
	ptsFor     float64
	ptsAgainst float64
	plusMinus  float64
	oPoss      float64
	dPoss      float64
}

func (t *totals) add(r derive.Row) {
	t.lineups++
	t.secs += r.Secs
	t.ptsFor += r.PtsFor
	t.ptsAgainst += r.PtsAgainst
	t.plusMinus += r.PlusMinus
	t.oPoss += r.OPoss
	t.dPoss += r.DPoss
}

// Combos groups every size-player subset of each lineup. Subsets keep the
// lineup's height order, so the same players always form the same key.
// Team baselines sum over all combo rows before the minimum-minutes filter is
// applied; a lineup contributes to each of its subsets, so those totals count
// its time several times over.
func Combos(rows []derive.Row, size int, minMinutes float64) ([]ComboRow, error) {
	if size < 2 || size > model.SlotCount {
		return nil, fmt.Errorf("%w: %d", ErrComboSize, size)
	}

	idx := map[string]int{}
	var keys []string
	var members [][]string
	var sums []totals

	for _, r := range rows {
		players := r.Members
		if len(players) == 0 {
			players = strings.Split(r.Lineup, lineup.Separator)
		}
		for _, combo := range combinations(players, size) {
			if containsMissing(combo) {
				continue
			}
			k := strings.Join(combo, lineup.Separator)
			i, ok := idx[k]
			if !ok {
				i = len(keys)
				idx[k] = i
				keys = append(keys, k)
				members = append(members, combo)
				sums = append(sums, totals{})
			}
			sums[i].add(r)
		}
	}

	out := make([]ComboRow, len(keys))
	var team totals
	for i, k := range keys {
		s := sums[i]
		// Combo plus-minus is points for minus against, not the summed net.
		s.plusMinus = s.ptsFor - s.ptsAgainst
		out[i] = ComboRow{
			Players:    k,
			Size:       size,
			Lineups:    s.lineups,
			Minutes:    derive.Minutes(s.secs),
			PtsFor:     s.ptsFor,
			PtsAgainst: s.ptsAgainst,
			OPoss:      s.oPoss,
			DPoss:      s.dPoss,
			PlusMinus:  s.plusMinus,
			OffRtg:     derive.Rating(s.ptsFor, s.oPoss),
			DefRtg:     derive.Rating(s.ptsAgainst, s.dPoss),
			PMp40:      derive.PerForty(s.plusMinus, derive.Minutes(s.secs)),
			Members:    members[i],
		}
		out[i].NetRtg = out[i].OffRtg - out[i].DefRtg

		team.secs += s.secs
		team.ptsFor += s.ptsFor
		team.ptsAgainst += s.ptsAgainst
		team.plusMinus += s.plusMinus
		team.oPoss += s.oPoss
		team.dPoss += s.dPoss
	}

	teamOff := derive.Round3(derive.Rating(team.ptsFor, team.oPoss))
	teamDef := derive.Round3(derive.Rating(team.ptsAgainst, team.dPoss))
	teamNet := derive.Round3(teamOff - teamDef)
	teamPM := derive.Round3(derive.PerForty(team.plusMinus, derive.Minutes(team.secs)))

	filtered := out[:0]
	for _, c := range out {
		for _, p := range []*float64{&c.Minutes, &c.PtsFor, &c.PtsAgainst, &c.OPoss, &c.DPoss,
			&c.PlusMinus, &c.OffRtg, &c.DefRtg, &c.NetRtg, &c.PMp40} {
			*p = derive.Round3(*p)
		}
		c.RelPMp40 = derive.Round3(c.PMp40 - teamPM)
		c.RelOffRtg = derive.Round3(c.OffRtg - teamOff)
		c.RelDefRtg = derive.Round3(c.DefRtg - teamDef)
		c.RelNetRtg = derive.Round3(c.NetRtg - teamNet)
		if c.Minutes >= minMinutes {
			filtered = append(filtered, c)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.Minutes != b.Minutes {
			return a.Minutes > b.Minutes
		}
		if a.NetRtg != b.NetRtg {
			return a.NetRtg > b.NetRtg
		}
		return a.Players < b.Players
	})
	return filtered, nil
}

// Individuals explodes each lineup into its players and re-derives ratings
// from the summed totals. Team columns are copied from the lineup baseline.
// Name is left for the caller to fill from a roster.
func Individuals(rows []derive.Row, team derive.Baseline) []PlayerRow {
	idx := map[string]int{}
	var names []string
	var sums []totals

	for _, r := range rows {
		players := r.Members
		if len(players) == 0 {
			players = strings.Split(r.Lineup, lineup.Separator)
		}
		for _, p := range players {
			if p == lineup.MissingLabel {
				continue
			}
			i, ok := idx[p]
			if !ok {
				i = len(names)
				idx[p] = i
				names = append(names, p)
				sums = append(sums, totals{})
			}
			sums[i].add(r)
		}
	}

	out := make([]PlayerRow, len(names))
	for i, n := range names {
		s := sums[i]
		minutes := derive.Minutes(s.secs)
		off := derive.Rating(s.ptsFor, s.oPoss)
		def := derive.Rating(s.ptsAgainst, s.dPoss)
		out[i] = PlayerRow{
			Player:     n,
			Lineups:    s.lineups,
			Minutes:    derive.Round3(minutes),
			PlusMinus:  derive.Round3(s.plusMinus),
			OPoss:      derive.Round3(s.oPoss),
			DPoss:      derive.Round3(s.dPoss),
			PtsFor:     derive.Round3(s.ptsFor),
			PtsAgainst: derive.Round3(s.ptsAgainst),
			OffRtg:     derive.Round3(off),
			DefRtg:     derive.Round3(def),
			NetRtg:     derive.Round3(off - def),
			PMp40:      derive.Round3(derive.PerForty(s.plusMinus, minutes)),
			TeamPMp40:  team.TeamPMp40,
			TeamOffRtg: team.TeamOffRtg,
			TeamDefRtg: team.TeamDefRtg,
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PMp40 != out[j].PMp40 {
			return out[i].PMp40 > out[j].PMp40
		}
		return out[i].Player < out[j].Player
	})
	return out
}

// combinations returns every k-subset of items, preserving input order
// within each subset.
func combinations(items []string, k int) [][]string {
	var out [][]string
	if k > len(items) {
		return out
	}
	pick := make([]int, k)
	for i := range pick {
		pick[i] = i
	}
	for {
		c := make([]string, k)
		for i, p := range pick {
			c[i] = items[p]
		}
		out = append(out, c)

		i := k - 1
		for i >= 0 && pick[i] == len(items)-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		pick[i]++
		for j := i + 1; j < k; j++ {
			pick[j] = pick[j-1] + 1
		}
	}
}

func containsMissing(labels []string) bool {
	for _, l := range labels {
		if l == lineup.MissingLabel {
			return true
		}
	}
	return false
}
