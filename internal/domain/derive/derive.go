// Package derive computes rate, efficiency and rating statistics from summed
// base counts, plus scope-wide team baselines and each lineup's value
// relative to them.
//
// Every derived value is computed from sums. Per-lineup rates are never
// averaged or added; the team baseline is re-derived from the summed base
// columns of all lineup rows in the scope.
package derive

import (
	"sort"

	"github.com/okian/lineups/internal/domain/aggregate"
	"gonum.org/v1/gonum/floats"
)

// Baseline holds scope-wide team totals. It is copied onto every row.
type Baseline struct {
	TeamMinutes    float64 `csv:"team_minutes" json:"team_minutes" msgpack:"team_minutes"`
	TeamPlusMinus  float64 `csv:"team_plus_minus" json:"team_plus_minus" msgpack:"team_plus_minus"`
	TeamPtsFor     float64 `csv:"team_pts_for" json:"team_pts_for" msgpack:"team_pts_for"`
	TeamPtsAgainst float64 `csv:"team_pts_against" json:"team_pts_against" msgpack:"team_pts_against"`
	TeamOPoss      float64 `csv:"team_o_poss" json:"team_o_poss" msgpack:"team_o_poss"`
	TeamDPoss      float64 `csv:"team_d_poss" json:"team_d_poss" msgpack:"team_d_poss"`
	TeamPossTotal  float64 `csv:"team_poss_total" json:"team_poss_total" msgpack:"team_poss_total"`
	TeamOffRtg     float64 `csv:"team_off_rtg" json:"team_off_rtg" msgpack:"team_off_rtg"`
	TeamDefRtg     float64 `csv:"team_def_rtg" json:"team_def_rtg" msgpack:"team_def_rtg"`
	TeamNetRtg     float64 `csv:"team_net_rtg" json:"team_net_rtg" msgpack:"team_net_rtg"`
	TeamPMp40      float64 `csv:"team_PM_p40" json:"team_PM_p40" msgpack:"team_PM_p40"`
}

// Row is one lineup's summed base stats with every derived field. Field order
// is the documented output column order.
type Row struct {
	Lineup     string  `csv:"lineup" json:"lineup" msgpack:"lineup"`
	PossTotal  float64 `csv:"poss_total" json:"poss_total" msgpack:"poss_total"`
	PMp40      float64 `csv:"PM_p40" json:"PM_p40" msgpack:"PM_p40"`
	PlusMinus  float64 `csv:"plus_minus" json:"plus_minus" msgpack:"plus_minus"`
	NetRtg     float64 `csv:"net_rtg" json:"net_rtg" msgpack:"net_rtg"`
	Minutes    float64 `csv:"minutes" json:"minutes" msgpack:"minutes"`
	OPoss      float64 `csv:"o_poss" json:"o_poss" msgpack:"o_poss"`
	DPoss      float64 `csv:"d_poss" json:"d_poss" msgpack:"d_poss"`
	PtsFor     float64 `csv:"pts_for" json:"pts_for" msgpack:"pts_for"`
	PtsAgainst float64 `csv:"pts_against" json:"pts_against" msgpack:"pts_against"`
	NetPts     float64 `csv:"net_pts" json:"net_pts" msgpack:"net_pts"`
	Secs       float64 `csv:"secs" json:"secs" msgpack:"secs"`

	OEFG   float64 `csv:"o_eFG%" json:"o_eFG%" msgpack:"o_eFG%"`
	OTOV   float64 `csv:"o_TOV%" json:"o_TOV%" msgpack:"o_TOV%"`
	OORBR  float64 `csv:"o_orbR" json:"o_orbR" msgpack:"o_orbR"`
	OFTAR  float64 `csv:"o_ftaR" json:"o_ftaR" msgpack:"o_ftaR"`
	OffRtg float64 `csv:"off_rtg" json:"off_rtg" msgpack:"off_rtg"`
	DEFG   float64 `csv:"d_eFG%" json:"d_eFG%" msgpack:"d_eFG%"`
	DTOV   float64 `csv:"d_TOV%" json:"d_TOV%" msgpack:"d_TOV%"`
	DORBR  float64 `csv:"d_orbR" json:"d_orbR" msgpack:"d_orbR"`
	DFTAR  float64 `csv:"d_ftaR" json:"d_ftaR" msgpack:"d_ftaR"`
	DefRtg float64 `csv:"def_rtg" json:"def_rtg" msgpack:"def_rtg"`

	RelPMp40  float64 `csv:"rel_PM_p40" json:"rel_PM_p40" msgpack:"rel_PM_p40"`
	RelOffRtg float64 `csv:"rel_off_rtg" json:"rel_off_rtg" msgpack:"rel_off_rtg"`
	RelDefRtg float64 `csv:"rel_def_rtg" json:"rel_def_rtg" msgpack:"rel_def_rtg"`
	RelNetRtg float64 `csv:"rel_net_rtg" json:"rel_net_rtg" msgpack:"rel_net_rtg"`

	Baseline

	FGM         float64 `csv:"fgm" json:"fgm" msgpack:"fgm"`
	FGA         float64 `csv:"fga" json:"fga" msgpack:"fga"`
	FGM3        float64 `csv:"fgm3" json:"fgm3" msgpack:"fgm3"`
	FGA3        float64 `csv:"fga3" json:"fga3" msgpack:"fga3"`
	FTA         float64 `csv:"fta" json:"fta" msgpack:"fta"`
	TOV         float64 `csv:"tov" json:"tov" msgpack:"tov"`
	ORB         float64 `csv:"orb" json:"orb" msgpack:"orb"`
	FGMAllowed  float64 `csv:"fgm_allowed" json:"fgm_allowed" msgpack:"fgm_allowed"`
	FGAAllowed  float64 `csv:"fga_allowed" json:"fga_allowed" msgpack:"fga_allowed"`
	FGM3Allowed float64 `csv:"fgm3_allowed" json:"fgm3_allowed" msgpack:"fgm3_allowed"`
	FGA3Allowed float64 `csv:"fga3_allowed" json:"fga3_allowed" msgpack:"fga3_allowed"`
	FTAAllowed  float64 `csv:"fta_allowed" json:"fta_allowed" msgpack:"fta_allowed"`
	TOVForced   float64 `csv:"tov_forced" json:"tov_forced" msgpack:"tov_forced"`
	ORBAllowed  float64 `csv:"orb_allowed" json:"orb_allowed" msgpack:"orb_allowed"`

	// Members are the player labels in key order. Not part of the tabular output.
	Members []string `csv:"-" json:"members,omitempty" msgpack:"members,omitempty"`
}

// Table is the immutable result of deriving one scope.
type Table struct {
	Rows []Row
	Team Baseline
}

// Derive computes every derived field for one scope's lineup groups. Rows are
// ordered by minutes descending, then lineup key ascending.
func Derive(groups []aggregate.Group) Table {
	rows := make([]Row, len(groups))
	for i, g := range groups {
		rows[i] = lineupRow(g)
	}

	team := ComputeBaseline(rows)

	for i := range rows {
		roundRow(&rows[i])
	}
	team = roundBaseline(team)

	for i := range rows {
		ApplyBaseline(&rows[i], team)
	}

	SortByMinutes(rows)
	return Table{Rows: rows, Team: team}
}

func lineupRow(g aggregate.Group) Row {
	t := g.Totals
	r := Row{
		Lineup:      g.Lineup.Key,
		Members:     g.Lineup.Labels(),
		Secs:        t.Secs,
		PtsFor:      t.PtsFor,
		PtsAgainst:  t.PtsAgainst,
		NetPts:      t.NetPts,
		OPoss:       t.OPoss,
		DPoss:       t.DPoss,
		FGM:         t.FGM,
		FGA:         t.FGA,
		FGM3:        t.FGM3,
		FGA3:        t.FGA3,
		FTA:         t.FTA,
		TOV:         t.TOV,
		ORB:         t.ORB,
		FGMAllowed:  t.FGMAllowed,
		FGAAllowed:  t.FGAAllowed,
		FGM3Allowed: t.FGM3Allowed,
		FGA3Allowed: t.FGA3Allowed,
		FTAAllowed:  t.FTAAllowed,
		TOVForced:   t.TOVForced,
		ORBAllowed:  t.ORBAllowed,
	}

	r.Minutes = Minutes(t.Secs)
	r.PossTotal = t.OPoss + t.DPoss
	r.PlusMinus = t.NetPts

	r.OEFG = EFG(t.FGM, t.FGM3, t.FGA)
	r.DEFG = EFG(t.FGMAllowed, t.FGM3Allowed, t.FGAAllowed)
	r.OTOV = SafeDiv(t.TOV, t.OPoss)
	r.DTOV = SafeDiv(t.TOVForced, t.DPoss)
	r.OORBR = SafeDiv(t.ORB, t.OPoss)
	r.DORBR = SafeDiv(t.ORBAllowed, t.DPoss)
	r.OFTAR = SafeDiv(t.FTA, t.FGA)
	r.DFTAR = SafeDiv(t.FTAAllowed, t.FGAAllowed)

	r.OffRtg = Rating(t.PtsFor, t.OPoss)
	r.DefRtg = Rating(t.PtsAgainst, t.DPoss)
	r.NetRtg = r.OffRtg - r.DefRtg
	r.PMp40 = PerForty(r.PlusMinus, r.Minutes)
	return r
}

// ComputeBaseline sums minutes, possessions, points and plus-minus over rows
// and re-derives the team ratings from those sums.
func ComputeBaseline(rows []Row) Baseline {
	col := func(get func(Row) float64) float64 {
		v := make([]float64, len(rows))
		for i, r := range rows {
			v[i] = get(r)
		}
		return floats.Sum(v)
	}

	b := Baseline{
		TeamMinutes:    col(func(r Row) float64 { return r.Minutes }),
		TeamPlusMinus:  col(func(r Row) float64 { return r.PlusMinus }),
		TeamPtsFor:     col(func(r Row) float64 { return r.PtsFor }),
		TeamPtsAgainst: col(func(r Row) float64 { return r.PtsAgainst }),
		TeamOPoss:      col(func(r Row) float64 { return r.OPoss }),
		TeamDPoss:      col(func(r Row) float64 { return r.DPoss }),
	}
	b.TeamPossTotal = b.TeamOPoss + b.TeamDPoss
	b.TeamOffRtg = Rating(b.TeamPtsFor, b.TeamOPoss)
	b.TeamDefRtg = Rating(b.TeamPtsAgainst, b.TeamDPoss)
	b.TeamNetRtg = b.TeamOffRtg - b.TeamDefRtg
	b.TeamPMp40 = PerForty(b.TeamPlusMinus, b.TeamMinutes)
	return b
}

// ApplyBaseline stamps team onto r and computes the relative columns from
// the already-rounded values, so rel == value - team holds exactly.
func ApplyBaseline(r *Row, team Baseline) {
	r.Baseline = team
	r.RelPMp40 = Round3(r.PMp40 - team.TeamPMp40)
	r.RelOffRtg = Round3(r.OffRtg - team.TeamOffRtg)
	r.RelDefRtg = Round3(r.DefRtg - team.TeamDefRtg)
	r.RelNetRtg = Round3(r.NetRtg - team.TeamNetRtg)
}

// SortByMinutes orders rows by minutes descending, then lineup ascending.
func SortByMinutes(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Minutes != rows[j].Minutes {
			return rows[i].Minutes > rows[j].Minutes
		}
		return rows[i].Lineup < rows[j].Lineup
	})
}

func roundRow(r *Row) {
	for _, p := range []*float64{
		&r.PossTotal, &r.PMp40, &r.PlusMinus, &r.NetRtg, &r.Minutes,
		&r.OPoss, &r.DPoss, &r.PtsFor, &r.PtsAgainst, &r.NetPts, &r.Secs,
		&r.OEFG, &r.OTOV, &r.OORBR, &r.OFTAR, &r.OffRtg,
		&r.DEFG, &r.DTOV, &r.DORBR, &r.DFTAR, &r.DefRtg,
		&r.FGM, &r.FGA, &r.FGM3, &r.FGA3, &r.FTA, &r.TOV, &r.ORB,
		&r.FGMAllowed, &r.FGAAllowed, &r.FGM3Allowed, &r.FGA3Allowed,
		&r.FTAAllowed, &r.TOVForced, &r.ORBAllowed,
	} {
		*p = Round3(*p)
	}
}

func roundBaseline(b Baseline) Baseline {
	for _, p := range []*float64{
		&b.TeamMinutes, &b.TeamPlusMinus, &b.TeamPtsFor, &b.TeamPtsAgainst,
		&b.TeamOPoss, &b.TeamDPoss, &b.TeamPossTotal,
		&b.TeamOffRtg, &b.TeamDefRtg, &b.TeamNetRtg, &b.TeamPMp40,
	} {
		*p = Round3(*p)
	}
	return b
}
