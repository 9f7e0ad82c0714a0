package splits_test

import (
	"errors"
	"testing"

	"github.com/okian/lineups/internal/domain/derive"
	"github.com/okian/lineups/internal/domain/splits"
	. "github.com/smartystreets/goconvey/convey"
)

func row(members []string, secs, ptsFor, ptsAgainst, oPoss, dPoss float64) derive.Row {
	key := ""
	for i, m := range members {
		if i > 0 {
			key += "-"
		}
		key += m
	}
	return derive.Row{
		Lineup:     key,
		Members:    members,
		Secs:       secs,
		Minutes:    derive.Round3(secs / 60),
		PtsFor:     ptsFor,
		PtsAgainst: ptsAgainst,
		PlusMinus:  ptsFor - ptsAgainst,
		OPoss:      oPoss,
		DPoss:      dPoss,
	}
}

func fixture() []derive.Row {
	return []derive.Row{
		row([]string{"AA", "BB", "CC", "DD", "EE"}, 600, 100, 80, 80, 80),
		row([]string{"AA", "BB", "CC", "DD", "FF"}, 300, 50, 45, 50, 50),
	}
}

func TestCombos(t *testing.T) {
	Convey("Given two lineups sharing four players", t, func() {
		rows := fixture()

		Convey("When building 4-player combos", func() {
			out, err := splits.Combos(rows, 4, 0)
			So(err, ShouldBeNil)

			Convey("Then the shared quartet sums both lineups", func() {
				So(out[0].Players, ShouldEqual, "AA-BB-CC-DD")
				So(out[0].Lineups, ShouldEqual, 2)
				So(out[0].Minutes, ShouldEqual, 15)
				So(out[0].PlusMinus, ShouldEqual, 25)
				So(out[0].OffRtg, ShouldEqual, 115.385)
				So(out[0].DefRtg, ShouldEqual, 96.154)
				So(out[0].PMp40, ShouldEqual, 66.667)
			})

			Convey("And each lineup yields five quartets", func() {
				// 5 from the first lineup, 5 from the second, 1 shared.
				So(len(out), ShouldEqual, 9)
			})

			Convey("And relative columns use a team baseline summed over combos", func() {
				var pts, poss float64
				for _, c := range out {
					pts += c.PtsFor
					poss += c.OPoss
				}
				teamOff := derive.Round3(derive.Rating(pts, poss))
				for _, c := range out {
					So(c.RelOffRtg, ShouldEqual, derive.Round3(c.OffRtg-teamOff))
				}
			})
		})

		Convey("When a minimum minutes filter is applied", func() {
			out, err := splits.Combos(rows, 4, 12)
			So(err, ShouldBeNil)
			So(len(out), ShouldEqual, 1)
			So(out[0].Players, ShouldEqual, "AA-BB-CC-DD")
		})

		Convey("When the size is out of range", func() {
			_, err := splits.Combos(rows, 1, 0)
			So(errors.Is(err, splits.ErrComboSize), ShouldBeTrue)
			_, err = splits.Combos(rows, 6, 0)
			So(errors.Is(err, splits.ErrComboSize), ShouldBeTrue)
		})

		Convey("When a lineup has missing slots", func() {
			in := []derive.Row{row([]string{"AA", "BB", "?", "?", "?"}, 60, 2, 0, 1, 1)}
			out, err := splits.Combos(in, 2, 0)
			So(err, ShouldBeNil)
			So(len(out), ShouldEqual, 1)
			So(out[0].Players, ShouldEqual, "AA-BB")
		})
	})
}

func TestIndividuals(t *testing.T) {
	Convey("Given two lineups and their team baseline", t, func() {
		rows := fixture()
		team := derive.ComputeBaseline(rows)

		Convey("When exploding into players", func() {
			out := splits.Individuals(rows, team)
			byName := map[string]splits.PlayerRow{}
			for _, p := range out {
				byName[p.Player] = p
			}

			Convey("Then every distinct player appears once", func() {
				So(len(out), ShouldEqual, 6)
			})

			Convey("And shared players carry both lineups' totals", func() {
				So(byName["AA"].Minutes, ShouldEqual, 15)
				So(byName["AA"].PlusMinus, ShouldEqual, 25)
				So(byName["AA"].Lineups, ShouldEqual, 2)
				So(byName["AA"].OffRtg, ShouldEqual, 115.385)
			})

			Convey("And single-lineup players match their lineup", func() {
				So(byName["EE"].PMp40, ShouldEqual, 80)
				So(byName["FF"].PMp40, ShouldEqual, 40)
			})

			Convey("And rows are sorted by PM_p40 descending", func() {
				So(out[0].Player, ShouldEqual, "EE")
				So(out[len(out)-1].Player, ShouldEqual, "FF")
			})

			Convey("And team columns are copied through", func() {
				So(byName["AA"].TeamOffRtg, ShouldEqual, team.TeamOffRtg)
			})
		})

		Convey("When a player never played", func() {
			out := splits.Individuals([]derive.Row{row([]string{"ZZ"}, 0, 0, 0, 0, 0)}, derive.Baseline{})
			So(out[0].PMp40, ShouldEqual, 0)
			So(out[0].OffRtg, ShouldEqual, 0)
		})
	})
}
