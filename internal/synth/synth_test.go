package synth_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/lineups/internal/adapters/tableio"
	"github.com/okian/lineups/internal/domain/interval"
	"github.com/okian/lineups/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a synthetic data set", t, func() {
		dir := t.TempDir()
		res, err := synth.Generate(ctx, dir,
			synth.WithGames(4),
			synth.WithStintsPerGame(5),
			synth.WithPlayers(9),
			synth.WithUnlisted(2),
			synth.WithOpponentRows(true),
		)
		So(err, ShouldBeNil)

		Convey("Then one file per game is written with a date token", func() {
			So(len(res.GamePaths), ShouldEqual, 4)
			files, err := interval.Discover(dir, "*.csv")
			So(err, ShouldBeNil)
			So(len(files), ShouldEqual, 4)
			So(files[0].Token, ShouldEqual, "241104")
			So(files[1].Token, ShouldEqual, "241107")
			So(res.DataSetID, ShouldNotBeEmpty)
		})

		Convey("And the roster leaves out the unlisted players", func() {
			roster, err := tableio.ReadRoster(res.RosterPath)
			So(err, ShouldBeNil)
			So(roster.Len(), ShouldEqual, 7)
			p, ok := roster.Lookup("1000")
			So(ok, ShouldBeTrue)
			So(p.HasHeight, ShouldBeTrue)
			So(p.Label, ShouldEqual, "AD")
			So(p.Name, ShouldEqual, "Ava Diaz")
		})

		Convey("And stint files pass the schema check and are internally consistent", func() {
			stints, err := tableio.ReadStints(res.GamePaths[0])
			So(err, ShouldBeNil)
			So(len(stints), ShouldEqual, 10)
			for _, s := range stints {
				st := s.Stats
				So(st.NetPts, ShouldEqual, st.PtsFor-st.PtsAgainst)
				So(st.FGM, ShouldBeLessThanOrEqualTo, st.FGA)
				So(st.FGM3, ShouldBeLessThanOrEqualTo, st.FGM)
				So(st.PtsFor, ShouldBeGreaterThanOrEqualTo, 2*st.FGM+st.FGM3)
				So(st.Secs, ShouldBeBetweenOrEqual, 30, 360)
			}

			team, err := tableio.ReadStints(res.GamePaths[0], tableio.WithTeamID("T1"))
			So(err, ShouldBeNil)
			So(len(team), ShouldEqual, 5)
		})

		Convey("And the same seed reproduces the same games", func() {
			again := t.TempDir()
			res2, err := synth.Generate(ctx, again,
				synth.WithGames(4),
				synth.WithStintsPerGame(5),
				synth.WithPlayers(9),
				synth.WithUnlisted(2),
				synth.WithOpponentRows(true),
			)
			So(err, ShouldBeNil)
			a, _ := os.ReadFile(res.GamePaths[3])
			b, _ := os.ReadFile(res2.GamePaths[3])
			So(string(b), ShouldEqual, string(a))
			So(res2.DataSetID, ShouldNotEqual, res.DataSetID)
		})
	})

	Convey("Given options that cannot form a lineup", t, func() {
		_, err := synth.Generate(ctx, filepath.Join(t.TempDir(), "x"), synth.WithPlayers(4))
		So(errors.Is(err, synth.ErrInvalidOptions), ShouldBeTrue)
	})
}
