package interval_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/lineups/internal/domain/aggregate"
	"github.com/okian/lineups/internal/domain/derive"
	"github.com/okian/lineups/internal/domain/interval"
	"github.com/okian/lineups/internal/domain/lineup"
	"github.com/okian/lineups/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func files(tokens ...string) []interval.File {
	out := make([]interval.File, len(tokens))
	for i, t := range tokens {
		out[i] = interval.File{Path: "/data/" + t + ".csv", Token: t}
	}
	return out
}

func TestParseSizes(t *testing.T) {
	Convey("Given interval specifications", t, func() {
		Convey("A well-formed list parses in order", func() {
			sizes, err := interval.ParseSizes(" 3, 2 ,3,")
			So(err, ShouldBeNil)
			So(sizes, ShouldResemble, []int{3, 2, 3})
		})

		Convey("An empty list is rejected", func() {
			_, err := interval.ParseSizes(" , ")
			So(errors.Is(err, interval.ErrEmptySizes), ShouldBeTrue)
		})

		Convey("Zero, negative and non-numeric sizes are rejected", func() {
			for _, spec := range []string{"3,0", "-1", "2,x"} {
				_, err := interval.ParseSizes(spec)
				So(errors.Is(err, interval.ErrNonPositiveSize), ShouldBeTrue)
			}
		})
	})
}

func TestDateTokenAndOrder(t *testing.T) {
	Convey("Given file names with embedded dates", t, func() {
		tok, err := interval.DateToken("/x/lineup_summary_241228.csv")
		So(err, ShouldBeNil)
		So(tok, ShouldEqual, "241228")

		_, err = interval.DateToken("/x/2412.csv")
		So(errors.Is(err, interval.ErrMissingDateToken), ShouldBeTrue)

		Convey("Order sorts by token and drops undated names", func() {
			got := interval.Order([]string{"b/250103.csv", "a/241213.csv", "notes.csv", "c/241220.csv"})
			So(len(got), ShouldEqual, 3)
			So(got[0].Token, ShouldEqual, "241213")
			So(got[1].Token, ShouldEqual, "241220")
			So(got[2].Token, ShouldEqual, "250103")
		})
	})
}

func TestDiscover(t *testing.T) {
	Convey("Given a directory of game files", t, func() {
		dir := t.TempDir()
		for _, n := range []string{"250110.csv", "241213.csv", "241220.csv", "readme.txt"} {
			So(os.WriteFile(filepath.Join(dir, n), []byte("secs\n"), 0o600), ShouldBeNil)
		}

		Convey("When discovering with a pattern", func() {
			got, err := interval.Discover(dir, "*.csv")
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 3)
			So(got[0].Name(), ShouldEqual, "241213.csv")
		})

		Convey("When nothing matches", func() {
			_, err := interval.Discover(dir, "*.parquet")
			So(errors.Is(err, interval.ErrNoFiles), ShouldBeTrue)
		})
	})
}

func TestPartition(t *testing.T) {
	Convey("Given eight ordered files", t, func() {
		fs := files("241201", "241203", "241207", "241210", "241214", "241218", "241221", "241228")

		Convey("When partitioning as 3,2,3", func() {
			ivs, err := interval.Partition(fs, []int{3, 2, 3})
			So(err, ShouldBeNil)

			Convey("Then there is one interval per size with matching lengths", func() {
				So(len(ivs), ShouldEqual, 3)
				So(ivs[0].Size(), ShouldEqual, 3)
				So(ivs[1].Size(), ShouldEqual, 2)
				So(ivs[2].Size(), ShouldEqual, 3)
				So(ivs[1].Num, ShouldEqual, 2)
				So(ivs[1].Start(), ShouldEqual, "241210")
				So(ivs[1].End(), ShouldEqual, "241214")
			})

			Convey("And the union is the full list, disjoint and in order", func() {
				var seen []string
				set := map[string]bool{}
				for _, iv := range ivs {
					for _, f := range iv.Files {
						So(set[f.Token], ShouldBeFalse)
						set[f.Token] = true
						seen = append(seen, f.Token)
					}
				}
				want := make([]string, len(fs))
				for i, f := range fs {
					want[i] = f.Token
				}
				So(seen, ShouldResemble, want)
			})
		})

		Convey("When every size-list summing to 8 is tried", func() {
			for _, sizes := range [][]int{{8}, {1, 7}, {4, 4}, {1, 1, 1, 1, 1, 1, 1, 1}, {2, 3, 3}} {
				ivs, err := interval.Partition(fs, sizes)
				So(err, ShouldBeNil)
				So(len(ivs), ShouldEqual, len(sizes))
				total := 0
				for _, iv := range ivs {
					total += iv.Size()
				}
				So(total, ShouldEqual, len(fs))
			}
		})
	})

	Convey("Given four files and sizes 3,2", t, func() {
		fs := files("241201", "241203", "241207", "241210")
		_, err := interval.Partition(fs, []int{3, 2})

		Convey("Then the run fails with expected and found counts and the file names", func() {
			So(errors.Is(err, interval.ErrCountMismatch), ShouldBeTrue)
			var me *interval.MismatchError
			So(errors.As(err, &me), ShouldBeTrue)
			So(me.Expected, ShouldEqual, 5)
			So(me.Found, ShouldEqual, 4)
			So(me.Files, ShouldResemble, []string{"241201.csv", "241203.csv", "241207.csv", "241210.csv"})
			So(err.Error(), ShouldContainSubstring, "expected exactly 5")
			So(err.Error(), ShouldContainSubstring, "found 4")
		})
	})

	Convey("Given a non-positive size", t, func() {
		_, err := interval.Partition(files("241201"), []int{1, 0})
		So(errors.Is(err, interval.ErrNonPositiveSize), ShouldBeTrue)
	})
}

// fakeLoader returns one stint per file, keyed by the file token.
type fakeLoader struct {
	failOn string
}

func (f fakeLoader) Load(_ context.Context, fs []interval.File) ([]model.Stint, error) {
	var out []model.Stint
	for _, file := range fs {
		if file.Token == f.failOn {
			return nil, fmt.Errorf("read %s: boom", file.Name())
		}
		s := model.Stint{Game: file.Token, Stats: model.BaseStats{Secs: 60, PtsFor: 2, NetPts: 2, OPoss: 1, DPoss: 1}}
		for i, n := range []string{"Aa", "Bb", "Cc", "Dd", "Ee"} {
			s.Slots[i] = model.Slot{Name: n}
		}
		out = append(out, s)
	}
	return out, nil
}

func summarizer() interval.Summarizer {
	r := lineup.NewResolver(model.NewRoster(nil))
	return func(st []model.Stint) derive.Table {
		return derive.Derive(aggregate.ByLineup(st, r))
	}
}

func TestSequencer(t *testing.T) {
	Convey("Given a sequencer over three intervals", t, func() {
		ivs, err := interval.Partition(files("241201", "241203", "241207", "241210", "241214"), []int{2, 1, 2})
		So(err, ShouldBeNil)

		var hooked int
		seq := interval.NewSequencer(fakeLoader{}, summarizer(), interval.WithIntervalHook(func(interval.Result) { hooked++ }))

		Convey("When building", func() {
			results, err := seq.Build(context.Background(), ivs)
			So(err, ShouldBeNil)

			Convey("Then each interval is summarized independently", func() {
				So(len(results), ShouldEqual, 3)
				So(results[0].Table.Rows[0].Secs, ShouldEqual, 120)
				So(results[1].Table.Rows[0].Secs, ShouldEqual, 60)
				So(results[2].Table.Rows[0].Secs, ShouldEqual, 120)
				So(hooked, ShouldEqual, 3)
			})

			Convey("And flattening stamps interval metadata in order", func() {
				rows := interval.Flatten(results)
				So(len(rows), ShouldEqual, 3)
				So(rows[0].IntervalNum, ShouldEqual, 1)
				So(rows[0].IntervalLen, ShouldEqual, 2)
				So(rows[0].IntervalGames, ShouldEqual, "241201,241203")
				So(rows[2].IntervalStart, ShouldEqual, "241210")
				So(rows[2].IntervalEnd, ShouldEqual, "241214")
				So(rows[1].Lineup, ShouldEqual, "AA-BB-CC-DD-EE")
			})
		})

		Convey("When a file in the second interval fails to load", func() {
			seq := interval.NewSequencer(fakeLoader{failOn: "241207"}, summarizer())
			_, err := seq.Build(context.Background(), ivs)

			Convey("Then the whole build fails naming the interval", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "interval 2")
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := seq.Build(ctx, ivs)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
