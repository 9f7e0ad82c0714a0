package lineup_test

import (
	"testing"

	"github.com/okian/lineups/internal/domain/lineup"
	"github.com/okian/lineups/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func testRoster() model.Roster {
	return model.NewRoster([]model.PlayerRef{
		{ID: "2138783", Name: "Jess Lawson", Label: "JL", Height: 67, HasHeight: true},
		{ID: "2118049", Name: "Mari Somvichian", Label: "MS", Height: 64, HasHeight: true},
		{ID: "1925105", Name: "Andjela Matic", Label: "AM", Height: 69, HasHeight: true},
		{ID: "2270840", Name: "Ivana Krajina", Label: "IK", Height: 71, HasHeight: true},
		{ID: "2291264", Name: "Zawadi Ogot", Label: "ZO", Height: 71, HasHeight: true},
		{ID: "1688590", Name: "Carly Heidger", Label: "CH", Height: 75, HasHeight: true},
	})
}

func slots(ids ...string) [model.SlotCount]model.Slot {
	var out [model.SlotCount]model.Slot
	for i, id := range ids {
		out[i] = model.Slot{ID: id}
	}
	return out
}

// permutations returns every ordering of in.
func permutations(in []string) [][]string {
	if len(in) <= 1 {
		return [][]string{append([]string(nil), in...)}
	}
	var out [][]string
	for i := range in {
		rest := make([]string, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{in[i]}, p...))
		}
	}
	return out
}

func TestFallbackLabel(t *testing.T) {
	Convey("Given players missing from the roster", t, func() {
		Convey("A single-token name is truncated to two letters", func() {
			So(lineup.FallbackLabel("smith", "9"), ShouldEqual, "SM")
			So(lineup.FallbackLabel("X", "9"), ShouldEqual, "X")
		})

		Convey("A multi-token name uses first initial plus two letters of the second token", func() {
			So(lineup.FallbackLabel("Paula Reus Piza", "9"), ShouldEqual, "PRE")
			So(lineup.FallbackLabel("  kayla   jones ", "9"), ShouldEqual, "KJO")
		})

		Convey("Non-ASCII names are cut on runes, not bytes", func() {
			So(lineup.FallbackLabel("Ángela Šarić", ""), ShouldEqual, "ÁŠA")
		})

		Convey("No name falls back to the identifier", func() {
			So(lineup.FallbackLabel("   ", "12345"), ShouldEqual, "12345")
		})

		Convey("Nothing at all yields the placeholder", func() {
			So(lineup.FallbackLabel("", ""), ShouldEqual, lineup.MissingLabel)
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given a resolver with a roster", t, func() {
		r := lineup.NewResolver(testRoster())

		Convey("When resolving a fully known lineup", func() {
			l := r.Resolve(slots("2138783", "2118049", "1925105", "2270840", "1688590"))

			Convey("Then members are ordered tallest first", func() {
				So(l.Key, ShouldEqual, "CH-IK-AM-JL-MS")
				So(l.Labels(), ShouldResemble, []string{"CH", "IK", "AM", "JL", "MS"})
			})
		})

		Convey("When two players share a height", func() {
			l := r.Resolve(slots("2291264", "2270840", "2118049", "2138783", "1925105"))

			Convey("Then the label breaks the tie ascending", func() {
				So(l.Key, ShouldEqual, "IK-ZO-AM-JL-MS")
			})
		})

		Convey("When every permutation of the same five players is resolved", func() {
			ids := []string{"2138783", "2118049", "1925105", "2270840", "1688590"}
			want := r.Resolve(slots(ids...)).Key
			keys := map[string]int{}
			for _, p := range permutations(ids) {
				keys[r.Resolve(slots(p...)).Key]++
			}

			Convey("Then all 120 orderings share one key", func() {
				So(len(keys), ShouldEqual, 1)
				So(keys[want], ShouldEqual, 120)
			})
		})

		Convey("When some players are unknown", func() {
			var s [model.SlotCount]model.Slot
			s[0] = model.Slot{ID: "777", Name: "Zoe Adams"}
			s[1] = model.Slot{ID: "2118049"}
			s[2] = model.Slot{ID: "888", Name: "Bee"}
			s[3] = model.Slot{ID: "1688590"}
			s[4] = model.Slot{ID: "2138783"}
			l := r.Resolve(s)

			Convey("Then unknown players sort after all known heights by label", func() {
				So(l.Key, ShouldEqual, "CH-JL-MS-BE-ZAD")
				So(l.Members[3].HasHeight, ShouldBeFalse)
			})
		})

		Convey("When fewer than five slots are filled", func() {
			l := r.Resolve(slots("1688590", "", "2138783"))

			Convey("Then it does not panic and empty slots sort last", func() {
				So(l.Key, ShouldEqual, "CH-JL-?-?-?")
			})
		})

		Convey("When ids carry surrounding whitespace", func() {
			l := r.Resolve(slots(" 1688590 ", "2138783", "2118049", "1925105", "2270840"))
			So(l.Key, ShouldEqual, "CH-IK-AM-JL-MS")
		})
	})

	Convey("Given an empty roster", t, func() {
		r := lineup.NewResolver(model.NewRoster(nil))
		var s [model.SlotCount]model.Slot
		for i, n := range []string{"Ana Milanovic", "Lova Lagerlid", "Carly", "Allison Clarke", "Ivana Krajina"} {
			s[i] = model.Slot{Name: n}
		}

		Convey("Then every label is synthesized and sorted ascending", func() {
			So(r.Resolve(s).Key, ShouldEqual, "ACL-AMI-CA-IKR-LLA")
		})
	})
}
