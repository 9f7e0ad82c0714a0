package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/lineups/internal/adapters/repository"
	service "github.com/okian/lineups/internal/app"
	"github.com/okian/lineups/internal/config"
	"github.com/okian/lineups/internal/domain/derive"
	"github.com/okian/lineups/internal/domain/interval"
	"github.com/okian/lineups/internal/domain/splits"
)

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")

	convey.Convey("Given a synthetic data set written by the synth command", t, func() {
		out, err := execute("synth", "--dir", data, "--games", "8", "--stints", "10")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, "roster.csv")
		convey.So(out, convey.ShouldContainSubstring, "8 games")

		input := []string{"--input-dir", data, "--roster-path", filepath.Join(data, "roster.csv")}

		convey.Convey("When the lineups command writes JSON to stdout", func() {
			out, err := execute(append([]string{"lineups", "-f", "json"}, input...)...)
			convey.So(err, convey.ShouldBeNil)

			var rows []derive.Row
			convey.So(json.Unmarshal([]byte(out), &rows), convey.ShouldBeNil)
			convey.So(rows, convey.ShouldNotBeEmpty)
			for i := 1; i < len(rows); i++ {
				convey.So(rows[i-1].Minutes, convey.ShouldBeGreaterThanOrEqualTo, rows[i].Minutes)
			}
		})

		convey.Convey("When progression runs without intervals", func() {
			_, err := execute(append([]string{"progression"}, input...)...)
			convey.So(errors.Is(err, service.ErrNoIntervals), convey.ShouldBeTrue)
		})

		convey.Convey("When progression writes a CSV file", func() {
			path := filepath.Join(dir, "out", "progression.csv")
			_, err := execute(append([]string{"progression", "--intervals", "3,2,3", "-o", path}, input...)...)
			convey.So(err, convey.ShouldBeNil)

			b, err := os.ReadFile(path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(strings.HasPrefix(string(b), "interval_num,interval_len,interval_start"), convey.ShouldBeTrue)
		})

		convey.Convey("When the interval sizes do not cover the files", func() {
			path := filepath.Join(dir, "mismatch", "out.csv")
			_, err := execute(append([]string{"progression", "--intervals", "3,2", "-o", path}, input...)...)
			convey.So(errors.Is(err, interval.ErrCountMismatch), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "expected exactly 5 files")
			convey.So(err.Error(), convey.ShouldContainSubstring, "found 8")
			convey.So(err.Error(), convey.ShouldContainSubstring, "241104.csv, 241107.csv")

			_, statErr := os.Stat(path)
			convey.So(errors.Is(statErr, fs.ErrNotExist), convey.ShouldBeTrue)
		})

		convey.Convey("When lineups runs with interval sizes that do not cover the files", func() {
			out, err := execute(append([]string{"lineups", "--intervals", "3,2"}, input...)...)
			convey.So(err, convey.ShouldBeNil)
			convey.So(strings.HasPrefix(out, "lineup,"), convey.ShouldBeTrue)
		})

		convey.Convey("When combos are requested with a flag override", func() {
			out, err := execute(append([]string{"combos", "--combo-size", "2", "-f", "json"}, input...)...)
			convey.So(err, convey.ShouldBeNil)

			var rows []splits.ComboRow
			convey.So(json.Unmarshal([]byte(out), &rows), convey.ShouldBeNil)
			convey.So(rows, convey.ShouldNotBeEmpty)
			convey.So(rows[0].Size, convey.ShouldEqual, 2)
		})

		convey.Convey("When players are listed as CSV", func() {
			out, err := execute(append([]string{"players"}, input...)...)
			convey.So(err, convey.ShouldBeNil)
			convey.So(strings.HasPrefix(out, "player,name,"), convey.ShouldBeTrue)
		})

		convey.Convey("When a SQLite sink is configured", func() {
			dsn := "sqlite:" + filepath.Join(dir, "reports.db")
			_, err := execute(append([]string{"lineups", "--sink-dsn", dsn, "-o", filepath.Join(dir, "l.csv")}, input...)...)
			convey.So(err, convey.ShouldBeNil)

			store, err := repository.Open(context.Background(), dsn)
			convey.So(err, convey.ShouldBeNil)
			defer store.Close()
			id, err := store.LatestRunID(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(id, convey.ShouldNotBeEmpty)
		})

		convey.Convey("When the output format is unknown", func() {
			_, err := execute(append([]string{"lineups", "-f", "xml"}, input...)...)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
