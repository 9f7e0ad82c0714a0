// Package repository stores the reports produced by pipeline runs: an
// in-memory store that backs the report API, and a SQL sink for sqlite or
// postgres.
package repository

import (
	"context"
	"reflect"
	"sort"
	"time"

	"github.com/okian/lineups/internal/domain/derive"
	"github.com/okian/lineups/internal/domain/interval"
)

// Report is the output of one pipeline run.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Lineups     []derive.Row
	Team        derive.Baseline
	Progression []interval.Row
}

// Sink persists reports.
type Sink interface {
	Save(ctx context.Context, r Report) error
}

// Store provides read access to the latest report.
type Store interface {
	Sink

	// Latest returns the most recently saved report, or ErrNoReport.
	Latest(ctx context.Context) (Report, error)

	// TopN returns up to n lineups ordered by metric desc, then key asc.
	TopN(ctx context.Context, metric string, n int) ([]derive.Row, error)

	// Lineup returns one lineup's row, or ErrNotFound.
	Lineup(ctx context.Context, key string) (derive.Row, error)

	// Progression returns one lineup's rows across intervals in interval order.
	Progression(ctx context.Context, key string) ([]interval.Row, error)
}

// column is one tabular output column of a row type.
type column struct {
	name  string
	index []int
	kind  reflect.Kind
}

// columnsOf lists the csv-tagged scalar fields of t in declaration order,
// including those promoted from embedded structs.
func columnsOf(t reflect.Type) []column {
	var cols []column
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name := f.Tag.Get("csv")
		if name == "" || name == "-" {
			continue
		}
		switch f.Type.Kind() {
		case reflect.String, reflect.Int, reflect.Float64:
			cols = append(cols, column{name: name, index: f.Index, kind: f.Type.Kind()})
		}
	}
	return cols
}

var (
	lineupColumns      = columnsOf(reflect.TypeOf(derive.Row{}))
	progressionColumns = columnsOf(reflect.TypeOf(interval.Row{}))
)

// Metrics lists the lineup columns TopN can order by.
func Metrics() []string {
	var out []string
	for _, c := range lineupColumns {
		if c.kind == reflect.Float64 {
			out = append(out, c.name)
		}
	}
	sort.Strings(out)
	return out
}

func metricGetter(name string) (func(derive.Row) float64, bool) {
	for _, c := range lineupColumns {
		if c.name == name && c.kind == reflect.Float64 {
			idx := c.index
			return func(r derive.Row) float64 {
				return reflect.ValueOf(r).FieldByIndex(idx).Float()
			}, true
		}
	}
	return nil, false
}
