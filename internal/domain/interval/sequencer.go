package interval

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/lineups/internal/domain/derive"
	"github.com/okian/lineups/internal/domain/model"
	"github.com/okian/lineups/pkg/logger"
)

// Row is one (interval, lineup) output row: interval provenance followed by
// the lineup table columns.
type Row struct {
	IntervalNum   int    `csv:"interval_num" json:"interval_num" msgpack:"interval_num"`
	IntervalLen   int    `csv:"interval_len" json:"interval_len" msgpack:"interval_len"`
	IntervalStart string `csv:"interval_start" json:"interval_start" msgpack:"interval_start"`
	IntervalEnd   string `csv:"interval_end" json:"interval_end" msgpack:"interval_end"`
	IntervalGames string `csv:"interval_games" json:"interval_games" msgpack:"interval_games"`
	derive.Row
}

// Result is one interval's derived table.
type Result struct {
	Interval Interval
	Table    derive.Table
}

// Loader reads the raw stints of the given files, concatenated in order.
type Loader interface {
	Load(ctx context.Context, files []File) ([]model.Stint, error)
}

// Summarizer turns one scope's stints into a derived lineup table.
type Summarizer func(stints []model.Stint) derive.Table

// Runner executes fn once for every index in [0, n). Implementations may run
// calls concurrently; the first error is returned.
type Runner interface {
	Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error
}

// Sequential runs indices one after another.
type Sequential struct{}

// Run implements Runner.
func (Sequential) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithRunner sets the runner used to process intervals.
func WithRunner(r Runner) Option {
	return func(s *Sequencer) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Sequencer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIntervalHook registers a callback invoked after each interval is
// summarized. It may be called concurrently.
func WithIntervalHook(fn func(Result)) Option {
	return func(s *Sequencer) {
		s.hook = fn
	}
}

// Sequencer feeds each interval through load -> summarize independently.
type Sequencer struct {
	loader    Loader
	summarize Summarizer
	runner    Runner
	hook      func(Result)
	logger    logger.Logger
}

// NewSequencer builds a Sequencer.
func NewSequencer(loader Loader, summarize Summarizer, opts ...Option) *Sequencer {
	s := &Sequencer{
		loader:    loader,
		summarize: summarize,
		runner:    Sequential{},
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build processes every interval and returns results in interval order.
// Intervals share no state, so the runner may process them in any order.
func (s *Sequencer) Build(ctx context.Context, intervals []Interval) ([]Result, error) {
	results := make([]Result, len(intervals))
	err := s.runner.Run(ctx, len(intervals), func(ctx context.Context, i int) error {
		iv := intervals[i]
		stints, err := s.loader.Load(ctx, iv.Files)
		if err != nil {
			return fmt.Errorf("interval %d: %w", iv.Num, err)
		}
		res := Result{Interval: iv, Table: s.summarize(stints)}
		results[i] = res
		s.logger.Debug(ctx, "interval summarized",
			logger.Int("interval", iv.Num),
			logger.String("start", iv.Start()),
			logger.String("end", iv.End()),
			logger.Int("stints", len(stints)),
			logger.Int("lineups", len(res.Table.Rows)),
		)
		if s.hook != nil {
			s.hook(res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Flatten concatenates interval tables in order, stamping interval metadata
// on every row.
func Flatten(results []Result) []Row {
	n := 0
	for _, r := range results {
		n += len(r.Table.Rows)
	}
	out := make([]Row, 0, n)
	for _, r := range results {
		games := strings.Join(r.Interval.Tokens(), ",")
		for _, lr := range r.Table.Rows {
			out = append(out, Row{
				IntervalNum:   r.Interval.Num,
				IntervalLen:   r.Interval.Size(),
				IntervalStart: r.Interval.Start(),
				IntervalEnd:   r.Interval.End(),
				IntervalGames: games,
				Row:           lr,
			})
		}
	}
	return out
}
