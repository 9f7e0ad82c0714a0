package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/lineups/internal/adapters/mq/worker"
	"github.com/okian/lineups/internal/adapters/repository"
	"github.com/okian/lineups/internal/adapters/tableio"
	"github.com/okian/lineups/internal/domain/aggregate"
	"github.com/okian/lineups/internal/domain/derive"
	"github.com/okian/lineups/internal/domain/interval"
	"github.com/okian/lineups/internal/domain/lineup"
	"github.com/okian/lineups/internal/domain/model"
	"github.com/okian/lineups/pkg/logger"
	"github.com/okian/lineups/pkg/metrics"
)

const scopeAll = "all"

// run holds what one pipeline run has resolved before deriving anything.
type run struct {
	id        string
	files     []interval.File
	intervals []interval.Interval
	roster    model.Roster
	resolver  *lineup.Resolver
	loader    *tableio.Loader
}

// prepare discovers files and reads the roster. With withIntervals it also
// checks the interval partition, before any stint file is read. Nothing
// derived has been computed when it returns.
func (s *Service) prepare(ctx context.Context, withIntervals bool) (*run, error) {
	if withIntervals && len(s.sizes) == 0 {
		return nil, ErrNoIntervals
	}

	files, err := interval.Discover(s.inputDir, s.pattern)
	if err != nil {
		return nil, err
	}

	r := &run{id: uuid.NewString(), files: files}
	if withIntervals {
		if r.intervals, err = interval.Partition(files, s.sizes); err != nil {
			return nil, err
		}
	}

	roster := model.NewRoster(nil)
	if s.rosterPath != "" {
		if roster, err = tableio.ReadRoster(s.rosterPath); err != nil {
			return nil, err
		}
	}
	r.roster = roster
	r.resolver = lineup.NewResolver(roster)
	r.loader = tableio.NewLoader(
		tableio.WithLoaderTeamID(s.teamID),
		tableio.WithLoaderLogger(s.logger),
	)

	s.logger.Info(ctx, "inputs discovered",
		logger.String("run_id", r.id),
		logger.String("dir", s.inputDir),
		logger.Int("files", len(files)),
		logger.Int("intervals", len(r.intervals)),
		logger.Int("roster", roster.Len()),
	)
	return r, nil
}

func summarizer(res *lineup.Resolver) interval.Summarizer {
	return func(stints []model.Stint) derive.Table {
		return derive.Derive(aggregate.ByLineup(stints, res))
	}
}

func (s *Service) lineups(ctx context.Context, r *run) (derive.Table, error) {
	stints, err := r.loader.Load(ctx, r.files)
	if err != nil {
		return derive.Table{}, err
	}
	tbl := summarizer(r.resolver)(stints)
	metrics.UpdateLineupsInScope(scopeAll, len(tbl.Rows))
	return tbl, nil
}

func (s *Service) progression(ctx context.Context, r *run) ([]interval.Row, error) {
	var runner interval.Runner = interval.Sequential{}
	if s.workerCount > 1 {
		runner = worker.NewPool(s.workerCount, worker.WithName("intervals"), worker.WithLogger(s.logger))
	}
	seq := interval.NewSequencer(r.loader, summarizer(r.resolver),
		interval.WithRunner(runner),
		interval.WithLogger(s.logger),
		interval.WithIntervalHook(func(res interval.Result) {
			metrics.RecordIntervalProcessed()
			metrics.UpdateLineupsInScope("interval_"+strconv.Itoa(res.Interval.Num), len(res.Table.Rows))
		}),
	)
	results, err := seq.Build(ctx, r.intervals)
	if err != nil {
		return nil, err
	}
	return interval.Flatten(results), nil
}

// Lineups computes the all-games lineup table.
func (s *Service) Lineups(ctx context.Context) (derive.Table, error) {
	r, err := s.prepare(ctx, false)
	if err != nil {
		s.recordFailure("lineups", err)
		return derive.Table{}, err
	}
	tbl, err := s.lineups(ctx, r)
	if err != nil {
		s.recordFailure("lineups", err)
	}
	return tbl, err
}

// Progression computes the per-interval lineup table. It requires interval
// sizes.
func (s *Service) Progression(ctx context.Context) ([]interval.Row, error) {
	r, err := s.prepare(ctx, true)
	if err != nil {
		s.recordFailure("progression", err)
		return nil, err
	}
	rows, err := s.progression(ctx, r)
	if err != nil {
		s.recordFailure("progression", err)
	}
	return rows, err
}

// Report runs the full pipeline, passes the result to every sink and then
// publishes it in the store. The progression table is built only when
// interval sizes are set. A failure at any step leaves the stored report and
// roster untouched.
func (s *Service) Report(ctx context.Context) (repository.Report, error) {
	start := time.Now()
	rep, err := s.report(ctx)
	ms := float64(time.Since(start).Milliseconds())
	if err != nil {
		s.recordFailure("report", err)
		metrics.RecordRun("report", "error", ms)
		return repository.Report{}, err
	}
	metrics.RecordRun("report", "ok", ms)
	metrics.MarkSuccess(time.Now().Unix())
	s.logger.Info(ctx, "report complete",
		logger.String("run_id", rep.RunID),
		logger.Int("lineups", len(rep.Lineups)),
		logger.Int("progression_rows", len(rep.Progression)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return rep, nil
}

func (s *Service) report(ctx context.Context) (repository.Report, error) {
	r, err := s.prepare(ctx, len(s.sizes) > 0)
	if err != nil {
		return repository.Report{}, err
	}
	tbl, err := s.lineups(ctx, r)
	if err != nil {
		return repository.Report{}, err
	}
	rep := repository.Report{
		RunID:       r.id,
		GeneratedAt: time.Now().UTC(),
		Lineups:     tbl.Rows,
		Team:        tbl.Team,
	}
	if len(r.intervals) > 0 {
		if rep.Progression, err = s.progression(ctx, r); err != nil {
			return repository.Report{}, err
		}
	}

	for _, sink := range s.sinks {
		if err := sink.Save(ctx, rep); err != nil {
			return repository.Report{}, fmt.Errorf("sink report: %w", err)
		}
	}
	if err := s.store.Save(ctx, rep); err != nil {
		return repository.Report{}, fmt.Errorf("store report: %w", err)
	}
	s.setRoster(r.roster)
	return rep, nil
}

func (s *Service) recordFailure(mode string, err error) {
	kind := errorKind(err)
	metrics.RecordError(kind)
	s.logger.Error(context.Background(), "run failed",
		logger.String("mode", mode),
		logger.String("kind", kind),
		logger.Error(err),
	)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrNoIntervals),
		errors.Is(err, interval.ErrCountMismatch),
		errors.Is(err, interval.ErrEmptySizes),
		errors.Is(err, interval.ErrNonPositiveSize):
		return "partition"
	case errors.Is(err, interval.ErrNoFiles):
		return "discovery"
	case errors.Is(err, tableio.ErrMissingColumns):
		return "schema"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "io"
	}
}
