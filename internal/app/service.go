// Package service wires discovery, ingestion, aggregation and derivation into
// pipeline runs, keeps the latest report, and answers the report API.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/okian/lineups/internal/adapters/repository"
	"github.com/okian/lineups/internal/domain/model"
	"github.com/okian/lineups/pkg/logger"
)

// Service runs the lineup pipeline and serves its latest report.
type Service struct {
	mu sync.Mutex

	// Inputs
	inputDir   string
	pattern    string
	sizes      []int
	rosterPath string
	teamID     string

	// Execution
	workerCount int

	// Outputs
	store repository.Store
	sinks []repository.Sink

	// Refresh
	cron    *cron.Cron
	started bool

	// Roster of the stored report, for player lookups.
	rosterMu sync.RWMutex
	roster   model.Roster

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithInput sets where per-game stint files are discovered.
func WithInput(dir, pattern string) Option {
	return func(s *Service) {
		if dir != "" {
			s.inputDir = dir
		}
		if pattern != "" {
			s.pattern = pattern
		}
	}
}

// WithIntervals enables the progression table with the given sizes.
func WithIntervals(sizes []int) Option {
	return func(s *Service) {
		s.sizes = append([]int(nil), sizes...)
	}
}

// WithRosterPath sets the roster CSV. Without one every label comes from the
// name fallback.
func WithRosterPath(path string) Option {
	return func(s *Service) { s.rosterPath = path }
}

// WithTeamID keeps only one team's rows.
func WithTeamID(id string) Option {
	return func(s *Service) { s.teamID = id }
}

// WithWorkerCount sets how many intervals are processed concurrently.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithStore replaces the in-memory report store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSink adds a sink that receives every report before it is stored.
func WithSink(sink repository.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		inputDir:    ".",
		pattern:     "*.csv",
		workerCount: 1,
		store:       repository.NewMemoryStore(),
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules Refresh on a cron spec such as "@every 5m". An empty spec
// starts nothing.
func (s *Service) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || schedule == "" {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.Refresh(ctx) }); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrBadSchedule, schedule, err)
	}
	c.Start()
	s.cron = c
	s.started = true
	s.logger.Info(ctx, "report refresh scheduled", logger.String("schedule", schedule))
	return nil
}

// Stop halts scheduled refreshes and waits for a running one to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.started = false
	s.logger.Info(context.Background(), "report refresh stopped")
}

// Refresh runs the pipeline and logs, rather than returns, a failure. The
// previous report stays in place when a run fails.
func (s *Service) Refresh(ctx context.Context) {
	if _, err := s.Report(ctx); err != nil {
		s.logger.Error(ctx, "report refresh failed", logger.Error(err))
	}
}
