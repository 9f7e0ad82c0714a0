package repository

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/okian/lineups/internal/domain/derive"
	"github.com/okian/lineups/internal/domain/interval"
)

// snapshot is an immutable view of one report with lookup indexes.
type snapshot struct {
	report      Report
	byKey       map[string]int
	progression map[string][]int
}

func newSnapshot(r Report) *snapshot {
	s := &snapshot{
		report:      r,
		byKey:       make(map[string]int, len(r.Lineups)),
		progression: make(map[string][]int),
	}
	for i, row := range r.Lineups {
		s.byKey[row.Lineup] = i
	}
	for i, row := range r.Progression {
		s.progression[row.Lineup] = append(s.progression[row.Lineup], i)
	}
	return s
}

// MemoryStore keeps the latest report. Saves swap in a new snapshot, so reads
// never block and never see a half-written report.
type MemoryStore struct {
	current atomic.Pointer[snapshot]
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the current report.
func (m *MemoryStore) Save(ctx context.Context, r Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.current.Store(newSnapshot(r))
	return nil
}

func (m *MemoryStore) load() (*snapshot, error) {
	s := m.current.Load()
	if s == nil {
		return nil, ErrNoReport
	}
	return s, nil
}

// Latest implements Store.
func (m *MemoryStore) Latest(_ context.Context) (Report, error) {
	s, err := m.load()
	if err != nil {
		return Report{}, err
	}
	return s.report, nil
}

// TopN implements Store.
func (m *MemoryStore) TopN(_ context.Context, metric string, n int) ([]derive.Row, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	get, ok := metricGetter(metric)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	s, err := m.load()
	if err != nil {
		return nil, err
	}

	rows := append([]derive.Row(nil), s.report.Lineups...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := get(rows[i]), get(rows[j])
		if a != b {
			return a > b
		}
		return rows[i].Lineup < rows[j].Lineup
	})
	if n < len(rows) {
		rows = rows[:n]
	}
	return rows, nil
}

// Lineup implements Store.
func (m *MemoryStore) Lineup(_ context.Context, key string) (derive.Row, error) {
	s, err := m.load()
	if err != nil {
		return derive.Row{}, err
	}
	i, ok := s.byKey[key]
	if !ok {
		return derive.Row{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return s.report.Lineups[i], nil
}

// Progression implements Store.
func (m *MemoryStore) Progression(_ context.Context, key string) ([]interval.Row, error) {
	s, err := m.load()
	if err != nil {
		return nil, err
	}
	idx, ok := s.progression[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	out := make([]interval.Row, len(idx))
	for i, j := range idx {
		out[i] = s.report.Progression[j]
	}
	return out, nil
}
