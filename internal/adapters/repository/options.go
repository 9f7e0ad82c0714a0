package repository

import "github.com/okian/lineups/pkg/logger"

// SQLOption applies a configuration option to the SQLStore.
type SQLOption func(*SQLStore)

// WithLogger sets the logger used by the SQLStore.
func WithLogger(l logger.Logger) SQLOption {
	return func(s *SQLStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTablePrefix prefixes both table names, e.g. "test_" gives
// test_lineup_summary and test_lineup_progression.
func WithTablePrefix(prefix string) SQLOption {
	return func(s *SQLStore) {
		s.summaryTable = prefix + summaryTable
		s.progressionTable = prefix + progressionTable
	}
}
