package tableio

import (
	"context"

	"github.com/okian/lineups/internal/domain/interval"
	"github.com/okian/lineups/internal/domain/model"
	"github.com/okian/lineups/pkg/logger"
)

// Loader reads interval files from disk. It implements interval.Loader.
type Loader struct {
	teamID string
	logger logger.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderTeamID applies a team filter to every file read.
func WithLoaderTeamID(id string) LoaderOption {
	return func(l *Loader) { l.teamID = id }
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(lg logger.Logger) LoaderOption {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewLoader builds a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{logger: logger.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads files in order and concatenates their stints.
func (l *Loader) Load(ctx context.Context, files []interval.File) ([]model.Stint, error) {
	var out []model.Stint
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		opts := []ReadOption{WithTeamID(l.teamID)}
		if f.Token != "" {
			opts = append(opts, WithGame(f.Token))
		}
		stints, err := ReadStints(f.Path, opts...)
		if err != nil {
			return nil, err
		}
		l.logger.Debug(ctx, "file read", logger.String("file", f.Name()), logger.Int("stints", len(stints)))
		out = append(out, stints...)
	}
	return out, nil
}
