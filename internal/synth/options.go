package synth

import (
	"errors"
	"time"

	"github.com/okian/lineups/pkg/logger"
)

// ErrInvalidOptions is returned when the requested data set cannot be built.
var ErrInvalidOptions = errors.New("invalid synth options")

type options struct {
	games       int
	players     int
	unlisted    int
	stints      int
	seed        uint64
	teamID      string
	opponent    bool
	start       time.Time
	daysBetween int
	logger      logger.Logger
}

func defaults() options {
	return options{
		games:       8,
		players:     10,
		stints:      12,
		seed:        1,
		teamID:      "T1",
		start:       time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC),
		daysBetween: 3,
	}
}

// Option configures Generate.
type Option func(*options)

// WithGames sets the number of game files.
func WithGames(n int) Option { return func(o *options) { o.games = n } }

// WithPlayers sets the squad size; at least five.
func WithPlayers(n int) Option { return func(o *options) { o.players = n } }

// WithUnlisted leaves the last n players out of the roster file so their
// labels come from the name fallback.
func WithUnlisted(n int) Option { return func(o *options) { o.unlisted = n } }

// WithStintsPerGame sets the number of stints for the team in each game.
func WithStintsPerGame(n int) Option { return func(o *options) { o.stints = n } }

// WithSeed makes output reproducible for a given seed.
func WithSeed(seed uint64) Option { return func(o *options) { o.seed = seed } }

// WithTeamID sets the teamId written on the team's rows.
func WithTeamID(id string) Option { return func(o *options) { o.teamID = id } }

// WithOpponentRows also writes one opponent row per stint, for exercising
// the team filter.
func WithOpponentRows(on bool) Option { return func(o *options) { o.opponent = on } }

// WithStartDate sets the first game date.
func WithStartDate(t time.Time) Option { return func(o *options) { o.start = t } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(o *options) { o.logger = l } }
