package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/lineups/internal/adapters/repository"
	"github.com/okian/lineups/internal/adapters/tableio"
	service "github.com/okian/lineups/internal/app"
	"github.com/okian/lineups/internal/config"
	"github.com/okian/lineups/pkg/logger"
)

// configKeys lists the koanf keys that may be set from a flag of the same
// name with dashes.
var configKeys = []string{ //nolint:gochecknoglobals // flag binding table
	"log_level", "log_format",
	"input_dir", "pattern", "intervals", "roster_path", "team_id",
	"output_path", "format", "sink_dsn", "workers",
	"combo_size", "combo_min_minutes",
	"addr", "refresh_schedule", "max_limit", "request_timeout_ms",
}

// cli carries state resolved by the root command for its subcommands.
type cli struct {
	cfgFile string
	dotenv  string
	logOut  io.Writer

	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logOut: os.Stderr}

	root := &cobra.Command{
		Use:          "lineups",
		Short:        "Lineup efficiency tables from per-game stint files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "YAML config file (default $LINEUPS_CONFIG)")
	pf.StringVar(&c.dotenv, "env-file", ".env", "dotenv file loaded before LINEUPS_* variables")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "text or json")
	pf.String("input-dir", "", "directory holding the per-game stint files")
	pf.String("pattern", "", "glob for stint files inside input-dir")
	pf.String("intervals", "", "comma-separated interval sizes in games, e.g. 3,2,3")
	pf.String("roster-path", "", "CSV with pid,name,initial,height")
	pf.String("team-id", "", "keep only rows of this team")
	pf.StringP("output-path", "o", "", "write the table here instead of stdout")
	pf.StringP("format", "f", "", "csv, json or msgpack")
	pf.String("sink-dsn", "", "also store the report in sqlite:<path> or postgres://...")
	pf.Int("workers", 0, "intervals processed concurrently")

	root.AddCommand(
		newLineupsCmd(c),
		newProgressionCmd(c),
		newCombosCmd(c),
		newPlayersCmd(c),
		newServeCmd(c),
		newSynthCmd(c),
	)
	return root
}

// setup loads configuration, with explicitly set flags taking precedence,
// and initializes logging.
func (c *cli) setup(cmd *cobra.Command) error {
	if err := logger.Init(logger.WithOutput(c.logOut)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	opts := []config.LoadOption{config.WithDotEnv(c.dotenv)}
	if c.cfgFile != "" {
		opts = append(opts, config.WithFile(c.cfgFile))
	}
	for _, key := range configKeys {
		f := cmd.Flags().Lookup(strings.ReplaceAll(key, "_", "-"))
		if f != nil && f.Changed {
			opts = append(opts, config.WithOverride(key, f.Value.String()))
		}
	}

	cfg, err := config.Load(cmd.Context(), opts...)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithOutput(c.logOut), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.Get()
	return nil
}

// newService builds a Service from the loaded config. Interval sizes are
// passed on only withIntervals, so tables that do not depend on them never
// fail on a partition mismatch. The returned close function releases the SQL
// sink, if any.
func (c *cli) newService(ctx context.Context, withIntervals bool) (*service.Service, func(), error) {
	opts := []service.Option{
		service.WithInput(c.cfg.InputDir, c.cfg.Pattern),
		service.WithRosterPath(c.cfg.RosterPath),
		service.WithTeamID(c.cfg.TeamID),
		service.WithWorkerCount(c.cfg.Workers),
		service.WithLogger(c.log.Named("service")),
	}
	if withIntervals && strings.TrimSpace(c.cfg.Intervals) != "" {
		sizes, err := c.cfg.IntervalSizes()
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, service.WithIntervals(sizes))
	}

	closeFn := func() {}
	if c.cfg.SinkDSN != "" {
		store, err := repository.Open(ctx, c.cfg.SinkDSN, repository.WithLogger(c.log.Named("sink")))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, service.WithSink(store))
		closeFn = func() {
			if err := store.Close(); err != nil {
				c.log.Warn(ctx, "close sink", logger.Error(err))
			}
		}
	}
	return service.New(opts...), closeFn, nil
}

// write emits rows to the configured output path, or to the command's
// stdout when none is set.
func (c *cli) write(cmd *cobra.Command, rows any) error {
	format, err := tableio.ParseFormat(c.cfg.Format)
	if err != nil {
		return err
	}
	if c.cfg.OutputPath == "" {
		return tableio.Write(cmd.OutOrStdout(), rows, format)
	}
	if err := tableio.WriteFile(c.cfg.OutputPath, rows, format); err != nil {
		return err
	}
	c.log.Info(cmd.Context(), "table written",
		logger.String("path", c.cfg.OutputPath),
		logger.String("format", string(format)),
	)
	return nil
}
