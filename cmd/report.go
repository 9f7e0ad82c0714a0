package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/lineups/internal/adapters/repository"
	service "github.com/okian/lineups/internal/app"
)

// report runs the pipeline once and hands the report and service to fn.
// Interval sizes are used only withIntervals.
func (c *cli) report(cmd *cobra.Command, withIntervals bool, fn func(*service.Service, repository.Report) error) error {
	ctx := cmd.Context()
	svc, closeFn, err := c.newService(ctx, withIntervals)
	if err != nil {
		return err
	}
	defer closeFn()

	rep, err := svc.Report(ctx)
	if err != nil {
		return err
	}
	return fn(svc, rep)
}

func newLineupsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lineups",
		Short: "Per-lineup totals and ratings over all games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.report(cmd, false, func(_ *service.Service, rep repository.Report) error {
				return c.write(cmd, rep.Lineups)
			})
		},
	}
}

func newProgressionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "progression",
		Short: "Per-lineup rows for each interval of games",
		Long: "Splits the chronologically ordered games into consecutive intervals " +
			"(--intervals 3,2,3) and emits one table with an interval block per lineup row.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.Intervals == "" {
				return fmt.Errorf("%w: pass --intervals or set LINEUPS_INTERVALS", service.ErrNoIntervals)
			}
			return c.report(cmd, true, func(_ *service.Service, rep repository.Report) error {
				return c.write(cmd, rep.Progression)
			})
		},
	}
}

func newCombosCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combos",
		Short: "Two to five player combinations across lineups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.report(cmd, false, func(svc *service.Service, _ repository.Report) error {
				rows, err := svc.Combos(cmd.Context(), c.cfg.ComboSize, c.cfg.ComboMinMinutes)
				if err != nil {
					return err
				}
				return c.write(cmd, rows)
			})
		},
	}
	cmd.Flags().Int("combo-size", 0, "players per combination, 2 to 5")
	cmd.Flags().Float64("combo-min-minutes", 0, "drop combinations with fewer minutes")
	return cmd
}

func newPlayersCmd(c *cli) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Per-player on-court splits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.report(cmd, false, func(svc *service.Service, _ repository.Report) error {
				rows, err := svc.Players(cmd.Context(), query)
				if err != nil {
					return err
				}
				return c.write(cmd, rows)
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "fuzzy filter on player label or name")
	return cmd
}
