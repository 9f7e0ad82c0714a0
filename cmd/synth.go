package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/lineups/internal/synth"
)

func newSynthCmd(c *cli) *cobra.Command {
	var (
		dir                              string
		games, players, unlisted, stints int
		seed                             uint64
		opponent                         bool
		teamID                           string
	)
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a synthetic roster and per-game stint files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := synth.Generate(cmd.Context(), dir,
				synth.WithGames(games),
				synth.WithPlayers(players),
				synth.WithUnlisted(unlisted),
				synth.WithStintsPerGame(stints),
				synth.WithSeed(seed),
				synth.WithTeamID(teamID),
				synth.WithOpponentRows(opponent),
				synth.WithLogger(c.log.Named("synth")),
			)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d games\t%d stints\n",
				res.DataSetID, res.RosterPath, len(res.GamePaths), res.Stints)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&dir, "dir", "data", "output directory")
	f.IntVar(&games, "games", 8, "number of game files")
	f.IntVar(&players, "players", 10, "players on the team")
	f.IntVar(&unlisted, "unlisted", 0, "players left out of the roster file")
	f.IntVar(&stints, "stints", 12, "stints per game")
	f.Uint64Var(&seed, "seed", 1, "random seed")
	f.StringVar(&teamID, "synth-team", "T1", "team id written to the teamId column")
	f.BoolVar(&opponent, "opponent", false, "also write opponent rows under team OPP")
	return cmd
}
