package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTeamsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List the teams in the league",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lg, err := g.openLeague(cmd.Context())
			if err != nil {
				return err
			}
			defer lg.Close()

			teams, err := lg.teams.ListTeams(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTeam\tAbbr\tConference\tRecord\tHome\tAway\tPlayers")
			for _, t := range teams {
				r := t.Record
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d-%d\t%d-%d\t%d-%d\t%d\n",
					t.ID, t.Name, t.Abbreviation, t.Conference,
					r.Wins, r.Losses, r.HomeWins, r.HomeLosses, r.AwayWins, r.AwayLosses, len(t.Players))
			}
			return w.Flush()
		},
	}
}
