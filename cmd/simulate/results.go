package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newResultsCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show the most recently archived games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if g.dbPath == "" {
				return errors.New("results requires --db")
			}
			lg, err := g.openLeague(cmd.Context())
			if err != nil {
				return err
			}
			defer lg.Close()

			results, err := lg.store.RecentResults(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No games recorded yet.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "Finished\tAway\tHome\tFinal\tPeriods")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s %d\t%s %d\t%s\t%d\n",
					r.FinishedAt.Local().Format("2006-01-02 15:04"),
					r.BoxScore.Away.Name, r.AwayScore,
					r.BoxScore.Home.Name, r.HomeScore,
					winnerLabel(string(r.Winner)), r.Periods)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of games to show")
	return cmd
}

func winnerLabel(w string) string {
	if w == "" {
		return "tie"
	}
	return w + " win"
}
