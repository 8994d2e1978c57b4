package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cory-johannsen/hoopsim/internal/game/engine"
	"github.com/cory-johannsen/hoopsim/internal/game/settings"
	"github.com/cory-johannsen/hoopsim/internal/gameserver"
)

// maxTicks bounds a single game; a regulation game at speed 1 needs a few
// thousand ticks even with several overtimes.
const maxTicks = 100000

type playFlags struct {
	home, away    int
	seed          uint64
	speed         int
	quarterLength int
	difficulty    string
	events        bool
	autoTimeouts  bool
}

func newPlayCmd(g *globals) *cobra.Command {
	f := &playFlags{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one game to the final buzzer and print the box score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := settings.Default()
			s.GameSpeed = f.speed
			s.QuarterLength = f.quarterLength
			d, err := settings.ParseDifficulty(f.difficulty)
			if err != nil {
				return err
			}
			s.Difficulty = d
			if err := s.Validate(); err != nil {
				return err
			}
			var seed *uint64
			if cmd.Flags().Changed("seed") {
				seed = &f.seed
			}
			return runPlay(cmd.Context(), cmd.OutOrStdout(), g, f, s, seed)
		},
	}
	cmd.Flags().IntVar(&f.home, "home", 1, "Home team id")
	cmd.Flags().IntVar(&f.away, "away", 2, "Away team id")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "RNG seed for a reproducible game (unset = random)")
	cmd.Flags().IntVar(&f.speed, "speed", 4, "Game speed multiplier (1-4)")
	cmd.Flags().IntVar(&f.quarterLength, "quarter-length", settings.Default().QuarterLength, "Quarter length in minutes")
	cmd.Flags().StringVar(&f.difficulty, "difficulty", string(settings.Default().Difficulty), "Difficulty: easy, normal, hard, all-american")
	cmd.Flags().BoolVar(&f.events, "events", false, "Print the play-by-play")
	cmd.Flags().BoolVar(&f.autoTimeouts, "auto-timeouts", true, "Let coaches call timeouts")
	return cmd
}

func runPlay(ctx context.Context, out io.Writer, g *globals, f *playFlags, s settings.Settings, seed *uint64) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	lg, err := g.openLeague(ctx)
	if err != nil {
		return err
	}
	defer lg.Close()

	opts := gameserver.Options{AutoTimeouts: f.autoTimeouts, Results: lg.results}
	d, err := gameserver.NewDriver(ctx, uuid.NewString(), lg.teams, s, gameserver.DefaultSourceFactory(seed), f.home, f.away, opts, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := playOut(ctx, d); err != nil {
		return err
	}
	snap := d.Snapshot()
	if f.events {
		printEvents(out, snap.State.Events)
		fmt.Fprintln(out)
	}
	printBoxScore(out, snap.BoxScore())
	return nil
}

// playOut ticks d until the game ends.
func playOut(ctx context.Context, d *gameserver.Driver) error {
	for range maxTicks {
		err := d.Tick(ctx)
		if errors.Is(err, engine.ErrGameOver) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return fmt.Errorf("game %s did not finish within %d ticks", d.ID(), maxTicks)
}

func printEvents(out io.Writer, events []engine.Event) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Time, e.Type, e.Description)
	}
	w.Flush()
}

func printBoxScore(out io.Writer, b engine.BoxScore) {
	status := fmt.Sprintf("%s %s", b.Period, b.Clock)
	if b.Final {
		status = "FINAL"
		if b.Period != "Q4" {
			status = "FINAL/" + b.Period
		}
	}
	fmt.Fprintf(out, "%s %d, %s %d (%s)\n", b.Away.Name, b.Away.Score, b.Home.Name, b.Home.Score, status)
	for _, tb := range []engine.TeamBox{b.Away, b.Home} {
		fmt.Fprintln(out)
		printTeamBox(out, tb)
	}
	fmt.Fprintln(out)
	printLeader(out, "Points", b.Leaders.Points)
	printLeader(out, "Rebounds", b.Leaders.Rebounds)
	printLeader(out, "Assists", b.Leaders.Assists)
}

func printTeamBox(out io.Writer, tb engine.TeamBox) {
	fmt.Fprintln(out, tb.Name)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tPlayer\tPos\tMIN\tPTS\tFG\t3PT\tFT\tREB\tAST\tSTL\tBLK\tTO\tPF\t")
	for _, p := range tb.Players {
		st := p.Stats
		fmt.Fprintf(w, "%d\t%s\t%s\t%.0f\t%d\t%d-%d\t%d-%d\t%d-%d\t%d\t%d\t%d\t%d\t%d\t%d\t\n",
			p.Number, p.Name, p.Position, st.MinutesPlayed, st.Points,
			st.FGMade, st.FGAttempted, st.FG3Made, st.FG3Attempted, st.FTMade, st.FTAttempted,
			st.Rebounds, st.Assists, st.Steals, st.Blocks, st.Turnovers, st.Fouls)
	}
	t := tb.Totals
	fmt.Fprintf(w, "\tTotals\t\t\t%d\t%d-%d\t%d-%d\t%d-%d\t%d\t%d\t%d\t%d\t%d\t%d\t\n",
		t.Points, t.FGMade, t.FGAttempted, t.FG3Made, t.FG3Attempted, t.FTMade, t.FTAttempted,
		t.Rebounds, t.Assists, t.Steals, t.Blocks, t.Turnovers, t.Fouls)
	w.Flush()
	fmt.Fprintf(out, "FG %.1f%%  3PT %.1f%%  FT %.1f%%\n",
		100*t.FieldGoalPct(), 100*t.ThreePointPct(), 100*t.FreeThrowPct())
}

func printLeader(out io.Writer, label string, l engine.Leader) {
	if l.Value == 0 {
		fmt.Fprintf(out, "%-9s -\n", label+":")
		return
	}
	fmt.Fprintf(out, "%-9s %s (%s) %d\n", label+":", l.Name, l.Side, l.Value)
}
