package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/services/stats"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Your per-match statistics",
	}

	cmd.AddCommand(newStatsRecordCmd())
	cmd.AddCommand(newStatsListCmd())

	return cmd
}

func newStatsRecordCmd() *cobra.Command {
	var (
		matchID uint
		in      stats.StatInput
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record your stats for a match, replacing earlier ones",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			in.MatchID = model.MatchID(matchID)
			stat, err := app.StatsService.Record(cmd.Context(), actor, in)
			if err != nil {
				return err
			}
			out.Print(newStatView(*stat))
			return nil
		}),
	}

	cmd.Flags().UintVar(&matchID, "match", 0, "Match id")
	cmd.Flags().IntVar(&in.Goals, "goals", 0, "Goals scored")
	cmd.Flags().IntVar(&in.Assists, "assists", 0, "Assists")
	cmd.Flags().IntVar(&in.YellowCards, "yellow", 0, "Yellow cards")
	cmd.Flags().IntVar(&in.RedCards, "red", 0, "Red cards")
	_ = cmd.MarkFlagRequired("match")

	return cmd
}

func newStatsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your stats, newest match first",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			lines, err := app.StatsService.ListOwn(cmd.Context(), actor)
			if err != nil {
				return err
			}
			views := make([]StatView, len(lines))
			for i, l := range lines {
				views[i] = newStatLineView(l)
			}
			out.Print(views)
			return nil
		}),
	}
}
