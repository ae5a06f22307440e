package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/services/schedule"
)

func newTrainingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trainings",
		Short: "Training sessions",
	}

	cmd.AddCommand(newTrainingAddCmd())
	cmd.AddCommand(newTrainingListCmd())
	cmd.AddCommand(newTrainingUpdateCmd())
	cmd.AddCommand(newTrainingDeleteCmd())

	return cmd
}

func trainingFlags(flags *pflag.FlagSet, in *schedule.TrainingInput) {
	flags.StringVar(&in.Date, "date", "", "Date YYYY-MM-DD")
	flags.IntVar(&in.Duration, "duration", 0, "Duration in minutes")
	flags.StringVar(&in.FocusArea, "focus", "", "Focus area")
	flags.StringVar(&in.Notes, "notes", "", "Notes (optional)")
}

func newTrainingAddCmd() *cobra.Command {
	var in schedule.TrainingInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a training session (coach)",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			training, err := app.ScheduleService.CreateTraining(cmd.Context(), actor, in)
			if err != nil {
				return err
			}
			out.Print(newTrainingView(*training, ""))
			return nil
		}),
	}

	trainingFlags(cmd.Flags(), &in)

	return cmd
}

func newTrainingListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List training sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			listings, err := app.ScheduleService.ListTrainings(cmd.Context(), actor)
			if err != nil {
				return err
			}
			views := make([]TrainingView, len(listings))
			for i, l := range listings {
				views[i] = newTrainingView(l.Training, l.CoachUsername)
			}
			out.Print(views)
			return nil
		}),
	}
}

func newTrainingUpdateCmd() *cobra.Command {
	var in schedule.TrainingInput

	cmd := &cobra.Command{
		Use:   "update <training-id>",
		Short: "Replace a training session's details (coach)",
		Args:  cobra.ExactArgs(1),
		RunE: action(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("training_id", args[0])
			if err != nil {
				return err
			}
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			training, err := app.ScheduleService.UpdateTraining(cmd.Context(), actor, model.TrainingID(id), in)
			if err != nil {
				return err
			}
			out.Print(newTrainingView(*training, ""))
			return nil
		}),
	}

	trainingFlags(cmd.Flags(), &in)

	return cmd
}

func newTrainingDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <training-id>",
		Short: "Delete a training session (coach)",
		Args:  cobra.ExactArgs(1),
		RunE: action(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("training_id", args[0])
			if err != nil {
				return err
			}
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			if err := app.ScheduleService.DeleteTraining(cmd.Context(), actor, model.TrainingID(id)); err != nil {
				return err
			}
			out.PrintMessage(fmt.Sprintf("Training %d deleted", id))
			return nil
		}),
	}
}

func newMatchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "Match fixtures",
	}

	cmd.AddCommand(newMatchAddCmd())
	cmd.AddCommand(newMatchListCmd())
	cmd.AddCommand(newMatchShowCmd())
	cmd.AddCommand(newMatchUpdateCmd())
	cmd.AddCommand(newMatchDeleteCmd())

	return cmd
}

func matchFlags(flags *pflag.FlagSet, in *schedule.MatchInput) {
	flags.StringVar(&in.Opponent, "opponent", "", "Opposing club")
	flags.StringVar(&in.Date, "date", "", "Date YYYY-MM-DD")
	flags.StringVar(&in.Location, "location", "", "Venue")
	flags.StringVar(&in.Score, "score", "", "Final score, e.g. 2-1 (optional)")
	flags.StringVar(&in.Notes, "notes", "", "Notes (optional)")
}

func newMatchAddCmd() *cobra.Command {
	var in schedule.MatchInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a match (coach)",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			match, err := app.ScheduleService.CreateMatch(cmd.Context(), actor, in)
			if err != nil {
				return err
			}
			out.Print(newMatchView(*match))
			return nil
		}),
	}

	matchFlags(cmd.Flags(), &in)

	return cmd
}

func newMatchListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List matches, newest first",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			matches, err := app.ScheduleService.ListMatches(cmd.Context(), actor)
			if err != nil {
				return err
			}
			views := make([]MatchView, len(matches))
			for i, m := range matches {
				views[i] = newMatchView(m)
			}
			out.Print(views)
			return nil
		}),
	}
}

func newMatchShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <match-id>",
		Short: "Show one match",
		Args:  cobra.ExactArgs(1),
		RunE: action(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("match_id", args[0])
			if err != nil {
				return err
			}
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			match, err := app.ScheduleService.GetMatch(cmd.Context(), actor, model.MatchID(id))
			if err != nil {
				return err
			}
			out.Print(newMatchView(*match))
			return nil
		}),
	}
}

func newMatchUpdateCmd() *cobra.Command {
	var in schedule.MatchInput

	cmd := &cobra.Command{
		Use:   "update <match-id>",
		Short: "Replace a match's details (coach)",
		Args:  cobra.ExactArgs(1),
		RunE: action(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("match_id", args[0])
			if err != nil {
				return err
			}
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			match, err := app.ScheduleService.UpdateMatch(cmd.Context(), actor, model.MatchID(id), in)
			if err != nil {
				return err
			}
			out.Print(newMatchView(*match))
			return nil
		}),
	}

	matchFlags(cmd.Flags(), &in)

	return cmd
}

func newMatchDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <match-id>",
		Short: "Delete a match without recorded stats (coach)",
		Args:  cobra.ExactArgs(1),
		RunE: action(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("match_id", args[0])
			if err != nil {
				return err
			}
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			if err := app.ScheduleService.DeleteMatch(cmd.Context(), actor, model.MatchID(id)); err != nil {
				return err
			}
			out.PrintMessage(fmt.Sprintf("Match %d deleted", id))
			return nil
		}),
	}
}
