package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/services/roster"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Your player profile",
	}

	cmd.AddCommand(newProfileSetCmd())
	cmd.AddCommand(newProfileShowCmd())

	return cmd
}

func newProfileSetCmd() *cobra.Command {
	var in roster.ProfileInput

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update your player profile",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			player, err := app.RosterService.UpsertProfile(cmd.Context(), actor, in)
			if err != nil {
				return err
			}
			out.Print(newPlayerView(*player, ""))
			return nil
		}),
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&in.Position, "position", "", "Playing position")
	cmd.Flags().IntVar(&in.JerseyNumber, "jersey", 0, "Jersey number")
	cmd.Flags().StringVar(&in.JoinDate, "join-date", "", "Join date YYYY-MM-DD (default: today, or unchanged)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("position")

	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your player profile",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			player, err := app.RosterService.GetProfile(cmd.Context(), actor)
			if err != nil {
				return err
			}
			out.Print(newPlayerView(*player, ""))
			return nil
		}),
	}
}

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Club player profiles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every player profile",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			listings, err := app.RosterService.ListPlayers(cmd.Context(), actor)
			if err != nil {
				return err
			}
			views := make([]PlayerView, len(listings))
			for i, l := range listings {
				views[i] = newPlayerView(l.Player, l.Username)
			}
			out.Print(views)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <player-id>",
		Short: "Delete a player profile and its stats",
		Long: `Delete a player profile and its stats. Deleting your own profile keeps
your account; an admin deleting another player's profile also removes the
account that owns it.`,
		Args: cobra.ExactArgs(1),
		RunE: action(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("player_id", args[0])
			if err != nil {
				return err
			}
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			if err := app.RosterService.DeletePlayer(cmd.Context(), actor, model.PlayerID(id)); err != nil {
				return err
			}
			out.PrintMessage(fmt.Sprintf("Player %d deleted", id))
			return nil
		}),
	})

	return cmd
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User accounts (admin only)",
	}

	var role string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			users, err := app.RosterService.ListUsers(cmd.Context(), actor, model.Role(role))
			if err != nil {
				return err
			}
			views := make([]UserView, len(users))
			for i, u := range users {
				views[i] = newUserView(u)
			}
			out.Print(views)
			return nil
		}),
	}
	listCmd.Flags().StringVar(&role, "role", "", "Only list accounts with this role")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete an account with its player profile and stats",
		Args:  cobra.ExactArgs(1),
		RunE: action(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user_id", args[0])
			if err != nil {
				return err
			}
			actor, err := currentActor(cmd)
			if err != nil {
				return err
			}
			if err := app.RosterService.DeleteUser(cmd.Context(), actor, model.UserID(id)); err != nil {
				return err
			}
			out.PrintMessage(fmt.Sprintf("User %d deleted", id))
			return nil
		}),
	})

	return cmd
}
