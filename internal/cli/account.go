package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/clubdesk/internal/config"
	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/services/auth"
	"github.com/mcoot/clubdesk/internal/services/seed"
)

func newInitCmd() *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and default accounts",
		Long: `Create the schema and the default admin account if they do not exist.
With --demo a coach and a player account are added too. Running init again
changes nothing.`,
		Args: cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			created := seeded
			if demo {
				more, err := app.SeedService.Ensure(cmd.Context(), seed.Config{
					AdminPassword: settings.AdminPassword,
					Demo:          true,
				})
				if err != nil {
					return err
				}
				created = append(created, more...)
			}

			where := "in memory"
			if settings.Storage == config.StorageSQLite {
				where = "at " + settings.DBPath
			}
			if len(created) == 0 {
				out.PrintMessage(fmt.Sprintf("Database ready %s; nothing to create", where))
			} else {
				out.PrintMessage(fmt.Sprintf("Database ready %s; created %s", where, strings.Join(created, ", ")))
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "Also create the demo coach and player accounts")

	return cmd
}

func newRegisterCmd() *cobra.Command {
	var (
		email string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "register <username> <password>",
		Short: "Sign up as a coach or player",
		Args:  cobra.ExactArgs(2),
		RunE: action(func(cmd *cobra.Command, args []string) error {
			r, err := model.ParseRole(role)
			if err != nil {
				return err
			}
			user, err := app.AuthService.Register(cmd.Context(), auth.RegisterInput{
				Username: args[0],
				Password: args[1],
				Email:    email,
				Role:     r,
			})
			if err != nil {
				return err
			}
			out.PrintMessage(fmt.Sprintf("Registered %s as %s (id %d)", user.Username, user.Role, user.ID))
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (optional)")
	cmd.Flags().StringVar(&role, "role", "", "Account role: coach or player")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in with --user and --pass and save a session token",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			if !cfg.HasPassword() {
				return model.NewValidationError("user", "login needs --user and --pass")
			}
			session, err := app.AuthService.Authenticate(cmd.Context(), cfg.Username, cfg.Password)
			if err != nil {
				return err
			}

			view := LoginView{
				UserID:   uint(session.Actor.UserID),
				Username: session.Username,
				Role:     session.Actor.Role.String(),
			}
			if app.AuthService.TokensEnabled() {
				token, err := app.AuthService.IssueToken(session)
				if err != nil {
					return err
				}
				if err := cfg.SaveToken(token); err != nil {
					return err
				}
				view.Token = token
			}
			out.Print(view)
			return nil
		}),
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session token",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command, args []string) error {
			if err := cfg.ClearToken(); err != nil {
				return err
			}
			out.PrintMessage("Logged out")
			return nil
		}),
	}
}
