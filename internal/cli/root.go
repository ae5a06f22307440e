package cli

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/clubdesk/internal/config"
	"github.com/mcoot/clubdesk/internal/factory"
	"github.com/mcoot/clubdesk/internal/model"
	"github.com/mcoot/clubdesk/internal/outcome"
	"github.com/mcoot/clubdesk/internal/services/seed"
)

var (
	cfg      *Config
	app      *factory.App
	out      *Output
	settings *config.Config
	seeded   []string
	running  bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()
	app, out, settings, seeded, running = nil, nil, nil, nil, false

	rootCmd := &cobra.Command{
		Use:   "clubctl",
		Short: "Manage a sports club's players, trainings and matches",
		Long: `clubctl manages a sports club database: accounts, player profiles,
training sessions, matches and per-match player statistics.

Most commands act on behalf of a logged-in user. Pass --user and --pass, or
run "clubctl login" once to save a session token.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())

			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}
			return openApp(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfg.Username, "user", "u", cfg.Username, "Username to act as (env: CLUB_USER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Password, "pass", "p", cfg.Password, "Password (env: CLUB_PASS)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: CLUB_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: CLUB_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Config file (env: CLUB_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database path (env: CLUB_DB_PATH)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newTrainingsCmd())
	rootCmd.AddCommand(newMatchesCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

// openApp loads settings, wires the application and seeds missing accounts
func openApp(cmd *cobra.Command) error {
	c, err := config.Load(config.Options{ConfigFile: cfg.ConfigFile})
	if err != nil {
		return outcome.New(outcome.CodeInvalidInput, err.Error())
	}
	if cfg.DBPath != "" {
		c.DBPath = cfg.DBPath
	}
	if cfg.Verbose {
		c.LogLevel = "debug"
	}
	settings = c

	logger := c.NewLogger(cmd.ErrOrStderr())
	a, err := factory.New(factory.ConfigFrom(c, logger))
	if err != nil {
		return err
	}
	app = a

	seeded, err = app.SeedService.Ensure(cmd.Context(), seed.Config{
		AdminPassword: c.AdminPassword,
		Demo:          c.SeedDemo,
	})
	return err
}

// currentActor resolves who the command runs as: --user/--pass first, then
// a session token
func currentActor(cmd *cobra.Command) (model.Actor, error) {
	ctx := cmd.Context()
	if cfg.HasPassword() {
		session, err := app.AuthService.Authenticate(ctx, cfg.Username, cfg.Password)
		if err != nil {
			return model.Actor{}, err
		}
		return session.Actor, nil
	}
	if cfg.Token != "" {
		session, err := app.AuthService.Resume(ctx, cfg.Token)
		if err != nil {
			return model.Actor{}, err
		}
		return session.Actor, nil
	}
	return model.Actor{}, outcome.NewAuthRequired()
}

// action marks the point where argument checking is over
func action(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		running = true
		return fn(cmd, args)
	}
}

func parseID(field, arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 0)
	if err != nil || id == 0 {
		return 0, model.NewValidationError(field, "must be a positive whole number")
	}
	return uint(id), nil
}

// Run executes clubctl with args and returns the process exit code
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if app != nil {
		_ = app.Close()
	}
	if err == nil {
		return 0
	}

	if out == nil {
		out = NewOutput(cfg.Output, stdout, stderr)
	}
	r := outcome.FromError(err)
	if r.Code == outcome.CodeInternalError && !running {
		// cobra rejected the flags or arguments
		r = outcome.FromError(outcome.New(outcome.CodeInvalidInput, err.Error()))
	}
	out.PrintResult(r)
	return r.ExitCode()
}

// Execute runs the root command
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
