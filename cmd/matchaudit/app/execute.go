package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/matchaudit/internal/cmd/output"
	"github.com/agentstation/matchaudit/pkg/errors"
)

// Execute runs the matchaudit CLI with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "matchaudit",
		Short:   "Entity resolution match quality and summary audit",
		Version: a.version,
		Long: `matchaudit scores entity-resolution runs against ground-truth labels
and reconciles the KPIs a dashboard summary reports against a fresh
recomputation from each run's artifacts.

Run directories live under the output root and are named
YYYYMMDD_HHMMSS, optionally followed by __label.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", a.config.ConfigFile, "config file (default is ./.matchaudit.yaml or $HOME/.matchaudit.yaml)")
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.config.NoColor, "no-color", a.config.NoColor, "disable colored output")
	flags.StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, json, yaml, markdown")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.StringVar(&a.config.OutputRoot, "output-root", a.config.OutputRoot, "directory holding the run directories")
	flags.StringVar(&a.config.Summary, "summary", a.config.Summary, "emitted summary file (.js, .json, .yaml)")
	flags.IntVar(&a.config.Workers, "workers", a.config.Workers, "runs processed concurrently (0 = one per CPU)")
	flags.StringArrayVar(&a.config.Runs, "runs", a.config.Runs, "only runs whose id matches a glob or regex (repeatable)")

	rootCmd.SetVersionTemplate("matchaudit {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// engineFlags are the persistent flags that override engine configuration.
var engineFlags = []string{"output-root", "summary", "workers", "runs", "format", "no-color"}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("config") {
		if err := a.reloadConfig(cmd); err != nil {
			return err
		}
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		mustGetString(cmd, "format"),
		mustGetString(cmd, "log-level"),
	)
	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return errors.WrapValidation("format", err)
	}
	if err := a.config.Validate(); err != nil {
		return err
	}

	if !a.fixedLogger {
		logger := NewLogger(a.config)
		a.logger = &logger
	}
	return nil
}

// reloadConfig reads the file named by --config, keeping any engine flag
// given on the command line.
func (a *App) reloadConfig(cmd *cobra.Command) error {
	config, err := LoadConfig(mustGetString(cmd, "config"))
	if err != nil {
		return err
	}
	for _, name := range engineFlags {
		if !cmd.Flags().Changed(name) {
			continue
		}
		switch name {
		case "output-root":
			config.OutputRoot = mustGetString(cmd, name)
		case "summary":
			config.Summary = mustGetString(cmd, name)
		case "workers":
			n, _ := cmd.Flags().GetInt(name)
			config.Workers = n
		case "runs":
			config.Runs, _ = cmd.Flags().GetStringArray(name)
		case "format":
			config.Format = mustGetString(cmd, name)
		case "no-color":
			config.NoColor = mustGetBool(cmd, name)
		}
	}
	*a.config = *config
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.CreateEvaluateCommand())
	rootCmd.AddCommand(a.CreateBuildCommand())
	rootCmd.AddCommand(a.CreateAuditCommand())
	rootCmd.AddCommand(a.CreateSummaryCommand())
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// ExitOnError prints err and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
