package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/matchaudit/cmd/matchaudit/cmd/audit"
	"github.com/agentstation/matchaudit/cmd/matchaudit/cmd/build"
	"github.com/agentstation/matchaudit/cmd/matchaudit/cmd/evaluate"
	"github.com/agentstation/matchaudit/cmd/matchaudit/cmd/summary"
)

// CreateEvaluateCommand creates the evaluate command with app dependencies.
func (a *App) CreateEvaluateCommand() *cobra.Command {
	return evaluate.NewCommand(a)
}

// CreateBuildCommand creates the build command with app dependencies.
func (a *App) CreateBuildCommand() *cobra.Command {
	return build.NewCommand(a)
}

// CreateAuditCommand creates the audit command with app dependencies.
func (a *App) CreateAuditCommand() *cobra.Command {
	return audit.NewCommand(a)
}

// CreateSummaryCommand creates the summary command with app dependencies.
func (a *App) CreateSummaryCommand() *cobra.Command {
	return summary.NewCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("matchaudit %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
