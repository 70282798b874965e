// Package summary implements the summary command.
package summary

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/matchaudit/cmd/application"
	"github.com/agentstation/matchaudit/internal/cmd/output"
	"github.com/agentstation/matchaudit/internal/cmd/table"
	"github.com/agentstation/matchaudit/pkg/audit"
)

// NewCommand creates the summary command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "summary",
		GroupID: "core",
		Short:   "Show the cross-run summary without writing files",
		Example: `  matchaudit summary
  matchaudit summary -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			engine, err := app.Engine()
			if err != nil {
				return err
			}
			s, err := engine.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), view{s})
		},
	}
}

type view struct {
	s audit.Summary
}

func (v view) Payload() any { return v.s }

func (v view) Table() table.Data { return table.SummaryToTableData(v.s) }
