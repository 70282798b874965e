// Package application provides the application interface for matchaudit commands.
//
// Commands accept Application rather than the concrete App type so they can
// be tested with Mock.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            engine, err := app.Engine()
//	            if err != nil {
//	                return err
//	            }
//	            doc, err := engine.Build(cmd.Context())
//	            // ... render doc
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/matchaudit"
	"github.com/agentstation/matchaudit/pkg/audit"
)

// Engine is the part of matchaudit.Engine that commands use.
type Engine interface {
	OutputRoot() string
	SummaryPath() string
	Tolerance() float64

	Evaluate(ctx context.Context, dir string) (*matchaudit.Evaluation, error)
	WriteEvaluation(ctx context.Context, ev *matchaudit.Evaluation) error

	Build(ctx context.Context) (audit.Document, error)
	Summary(ctx context.Context) (audit.Summary, error)
	WriteSummary(doc audit.Document, path string) error

	Audit(ctx context.Context) (*audit.Report, error)
	WriteAuditReport(r *audit.Report, jsonPath, mdPath, rerun string) error
}

var _ Engine = (*matchaudit.Engine)(nil)

// Application provides what commands need from the running app.
type Application interface {
	// Engine returns an engine configured from the app configuration.
	// Options passed here are applied after the configured ones, so
	// command flags override config files and the environment.
	Engine(opts ...matchaudit.Option) (Engine, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, markdown).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
