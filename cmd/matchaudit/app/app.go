// Package app provides the application context and dependency management
// for the matchaudit CLI: configuration, logging and engine construction.
package app

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/matchaudit"
	"github.com/agentstation/matchaudit/cmd/application"
	"github.com/agentstation/matchaudit/internal/cmd/output"
	"github.com/agentstation/matchaudit/pkg/artifacts"
	"github.com/agentstation/matchaudit/pkg/errors"
)

// App represents the matchaudit application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// fixedLogger keeps a logger set by WithLogger across flag parsing
	fixedLogger bool
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the default locations and can be replaced
// using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured format, detecting one from the
// terminal when none is set.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Engine creates an engine from the configuration. opts are applied last.
func (a *App) Engine(opts ...matchaudit.Option) (application.Engine, error) {
	base := []matchaudit.Option{
		matchaudit.WithOutputRoot(a.config.OutputRoot),
		matchaudit.WithSummaryPath(a.config.Summary),
		matchaudit.WithSummaryVariable(a.config.SummaryVariable),
		matchaudit.WithTolerance(a.config.Tolerance),
		matchaudit.WithWorkers(a.config.Workers),
		matchaudit.WithFields(artifacts.Fields{
			Source:   a.config.SourceField,
			RecordID: a.config.RecordIDField,
			Label:    a.config.LabelField,
		}),
		matchaudit.WithRuns(a.config.Runs...),
		matchaudit.WithLogger(a.logger),
	}
	engine, err := matchaudit.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "engine", "", err)
	}
	return engine, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.fixedLogger = true
		return nil
	}
}

var _ application.Application = (*App)(nil)
