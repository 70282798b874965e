package matchaudit

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/matchaudit/pkg/artifacts"
	"github.com/agentstation/matchaudit/pkg/constants"
)

// Option is a function that configures an Engine.
type Option func(*config) error

type config struct {
	outputRoot  string
	summaryPath string
	variable    string
	tolerance   float64
	workers     int
	fields      artifacts.Fields
	runs        []string
	logger      *zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		outputRoot:  constants.DefaultOutputRoot,
		summaryPath: constants.DefaultSummaryFile,
		variable:    constants.DefaultSummaryVariable,
		tolerance:   constants.DefaultTolerance,
		workers:     constants.DefaultWorkers,
		fields:      artifacts.DefaultFields(),
	}
}

// WithOutputRoot sets the directory that holds the run directories.
func WithOutputRoot(path string) Option {
	return func(c *config) error {
		if path != "" {
			c.outputRoot = path
		}
		return nil
	}
}

// WithSummaryPath sets the emitted summary file. Its extension picks the
// format: .js, .json, .yaml or .yml.
func WithSummaryPath(path string) Option {
	return func(c *config) error {
		if path != "" {
			c.summaryPath = path
		}
		return nil
	}
}

// WithSummaryVariable sets the JS variable a .js summary assigns.
func WithSummaryVariable(name string) Option {
	return func(c *config) error {
		if name != "" {
			c.variable = name
		}
		return nil
	}
}

// WithTolerance sets the absolute tolerance for numeric checks
func WithTolerance(tolerance float64) Option {
	return func(c *config) error {
		c.tolerance = tolerance
		return nil
	}
}

// WithWorkers bounds how many runs are processed at once; zero means one per CPU
func WithWorkers(n int) Option {
	return func(c *config) error {
		c.workers = n
		return nil
	}
}

// WithFields sets the label source field names. Empty names keep their defaults.
func WithFields(fields artifacts.Fields) Option {
	return func(c *config) error {
		c.fields = fields.WithDefaults()
		return nil
	}
}

// WithRuns restricts Build, Summary and Audit to run ids matching any of
// the patterns. Patterns with regex syntax (^, $, groups, \d) are regular
// expressions; anything else is a glob such as "20250101_*".
func WithRuns(patterns ...string) Option {
	return func(c *config) error {
		c.runs = append(c.runs, patterns...)
		return nil
	}
}

// WithLogger sets the logger used by the engine.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
