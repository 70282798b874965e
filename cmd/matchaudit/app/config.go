package app

import (
	"math"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/matchaudit/pkg/constants"
	"github.com/agentstation/matchaudit/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Engine configuration
	OutputRoot      string
	Summary         string
	SummaryVariable string
	Tolerance       float64
	Workers         int
	LabelField      string
	SourceField     string
	RecordIDField   string
	Runs            []string

	// Logging configuration
	LogLevel     string
	LogLevelFlag string // --log-level, wins over -v/-q and LogLevel
	LogFormat    string
	LogOutput    string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (MATCHAUDIT_*)
// 3. .env files
// 4. Config file (path, or .matchaudit.yaml in $HOME or the working directory)
// 5. Defaults
func LoadConfig(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); path != "" || !notFound {
			return nil, errors.NewConfigError("viper", "cannot read config file", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		OutputRoot:      v.GetString("output_root"),
		Summary:         v.GetString("summary"),
		SummaryVariable: v.GetString("summary_variable"),
		Tolerance:       v.GetFloat64("tolerance"),
		Workers:         v.GetInt("workers"),
		LabelField:      v.GetString("label_field"),
		SourceField:     v.GetString("source_field"),
		RecordIDField:   v.GetString("record_id_field"),
		Runs:            v.GetStringSlice("runs"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		LogOutput: v.GetString("log.output"),
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_root", constants.DefaultOutputRoot)
	v.SetDefault("summary", constants.DefaultSummaryFile)
	v.SetDefault("summary_variable", constants.DefaultSummaryVariable)
	v.SetDefault("tolerance", constants.DefaultTolerance)
	v.SetDefault("workers", constants.DefaultWorkers)
	v.SetDefault("label_field", constants.DefaultLabelField)
	v.SetDefault("source_field", constants.DefaultSourceField)
	v.SetDefault("record_id_field", constants.DefaultRecordIDField)
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
}

// Validate checks the numeric settings.
func (c *Config) Validate() error {
	if c.Tolerance < 0 || math.IsNaN(c.Tolerance) || math.IsInf(c.Tolerance, 0) {
		return errors.NewValidationError("tolerance", c.Tolerance, "must be a non-negative number")
	}
	if c.Workers < 0 {
		return errors.NewValidationError("workers", c.Workers, "must not be negative")
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	c.LogLevelFlag = logLevel
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first so its values win over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
