package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentstation/matchaudit/pkg/constants"
	"github.com/agentstation/matchaudit/pkg/errors"
)

// isolate keeps config files in $HOME and the environment out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"OUTPUT_ROOT", "SUMMARY", "TOLERANCE", "WORKERS", "LOG_LEVEL", "CONFIG", "FORMAT"} {
		t.Setenv(constants.EnvPrefix+"_"+key, "")
		os.Unsetenv(constants.EnvPrefix + "_" + key)
	}
}

// TestLoadConfig verifies the defaults.
func TestLoadConfig(t *testing.T) {
	isolate(t)

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.OutputRoot != constants.DefaultOutputRoot {
		t.Errorf("OutputRoot = %q, want %q", config.OutputRoot, constants.DefaultOutputRoot)
	}
	if config.Summary != constants.DefaultSummaryFile {
		t.Errorf("Summary = %q, want %q", config.Summary, constants.DefaultSummaryFile)
	}
	if config.Tolerance != constants.DefaultTolerance {
		t.Errorf("Tolerance = %v, want %v", config.Tolerance, constants.DefaultTolerance)
	}
	if config.LabelField != constants.DefaultLabelField {
		t.Errorf("LabelField = %q, want %q", config.LabelField, constants.DefaultLabelField)
	}
	if config.LogFormat != "auto" {
		t.Errorf("LogFormat = %q, want auto", config.LogFormat)
	}
	if config.LogLevel != "" {
		t.Errorf("LogLevel = %q, want empty so -v/-q apply", config.LogLevel)
	}
}

// TestConfig_EnvironmentVariables verifies MATCHAUDIT_* variables.
func TestConfig_EnvironmentVariables(t *testing.T) {
	isolate(t)
	t.Setenv("MATCHAUDIT_OUTPUT_ROOT", "/data/runs")
	t.Setenv("MATCHAUDIT_TOLERANCE", "0.5")
	t.Setenv("MATCHAUDIT_WORKERS", "8")
	t.Setenv("MATCHAUDIT_LOG_LEVEL", "debug")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.OutputRoot != "/data/runs" {
		t.Errorf("OutputRoot = %q, want /data/runs", config.OutputRoot)
	}
	if config.Tolerance != 0.5 {
		t.Errorf("Tolerance = %v, want 0.5", config.Tolerance)
	}
	if config.Workers != 8 {
		t.Errorf("Workers = %d, want 8", config.Workers)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", config.LogLevel)
	}
}

// TestConfig_File verifies an explicit config file.
func TestConfig_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "matchaudit.yaml")
	content := "output_root: runs\nsummary: site/data.json\nlabel_field: TRUTH\nlog:\n  level: warn\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.OutputRoot != "runs" || config.Summary != "site/data.json" {
		t.Errorf("paths = %q, %q", config.OutputRoot, config.Summary)
	}
	if config.LabelField != "TRUTH" {
		t.Errorf("LabelField = %q, want TRUTH", config.LabelField)
	}
	if config.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", config.LogLevel)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", config.ConfigFile, path)
	}

	// Environment wins over the file.
	t.Setenv("MATCHAUDIT_OUTPUT_ROOT", "env-runs")
	config, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.OutputRoot != "env-runs" {
		t.Errorf("OutputRoot = %q, want env-runs", config.OutputRoot)
	}
}

// TestConfig_MissingFile verifies that a named config file must exist.
func TestConfig_MissingFile(t *testing.T) {
	isolate(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadConfig() succeeded for a missing file")
	}
	if _, ok := err.(*errors.ConfigError); !ok {
		t.Errorf("error = %T, want *errors.ConfigError", err)
	}
}

// TestConfig_Validate verifies the numeric checks.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "defaults", config: Config{Tolerance: 0.01, Workers: 4}},
		{name: "zero tolerance", config: Config{}},
		{name: "negative tolerance", config: Config{Tolerance: -1}, wantErr: true},
		{name: "negative workers", config: Config{Workers: -2}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.IsValidationError(err) {
				t.Errorf("error = %v, want a validation error", err)
			}
		})
	}

	isolate(t)
	t.Setenv("MATCHAUDIT_TOLERANCE", "-3")
	if _, err := LoadConfig(""); !errors.IsValidationError(err) {
		t.Errorf("LoadConfig() error = %v, want a validation error", err)
	}
}

// TestConfig_UpdateFromFlags verifies flag precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", NoColor: true}
	config.UpdateFromFlags(true, false, false, "", "trace")

	if !config.Verbose || config.Quiet {
		t.Errorf("Verbose/Quiet = %v/%v, want true/false", config.Verbose, config.Quiet)
	}
	if config.Format != "yaml" {
		t.Errorf("Format = %q, want yaml kept", config.Format)
	}
	if !config.NoColor {
		t.Error("NoColor from the environment was cleared")
	}
	if config.LogLevelFlag != "trace" {
		t.Errorf("LogLevelFlag = %q, want trace", config.LogLevelFlag)
	}

	config.UpdateFromFlags(false, false, false, "json", "")
	if config.Format != "json" {
		t.Errorf("Format = %q, want json", config.Format)
	}
}
