// Package constants provides shared constants used throughout matchaudit.
// This includes artifact names, default thresholds, file permissions, and
// other values that must stay consistent between the evaluator, the
// summary builder, and the auditor.
package constants

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Audit defaults
const (
	// DefaultTolerance is the absolute difference allowed between emitted and
	// recomputed numeric values before a check fails
	DefaultTolerance = 0.01

	// ToleranceEpsilon absorbs float noise at the tolerance boundary
	ToleranceEpsilon = 1e-9

	// DefaultWorkers bounds how many runs are audited concurrently
	DefaultWorkers = 4

	// TopMatchKeys is how many match keys are kept in the quality report
	TopMatchKeys = 10
)

// Configuration constants
const (
	// EnvPrefix prefixes every environment variable read by matchaudit
	EnvPrefix = "MATCHAUDIT"

	// ConfigName is the base name of the optional config file
	ConfigName = ".matchaudit"

	// DefaultOutputRoot is the directory that holds run directories
	DefaultOutputRoot = "output"

	// DefaultSummaryFile is the emitted dashboard summary built and audited by default
	DefaultSummaryFile = "dashboard/management_dashboard_data.js"

	// DefaultAuditReportJSON is where the audit report is written
	DefaultAuditReportJSON = "dashboard/dashboard_data_audit_report.json"

	// DefaultAuditReportMarkdown is where the Markdown audit report is written
	DefaultAuditReportMarkdown = "dashboard/dashboard_data_audit_report.md"

	// DefaultSummaryVariable is the JS variable the summary is assigned to
	DefaultSummaryVariable = "MVP_DASHBOARD_DATA"
)

// Run artifact names inside a run directory
const (
	// TechnicalDir is the sub-directory that holds machine artifacts
	TechnicalDir = "technical output"

	// InputSourceFile describes where the run's input came from
	InputSourceFile = "input_source.json"

	// LabelsFile holds labelled input records as JSON lines
	LabelsFile = "input_normalized.jsonl"

	// EntityRecordsFile holds the engine's record-to-entity assignments
	EntityRecordsFile = "entity_records.csv"

	// MatchedPairsFile holds the engine's anchor/matched record pairs
	MatchedPairsFile = "matched_pairs.csv"

	// ManagementSummaryFile holds the run's management KPIs
	ManagementSummaryFile = "management_summary.json"

	// QualityFile holds the ground-truth match quality report
	QualityFile = "ground_truth_match_quality.json"

	// QualityMarkdownFile is the Markdown rendering of QualityFile
	QualityMarkdownFile = "ground_truth_match_quality.md"

	// RunSummaryFile holds the run outcome written by the pipeline
	RunSummaryFile = "run_summary.json"

	// MappingSummaryFile holds input field mapping statistics
	MappingSummaryFile = "mapping_summary.json"
)

// Default record field names
const (
	// DefaultSourceField names the data source of a labelled record
	DefaultSourceField = "DATA_SOURCE"

	// DefaultRecordIDField names the record identifier of a labelled record
	DefaultRecordIDField = "RECORD_ID"

	// DefaultLabelField names the ground-truth group of a labelled record
	DefaultLabelField = "SOURCE_IPG_ID"
)

// Format constants
const (
	// RunIDLayout is the timestamp layout that prefixes run directory names
	RunIDLayout = "20060102_150405"

	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)
