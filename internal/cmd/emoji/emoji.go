// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols used in tables and command messages.
const (
	// Success marks a passing run or a completed write.
	Success = "✓"

	// Error marks a failing run or check.
	Error = "✗"

	// Warning marks non-fatal problems such as skipped rows.
	Warning = "!"

	// Info marks informational notices.
	Info = "i"

	// Optional marks a skipped check.
	Optional = "-"

	// Unknown marks a status the CLI does not recognise.
	Unknown = "?"
)
