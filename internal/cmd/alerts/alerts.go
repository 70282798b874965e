// Package alerts prints short status notices after a command's main output.
//
// Alerts go to stderr and only in the human formats (table and markdown);
// JSON and YAML output stays machine-readable and relies on the exit status.
package alerts

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/agentstation/matchaudit/internal/cmd/emoji"
	"github.com/agentstation/matchaudit/internal/cmd/output"
)

// Level represents the severity of an alert.
type Level int

const (
	// LevelError indicates a failure or error condition.
	LevelError Level = iota
	// LevelWarning indicates a potential issue or important notice.
	LevelWarning
	// LevelInfo indicates general informational messages.
	LevelInfo
	// LevelSuccess indicates successful completion of an operation.
	LevelSuccess
)

// String returns the string representation of the alert level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Icon returns the symbol for the alert level.
func (l Level) Icon() string {
	switch l {
	case LevelError:
		return emoji.Error
	case LevelWarning:
		return emoji.Warning
	case LevelInfo:
		return emoji.Info
	case LevelSuccess:
		return emoji.Success
	default:
		return emoji.Unknown
	}
}

func (l Level) color() *color.Color {
	switch l {
	case LevelError:
		return color.New(color.FgRed)
	case LevelWarning:
		return color.New(color.FgYellow)
	case LevelSuccess:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgCyan)
	}
}

// Alert is one status notice.
type Alert struct {
	Level   Level
	Message string
	Details []string
	Err     error
}

// New creates a new alert with the given level and message.
func New(level Level, message string) *Alert {
	return &Alert{Level: level, Message: message}
}

// NewError creates a new error alert.
func NewError(message string) *Alert { return New(LevelError, message) }

// NewWarning creates a new warning alert.
func NewWarning(message string) *Alert { return New(LevelWarning, message) }

// NewSuccess creates a new success alert.
func NewSuccess(message string) *Alert { return New(LevelSuccess, message) }

// WithError adds an underlying error to the alert.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// WithDetails adds indented detail lines to the alert.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String returns the alert's first line without color.
func (a *Alert) String() string {
	message := a.Level.Icon() + " " + a.Message
	if a.Err != nil {
		message += fmt.Sprintf(": %v", a.Err)
	}
	return message
}

// Writer prints alerts for one output format.
type Writer struct {
	w       io.Writer
	enabled bool
	color   bool
}

// NewWriter creates a Writer for format. Alerts are dropped for JSON and
// YAML. Color is used when w is a terminal and NO_COLOR is unset.
func NewWriter(w io.Writer, format output.Format) *Writer {
	enabled := format == output.FormatTable || format == output.FormatMarkdown || format == ""
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) && os.Getenv("NO_COLOR") == ""
	}
	return &Writer{w: w, enabled: enabled, color: useColor}
}

// Write prints a.
func (w *Writer) Write(a *Alert) error {
	if !w.enabled {
		return nil
	}
	line := a.String()
	if w.color {
		c := a.Level.color()
		c.EnableColor()
		line = c.Sprint(line)
	}
	if _, err := fmt.Fprintln(w.w, line); err != nil {
		return err
	}
	for _, detail := range a.Details {
		if _, err := fmt.Fprintf(w.w, "   %s\n", detail); err != nil {
			return err
		}
	}
	return nil
}
