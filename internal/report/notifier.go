package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Notifier shows short user-facing messages.
type Notifier interface {
	Info(message string)
	Error(message string)
}

// ConsoleNotifier prints notifications, colored when the writer is a terminal.
type ConsoleNotifier struct {
	writer  io.Writer
	success *color.Color
	failure *color.Color
}

// NewConsoleNotifier constructs a notifier writing to file.
func NewConsoleNotifier(file *os.File) *ConsoleNotifier {
	colorEnabled := isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
	return newConsoleNotifier(file, colorEnabled)
}

func newConsoleNotifier(writer io.Writer, colorEnabled bool) *ConsoleNotifier {
	success := color.New(color.FgGreen)
	failure := color.New(color.FgRed, color.Bold)
	if colorEnabled {
		success.EnableColor()
		failure.EnableColor()
	} else {
		success.DisableColor()
		failure.DisableColor()
	}
	return &ConsoleNotifier{writer: writer, success: success, failure: failure}
}

// Info prints an informational message.
func (notifier *ConsoleNotifier) Info(message string) {
	_, _ = notifier.success.Fprintln(notifier.writer, message)
}

// Error prints an error message.
func (notifier *ConsoleNotifier) Error(message string) {
	_, _ = notifier.failure.Fprintln(notifier.writer, message)
}

// RecordingNotifier keeps notifications in memory.
type RecordingNotifier struct {
	Infos  []string
	Errors []string
}

// Info records an informational message.
func (notifier *RecordingNotifier) Info(message string) {
	notifier.Infos = append(notifier.Infos, message)
}

// Error records an error message.
func (notifier *RecordingNotifier) Error(message string) {
	notifier.Errors = append(notifier.Errors, message)
}

// String renders all recorded notifications.
func (notifier *RecordingNotifier) String() string {
	return fmt.Sprintf("infos=%q errors=%q", notifier.Infos, notifier.Errors)
}

var (
	_ Notifier = (*ConsoleNotifier)(nil)
	_ Notifier = (*RecordingNotifier)(nil)
)
