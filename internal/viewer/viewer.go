// Package viewer opens a produced dump for the user.
package viewer

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	darwinOpenCommand  = "open"
	windowsOpenCommand = "rundll32"
	windowsOpenHandler = "url.dll,FileProtocolHandler"
	unixOpenCommand    = "xdg-open"
	glamourStyleName   = "dark"
	markdownFormat     = "markdown"
	markdownShortName  = "md"
	markdownExtension  = ".md"
	defaultWrapWidth   = 100

	errorStartOpenerFormat = "open %s with %s: %w"
	errorReadDumpFormat    = "read %s: %w"
)

// Opener presents a file to the user.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// SystemOpener launches the platform's default application for a file without waiting for it.
type SystemOpener struct {
	operatingSystem string
}

// NewSystemOpener constructs a SystemOpener for the running platform.
func NewSystemOpener() *SystemOpener {
	return &SystemOpener{operatingSystem: runtime.GOOS}
}

// Open starts the platform opener for path.
func (opener *SystemOpener) Open(ctx context.Context, path string) error {
	name, arguments := openCommand(opener.operatingSystem, path)
	command := exec.Command(name, arguments...)
	if startErr := command.Start(); startErr != nil {
		return fmt.Errorf(errorStartOpenerFormat, path, name, startErr)
	}
	return command.Process.Release()
}

func openCommand(operatingSystem, path string) (string, []string) {
	switch operatingSystem {
	case "darwin":
		return darwinOpenCommand, []string{path}
	case "windows":
		return windowsOpenCommand, []string{windowsOpenHandler, path}
	default:
		return unixOpenCommand, []string{path}
	}
}

// TerminalViewer prints a dump to a writer, rendering markdown with glamour on terminals.
type TerminalViewer struct {
	output     io.Writer
	format     string
	isTerminal bool
	wrapWidth  int
}

// NewTerminalViewer constructs a viewer writing to standard output.
// format is the dump format passed to the external tool.
func NewTerminalViewer(format string) *TerminalViewer {
	outputDescriptor := int(os.Stdout.Fd())
	wrapWidth := defaultWrapWidth
	if width, _, sizeErr := term.GetSize(outputDescriptor); sizeErr == nil && width > 0 {
		wrapWidth = width
	}
	return &TerminalViewer{
		output:     os.Stdout,
		format:     format,
		isTerminal: term.IsTerminal(outputDescriptor),
		wrapWidth:  wrapWidth,
	}
}

// Open writes the file at path to the viewer's output.
func (viewer *TerminalViewer) Open(ctx context.Context, path string) error {
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		return fmt.Errorf(errorReadDumpFormat, path, readErr)
	}
	if viewer.isTerminal && isMarkdown(viewer.format, path) {
		renderer, rendererErr := glamour.NewTermRenderer(
			glamour.WithStandardStyle(glamourStyleName),
			glamour.WithWordWrap(viewer.wrapWidth),
		)
		if rendererErr == nil {
			if rendered, renderErr := renderer.Render(string(content)); renderErr == nil {
				_, writeErr := io.WriteString(viewer.output, rendered)
				return writeErr
			}
		}
	}
	_, writeErr := viewer.output.Write(content)
	return writeErr
}

func isMarkdown(format, path string) bool {
	normalizedFormat := strings.ToLower(strings.TrimSpace(format))
	if normalizedFormat == markdownFormat || normalizedFormat == markdownShortName {
		return true
	}
	return strings.EqualFold(filepath.Ext(path), markdownExtension)
}

var (
	_ Opener = (*SystemOpener)(nil)
	_ Opener = (*TerminalViewer)(nil)
)
