// Package runner starts the external dump tool and streams its output into a sink.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

const (
	// AbnormalExitCode is reported when the process ended without an exit code.
	AbnormalExitCode = -1

	searchSubcommand = "search"
	outputFlag       = "--output"
	formatFlag       = "--format"
	chdirOperation   = "chdir"

	errorCommandNotFoundFormat = "command '%s' not found; install rdump or set the command path in the configuration"
	errorPipeFormat            = "open %s pipe: %w"
	errorReadStreamFormat      = "read %s: %w"
)

// ErrCommandNotFound matches CommandNotFoundError.
var ErrCommandNotFound = errors.New("command not found")

// CommandNotFoundError reports an executable that could not be located or started because it is missing.
type CommandNotFoundError struct {
	Command string
	Err     error
}

func (err *CommandNotFoundError) Error() string {
	return fmt.Sprintf(errorCommandNotFoundFormat, err.Command)
}

func (err *CommandNotFoundError) Unwrap() error {
	return err.Err
}

// Is matches ErrCommandNotFound.
func (err *CommandNotFoundError) Is(target error) bool {
	return target == ErrCommandNotFound
}

// Invocation describes one run of the external tool.
type Invocation struct {
	Command   string
	Arguments []string
	Directory string
}

// Arguments builds the argument vector for a search dump.
func Arguments(query, outputPath, format string) []string {
	return []string{searchSubcommand, query, outputFlag, outputPath, formatFlag, format}
}

// Runner executes invocations without a shell.
type Runner struct{}

// NewRunner constructs a Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run starts the invocation, streams stdout and stderr into sink as they are produced
// and returns the exit code once the process terminates.
func (runner *Runner) Run(ctx context.Context, invocation Invocation, sink Sink) (int, error) {
	command := exec.CommandContext(ctx, invocation.Command, invocation.Arguments...)
	command.Dir = invocation.Directory
	command.Stdin = nil

	stdoutPipe, stdoutErr := command.StdoutPipe()
	if stdoutErr != nil {
		return AbnormalExitCode, fmt.Errorf(errorPipeFormat, StreamStdout, stdoutErr)
	}
	stderrPipe, stderrErr := command.StderrPipe()
	if stderrErr != nil {
		return AbnormalExitCode, fmt.Errorf(errorPipeFormat, StreamStderr, stderrErr)
	}

	if startErr := command.Start(); startErr != nil {
		if isCommandMissing(startErr) {
			return AbnormalExitCode, &CommandNotFoundError{Command: invocation.Command, Err: startErr}
		}
		return AbnormalExitCode, startErr
	}

	var group errgroup.Group
	group.Go(func() error {
		return copyStream(sink, StreamStdout, stdoutPipe)
	})
	group.Go(func() error {
		return copyStream(sink, StreamStderr, stderrPipe)
	})
	copyErr := group.Wait()
	waitErr := command.Wait()
	if flusher, ok := sink.(Flusher); ok {
		flusher.Flush()
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return AbnormalExitCode, waitErr
	}
	if copyErr != nil {
		return command.ProcessState.ExitCode(), copyErr
	}
	return command.ProcessState.ExitCode(), nil
}

func copyStream(sink Sink, stream Stream, reader io.Reader) error {
	if _, copyErr := io.Copy(sinkWriter{sink: sink, stream: stream}, reader); copyErr != nil && !errors.Is(copyErr, fs.ErrClosed) {
		return fmt.Errorf(errorReadStreamFormat, stream, copyErr)
	}
	return nil
}

func isCommandMissing(startErr error) bool {
	if errors.Is(startErr, exec.ErrNotFound) {
		return true
	}
	var pathErr *fs.PathError
	if errors.As(startErr, &pathErr) && pathErr.Op == chdirOperation {
		return false
	}
	return errors.Is(startErr, fs.ErrNotExist)
}
