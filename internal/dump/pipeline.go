// Package dump runs one folder dump from selection to report.
package dump

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/folderdump/internal/config"
	"github.com/temirov/folderdump/internal/outputpath"
	"github.com/temirov/folderdump/internal/runner"
	"github.com/temirov/folderdump/internal/tokens"
	"github.com/temirov/folderdump/internal/workspace"
)

const (
	errorEmptyOutputNameFormat = "output name template %q rendered an empty file name"
	runningMessage             = "running dump"
	finishedMessage            = "dump finished"
	selectionCancelledMessage  = "no folder selected"
)

// ErrReported marks failures that were already shown to the user.
var ErrReported = errors.New("failure reported")

// TargetResolver resolves the folder a dump operates on.
type TargetResolver interface {
	Resolve(ctx context.Context, selection string) (workspace.Target, error)
}

// ProcessRunner runs the external tool.
type ProcessRunner interface {
	Run(ctx context.Context, invocation runner.Invocation, sink runner.Sink) (int, error)
}

// ResultReporter presents outcomes to the user.
type ResultReporter interface {
	Success(ctx context.Context, outputPath string) error
	Failure(exitCode int)
	Error(err error)
}

// Request is one user-triggered dump. An empty Selection prompts for a folder.
type Request struct {
	Selection string
}

// Result describes a completed external tool run.
type Result struct {
	Target     workspace.Target
	Tokens     tokens.Set
	Invocation runner.Invocation
	OutputPath string
	ExitCode   int
}

// Dependencies are the collaborators of a Pipeline.
type Dependencies struct {
	Resolver TargetResolver
	Runner   ProcessRunner
	Sink     runner.Sink
	Reporter ResultReporter
	Logger   *zap.Logger
	// Clock supplies the instant used for the timestamp token; time.Now when nil.
	Clock func() time.Time
	// TemporaryDirectory overrides os.TempDir for the temp output location.
	TemporaryDirectory string
}

// Pipeline executes dumps with a fixed set of settings.
type Pipeline struct {
	settings     config.Settings
	dependencies Dependencies
	logger       *zap.Logger
}

// NewPipeline constructs a Pipeline.
func NewPipeline(settings config.Settings, dependencies Dependencies) *Pipeline {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if dependencies.Sink == nil {
		dependencies.Sink = runner.NewBufferSink()
	}
	if dependencies.Clock == nil {
		dependencies.Clock = time.Now
	}
	return &Pipeline{settings: settings, dependencies: dependencies, logger: logger}
}

// Run resolves the target, prepares the output path and runs the external tool.
// A non-zero exit code is not an error; it is returned in Result.ExitCode.
func (pipeline *Pipeline) Run(ctx context.Context, request Request) (Result, error) {
	target, resolveErr := pipeline.dependencies.Resolver.Resolve(ctx, request.Selection)
	if resolveErr != nil {
		return Result{}, resolveErr
	}

	tokenSet := tokens.Build(target, pipeline.dependencies.Clock())
	query := tokens.Substitute(pipeline.settings.Query, tokenSet)
	outputName := tokens.Substitute(pipeline.settings.OutputName, tokenSet)
	if outputName == "" {
		return Result{}, fmt.Errorf(errorEmptyOutputNameFormat, pipeline.settings.OutputName)
	}

	location := outputpath.ParseLocation(pipeline.settings.OutputLocation)
	outputDirectory := outputpath.Directory(location, target, pipeline.dependencies.TemporaryDirectory)
	outputPath, prepareErr := outputpath.Prepare(outputDirectory, outputName)
	if prepareErr != nil {
		return Result{}, prepareErr
	}

	invocation := runner.Invocation{
		Command:   pipeline.settings.Command,
		Arguments: runner.Arguments(query, outputPath, pipeline.settings.Format),
		Directory: target.Workspace.Root,
	}
	pipeline.logger.Info(runningMessage,
		zap.String("command", invocation.Command),
		zap.Strings("arguments", invocation.Arguments),
		zap.String("directory", invocation.Directory),
	)

	exitCode, runErr := pipeline.dependencies.Runner.Run(ctx, invocation, pipeline.dependencies.Sink)
	if runErr != nil {
		return Result{}, runErr
	}
	pipeline.logger.Info(finishedMessage, zap.Int("exit_code", exitCode), zap.String("output", outputPath))

	return Result{
		Target:     target,
		Tokens:     tokenSet,
		Invocation: invocation,
		OutputPath: outputPath,
		ExitCode:   exitCode,
	}, nil
}

// Execute runs the dump and reports its outcome. Every failure is reported once and
// returned wrapped in ErrReported; a dismissed folder prompt is a silent no-op.
func (pipeline *Pipeline) Execute(ctx context.Context, request Request) error {
	reporter := pipeline.dependencies.Reporter
	result, runErr := pipeline.Run(ctx, request)
	if runErr != nil {
		if errors.Is(runErr, workspace.ErrNoSelection) {
			pipeline.logger.Debug(selectionCancelledMessage)
			return nil
		}
		reporter.Error(runErr)
		return fmt.Errorf("%w: %w", ErrReported, runErr)
	}
	if result.ExitCode != 0 {
		reporter.Failure(result.ExitCode)
		return fmt.Errorf("%w: exit code %d", ErrReported, result.ExitCode)
	}
	if successErr := reporter.Success(ctx, result.OutputPath); successErr != nil {
		reporter.Error(successErr)
		return fmt.Errorf("%w: %w", ErrReported, successErr)
	}
	return nil
}
