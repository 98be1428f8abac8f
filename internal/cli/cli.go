// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/folderdump/internal/config"
	"github.com/temirov/folderdump/internal/dump"
	"github.com/temirov/folderdump/internal/picker"
	"github.com/temirov/folderdump/internal/report"
	"github.com/temirov/folderdump/internal/runner"
	"github.com/temirov/folderdump/internal/services/clipboard"
	"github.com/temirov/folderdump/internal/tokenizer"
	"github.com/temirov/folderdump/internal/utils"
	"github.com/temirov/folderdump/internal/viewer"
	"github.com/temirov/folderdump/internal/workspace"
)

const (
	commandFlagName        = "command"
	queryFlagName          = "query"
	outputNameFlagName     = "output-name"
	outputLocationFlagName = "output-location"
	formatFlagName         = "format"
	openFlagName           = "open"
	openWithFlagName       = "open-with"
	copyFlagName           = "copy"
	tokensFlagName         = "tokens"
	modelFlagName          = "model"
	workspaceFlagName      = "workspace"
	noGitDetectFlagName    = "no-git-detect"
	configFlagName         = "config"
	logFileFlagName        = "log-file"
	globalFlagName         = "global"
	forceFlagName          = "force"

	versionTemplate      = "folderdump version: {{.Version}}\n"
	rootUse              = "folderdump [folder]"
	rootShortDescription = "dump a folder with rdump"
	rootLongDescription  = `folderdump runs "rdump search" for a folder and writes the result next to it.
The query and the output file name are templates; {folderBasename}, {selectedPathForQuery}
and the other tokens are filled from the selected folder and its workspace.
Without a folder argument an interactive picker is shown.`
	rootUsageExample = `  # Dump the utils folder with the configured defaults
  folderdump ./src/utils

  # Dump into the temp directory as JSON without opening the result
  folderdump ./src/utils --output-location temp --format json --open no

  # Treat ~/code/app as a workspace root and count tokens of the dump
  folderdump ~/code/app/web --workspace ~/code/app --tokens`

	configUse              = "config"
	configShortDescription = "manage folderdump configuration"
	configInitUse          = "init"
	configInitShort        = "write the default configuration file"
	configInitLong         = `Write a commented configuration file with default values.
The file is created as .folderdump.yaml in the working directory, or as
~/.folderdump/config.yaml with --global.`
	configShowUse   = "show"
	configShowShort = "print the effective configuration"

	commandFlagDescription        = "path of the rdump executable"
	queryFlagDescription          = "query template"
	outputNameFlagDescription     = "output file name template"
	outputLocationFlagDescription = "output location: selectedFolder, workspaceRoot or temp"
	formatFlagDescription         = "rdump output format"
	openFlagDescription           = "open the dump after it is created"
	openWithFlagDescription       = "viewer used to open the dump: system or terminal"
	copyFlagDescription           = "copy the dump to the clipboard"
	tokensFlagDescription         = "count tokens of the dump"
	modelFlagDescription          = "tokenizer model to use for token counting"
	workspaceFlagDescription      = "workspace root (repeatable)"
	noGitDetectFlagDescription    = "do not use the enclosing git repository as workspace"
	configFlagDescription         = "configuration file to use instead of ./" + utils.LocalConfigFileName
	logFileFlagDescription        = "append logs and rdump output to this file"
	globalFlagDescription         = "write the global configuration file"
	forceFlagDescription          = "overwrite an existing configuration file"

	configWrittenMessageFormat  = "configuration written to %s\n"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	tokenCounterErrorFormat     = "initialize token counter: %w"
	invocationFieldName         = "invocation"
	invocationStartedMessage    = "invocation started"
)

// Dependencies overrides the interactive collaborators of the root command.
// Zero values select the terminal implementations.
type Dependencies struct {
	WorkingDirectory string
	Picker           workspace.Picker
	Notifier         report.Notifier
	Opener           viewer.Opener
	Copier           clipboard.Copier
}

// dumpOptions stores the flags of the root command.
type dumpOptions struct {
	command         string
	query           string
	outputName      string
	outputLocation  string
	format          string
	openAfterCreate bool
	openWith        string
	copyToClipboard bool
	tokensEnabled   bool
	tokenModel      string
	workspaceRoots  []string
	noGitDetect     bool
	configPath      string
	logFile         string
}

// Execute runs the folderdump application.
func Execute(ctx context.Context) error {
	rootCommand := createRootCommand(Dependencies{})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(dependencies Dependencies) *cobra.Command {
	var options dumpOptions

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		Version:       utils.GetApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			selection := ""
			if len(arguments) == 1 {
				selection = arguments[0]
			}
			return runDump(command, dependencies, options, selection)
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	rootCommand.PersistentFlags().StringVar(&options.configPath, configFlagName, "", configFlagDescription)

	flagSet := rootCommand.Flags()
	flagSet.StringVar(&options.command, commandFlagName, config.DefaultCommand, commandFlagDescription)
	flagSet.StringVar(&options.query, queryFlagName, "", queryFlagDescription)
	flagSet.StringVar(&options.outputName, outputNameFlagName, "", outputNameFlagDescription)
	flagSet.StringVar(&options.outputLocation, outputLocationFlagName, "", outputLocationFlagDescription)
	flagSet.StringVar(&options.format, formatFlagName, config.DefaultFormat, formatFlagDescription)
	registerBooleanFlag(flagSet, &options.openAfterCreate, openFlagName, config.DefaultOpenAfterCreate, openFlagDescription)
	flagSet.StringVar(&options.openWith, openWithFlagName, config.DefaultOpenWith, openWithFlagDescription)
	registerBooleanFlag(flagSet, &options.copyToClipboard, copyFlagName, config.DefaultCopyToClipboard, copyFlagDescription)
	registerBooleanFlag(flagSet, &options.tokensEnabled, tokensFlagName, config.DefaultTokensEnabled, tokensFlagDescription)
	flagSet.StringVar(&options.tokenModel, modelFlagName, config.DefaultTokenModel, modelFlagDescription)
	flagSet.StringArrayVar(&options.workspaceRoots, workspaceFlagName, nil, workspaceFlagDescription)
	flagSet.BoolVar(&options.noGitDetect, noGitDetectFlagName, false, noGitDetectFlagDescription)
	flagSet.StringVar(&options.logFile, logFileFlagName, "", logFileFlagDescription)

	rootCommand.AddCommand(createConfigCommand(dependencies, &options))
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createConfigCommand returns the config subcommand with init and show.
func createConfigCommand(dependencies Dependencies, rootOptions *dumpOptions) *cobra.Command {
	var writeGlobal bool
	var overwrite bool

	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShort,
		Long:  configInitLong,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			workingDirectory, workingDirectoryErr := resolveWorkingDirectory(dependencies)
			if workingDirectoryErr != nil {
				return workingDirectoryErr
			}
			destinationPath, initErr := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            overwrite,
				WorkingDirectory: workingDirectory,
			})
			if initErr != nil {
				return initErr
			}
			_, writeErr := fmt.Fprintf(command.OutOrStdout(), configWrittenMessageFormat, destinationPath)
			return writeErr
		},
	}
	initCommand.Flags().BoolVar(&writeGlobal, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&overwrite, forceFlagName, false, forceFlagDescription)

	showCommand := &cobra.Command{
		Use:   configShowUse,
		Short: configShowShort,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			settings, settingsErr := loadSettings(command, dependencies, *rootOptions)
			if settingsErr != nil {
				return settingsErr
			}
			rendered, renderErr := settings.RenderYAML()
			if renderErr != nil {
				return renderErr
			}
			_, writeErr := io.WriteString(command.OutOrStdout(), rendered)
			return writeErr
		},
	}

	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
	}
	configCommand.AddCommand(initCommand, showCommand)
	return configCommand
}

// runDump loads the settings, wires the pipeline and executes one dump.
func runDump(command *cobra.Command, dependencies Dependencies, options dumpOptions, selection string) error {
	settings, settingsErr := loadSettings(command, dependencies, options)
	if settingsErr != nil {
		return settingsErr
	}

	logger, loggerErr := utils.NewApplicationLogger(settings.LogFile)
	if loggerErr != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerErr)
	}
	defer logger.Sync()
	logger = logger.With(zap.String(invocationFieldName, uuid.NewString()))
	logger.Debug(invocationStartedMessage, zap.String("selection", selection))

	resolver, resolverErr := newResolver(settings, dependencies)
	if resolverErr != nil {
		return resolverErr
	}
	reporter, reporterErr := newReporter(settings, dependencies, logger)
	if reporterErr != nil {
		return reporterErr
	}

	pipeline := dump.NewPipeline(settings, dump.Dependencies{
		Resolver: resolver,
		Runner:   runner.NewRunner(),
		Sink:     runner.NewLoggerSink(logger),
		Reporter: reporter,
		Logger:   logger,
	})
	return pipeline.Execute(command.Context(), dump.Request{Selection: selection})
}

// loadSettings layers global, local and flag configuration.
func loadSettings(command *cobra.Command, dependencies Dependencies, options dumpOptions) (config.Settings, error) {
	workingDirectory, workingDirectoryErr := resolveWorkingDirectory(dependencies)
	if workingDirectoryErr != nil {
		return config.Settings{}, workingDirectoryErr
	}
	loaded, loadErr := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
	})
	if loadErr != nil {
		return config.Settings{}, loadErr
	}
	return loaded.Merge(flagOverrides(command, options)).Resolve(), nil
}

// flagOverrides converts explicitly set flags into a configuration layer.
func flagOverrides(command *cobra.Command, options dumpOptions) config.ApplicationConfiguration {
	var overrides config.ApplicationConfiguration
	flagSet := command.Flags()
	changed := func(name string) bool {
		flag := flagSet.Lookup(name)
		return flag != nil && flag.Changed
	}
	if changed(commandFlagName) {
		overrides.Command = strings.TrimSpace(options.command)
	}
	if changed(queryFlagName) {
		overrides.Query = options.query
	}
	if changed(outputNameFlagName) {
		overrides.OutputName = options.outputName
	}
	if changed(outputLocationFlagName) {
		overrides.OutputLocation = strings.TrimSpace(options.outputLocation)
	}
	if changed(formatFlagName) {
		overrides.Format = strings.TrimSpace(options.format)
	}
	if changed(openFlagName) {
		overrides.OpenAfterCreate = boolPointer(options.openAfterCreate)
	}
	if changed(openWithFlagName) {
		overrides.OpenWith = strings.TrimSpace(options.openWith)
	}
	if changed(copyFlagName) {
		overrides.CopyToClipboard = boolPointer(options.copyToClipboard)
	}
	if changed(tokensFlagName) {
		overrides.Tokens.Enabled = boolPointer(options.tokensEnabled)
	}
	if changed(modelFlagName) {
		overrides.Tokens.Model = strings.TrimSpace(options.tokenModel)
	}
	if changed(workspaceFlagName) {
		overrides.Workspace.Roots = utils.DeduplicatePatterns(options.workspaceRoots)
	}
	if changed(noGitDetectFlagName) {
		overrides.Workspace.DetectGit = boolPointer(!options.noGitDetect)
	}
	if changed(logFileFlagName) {
		overrides.LogFile = strings.TrimSpace(options.logFile)
	}
	return overrides
}

func newResolver(settings config.Settings, dependencies Dependencies) (*workspace.Resolver, error) {
	roots, rootsErr := workspace.NewRoots(settings.Workspace.Roots)
	if rootsErr != nil {
		return nil, rootsErr
	}
	var detector workspace.RootDetector
	if settings.Workspace.DetectGit {
		detector = workspace.DetectGitRoot
	}
	folderPicker := dependencies.Picker
	if folderPicker == nil {
		folderPicker = picker.NewDirectoryPicker()
	}
	startDirectory, workingDirectoryErr := resolveWorkingDirectory(dependencies)
	if workingDirectoryErr != nil {
		return nil, workingDirectoryErr
	}
	return workspace.NewResolver(workspace.Options{
		Roots:          roots,
		Detector:       detector,
		Picker:         folderPicker,
		StartDirectory: startDirectory,
	}), nil
}

func newReporter(settings config.Settings, dependencies Dependencies, logger *zap.Logger) (*report.Reporter, error) {
	notifier := dependencies.Notifier
	if notifier == nil {
		notifier = report.NewConsoleNotifier(os.Stderr)
	}
	opener := dependencies.Opener
	if opener == nil {
		if settings.OpenWith == config.OpenWithTerminal {
			opener = viewer.NewTerminalViewer(settings.Format)
		} else {
			opener = viewer.NewSystemOpener()
		}
	}
	copier := dependencies.Copier
	if copier == nil {
		copier = clipboard.NewService()
	}
	var counter tokenizer.Counter
	if settings.Tokens.Enabled {
		createdCounter, _, counterErr := tokenizer.NewCounter(settings.Tokens.Model)
		if counterErr != nil {
			return nil, fmt.Errorf(tokenCounterErrorFormat, counterErr)
		}
		counter = createdCounter
	}
	return report.NewReporter(notifier, report.Options{
		OpenAfterCreate: settings.OpenAfterCreate,
		CopyToClipboard: settings.CopyToClipboard,
		Opener:          opener,
		Copier:          copier,
		Counter:         counter,
		LogLocation:     settings.LogFile,
		Logger:          logger,
	}), nil
}

func resolveWorkingDirectory(dependencies Dependencies) (string, error) {
	if dependencies.WorkingDirectory != "" {
		return dependencies.WorkingDirectory, nil
	}
	workingDirectory, workingDirectoryErr := os.Getwd()
	if workingDirectoryErr != nil {
		return "", fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryErr)
	}
	return workingDirectory, nil
}

func boolPointer(value bool) *bool {
	return &value
}
