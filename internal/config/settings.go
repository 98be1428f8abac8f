package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/temirov/folderdump/internal/outputpath"
	"github.com/temirov/folderdump/internal/tokens"
)

// Default values applied to unset configuration keys.
const (
	DefaultCommand         = "rdump"
	DefaultFormat          = "markdown"
	DefaultOpenAfterCreate = true
	DefaultOpenWith        = OpenWithSystem
	DefaultCopyToClipboard = false
	DefaultTokensEnabled   = false
	DefaultTokenModel      = "gpt-4o"
	DefaultDetectGit       = true
)

// Viewer choices for open_with.
const (
	// OpenWithSystem hands the dump to the platform's default application.
	OpenWithSystem = "system"
	// OpenWithTerminal prints the dump to standard output.
	OpenWithTerminal = "terminal"
)

// Settings is the fully resolved configuration of one invocation.
type Settings struct {
	Command         string           `yaml:"command"`
	Query           string           `yaml:"query"`
	OutputName      string           `yaml:"output_name"`
	OutputLocation  string           `yaml:"output_location"`
	Format          string           `yaml:"format"`
	OpenAfterCreate bool             `yaml:"open_after_create"`
	OpenWith        string           `yaml:"open_with"`
	CopyToClipboard bool             `yaml:"copy_to_clipboard"`
	Tokens          TokenSettings    `yaml:"tokens"`
	Workspace       WorkspaceSetting `yaml:"workspace"`
	LogFile         string           `yaml:"log_file,omitempty"`
}

// TokenSettings is the resolved token counting configuration.
type TokenSettings struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
}

// WorkspaceSetting is the resolved workspace configuration.
type WorkspaceSetting struct {
	Roots     []string `yaml:"roots"`
	DetectGit bool     `yaml:"detect_git"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Command:         DefaultCommand,
		Query:           tokens.DefaultQueryTemplate,
		OutputName:      tokens.DefaultOutputNameTemplate,
		OutputLocation:  string(outputpath.LocationSelectedFolder),
		Format:          DefaultFormat,
		OpenAfterCreate: DefaultOpenAfterCreate,
		OpenWith:        DefaultOpenWith,
		CopyToClipboard: DefaultCopyToClipboard,
		Tokens:          TokenSettings{Enabled: DefaultTokensEnabled, Model: DefaultTokenModel},
		Workspace:       WorkspaceSetting{Roots: []string{}, DetectGit: DefaultDetectGit},
	}
}

// Resolve fills unset keys with defaults.
func (config ApplicationConfiguration) Resolve() Settings {
	settings := DefaultSettings()
	settings.Command = stringOrDefault(config.Command, settings.Command)
	settings.Query = stringOrDefault(config.Query, settings.Query)
	settings.OutputName = stringOrDefault(config.OutputName, settings.OutputName)
	settings.OutputLocation = string(outputpath.ParseLocation(config.OutputLocation))
	settings.Format = stringOrDefault(config.Format, settings.Format)
	settings.OpenAfterCreate = boolOrDefault(config.OpenAfterCreate, settings.OpenAfterCreate)
	settings.OpenWith = parseOpenWith(config.OpenWith)
	settings.CopyToClipboard = boolOrDefault(config.CopyToClipboard, settings.CopyToClipboard)
	settings.Tokens.Enabled = boolOrDefault(config.Tokens.Enabled, settings.Tokens.Enabled)
	settings.Tokens.Model = stringOrDefault(config.Tokens.Model, settings.Tokens.Model)
	if len(config.Workspace.Roots) > 0 {
		settings.Workspace.Roots = append([]string{}, config.Workspace.Roots...)
	}
	settings.Workspace.DetectGit = boolOrDefault(config.Workspace.DetectGit, settings.Workspace.DetectGit)
	settings.LogFile = config.LogFile
	return settings
}

// RenderYAML renders the settings as a YAML document.
func (settings Settings) RenderYAML() (string, error) {
	rendered, marshalErr := yaml.Marshal(settings)
	if marshalErr != nil {
		return "", fmt.Errorf("render configuration: %w", marshalErr)
	}
	return string(rendered), nil
}

func parseOpenWith(value string) string {
	if value == OpenWithTerminal {
		return OpenWithTerminal
	}
	return OpenWithSystem
}

func stringOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
