// Package config loads folderdump settings from global and local YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/temirov/folderdump/internal/utils"
)

const (
	listSeparator       = ","
	homeDirectoryPrefix = "~"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration mirrors the configuration file. Empty strings and nil
// pointers mean "not set" so that sources can be layered.
type ApplicationConfiguration struct {
	Command         string                 `mapstructure:"command"`
	Query           string                 `mapstructure:"query"`
	OutputName      string                 `mapstructure:"output_name"`
	OutputLocation  string                 `mapstructure:"output_location"`
	Format          string                 `mapstructure:"format"`
	OpenAfterCreate *bool                  `mapstructure:"open_after_create"`
	OpenWith        string                 `mapstructure:"open_with"`
	CopyToClipboard *bool                  `mapstructure:"copy_to_clipboard"`
	Tokens          TokenConfiguration     `mapstructure:"tokens"`
	Workspace       WorkspaceConfiguration `mapstructure:"workspace"`
	LogFile         string                 `mapstructure:"log_file"`
}

// TokenConfiguration controls token counting of the produced dump.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// WorkspaceConfiguration lists known workspace roots.
type WorkspaceConfiguration struct {
	Roots     []string `mapstructure:"roots"`
	DetectGit *bool    `mapstructure:"detect_git"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if options.ExplicitFilePath != "" {
		if _, statErr := os.Stat(localPath); statErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("configuration file %s: %w", localPath, statErr)
		}
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)
	merged.Workspace.Roots = utils.DeduplicatePatterns(merged.Workspace.Roots)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.LocalConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

// resolveRoots anchors relative workspace roots at the directory holding the configuration file
// and expands a leading ~ to the home directory.
func resolveRoots(baseDirectory string, roots []string) []string {
	resolved := make([]string, 0, len(roots))
	for _, root := range roots {
		if root == "" {
			continue
		}
		if root == homeDirectoryPrefix || strings.HasPrefix(root, homeDirectoryPrefix+"/") {
			if homeDirectory, err := os.UserHomeDir(); err == nil {
				root = filepath.Join(homeDirectory, strings.TrimPrefix(root, homeDirectoryPrefix))
			}
		}
		if !filepath.IsAbs(root) {
			root = filepath.Join(baseDirectory, root)
		}
		resolved = append(resolved, filepath.Clean(root))
	}
	return utils.DeduplicatePatterns(resolved)
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(listSeparator),
		trimStringHook,
	))
	if decodeErr := reader.Unmarshal(&config, decodeHook); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	config.Workspace.Roots = resolveRoots(filepath.Dir(path), config.Workspace.Roots)
	return config, nil
}

func trimStringHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.String {
		return data, nil
	}
	return strings.TrimSpace(reflect.ValueOf(data).String()), nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.Command != "" {
		result.Command = override.Command
	}
	if override.Query != "" {
		result.Query = override.Query
	}
	if override.OutputName != "" {
		result.OutputName = override.OutputName
	}
	if override.OutputLocation != "" {
		result.OutputLocation = override.OutputLocation
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.OpenAfterCreate != nil {
		result.OpenAfterCreate = cloneBool(override.OpenAfterCreate)
	}
	if override.OpenWith != "" {
		result.OpenWith = override.OpenWith
	}
	if override.CopyToClipboard != nil {
		result.CopyToClipboard = cloneBool(override.CopyToClipboard)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Workspace = result.Workspace.merge(override.Workspace)
	if override.LogFile != "" {
		result.LogFile = override.LogFile
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config WorkspaceConfiguration) merge(override WorkspaceConfiguration) WorkspaceConfiguration {
	result := config
	if len(override.Roots) > 0 {
		result.Roots = append(append([]string{}, result.Roots...), override.Roots...)
	}
	if override.DetectGit != nil {
		result.DetectGit = cloneBool(override.DetectGit)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
