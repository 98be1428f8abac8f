package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/temirov/folderdump/internal/dump"
	"github.com/temirov/folderdump/internal/report"
	"github.com/temirov/folderdump/internal/utils"
)

const fakeToolScript = `#!/bin/sh
for argument in "$@"; do
  printf '%s\n' "$argument"
done
printf 'dump\n' > "$4"
`

type recordingOpener struct {
	openedPaths []string
}

func (opener *recordingOpener) Open(ctx context.Context, path string) error {
	opener.openedPaths = append(opener.openedPaths, path)
	return nil
}

type recordingCopier struct {
	copied []string
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return nil
}

type commandHarness struct {
	dependencies Dependencies
	notifier     *report.RecordingNotifier
	opener       *recordingOpener
	copier       *recordingCopier
}

func newCommandHarness(t *testing.T, workingDirectory string) commandHarness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	notifier := &report.RecordingNotifier{}
	opener := &recordingOpener{}
	copier := &recordingCopier{}
	return commandHarness{
		dependencies: Dependencies{
			WorkingDirectory: workingDirectory,
			Notifier:         notifier,
			Opener:           opener,
			Copier:           copier,
		},
		notifier: notifier,
		opener:   opener,
		copier:   copier,
	}
}

func (harness commandHarness) run(arguments ...string) (string, error) {
	rootCommand := createRootCommand(harness.dependencies)
	var output bytes.Buffer
	rootCommand.SetOut(&output)
	rootCommand.SetErr(&output)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	executeErr := rootCommand.ExecuteContext(context.Background())
	return output.String(), executeErr
}

func writeFakeTool(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	scriptPath := filepath.Join(t.TempDir(), "fake-rdump")
	if err := os.WriteFile(scriptPath, []byte(fakeToolScript), 0o755); err != nil {
		t.Fatalf("write fake tool: %v", err)
	}
	return scriptPath
}

func newProject(t *testing.T) (string, string) {
	t.Helper()
	projectRoot := filepath.Join(t.TempDir(), "project")
	selectedFolder := filepath.Join(projectRoot, "src", "utils")
	if err := os.MkdirAll(selectedFolder, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return projectRoot, selectedFolder
}

func TestRootCommandRunsDumpWithFlagOverrides(t *testing.T) {
	toolPath := writeFakeTool(t)
	projectRoot, selectedFolder := newProject(t)
	harness := newCommandHarness(t, projectRoot)
	logPath := filepath.Join(t.TempDir(), "folderdump.log")

	_, err := harness.run(selectedFolder,
		"--command", toolPath,
		"--workspace", projectRoot,
		"--output-location", "workspaceRoot",
		"--output-name", "{workspaceName}-{folderBasename}.md",
		"--open", "no",
		"--copy",
		"--log-file", logPath,
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	expectedOutput := filepath.Join(projectRoot, "project-utils.md")
	if _, statErr := os.Stat(expectedOutput); statErr != nil {
		t.Fatalf("expected dump at %s: %v", expectedOutput, statErr)
	}
	if len(harness.opener.openedPaths) != 0 {
		t.Fatalf("--open no must suppress opening, opened %v", harness.opener.openedPaths)
	}
	if len(harness.copier.copied) != 1 || harness.copier.copied[0] != "dump\n" {
		t.Fatalf("expected dump content on the clipboard, got %q", harness.copier.copied)
	}
	logContent, readErr := os.ReadFile(logPath)
	if readErr != nil {
		t.Fatalf("read log: %v", readErr)
	}
	if !strings.Contains(string(logContent), "in:src/utils/** & (ext:ts | ext:tsx)") {
		t.Fatalf("expected rdump output in the log, got %q", logContent)
	}
	if !strings.Contains(string(logContent), "invocation") {
		t.Fatalf("expected invocation id in the log, got %q", logContent)
	}
}

func TestRootCommandUsesLocalConfiguration(t *testing.T) {
	toolPath := writeFakeTool(t)
	projectRoot, selectedFolder := newProject(t)
	harness := newCommandHarness(t, projectRoot)
	localConfiguration := "command: " + toolPath + "\noutput_name: local-{folderBasename}.txt\nopen_after_create: false\n"
	if err := os.WriteFile(filepath.Join(projectRoot, utils.LocalConfigFileName), []byte(localConfiguration), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := harness.run(selectedFolder, "--no-git-detect"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(selectedFolder, "local-utils.txt")); statErr != nil {
		t.Fatalf("expected dump named by the local configuration: %v", statErr)
	}
	if len(harness.notifier.Infos) != 1 || !strings.Contains(harness.notifier.Infos[0], "local-utils.txt") {
		t.Fatalf("unexpected notifications: %s", harness.notifier.String())
	}
}

func TestRootCommandReportsMissingFolder(t *testing.T) {
	projectRoot, _ := newProject(t)
	harness := newCommandHarness(t, projectRoot)

	_, err := harness.run(filepath.Join(projectRoot, "absent"))
	if !errors.Is(err, dump.ErrReported) {
		t.Fatalf("expected a reported error, got %v", err)
	}
	if len(harness.notifier.Errors) != 1 || !strings.Contains(harness.notifier.Errors[0], "absent") {
		t.Fatalf("unexpected notifications: %s", harness.notifier.String())
	}
}

func TestConfigInitAndShow(t *testing.T) {
	workingDirectory := t.TempDir()
	harness := newCommandHarness(t, workingDirectory)

	output, initErr := harness.run("config", "init")
	if initErr != nil {
		t.Fatalf("config init: %v", initErr)
	}
	configPath := filepath.Join(workingDirectory, utils.LocalConfigFileName)
	if !strings.Contains(output, configPath) {
		t.Fatalf("expected written path in output, got %q", output)
	}
	if _, repeatErr := harness.run("config", "init"); repeatErr == nil {
		t.Fatalf("expected an error when the configuration already exists")
	}
	if _, forceErr := harness.run("config", "init", "--force"); forceErr != nil {
		t.Fatalf("config init --force: %v", forceErr)
	}

	if err := os.WriteFile(configPath, []byte("command: /opt/rdump/bin/rdump\nformat: json\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	shown, showErr := harness.run("config", "show")
	if showErr != nil {
		t.Fatalf("config show: %v", showErr)
	}
	for _, expected := range []string{
		"command: /opt/rdump/bin/rdump",
		"format: json",
		"output_location: selectedFolder",
		"open_with: system",
	} {
		if !strings.Contains(shown, expected) {
			t.Fatalf("expected %q in configuration:\n%s", expected, shown)
		}
	}
}

func TestConfigShowUsesExplicitFile(t *testing.T) {
	workingDirectory := t.TempDir()
	harness := newCommandHarness(t, workingDirectory)
	explicitPath := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(explicitPath, []byte("output_location: temp\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	shown, err := harness.run("config", "show", "--config", explicitPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(shown, "output_location: temp") {
		t.Fatalf("expected explicit configuration, got:\n%s", shown)
	}
}

func TestVersionFlag(t *testing.T) {
	harness := newCommandHarness(t, t.TempDir())
	output, err := harness.run("--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(output, "folderdump version: ") {
		t.Fatalf("unexpected version output %q", output)
	}
}

func TestFlagOverridesOnlyChangedFlags(t *testing.T) {
	rootCommand := createRootCommand(Dependencies{})
	arguments := normalizeBooleanFlagArguments(rootCommand, []string{"--tokens", "--format", "json", "--no-git-detect"})
	if err := rootCommand.ParseFlags(arguments); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	options := dumpOptions{tokensEnabled: true, format: "json", noGitDetect: true}
	overrides := flagOverrides(rootCommand, options)

	if overrides.Command != "" || overrides.OpenAfterCreate != nil || overrides.CopyToClipboard != nil {
		t.Fatalf("unchanged flags must not override configuration: %+v", overrides)
	}
	if overrides.Format != "json" {
		t.Fatalf("expected format override, got %q", overrides.Format)
	}
	if overrides.Tokens.Enabled == nil || !*overrides.Tokens.Enabled {
		t.Fatalf("expected tokens override")
	}
	if overrides.Workspace.DetectGit == nil || *overrides.Workspace.DetectGit {
		t.Fatalf("expected git detection to be disabled")
	}
}
