package viewer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestOpenCommand(t *testing.T) {
	testCases := []struct {
		name              string
		operatingSystem   string
		expectedName      string
		expectedArguments []string
	}{
		{name: "darwin", operatingSystem: "darwin", expectedName: "open", expectedArguments: []string{"/tmp/dump.txt"}},
		{name: "windows", operatingSystem: "windows", expectedName: "rundll32", expectedArguments: []string{"url.dll,FileProtocolHandler", "/tmp/dump.txt"}},
		{name: "linux", operatingSystem: "linux", expectedName: "xdg-open", expectedArguments: []string{"/tmp/dump.txt"}},
		{name: "freebsd", operatingSystem: "freebsd", expectedName: "xdg-open", expectedArguments: []string{"/tmp/dump.txt"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			name, arguments := openCommand(testCase.operatingSystem, "/tmp/dump.txt")
			if name != testCase.expectedName {
				t.Fatalf("expected %s, got %s", testCase.expectedName, name)
			}
			if !reflect.DeepEqual(arguments, testCase.expectedArguments) {
				t.Fatalf("expected %v, got %v", testCase.expectedArguments, arguments)
			}
		})
	}
}

func writeDump(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	return path
}

func TestTerminalViewerWritesRawContentWithoutTerminal(t *testing.T) {
	content := "# Heading\n\nplain body\n"
	path := writeDump(t, "dump-utils.txt", content)
	var output bytes.Buffer
	viewer := &TerminalViewer{output: &output, format: "markdown", isTerminal: false, wrapWidth: 80}
	if err := viewer.Open(context.Background(), path); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if output.String() != content {
		t.Fatalf("expected raw content, got %q", output.String())
	}
}

func TestTerminalViewerRendersMarkdownOnTerminal(t *testing.T) {
	content := "# Heading\n\nrendered body\n"
	path := writeDump(t, "dump-utils.txt", content)
	var output bytes.Buffer
	viewer := &TerminalViewer{output: &output, format: "markdown", isTerminal: true, wrapWidth: 80}
	if err := viewer.Open(context.Background(), path); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if output.String() == content {
		t.Fatalf("expected markdown to be rendered")
	}
	if !strings.Contains(output.String(), "rendered") {
		t.Fatalf("expected body text in rendered output: %q", output.String())
	}
}

func TestTerminalViewerMissingFile(t *testing.T) {
	viewer := &TerminalViewer{output: &bytes.Buffer{}, format: "markdown"}
	if err := viewer.Open(context.Background(), filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing dump")
	}
}

func TestIsMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		format   string
		path     string
		expected bool
	}{
		{name: "markdown_format", format: "markdown", path: "dump.txt", expected: true},
		{name: "md_format", format: " MD ", path: "dump.txt", expected: true},
		{name: "markdown_extension", format: "plain", path: "dump.MD", expected: true},
		{name: "plain", format: "plain", path: "dump.txt", expected: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if result := isMarkdown(testCase.format, testCase.path); result != testCase.expected {
				t.Fatalf("expected %v, got %v", testCase.expected, result)
			}
		})
	}
}
