package tokens

import (
	"regexp"
	"testing"
	"time"

	"github.com/temirov/folderdump/internal/workspace"
)

func TestQuoteIfNeeded(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "plain", expected: "plain"},
		{name: "space", input: "has space", expected: `"has space"`},
		{name: "quote", input: `a"b`, expected: `"a\"b"`},
		{name: "backslash", input: `a\b`, expected: `"a\\b"`},
		{name: "tab", input: "a\tb", expected: "\"a\tb\""},
		{name: "space_and_quote", input: `my "dir"`, expected: `"my \"dir\""`},
		{name: "empty", input: "", expected: ""},
		{name: "slashes_only", input: "src/utils", expected: "src/utils"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if result := QuoteIfNeeded(testCase.input); result != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}

func TestSubstitute(t *testing.T) {
	testCases := []struct {
		name     string
		template string
		set      Set
		expected string
	}{
		{name: "single_token", template: "in:{x}/**", set: Set{"x": "src"}, expected: "in:src/**"},
		{name: "unknown_token", template: "{missing}", set: Set{}, expected: ""},
		{name: "repeated_token", template: "{a}-{a}", set: Set{"a": "1"}, expected: "1-1"},
		{name: "no_nested_expansion", template: "{a}", set: Set{"a": "{b}", "b": "x"}, expected: "{b}"},
		{name: "non_word_braces_untouched", template: "{not a token} {}", set: Set{}, expected: "{not a token} {}"},
		{name: "literal_text", template: "dump.txt", set: Set{"a": "b"}, expected: "dump.txt"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if result := Substitute(testCase.template, testCase.set); result != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, result)
			}
		})
	}
}

func TestFormatTimestampTruncatesToHourInUTC(t *testing.T) {
	instant := time.Date(2024, time.March, 5, 14, 37, 2, 0, time.UTC)
	if result := FormatTimestamp(instant); result != "20240305-1400" {
		t.Fatalf("expected 20240305-1400, got %s", result)
	}
	offsetZone := time.FixedZone("plus-two", 2*60*60)
	if result := FormatTimestamp(instant.In(offsetZone)); result != "20240305-1400" {
		t.Fatalf("expected UTC rendering, got %s", result)
	}
}

func TestBuildInsideWorkspacePrefersRelativePath(t *testing.T) {
	target := workspace.Target{
		FolderPath: "/work/my project/src/utils",
		Workspace: workspace.Context{
			Root:         "/work/my project",
			Name:         "my project",
			RelativePath: "src/utils",
		},
	}
	set := Build(target, time.Date(2024, time.March, 5, 14, 37, 2, 0, time.UTC))

	expected := Set{
		FolderPath:               "/work/my project/src/utils",
		FolderPathQuoted:         `"/work/my project/src/utils"`,
		FolderRelativePath:       "src/utils",
		FolderRelativePathQuoted: "src/utils",
		SelectedPathForQuery:     "src/utils",
		FolderBasename:           "utils",
		WorkspaceName:            "my project",
		Timestamp:                "20240305-1400",
	}
	for name, value := range expected {
		if set[name] != value {
			t.Fatalf("token %s: expected %q, got %q", name, value, set[name])
		}
	}
}

func TestBuildOutsideWorkspaceUsesQuotedAbsolutePath(t *testing.T) {
	target := workspace.Target{
		FolderPath: "/tmp/loose dir",
		Workspace:  workspace.Context{Root: "/tmp", Name: "tmp"},
	}
	set := Build(target, time.Now())
	if set[SelectedPathForQuery] != `"/tmp/loose dir"` {
		t.Fatalf("expected quoted absolute path, got %s", set[SelectedPathForQuery])
	}
	if set[FolderRelativePath] != "" || set[FolderRelativePathQuoted] != "" {
		t.Fatalf("expected empty relative tokens, got %q and %q", set[FolderRelativePath], set[FolderRelativePathQuoted])
	}
	if !regexp.MustCompile(`^\d{8}-\d{2}00$`).MatchString(set[Timestamp]) {
		t.Fatalf("unexpected timestamp %s", set[Timestamp])
	}
	if set[Timestamp] != FormatTimestamp(time.Now()) && set[Timestamp] != FormatTimestamp(time.Now().Add(-time.Hour)) {
		t.Fatalf("timestamp %s does not match the current hour", set[Timestamp])
	}
}

func TestBuildNormalizesBackslashSeparators(t *testing.T) {
	target := workspace.Target{
		FolderPath: `C:\work\app\utils`,
		Workspace: workspace.Context{
			Root:         `C:\work\app`,
			Name:         "app",
			RelativePath: `nested\utils`,
		},
	}
	set := Build(target, time.Now())
	if set[FolderPath] != "C:/work/app/utils" {
		t.Fatalf("expected forward slashes in folder path, got %s", set[FolderPath])
	}
	if set[FolderRelativePath] != "nested/utils" {
		t.Fatalf("expected forward slashes in relative path, got %s", set[FolderRelativePath])
	}
	if set[FolderBasename] != "utils" {
		t.Fatalf("expected basename utils, got %s", set[FolderBasename])
	}
	if set[SelectedPathForQuery] != "nested/utils" {
		t.Fatalf("expected relative query path, got %s", set[SelectedPathForQuery])
	}
}

func TestDefaultTemplatesRender(t *testing.T) {
	set := Set{SelectedPathForQuery: "utils", FolderBasename: "utils"}
	if query := Substitute(DefaultQueryTemplate, set); query != "in:utils/** & (ext:ts | ext:tsx)" {
		t.Fatalf("unexpected default query %s", query)
	}
	if name := Substitute(DefaultOutputNameTemplate, set); name != "dump-utils.txt" {
		t.Fatalf("unexpected default output name %s", name)
	}
}
