// Package tokens derives the substitution variables for a dump and renders templates with them.
package tokens

import (
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/temirov/folderdump/internal/utils"
	"github.com/temirov/folderdump/internal/workspace"
)

// Token names available to query and output name templates.
const (
	FolderPath               = "folderPath"
	FolderPathQuoted         = "folderPathQuoted"
	FolderRelativePath       = "folderRelativePath"
	FolderRelativePathQuoted = "folderRelativePathQuoted"
	SelectedPathForQuery     = "selectedPathForQuery"
	FolderBasename           = "folderBasename"
	WorkspaceName            = "workspaceName"
	Timestamp                = "timestamp"
)

const (
	// DefaultQueryTemplate searches TypeScript sources below the selected folder.
	DefaultQueryTemplate = "in:{" + SelectedPathForQuery + "}/** & (ext:ts | ext:tsx)"
	// DefaultOutputNameTemplate names the dump after the selected folder.
	DefaultOutputNameTemplate = "dump-{" + FolderBasename + "}.txt"

	timestampLayout    = "20060102-15"
	timestampMinutes   = "00"
	quoteCharacter     = `"`
	backslashCharacter = `\`
	quoteCharacters    = quoteCharacter + backslashCharacter
)

var (
	placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)
	quoteEscaper       = strings.NewReplacer(backslashCharacter, backslashCharacter+backslashCharacter, quoteCharacter, backslashCharacter+quoteCharacter)
)

// Set maps token names to their values.
type Set map[string]string

// Build computes the token set for a resolved target at the provided instant.
func Build(target workspace.Target, now time.Time) Set {
	folderPath := utils.ToForwardSlashes(target.FolderPath)
	relativePath := utils.ToForwardSlashes(target.Workspace.RelativePath)
	folderPathQuoted := QuoteIfNeeded(folderPath)
	relativePathQuoted := QuoteIfNeeded(relativePath)

	selectedPath := folderPathQuoted
	if relativePath != "" {
		selectedPath = relativePathQuoted
	}

	return Set{
		FolderPath:               folderPath,
		FolderPathQuoted:         folderPathQuoted,
		FolderRelativePath:       relativePath,
		FolderRelativePathQuoted: relativePathQuoted,
		SelectedPathForQuery:     selectedPath,
		FolderBasename:           path.Base(folderPath),
		WorkspaceName:            target.Workspace.Name,
		Timestamp:                FormatTimestamp(now),
	}
}

// QuoteIfNeeded wraps value in double quotes, escaping quotes and backslashes,
// when it contains whitespace, a double quote or a backslash.
func QuoteIfNeeded(value string) string {
	if !strings.ContainsFunc(value, unicode.IsSpace) && !strings.ContainsAny(value, quoteCharacters) {
		return value
	}
	return quoteCharacter + quoteEscaper.Replace(value) + quoteCharacter
}

// FormatTimestamp renders the instant as YYYYMMDD-HH00 in UTC.
func FormatTimestamp(now time.Time) string {
	return now.UTC().Format(timestampLayout) + timestampMinutes
}

// Substitute replaces every {name} placeholder with its token value.
// Unknown names render as empty strings.
func Substitute(template string, set Set) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(placeholder string) string {
		name := placeholder[1 : len(placeholder)-1]
		return set[name]
	})
}
