// Package utils contains general helper functions used across folderdump.
package utils

import (
	"path/filepath"
	"strings"
)

const (
	pathSegmentSeparator = "/"
	backslashSeparator   = `\`
)

// ToForwardSlashes rewrites every path separator, including backslashes on hosts that
// do not treat them as separators, to a forward slash.
func ToForwardSlashes(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), backslashSeparator, pathSegmentSeparator)
}

// IsWithin reports whether candidate equals root or lies below it.
// Both paths are expected to be absolute and cleaned.
func IsWithin(candidate, root string) bool {
	relativePath, relErr := filepath.Rel(root, candidate)
	if relErr != nil {
		return false
	}
	if relativePath == "." {
		return true
	}
	if filepath.IsAbs(relativePath) {
		return false
	}
	return relativePath != ".." && !strings.HasPrefix(relativePath, ".."+string(filepath.Separator))
}

// RelativePathOrEmpty calculates the slash-separated path of fullPath relative to root.
// Returns an empty string when fullPath is root itself or lies outside of it.
func RelativePathOrEmpty(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	cleanRoot := filepath.Clean(root)
	if cleanPath == cleanRoot || !IsWithin(cleanPath, cleanRoot) {
		return EmptyString
	}
	relativePath, relErr := filepath.Rel(cleanRoot, cleanPath)
	if relErr != nil {
		return EmptyString
	}
	return ToForwardSlashes(relativePath)
}

// DeduplicatePatterns removes duplicate entries from a slice while preserving order.
// The first occurrence of each unique entry is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}
