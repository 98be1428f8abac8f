// Package outputpath picks the directory and the collision-free file a dump is written to.
package outputpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/temirov/folderdump/internal/workspace"
)

// Location selects the output directory strategy.
type Location string

const (
	// LocationSelectedFolder writes next to the dumped sources.
	LocationSelectedFolder Location = "selectedFolder"
	// LocationWorkspaceRoot writes into the resolved workspace root.
	LocationWorkspaceRoot Location = "workspaceRoot"
	// LocationTemp writes into the host temporary directory.
	LocationTemp Location = "temp"
)

const (
	directoryPermissions       = 0o755
	collisionSuffixSeparator   = "-"
	errorCreateDirectoryFormat = "create output directory %s: %w"
)

// ParseLocation maps a configured value onto a Location, defaulting to LocationSelectedFolder.
func ParseLocation(value string) Location {
	switch Location(strings.TrimSpace(value)) {
	case LocationWorkspaceRoot:
		return LocationWorkspaceRoot
	case LocationTemp:
		return LocationTemp
	default:
		return LocationSelectedFolder
	}
}

// Directory returns the output directory for the location.
// An empty temporaryDirectory means os.TempDir.
func Directory(location Location, target workspace.Target, temporaryDirectory string) string {
	switch location {
	case LocationWorkspaceRoot:
		return target.Workspace.Root
	case LocationTemp:
		if temporaryDirectory == "" {
			return os.TempDir()
		}
		return temporaryDirectory
	default:
		return target.FolderPath
	}
}

// Prepare creates the output directory, joins the file name onto it and
// returns the first path that does not exist yet.
func Prepare(directory, fileName string) (string, error) {
	if err := os.MkdirAll(directory, directoryPermissions); err != nil {
		return "", fmt.Errorf(errorCreateDirectoryFormat, directory, err)
	}
	return Unique(filepath.Join(directory, fileName)), nil
}

// Unique returns desiredPath when nothing exists there, otherwise the first of
// name-1.ext, name-2.ext, ... that is free. The probe is not atomic.
func Unique(desiredPath string) string {
	if !exists(desiredPath) {
		return desiredPath
	}
	directory := filepath.Dir(desiredPath)
	fileName := filepath.Base(desiredPath)
	extension := filepath.Ext(fileName)
	if extension == fileName {
		extension = ""
	}
	stem := strings.TrimSuffix(fileName, extension)
	for index := 1; ; index++ {
		candidate := filepath.Join(directory, stem+collisionSuffixSeparator+strconv.Itoa(index)+extension)
		if !exists(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, statErr := os.Stat(path)
	return statErr == nil
}
