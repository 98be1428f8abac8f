// Package workspace resolves the folder a dump operates on and the workspace containing it.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/folderdump/internal/utils"
)

const (
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
	errorPathMissingFormat      = "path '%s' does not exist"
	errorStatFormat             = "stat failed for '%s': %w"
	errorNotADirectoryFormat    = "selected path is not a folder: %s"
	errorPickerFormat           = "select folder: %w"
	errorWorkingDirectoryFormat = "unable to determine working directory: %w"
	errorDetectRootFormat       = "detect workspace for '%s': %w"
)

var (
	// ErrNoSelection reports that the user dismissed the folder prompt.
	ErrNoSelection = errors.New("no folder selected")
	// ErrNotADirectory reports that the selected path exists but is not a directory.
	ErrNotADirectory = errors.New("not a directory")
)

// NotADirectoryError carries the offending path of a non-directory selection.
type NotADirectoryError struct {
	Path string
}

func (err *NotADirectoryError) Error() string {
	return fmt.Sprintf(errorNotADirectoryFormat, err.Path)
}

// Is matches ErrNotADirectory.
func (err *NotADirectoryError) Is(target error) bool {
	return target == ErrNotADirectory
}

// Picker prompts the user for exactly one directory.
// Implementations return ErrNoSelection when the prompt is dismissed.
type Picker interface {
	PickDirectory(ctx context.Context, startDirectory string) (string, error)
}

// Root is a known workspace root.
type Root struct {
	Path string
	Name string
}

// RootDetector finds the workspace root enclosing a folder when no configured root does.
type RootDetector func(folderPath string) (Root, bool, error)

// Context describes the workspace that contains a target folder.
type Context struct {
	// Root is the workspace root, or the folder's parent when no workspace contains it.
	Root string
	// Name is the workspace display name, or the basename of Root.
	Name string
	// RelativePath is the folder relative to Root; empty when the folder is outside
	// every known workspace or is the root itself.
	RelativePath string
}

// Target is a validated folder together with its workspace context.
type Target struct {
	FolderPath string
	Workspace  Context
}

// Options configures a Resolver.
type Options struct {
	Roots          []Root
	Detector       RootDetector
	Picker         Picker
	StartDirectory string
}

// Resolver turns a selection, or an interactive prompt, into a Target.
type Resolver struct {
	roots          []Root
	detector       RootDetector
	picker         Picker
	startDirectory string
}

// NewResolver constructs a Resolver.
func NewResolver(options Options) *Resolver {
	return &Resolver{
		roots:          options.Roots,
		detector:       options.Detector,
		picker:         options.Picker,
		startDirectory: options.StartDirectory,
	}
}

// Resolve validates the selected folder, prompting for one when selection is empty.
func (resolver *Resolver) Resolve(ctx context.Context, selection string) (Target, error) {
	if selection == "" {
		pickedDirectory, pickErr := resolver.pick(ctx)
		if pickErr != nil {
			return Target{}, pickErr
		}
		selection = pickedDirectory
	}

	folderPath, validationErr := validateDirectory(selection)
	if validationErr != nil {
		return Target{}, validationErr
	}

	workspaceContext, contextErr := resolver.workspaceFor(folderPath)
	if contextErr != nil {
		return Target{}, contextErr
	}
	return Target{FolderPath: folderPath, Workspace: workspaceContext}, nil
}

func (resolver *Resolver) pick(ctx context.Context) (string, error) {
	if resolver.picker == nil {
		return "", ErrNoSelection
	}
	startDirectory := resolver.startDirectory
	if startDirectory == "" {
		currentDirectory, workingDirectoryErr := os.Getwd()
		if workingDirectoryErr != nil {
			return "", fmt.Errorf(errorWorkingDirectoryFormat, workingDirectoryErr)
		}
		startDirectory = currentDirectory
	}
	pickedDirectory, pickErr := resolver.picker.PickDirectory(ctx, startDirectory)
	if pickErr != nil {
		if errors.Is(pickErr, ErrNoSelection) {
			return "", ErrNoSelection
		}
		return "", fmt.Errorf(errorPickerFormat, pickErr)
	}
	if pickedDirectory == "" {
		return "", ErrNoSelection
	}
	return pickedDirectory, nil
}

func validateDirectory(selection string) (string, error) {
	absolutePath, absolutePathErr := filepath.Abs(selection)
	if absolutePathErr != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, selection, absolutePathErr)
	}
	cleanPath := filepath.Clean(absolutePath)
	info, statErr := os.Stat(cleanPath)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return "", fmt.Errorf(errorPathMissingFormat, selection)
		}
		return "", fmt.Errorf(errorStatFormat, selection, statErr)
	}
	if !info.IsDir() {
		return "", &NotADirectoryError{Path: cleanPath}
	}
	return cleanPath, nil
}

func (resolver *Resolver) workspaceFor(folderPath string) (Context, error) {
	root, found := deepestContainingRoot(folderPath, resolver.roots)
	if !found && resolver.detector != nil {
		detectedRoot, detected, detectErr := resolver.detector(folderPath)
		if detectErr != nil {
			return Context{}, fmt.Errorf(errorDetectRootFormat, folderPath, detectErr)
		}
		if detected && utils.IsWithin(folderPath, filepath.Clean(detectedRoot.Path)) {
			root, found = detectedRoot, true
		}
	}

	if !found {
		parentPath := filepath.Dir(folderPath)
		return Context{Root: parentPath, Name: filepath.Base(parentPath)}, nil
	}

	rootPath := filepath.Clean(root.Path)
	name := root.Name
	if name == "" {
		name = filepath.Base(rootPath)
	}
	return Context{
		Root:         rootPath,
		Name:         name,
		RelativePath: utils.RelativePathOrEmpty(folderPath, rootPath),
	}, nil
}

func deepestContainingRoot(folderPath string, roots []Root) (Root, bool) {
	var selected Root
	found := false
	for _, candidate := range roots {
		if candidate.Path == "" {
			continue
		}
		candidatePath := filepath.Clean(candidate.Path)
		if !utils.IsWithin(folderPath, candidatePath) {
			continue
		}
		if !found || len(candidatePath) > len(filepath.Clean(selected.Path)) {
			selected = candidate
			found = true
		}
	}
	return selected, found
}

// NewRoots converts configured root paths into absolute Roots named after their basename.
func NewRoots(paths []string) ([]Root, error) {
	roots := make([]Root, 0, len(paths))
	for _, rootPath := range utils.DeduplicatePatterns(paths) {
		if rootPath == "" {
			continue
		}
		absolutePath, absolutePathErr := filepath.Abs(rootPath)
		if absolutePathErr != nil {
			return nil, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathErr)
		}
		cleanPath := filepath.Clean(absolutePath)
		roots = append(roots, Root{Path: cleanPath, Name: filepath.Base(cleanPath)})
	}
	return roots, nil
}
