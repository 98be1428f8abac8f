package workspace

import (
	"errors"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// DetectGitRoot reports the worktree root of the git repository enclosing folderPath.
// Folders outside any repository, and bare repositories, report no root.
func DetectGitRoot(folderPath string) (Root, bool, error) {
	repository, openErr := git.PlainOpenWithOptions(folderPath, &git.PlainOpenOptions{DetectDotGit: true})
	if openErr != nil {
		if errors.Is(openErr, git.ErrRepositoryNotExists) {
			return Root{}, false, nil
		}
		return Root{}, false, openErr
	}
	worktree, worktreeErr := repository.Worktree()
	if worktreeErr != nil {
		if errors.Is(worktreeErr, git.ErrIsBareRepository) {
			return Root{}, false, nil
		}
		return Root{}, false, worktreeErr
	}
	rootPath := filepath.Clean(worktree.Filesystem.Root())
	return Root{Path: rootPath, Name: filepath.Base(rootPath)}, true, nil
}
