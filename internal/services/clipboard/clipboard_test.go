package clipboard

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type recordingCopier struct {
	copied string
	err    error
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = text
	return copier.err
}

func TestCopyFileCopiesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.txt")
	if err := os.WriteFile(path, []byte("dump body"), 0o600); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	copier := &recordingCopier{}
	if err := CopyFile(copier, path); err != nil {
		t.Fatalf("CopyFile error: %v", err)
	}
	if copier.copied != "dump body" {
		t.Fatalf("expected dump body on clipboard, got %q", copier.copied)
	}
}

func TestCopyFileReportsFailures(t *testing.T) {
	if err := CopyFile(&recordingCopier{}, filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "dump.txt")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	copyFailure := errors.New("no clipboard")
	if err := CopyFile(&recordingCopier{err: copyFailure}, path); !errors.Is(err, copyFailure) {
		t.Fatalf("expected wrapped copy failure, got %v", err)
	}
}
