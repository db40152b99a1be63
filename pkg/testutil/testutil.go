// Package testutil provides shared helpers for pipeline tests. Tests run
// against real temp directories rather than a memory filesystem: the
// filesystem surface under test is small and the ownership filter needs
// real stat results anyway.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amt911/config-saver/pkg/filesystem"
	"github.com/amt911/config-saver/pkg/types"
)

// Env is an isolated filesystem environment with a fake home directory
type Env struct {
	// Root is the temp directory everything lives under.
	Root string

	// Home is the fake home directory (Root/home/andres).
	Home string

	// FS is an OS-backed filesystem rooted nowhere in particular; paths
	// passed to it must be absolute paths under Root.
	FS types.FS
}

// NewEnv creates an isolated environment under t.TempDir()
func NewEnv(t *testing.T) *Env {
	t.Helper()

	root := t.TempDir()
	home := filepath.Join(root, "home", "andres")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("failed to create home dir: %v", err)
	}

	return &Env{
		Root: root,
		Home: home,
		FS:   filesystem.NewOS(),
	}
}

// HomePath joins path elements under the fake home directory
func (e *Env) HomePath(elem ...string) string {
	return filepath.Join(append([]string{e.Home}, elem...)...)
}

// WriteFile creates a file (and its parent directories) with the given
// content and mode. The path may be absolute or relative to Root.
func (e *Env) WriteFile(t *testing.T, path string, content []byte, perm os.FileMode) string {
	t.Helper()

	if !filepath.IsAbs(path) {
		path = filepath.Join(e.Root, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, perm); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// MkdirAll creates a directory tree. The path may be absolute or relative
// to Root.
func (e *Env) MkdirAll(t *testing.T, path string) string {
	t.Helper()

	if !filepath.IsAbs(path) {
		path = filepath.Join(e.Root, path)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	return path
}

// SourcePaths extracts the source paths from resolved entries, for
// order-sensitive assertions.
func SourcePaths(entries []types.ResolvedEntry) []string {
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.SourcePath)
	}
	return paths
}
