package types

import (
	"io"
	"io/fs"
)

// FS is the filesystem interface required for config-saver operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Open returns a reader for streaming file contents into an archive
	Open(name string) (io.ReadCloser, error)

	// Directory operations
	ReadDir(name string) ([]fs.DirEntry, error)
	MkdirAll(path string, perm fs.FileMode) error
}

// ProgressObserver is notified synchronously once per processed entry.
// Implementations must not perform blocking work; a slow observer stalls
// the producer.
type ProgressObserver interface {
	Progress(current, total int, path string)
}

// WarnKind classifies a recoverable skip/reject event
type WarnKind string

const (
	// WarnResolutionFailure is a spec that could not be resolved
	// (missing base directory, no pattern match).
	WarnResolutionFailure WarnKind = "resolution-failure"

	// WarnRootOwnedSkip is a root-owned file skipped under a non-root run.
	WarnRootOwnedSkip WarnKind = "root-owned-skip"

	// WarnRootRequired is a root-only configuration rejected as a unit.
	WarnRootRequired WarnKind = "root-required"

	// WarnReadFailure is a source file that could not be read during build.
	WarnReadFailure WarnKind = "read-failure"
)

// WarnEvent is one structured skip/reject event surfaced to the caller
type WarnEvent struct {
	Kind   WarnKind
	Config string
	Path   string
	Err    error
}

// WarningSink receives structured skip/reject events. The CLI consumes the
// accumulated events for its end-of-run summary; events are never silently
// dropped by the pipeline.
type WarningSink interface {
	Warn(ev WarnEvent)
}
