package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/amt911/config-saver/pkg/errors"
	"github.com/amt911/config-saver/pkg/logging"
	"github.com/amt911/config-saver/pkg/normalize"
	"github.com/amt911/config-saver/pkg/types"
)

// VirtualMember is an in-memory member written ahead of the file entries,
// used for the incremental-backup metadata.
type VirtualMember struct {
	Name string
	Data []byte
}

// BuildOptions configures an archive build
type BuildOptions struct {
	// HomeDir is the origin home directory, used for content normalization.
	HomeDir string

	// NormalizeContent enables home-directory substitution in text files.
	NormalizeContent bool

	// Virtual members are written before any file entry.
	Virtual []VirtualMember

	// Observer, when set, is notified synchronously after each entry.
	Observer types.ProgressObserver

	// Sink, when set, receives read-failure events.
	Sink types.WarningSink
}

// BuildResult summarizes a build
type BuildResult struct {
	// Written is the number of file members written.
	Written int

	// Skipped is the number of entries dropped because they could not
	// be read.
	Skipped int
}

// Build streams the entries into a new gzip tar archive at destination,
// creating parent directories as needed. Member order is the entries'
// insertion order; mode bits are preserved.
func Build(fsys types.FS, entries []types.ResolvedEntry, destination string, opts BuildOptions) (*BuildResult, error) {
	if err := fsys.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create archive directory %q", filepath.Dir(destination))
	}

	out, err := os.Create(destination)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveCreate, "cannot create archive %q", destination)
	}
	defer func() { _ = out.Close() }()

	result, err := BuildTo(fsys, entries, out, opts)
	if err != nil {
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveCreate, "cannot finish archive %q", destination)
	}
	return result, nil
}

// BuildTo streams the entries into w as a gzip tar stream
func BuildTo(fsys types.FS, entries []types.ResolvedEntry, w io.Writer, opts BuildOptions) (*BuildResult, error) {
	logger := logging.GetLogger("archive")
	defer logging.LogDuration(time.Now(), "archive build")

	gzWriter := gzip.NewWriter(w)
	tarWriter := tar.NewWriter(gzWriter)

	result := &BuildResult{}

	for _, vm := range opts.Virtual {
		hdr := &tar.Header{
			Name:    vm.Name,
			Mode:    0o644,
			Size:    int64(len(vm.Data)),
			ModTime: time.Now(),
		}
		if err := tarWriter.WriteHeader(hdr); err != nil {
			return nil, errors.Wrapf(err, errors.ErrArchiveCreate, "cannot write member %q", vm.Name)
		}
		if _, err := tarWriter.Write(vm.Data); err != nil {
			return nil, errors.Wrapf(err, errors.ErrArchiveCreate, "cannot write member %q", vm.Name)
		}
	}

	total := len(entries)
	for i, entry := range entries {
		if err := writeEntry(fsys, tarWriter, entry, opts); err != nil {
			// A failure after the member header is written leaves the tar
			// stream inconsistent and aborts the build; a source that
			// cannot be read up front is reported and skipped.
			if errors.IsErrorCode(err, errors.ErrArchiveCreate) {
				return nil, err
			}
			logger.Warn().Err(err).Str("path", entry.SourcePath).Msg("entry skipped")
			if opts.Sink != nil {
				opts.Sink.Warn(types.WarnEvent{Kind: types.WarnReadFailure, Path: entry.SourcePath, Err: err})
			}
			result.Skipped++
		} else {
			result.Written++
		}
		if opts.Observer != nil {
			opts.Observer.Progress(i+1, total, entry.SourcePath)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveCreate, "cannot finish tar stream")
	}
	if err := gzWriter.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveCreate, "cannot finish gzip stream")
	}

	logger.Debug().Int("written", result.Written).Int("skipped", result.Skipped).Msg("archive built")
	return result, nil
}

// writeEntry writes one file member at its normalized destination path
func writeEntry(fsys types.FS, tw *tar.Writer, entry types.ResolvedEntry, opts BuildOptions) error {
	fi, err := fsys.Lstat(entry.SourcePath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %q", entry.SourcePath)
	}

	hdr, err := tar.FileInfoHeader(fi, "")
	if err != nil {
		return err
	}
	hdr.Name = entry.ArchivePath

	// Content scanning only applies to text files under the home tree, and
	// only when the configuration asks for it.
	if opts.NormalizeContent && entry.UnderHome && !normalize.LooksBinaryName(entry.SourcePath) {
		data, err := fsys.ReadFile(entry.SourcePath)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %q", entry.SourcePath)
		}
		if normalized, applied := normalize.NormalizeContent(data, opts.HomeDir); applied {
			hdr.Size = int64(len(normalized))
			data = normalized
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return errors.Wrapf(err, errors.ErrArchiveCreate, "cannot write member %q", hdr.Name)
		}
		if _, err := tw.Write(data); err != nil {
			return errors.Wrapf(err, errors.ErrArchiveCreate, "cannot write member %q", hdr.Name)
		}
		return nil
	}

	src, err := fsys.Open(entry.SourcePath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %q", entry.SourcePath)
	}
	defer func() { _ = src.Close() }()

	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Wrapf(err, errors.ErrArchiveCreate, "cannot write member %q", hdr.Name)
	}
	if _, err := io.Copy(tw, src); err != nil {
		return errors.Wrapf(err, errors.ErrArchiveCreate, "cannot write member %q", hdr.Name)
	}
	return nil
}
