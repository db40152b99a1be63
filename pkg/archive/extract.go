package archive

import (
	"archive/tar"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/amt911/config-saver/pkg/errors"
	"github.com/amt911/config-saver/pkg/logging"
	"github.com/amt911/config-saver/pkg/normalize"
	"github.com/amt911/config-saver/pkg/types"
)

// ExtractOptions configures an extraction
type ExtractOptions struct {
	// HomeDir is the current home directory; placeholder member paths are
	// denormalized against it. It may differ from the archive's origin home.
	HomeDir string

	// DestRoot, when set, extracts members under this directory instead of
	// their denormalized absolute locations.
	DestRoot string

	// SkipNames are member names dropped during extraction (the
	// incremental-backup metadata member).
	SkipNames []string

	// Observer, when set, is notified after each member. The total is
	// unknown for a streamed archive and reported as 0.
	Observer types.ProgressObserver
}

// ExtractResult summarizes an extraction
type ExtractResult struct {
	// Extracted is the number of file members written.
	Extracted int

	// Skipped is the number of members dropped via SkipNames.
	Skipped int
}

// Extract unpacks the archive, denormalizing member paths and contents
// against the current home directory. Existing files at a destination are
// overwritten (last write wins). A corrupt or truncated archive is fatal
// for the whole operation: no partial extraction is trusted.
func Extract(fsys types.FS, archivePath string, opts ExtractOptions) (*ExtractResult, error) {
	logger := logging.GetLogger("archive")
	defer logging.LogDuration(time.Now(), "archive extract")

	in, err := fsys.Open(archivePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "cannot open archive %q", archivePath)
	}
	defer func() { _ = in.Close() }()

	gzReader, err := gzip.NewReader(in)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveCorrupt, "archive %q is not a gzip stream", archivePath)
	}
	defer func() { _ = gzReader.Close() }()

	tarReader := tar.NewReader(gzReader)
	skip := make(map[string]struct{}, len(opts.SkipNames))
	for _, name := range opts.SkipNames {
		skip[name] = struct{}{}
	}

	result := &ExtractResult{}
	for {
		hdr, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrArchiveCorrupt, "malformed archive %q", archivePath)
		}

		if _, ok := skip[hdr.Name]; ok {
			result.Skipped++
			continue
		}

		dest := memberDestination(hdr.Name, opts)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fsys.MkdirAll(dest, fs.FileMode(hdr.Mode)&fs.ModePerm); err != nil {
				return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory %q", dest)
			}
		case tar.TypeReg:
			data, err := io.ReadAll(tarReader)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrArchiveCorrupt, "truncated member %q", hdr.Name)
			}
			if !normalize.LooksBinaryName(hdr.Name) {
				data = normalize.DenormalizeContent(data, opts.HomeDir)
			}
			if err := fsys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory %q", filepath.Dir(dest))
			}
			if err := fsys.WriteFile(dest, data, fs.FileMode(hdr.Mode)&fs.ModePerm); err != nil {
				return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot write %q", dest)
			}
			result.Extracted++
			logger.Trace().Str("member", hdr.Name).Str("dest", dest).Msg("member extracted")
		default:
			// Symlinks and special members never make it into archives we
			// build; foreign ones are ignored.
			result.Skipped++
		}

		if opts.Observer != nil {
			opts.Observer.Progress(result.Extracted+result.Skipped, 0, dest)
		}
	}

	logger.Debug().Int("extracted", result.Extracted).Int("skipped", result.Skipped).Msg("archive extracted")
	return result, nil
}

// memberDestination maps a member path to its on-disk destination
func memberDestination(name string, opts ExtractOptions) string {
	if opts.DestRoot != "" {
		return filepath.Join(opts.DestRoot, filepath.FromSlash(name))
	}
	return normalize.DenormalizePath(name, opts.HomeDir)
}
