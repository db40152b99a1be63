// Package resolver expands declarative path specifications into concrete
// filesystem entries. It substitutes the fixed variable set ($HOME,
// $CONFIG_DIR, $SHARE_DIR, $BIN_DIR), resolves pattern placeholders against
// live directory listings, and walks directories down to individual files.
package resolver

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/amt911/config-saver/pkg/errors"
	"github.com/amt911/config-saver/pkg/logging"
	"github.com/amt911/config-saver/pkg/normalize"
	"github.com/amt911/config-saver/pkg/types"
)

// directivePattern matches a pattern placeholder occupying one path segment:
// ${ENDS_WITH="suffix"} or ${BEGINS_WITH='prefix'}
var directivePattern = regexp.MustCompile(`^\$\{(ENDS_WITH|BEGINS_WITH)=['"](.+?)['"]\}$`)

// varSub is one fixed variable substitution
type varSub struct {
	token string
	value string
}

// Resolver expands PathSpecs against a live filesystem and a fixed home
// directory.
type Resolver struct {
	fs   types.FS
	home string
	vars []varSub
}

// New creates a resolver for the given home directory
func New(fs types.FS, homeDir string) *Resolver {
	home := filepath.Clean(homeDir)
	return &Resolver{
		fs:   fs,
		home: home,
		vars: []varSub{
			{"$CONFIG_DIR", filepath.Join(home, ".config")},
			{"$LOCALSHARE_DIR", filepath.Join(home, ".local", "share")},
			{"$SHARE_DIR", filepath.Join(home, ".local", "share")},
			{"$BIN_DIR", filepath.Join(home, ".local", "bin")},
			{"$HOME", home},
		},
	}
}

// Resolve expands every spec into concrete entries. Failures are per-spec:
// they are reported to the sink and skipped without aborting siblings. The
// returned order is insertion order from resolution, not sorted.
func (r *Resolver) Resolve(specs []types.PathSpec, sink types.WarningSink) []types.ResolvedEntry {
	logger := logging.GetLogger("resolver")

	var entries []types.ResolvedEntry
	for _, spec := range specs {
		if spec.IsBare() {
			expanded, err := r.ExpandPath(spec.Path)
			if err != nil {
				logger.Warn().Err(err).Str("spec", spec.Path).Msg("spec skipped")
				sink.Warn(types.WarnEvent{Kind: types.WarnResolutionFailure, Path: spec.Path, Err: err})
				continue
			}
			files, err := r.walk(expanded)
			if err != nil {
				logger.Warn().Err(err).Str("path", expanded).Msg("spec skipped")
				sink.Warn(types.WarnEvent{Kind: types.WarnResolutionFailure, Path: spec.Path, Err: err})
				continue
			}
			entries = append(entries, r.toEntries(files)...)
			continue
		}

		source, err := r.ExpandPath(spec.Source)
		if err != nil {
			logger.Warn().Err(err).Str("source", spec.Source).Msg("spec skipped")
			sink.Warn(types.WarnEvent{Kind: types.WarnResolutionFailure, Path: spec.Source, Err: err})
			continue
		}
		if _, err := r.fs.Stat(source); err != nil {
			resErr := errors.Wrapf(err, errors.ErrResolution, "base directory %q does not exist", source)
			logger.Warn().Err(resErr).Msg("spec skipped")
			sink.Warn(types.WarnEvent{Kind: types.WarnResolutionFailure, Path: source, Err: resErr})
			continue
		}

		// Missing individual files are reported but do not abort siblings.
		for _, name := range spec.Files {
			child := filepath.Join(source, name)
			files, err := r.walk(child)
			if err != nil {
				logger.Warn().Err(err).Str("path", child).Msg("file entry skipped")
				sink.Warn(types.WarnEvent{Kind: types.WarnResolutionFailure, Path: child, Err: err})
				continue
			}
			entries = append(entries, r.toEntries(files)...)
		}
	}
	return entries
}

// ExpandPath substitutes the fixed variables and resolves pattern directive
// segments against the filesystem. The result is an absolute, cleaned path.
func (r *Resolver) ExpandPath(p string) (string, error) {
	for _, v := range r.vars {
		p = strings.ReplaceAll(p, v.token, v.value)
	}

	if !strings.Contains(p, "${") {
		return filepath.Clean(p), nil
	}

	// Resolve directive segments left to right; each one is matched against
	// the listing of its (already resolved) parent directory.
	segments := strings.Split(filepath.Clean(p), string(filepath.Separator))
	resolved := string(filepath.Separator)
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		m := directivePattern.FindStringSubmatch(seg)
		if m == nil {
			resolved = filepath.Join(resolved, seg)
			continue
		}
		name, err := r.matchSegment(resolved, m[1], m[2])
		if err != nil {
			return "", err
		}
		resolved = filepath.Join(resolved, name)
	}
	return resolved, nil
}

// matchSegment picks the first lexicographic child of parent satisfying the
// directive predicate. The listing is sorted before matching so resolution
// stays deterministic across platforms.
func (r *Resolver) matchSegment(parent, directive, arg string) (string, error) {
	var g glob.Glob
	switch directive {
	case "ENDS_WITH":
		g = glob.MustCompile("*" + glob.QuoteMeta(arg))
	case "BEGINS_WITH":
		g = glob.MustCompile(glob.QuoteMeta(arg) + "*")
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unknown pattern directive %q", directive)
	}

	children, err := r.fs.ReadDir(parent)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrResolution, "cannot list %q", parent)
	}

	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if g.Match(name) {
			return name, nil
		}
	}
	return "", errors.Newf(errors.ErrNoPatternMatch,
		"no child of %q matches %s=%q", parent, directive, arg).
		WithDetail("parent", parent)
}

// walk expands a path to every regular file beneath it. Symlinks are never
// followed; symlink entries themselves are skipped.
func (r *Resolver) walk(p string) ([]string, error) {
	fi, err := r.fs.Lstat(p)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrResolution, "path %q does not exist", p)
	}

	if fi.Mode().IsRegular() {
		return []string{p}, nil
	}
	if !fi.IsDir() {
		// Symlinks, sockets, devices: not archivable.
		return nil, nil
	}

	children, err := r.fs.ReadDir(p)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrResolution, "cannot list %q", p)
	}

	var files []string
	for _, c := range children {
		sub, err := r.walk(filepath.Join(p, c.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, sub...)
	}
	return files, nil
}

// toEntries attaches the archive destination to each concrete path
func (r *Resolver) toEntries(files []string) []types.ResolvedEntry {
	entries := make([]types.ResolvedEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, types.ResolvedEntry{
			SourcePath:  f,
			ArchivePath: normalize.NormalizePath(f, r.home),
			UnderHome:   normalize.UnderHome(f, r.home),
		})
	}
	return entries
}
