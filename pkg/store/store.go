// Package store decides archive and description placement under the
// per-configuration, per-timestamp directory layout.
//
// Two layouts coexist. The legacy layout keys an archive by configuration
// name only (<root>/<name>.tar.gz) and overwrites on every run. The
// versioned layout is append-only: each compress invocation with a
// description creates <root>/configs/<name>/<timestamp>/ holding the
// archive and a sibling description.txt, and prior timestamp directories
// are never touched.
//
// "Latest" is a linear scan over timestamp-named children, not an index, so
// it stays correct when directories are deleted by hand.
package store

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"

	"github.com/amt911/config-saver/pkg/errors"
	"github.com/amt911/config-saver/pkg/logging"
	"github.com/amt911/config-saver/pkg/types"
)

// TimestampFormat is the layout of timestamp directory names. Lexicographic
// order on these names matches temporal order.
const TimestampFormat = "20060102-150405"

// descriptionFile is the sibling file holding a version's description
const descriptionFile = "description.txt"

// configsDirName is the subdirectory holding the versioned layout
const configsDirName = "configs"

// Record is one stored archive for a configuration name
type Record struct {
	// Config is the configuration name.
	Config string

	// Timestamp is the version directory name; empty for legacy archives.
	Timestamp string

	// ArchivePath is the absolute path of the stored archive.
	ArchivePath string

	// Description is the stored description text, if any.
	Description string
}

// Store places archives under a root directory
type Store struct {
	root string
	fs   types.FS
}

// New creates a store rooted at the given directory
func New(fsys types.FS, root string) *Store {
	return &Store{root: filepath.Clean(root), fs: fsys}
}

// DefaultRoot returns the default store root for the current user
func DefaultRoot() string {
	return filepath.Join(xdg.ConfigHome, "config-saver")
}

// Root returns the current store root
func (s *Store) Root() string {
	return s.root
}

// EnsureRoot creates the store root, falling back to the XDG data directory
// when the configured root is not writable. Returns the root in effect.
func (s *Store) EnsureRoot() (string, error) {
	if err := s.fs.MkdirAll(s.root, 0o755); err == nil {
		return s.root, nil
	}

	fallback := filepath.Join(xdg.DataHome, "config-saver", "saves")
	if err := s.fs.MkdirAll(fallback, 0o755); err != nil {
		return "", errors.Wrapf(err, errors.ErrStoreAccess, "cannot create store root %q or fallback %q", s.root, fallback)
	}
	logger := logging.GetLogger("store")
	logger.Warn().
		Str("root", s.root).Str("fallback", fallback).
		Msg("store root not writable, using data dir fallback")
	s.root = fallback
	return s.root, nil
}

// LegacyArchivePath is the backward-compatible single-file location for a
// configuration name. Writing here overwrites any previous archive.
func (s *Store) LegacyArchivePath(config string) string {
	return filepath.Join(s.root, config+".tar.gz")
}

// VersionDir is the directory for one (config, timestamp) record
func (s *Store) VersionDir(config, timestamp string) string {
	return filepath.Join(s.root, configsDirName, config, timestamp)
}

// VersionArchivePath is the archive location inside a version directory
func (s *Store) VersionArchivePath(config, timestamp string) string {
	return filepath.Join(s.VersionDir(config, timestamp), config+"-"+timestamp+".tar.gz")
}

// Place prepares the destination for a new archive and returns the path the
// archive must be written to. Without a description this is the legacy
// layout; with one, a fresh timestamp directory is created and the
// description written beside the archive. A prior timestamp directory is
// never overwritten.
func (s *Store) Place(config, timestamp, description string) (string, error) {
	if _, err := s.EnsureRoot(); err != nil {
		return "", err
	}

	if description == "" {
		return s.LegacyArchivePath(config), nil
	}

	dir := s.VersionDir(config, timestamp)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, errors.ErrStoreAccess, "cannot create version directory %q", dir)
	}
	if err := s.fs.WriteFile(filepath.Join(dir, descriptionFile), []byte(description), 0o644); err != nil {
		return "", errors.Wrapf(err, errors.ErrStoreAccess, "cannot write description in %q", dir)
	}
	return s.VersionArchivePath(config, timestamp), nil
}

// Latest returns the record with the greatest timestamp for a configuration
// name. Ties cannot happen with per-invocation timestamps; if directories
// are manipulated by hand, the lexicographically greatest name wins.
func (s *Store) Latest(config string) (*Record, error) {
	configDir := filepath.Join(s.root, configsDirName, config)
	children, err := s.fs.ReadDir(configDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "no versions stored for %q", config)
	}

	var timestamps []string
	for _, child := range children {
		if child.IsDir() {
			timestamps = append(timestamps, child.Name())
		}
	}
	if len(timestamps) == 0 {
		return nil, errors.Newf(errors.ErrNotFound, "no versions stored for %q", config)
	}
	sort.Strings(timestamps)
	latest := timestamps[len(timestamps)-1]

	return s.record(config, latest)
}

// List returns every versioned record, ordered by configuration name then
// timestamp. When the configs tree is empty it falls back to legacy
// archives at the store root.
func (s *Store) List() ([]Record, error) {
	var records []Record

	configsRoot := filepath.Join(s.root, configsDirName)
	configs, err := s.fs.ReadDir(configsRoot)
	if err == nil {
		for _, cfg := range configs {
			if !cfg.IsDir() {
				continue
			}
			versions, err := s.fs.ReadDir(filepath.Join(configsRoot, cfg.Name()))
			if err != nil {
				continue
			}
			var timestamps []string
			for _, v := range versions {
				if v.IsDir() {
					timestamps = append(timestamps, v.Name())
				}
			}
			sort.Strings(timestamps)
			for _, ts := range timestamps {
				if rec, err := s.record(cfg.Name(), ts); err == nil {
					records = append(records, *rec)
				}
			}
		}
	}
	if len(records) > 0 {
		sort.Slice(records, func(i, j int) bool {
			if records[i].Config != records[j].Config {
				return records[i].Config < records[j].Config
			}
			return records[i].Timestamp < records[j].Timestamp
		})
		return records, nil
	}

	// Legacy fallback: flat <name>.tar.gz files at the root.
	children, err := s.fs.ReadDir(s.root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreAccess, "cannot list store root %q", s.root)
	}
	for _, child := range children {
		name := child.Name()
		if child.IsDir() || !strings.HasSuffix(name, ".tar.gz") {
			continue
		}
		records = append(records, Record{
			Config:      strings.TrimSuffix(name, ".tar.gz"),
			ArchivePath: filepath.Join(s.root, name),
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Config < records[j].Config })
	return records, nil
}

// Description returns the description stored beside an archive, or an empty
// string when there is none.
func (s *Store) Description(archivePath string) string {
	descPath := filepath.Join(filepath.Dir(archivePath), descriptionFile)
	data, err := s.fs.ReadFile(descPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// record assembles the Record for one (config, timestamp) directory
func (s *Store) record(config, timestamp string) (*Record, error) {
	dir := s.VersionDir(config, timestamp)
	archivePath := s.VersionArchivePath(config, timestamp)
	if _, err := s.fs.Stat(archivePath); err != nil {
		// The directory exists but the expected archive name does not;
		// take whatever archive is present.
		children, lerr := s.fs.ReadDir(dir)
		if lerr != nil {
			return nil, errors.Wrapf(err, errors.ErrNotFound, "no archive in %q", dir)
		}
		found := ""
		for _, child := range children {
			if !child.IsDir() && strings.HasSuffix(child.Name(), ".tar.gz") {
				found = filepath.Join(dir, child.Name())
				break
			}
		}
		if found == "" {
			return nil, errors.Newf(errors.ErrNotFound, "no archive in %q", dir)
		}
		archivePath = found
	}

	return &Record{
		Config:      config,
		Timestamp:   timestamp,
		ArchivePath: archivePath,
		Description: s.Description(archivePath),
	}, nil
}
