// Package backup orchestrates the archive pipeline: configuration loading,
// path resolution, ownership filtering, incremental change detection,
// archive building and placement in the versioned store.
package backup

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/amt911/config-saver/pkg/archive"
	"github.com/amt911/config-saver/pkg/config"
	"github.com/amt911/config-saver/pkg/errors"
	"github.com/amt911/config-saver/pkg/logging"
	"github.com/amt911/config-saver/pkg/ownership"
	"github.com/amt911/config-saver/pkg/resolver"
	"github.com/amt911/config-saver/pkg/store"
	"github.com/amt911/config-saver/pkg/types"
)

// Manager glues the pipeline together for one invocation
type Manager struct {
	fs    types.FS
	store *store.Store
	home  string
	euid  int
}

// NewManager creates a manager acting as the given user
func NewManager(fsys types.FS, st *store.Store, homeDir string, effectiveUID int) *Manager {
	return &Manager{fs: fsys, store: st, home: filepath.Clean(homeDir), euid: effectiveUID}
}

// CompressOptions configures a compress run
type CompressOptions struct {
	// Output overrides the store placement with an explicit archive path.
	// Mutually exclusive with Description.
	Output string

	// Description, when set, routes the archive through the versioned
	// store layout.
	Description string

	// Timestamp identifies the version; defaults to now.
	Timestamp string

	// Observer, when set, receives per-entry progress.
	Observer types.ProgressObserver
}

// Result summarizes one compressed configuration
type Result struct {
	Config      string
	ArchivePath string
	Build       *archive.BuildResult
	Report      *types.Report

	// Incremental is false for the first backup of a configuration.
	Incremental bool
	Changed     int
	Deleted     int
}

// CompressConfig compresses a single YAML configuration
func (m *Manager) CompressConfig(cfgPath string, opts CompressOptions) (*Result, error) {
	cfg, err := config.LoadBackupConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return m.Compress(cfg, opts)
}

// Compress runs the pipeline for an already-validated configuration.
// The permission policy is checked before any file is read.
func (m *Manager) Compress(cfg *types.BackupConfig, opts CompressOptions) (*Result, error) {
	logger := logging.GetLogger("backup")

	if opts.Output != "" && opts.Description != "" {
		return nil, errors.New(errors.ErrInvalidInput, "an explicit output path cannot be combined with a description")
	}

	if err := ownership.CheckPolicy(cfg.Name, cfg.OnlyRootUser, m.euid); err != nil {
		return nil, err
	}

	if opts.Timestamp == "" {
		opts.Timestamp = time.Now().Format(store.TimestampFormat)
	}

	report := types.NewReport()
	entries := resolver.New(m.fs, m.home).Resolve(cfg.Directories, report)
	entries = ownership.Filter(m.fs, entries, m.euid, report)

	// The previous state must be located before placing the new version:
	// placement creates the new timestamp directory, which would otherwise
	// shadow the directory the last state was saved to.
	prev, isFirst := m.previousState(cfg.Name, opts)

	dest := opts.Output
	if dest == "" {
		placed, err := m.store.Place(cfg.Name, opts.Timestamp, opts.Description)
		if err != nil {
			return nil, err
		}
		dest = placed
	}

	allPaths := make([]string, 0, len(entries))
	for _, e := range entries {
		allPaths = append(allPaths, e.SourcePath)
	}

	toArchive := entries
	var deleted []string
	var virtual []archive.VirtualMember
	if !isFirst {
		changedSet := make(map[string]struct{})
		for _, p := range prev.ChangedFiles(m.fs, allPaths) {
			changedSet[p] = struct{}{}
		}
		filtered := entries[:0:0]
		for _, e := range entries {
			if _, ok := changedSet[e.SourcePath]; ok {
				filtered = append(filtered, e)
			}
		}
		toArchive = filtered
		deleted = prev.DeletedFiles(allPaths)

		changed := make([]string, 0, len(changedSet))
		for p := range changedSet {
			changed = append(changed, p)
		}
		sort.Strings(changed)
		meta, err := json.MarshalIndent(IncrementalMetadata{
			BackupType:   "incremental",
			ChangedFiles: changed,
			DeletedFiles: deleted,
		}, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode incremental metadata")
		}
		virtual = append(virtual, archive.VirtualMember{Name: MetadataMemberName, Data: meta})
		logger.Info().Str("config", cfg.Name).Int("changed", len(changed)).Int("deleted", len(deleted)).
			Msg("creating incremental backup")
	} else {
		logger.Info().Str("config", cfg.Name).Int("files", len(entries)).Msg("creating full backup")
	}

	buildResult, err := archive.Build(m.fs, toArchive, dest, archive.BuildOptions{
		HomeDir:          m.home,
		NormalizeContent: cfg.NormalizeContent,
		Virtual:          virtual,
		Observer:         opts.Observer,
		Sink:             report,
	})
	if err != nil {
		return nil, err
	}

	// Snapshot every current file, not only the changed ones, so the next
	// run diffs against the complete picture.
	next := NewState(filepath.Dir(dest))
	for _, p := range allPaths {
		next.Update(m.fs, p)
	}
	if err := next.Save(m.fs); err != nil {
		logger.Warn().Err(err).Msg("could not save backup state; next run will be a full backup")
	}

	return &Result{
		Config:      cfg.Name,
		ArchivePath: dest,
		Build:       buildResult,
		Report:      report,
		Incremental: !isFirst,
		Changed:     len(toArchive),
		Deleted:     len(deleted),
	}, nil
}

// previousState locates and loads the most recent backup state for a
// configuration. The bool is true when there is none (first backup).
func (m *Manager) previousState(configName string, opts CompressOptions) (*State, bool) {
	var stateDir string
	switch {
	case opts.Output != "":
		stateDir = filepath.Dir(opts.Output)
	case opts.Description != "":
		rec, err := m.store.Latest(configName)
		if err != nil {
			return nil, true
		}
		stateDir = filepath.Dir(rec.ArchivePath)
	default:
		stateDir = m.store.Root()
	}

	prev := NewState(stateDir)
	if !prev.Load(m.fs) {
		return nil, true
	}
	return prev, false
}

// CompressDirectory compresses every top-level YAML configuration in dir.
// A configuration rejected by the permission policy is skipped as a unit
// and recorded in the batch report; the batch continues.
func (m *Manager) CompressDirectory(dir string, opts CompressOptions) ([]*Result, *types.Report, error) {
	files, err := config.FindConfigFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	if opts.Timestamp == "" {
		opts.Timestamp = time.Now().Format(store.TimestampFormat)
	}

	batch := types.NewReport()
	var results []*Result
	for _, f := range files {
		res, err := m.CompressConfig(f, opts)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrPermissionPolicy) {
				batch.Warn(types.WarnEvent{
					Kind:   types.WarnRootRequired,
					Config: configNameOf(f),
					Path:   f,
					Err:    err,
				})
				continue
			}
			return results, batch, err
		}
		batch.Merge(res.Report)
		results = append(results, res)
	}
	return results, batch, nil
}

// Extract restores an archive. When destRoot is empty, members are written
// to their denormalized absolute locations against the manager's home.
func (m *Manager) Extract(archivePath, destRoot string, observer types.ProgressObserver) (*archive.ExtractResult, error) {
	return archive.Extract(m.fs, archivePath, archive.ExtractOptions{
		HomeDir:   m.home,
		DestRoot:  destRoot,
		SkipNames: []string{MetadataMemberName},
		Observer:  observer,
	})
}

// configNameOf mirrors the name derivation of config.LoadBackupConfig for
// files that fail to load.
func configNameOf(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
