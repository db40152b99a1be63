package backup

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
	"github.com/zeebo/xxh3"

	"github.com/amt911/config-saver/pkg/logging"
	"github.com/amt911/config-saver/pkg/types"
)

// StateFileName is the per-store-location file tracking the last backup
const StateFileName = ".backup-state.json"

// MetadataMemberName is the archive member describing an incremental backup
const MetadataMemberName = ".incremental-metadata.json"

// FileState is the recorded fingerprint of one source file
type FileState struct {
	MTime int64  `json:"mtime"`
	Size  int64  `json:"size"`
	Hash  string `json:"hash"`
}

// IncrementalMetadata is the document stored as MetadataMemberName inside
// incremental archives.
type IncrementalMetadata struct {
	BackupType   string   `json:"backup_type"`
	ChangedFiles []string `json:"changed_files"`
	DeletedFiles []string `json:"deleted_files"`
}

// State tracks file fingerprints between backups to enable incremental
// archives. Change detection is hybrid: mtime+size first, content hash only
// when they are unchanged.
type State struct {
	dir   string
	Files map[string]FileState `json:"files"`
}

// NewState creates an empty state bound to a directory
func NewState(dir string) *State {
	return &State{dir: dir, Files: make(map[string]FileState)}
}

// Path returns the state file location
func (s *State) Path() string {
	return filepath.Join(s.dir, StateFileName)
}

// Load reads a previously saved state. Returns false when there is none
// (or it cannot be parsed), which callers treat as "first backup".
func (s *State) Load(fsys types.FS) bool {
	data, err := fsys.ReadFile(s.Path())
	if err != nil {
		return false
	}
	var doc struct {
		Files map[string]FileState `json:"files"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		logger := logging.GetLogger("backup")
		logger.Warn().Err(err).Str("path", s.Path()).
			Msg("backup state unreadable, falling back to full backup")
		return false
	}
	if doc.Files != nil {
		s.Files = doc.Files
	}
	return true
}

// Save writes the state beside the archive it describes
func (s *State) Save(fsys types.FS) error {
	doc := struct {
		Files map[string]FileState `json:"files"`
	}{Files: s.Files}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return fsys.WriteFile(s.Path(), data, 0o644)
}

// Update records the current fingerprint of a file. Per-file errors are
// ignored so a single unreadable file does not poison the snapshot.
func (s *State) Update(fsys types.FS, path string) {
	fi, err := fsys.Lstat(path)
	if err != nil {
		return
	}
	s.Files[path] = FileState{
		MTime: fi.ModTime().UnixNano(),
		Size:  fi.Size(),
		Hash:  hashFile(fsys, path),
	}
}

// HasChanged reports whether a file differs from its recorded fingerprint.
// Unknown and unreadable files count as changed.
func (s *State) HasChanged(fsys types.FS, path string) bool {
	prev, ok := s.Files[path]
	if !ok {
		return true
	}
	fi, err := fsys.Lstat(path)
	if err != nil {
		return true
	}
	if fi.ModTime().UnixNano() != prev.MTime || fi.Size() != prev.Size {
		return true
	}
	return hashFile(fsys, path) != prev.Hash
}

// ChangedFiles returns the subset of paths that changed since the last
// backup, preserving the input order.
func (s *State) ChangedFiles(fsys types.FS, paths []string) []string {
	var changed []string
	for _, p := range paths {
		if s.HasChanged(fsys, p) {
			changed = append(changed, p)
		}
	}
	return changed
}

// DeletedFiles returns recorded paths that no longer appear in the current
// file list, sorted.
func (s *State) DeletedFiles(paths []string) []string {
	current := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		current[p] = struct{}{}
	}
	var deleted []string
	for p := range s.Files {
		if _, ok := current[p]; !ok {
			deleted = append(deleted, p)
		}
	}
	sort.Strings(deleted)
	return deleted
}

// hashFile fingerprints file content with xxh3. An unreadable file hashes
// to the empty string, which never matches a recorded hash.
func hashFile(fsys types.FS, path string) string {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}
