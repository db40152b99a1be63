package types

// PathSpec is a single declared entry from a backup configuration. It is
// either a bare path string, or a source directory paired with a restricted
// set of child names. A bare path is always absolute after variable
// expansion; Files entries are relative to Source.
type PathSpec struct {
	// Path is the bare form. Empty when the spec uses the source/files form.
	Path string

	// Source names a base directory for the source/files form.
	Source string

	// Files are child names (relative) under Source.
	Files []string
}

// IsBare reports whether the spec is a bare path string
func (s PathSpec) IsBare() bool {
	return s.Source == ""
}

// ResolvedEntry is one concrete filesystem path produced by the resolver,
// together with its archive-relative destination.
type ResolvedEntry struct {
	// SourcePath is the absolute path on the live filesystem.
	SourcePath string

	// ArchivePath is the normalized destination path inside the archive.
	ArchivePath string

	// UnderHome marks entries that live under the acting home directory.
	// Only these are candidates for content normalization.
	UnderHome bool
}

// BackupConfig is a validated backup configuration: the structured input the
// pipeline consumes. The schema-validation layer in pkg/config produces it.
type BackupConfig struct {
	// Name is the configuration name, derived from the config file basename.
	Name string

	// Directories lists the entries to archive.
	Directories []PathSpec

	// NormalizeContent enables rewriting of home-directory occurrences
	// inside text file contents. Disabled by default.
	NormalizeContent bool

	// OnlyRootUser marks a configuration that must be run as root.
	OnlyRootUser bool
}

// Decision is the tri-state ownership verdict for a resolved entry
type Decision int

const (
	// DecisionInclude means the entry is archivable by the invoking user.
	DecisionInclude Decision = iota

	// DecisionSkipRootOwned means the entry is owned by root and the
	// invoking user is not root; it is skipped and reported.
	DecisionSkipRootOwned

	// DecisionRejectRequiresRoot means the whole configuration requires
	// root and the invoking user is not root.
	DecisionRejectRequiresRoot
)

// String returns a human-readable form of the decision
func (d Decision) String() string {
	switch d {
	case DecisionInclude:
		return "include"
	case DecisionSkipRootOwned:
		return "skip-root-owned"
	case DecisionRejectRequiresRoot:
		return "reject-requires-root"
	default:
		return "unknown"
	}
}
