package normalize

import (
	"path"
	"path/filepath"
	"strings"
)

// PlaceholderRoot is the reserved two-segment token substituted for the
// origin home directory in archive member paths.
const PlaceholderRoot = "home/user"

// NormalizePath converts an absolute filesystem path into its archive member
// form. Paths under homeDir get the placeholder root prefix; other paths are
// stored as the absolute path stripped of its leading separator so they are
// valid relative tar members.
func NormalizePath(absPath, homeDir string) string {
	abs := filepath.Clean(absPath)
	home := filepath.Clean(homeDir)

	if rel, ok := relUnder(abs, home); ok {
		if rel == "." {
			return PlaceholderRoot
		}
		return path.Join(PlaceholderRoot, filepath.ToSlash(rel))
	}

	return strings.TrimPrefix(abs, string(filepath.Separator))
}

// DenormalizePath is the inverse of NormalizePath, resolved against the
// current home directory (which may differ from the archive's origin home).
func DenormalizePath(archivePath, currentHomeDir string) string {
	p := path.Clean(archivePath)

	if p == PlaceholderRoot {
		return filepath.Clean(currentHomeDir)
	}
	if strings.HasPrefix(p, PlaceholderRoot+"/") {
		return filepath.Join(currentHomeDir, filepath.FromSlash(p[len(PlaceholderRoot)+1:]))
	}

	return string(filepath.Separator) + filepath.FromSlash(p)
}

// UnderHome reports whether absPath lives under homeDir
func UnderHome(absPath, homeDir string) bool {
	_, ok := relUnder(absPath, homeDir)
	return ok
}

// relUnder returns the path of abs relative to home when abs is home or
// inside it.
func relUnder(abs, home string) (string, bool) {
	rel, err := filepath.Rel(filepath.Clean(home), filepath.Clean(abs))
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
