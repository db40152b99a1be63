// Package config loads the two configuration kinds config-saver deals with:
// backup configurations (the YAML documents declaring what to archive) and
// tool settings (store root, system configs directory).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amt911/config-saver/pkg/errors"
	"github.com/amt911/config-saver/pkg/types"
)

// rawSpec decodes the `string | {source, files}` union of a directories
// entry.
type rawSpec struct {
	Path   string
	Source string
	Files  []string
}

// UnmarshalYAML accepts either a scalar path or a source/files mapping
func (s *rawSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&s.Path)
	case yaml.MappingNode:
		var m struct {
			Source string   `yaml:"source"`
			Files  []string `yaml:"files"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		s.Source = m.Source
		s.Files = m.Files
		return nil
	default:
		return errors.Newf(errors.ErrConfigParse, "directories entry must be a path or a source/files mapping (line %d)", node.Line)
	}
}

// rawBackupConfig is the on-disk document shape
type rawBackupConfig struct {
	Directories      []rawSpec `yaml:"directories"`
	NormalizeContent bool      `yaml:"normalize_content"`
	OnlyRootUser     bool      `yaml:"only_root_user"`
}

// LoadBackupConfig reads and validates one YAML backup configuration. The
// configuration name is the file basename without its extension.
func LoadBackupConfig(path string) (*types.BackupConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read configuration %q", path)
	}

	var raw rawBackupConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "invalid YAML in %q", path)
	}

	cfg := &types.BackupConfig{
		Name:             configName(path),
		NormalizeContent: raw.NormalizeContent,
		OnlyRootUser:     raw.OnlyRootUser,
	}

	if len(raw.Directories) == 0 {
		return nil, errors.Newf(errors.ErrConfigValid, "configuration %q declares no directories", path)
	}
	for i, r := range raw.Directories {
		spec, err := validateSpec(r)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "invalid directories entry %d in %q", i, path)
		}
		cfg.Directories = append(cfg.Directories, spec)
	}

	return cfg, nil
}

// validateSpec enforces the PathSpec invariants: files entries are relative,
// a source/files mapping carries both fields, and a bare path is non-empty.
func validateSpec(r rawSpec) (types.PathSpec, error) {
	if r.Path != "" {
		if r.Source != "" || len(r.Files) > 0 {
			return types.PathSpec{}, errors.New(errors.ErrConfigValid, "entry mixes bare path and source/files forms")
		}
		return types.PathSpec{Path: r.Path}, nil
	}

	if r.Source == "" {
		return types.PathSpec{}, errors.New(errors.ErrConfigValid, "entry is missing both path and source")
	}
	if len(r.Files) == 0 {
		return types.PathSpec{}, errors.New(errors.ErrConfigValid, "source entry declares no files")
	}
	for _, f := range r.Files {
		if filepath.IsAbs(f) {
			return types.PathSpec{}, errors.Newf(errors.ErrConfigValid, "files entry %q must be relative", f)
		}
	}
	return types.PathSpec{Source: r.Source, Files: r.Files}, nil
}

// configName derives the configuration name from its file path
func configName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FindConfigFiles returns the top-level YAML files of a directory, sorted.
// Used by directory-mode compression.
func FindConfigFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot scan %q", dir)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, errors.Newf(errors.ErrNotFound, "no YAML configuration files found in %q", dir)
	}
	return files, nil
}
