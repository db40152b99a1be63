package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/amt911/config-saver/pkg/errors"
	"github.com/amt911/config-saver/pkg/store"
)

//go:embed embedded/defaults.toml
var defaultSettings []byte

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Settings are the tool-level settings, distinct from backup configurations
type Settings struct {
	// StoreRoot is where archives are placed.
	StoreRoot string `koanf:"store_root"`

	// SystemConfigsDir is scanned for YAML configurations when no --input
	// is given.
	SystemConfigsDir string `koanf:"system_configs_dir"`
}

// settingsFilePath is the optional user settings file
func settingsFilePath() string {
	return filepath.Join(xdg.ConfigHome, "config-saver", "settings.toml")
}

// LoadSettings loads tool settings: embedded defaults, then the user
// settings file if present, then CONFIG_SAVER_* environment overrides.
func LoadSettings() (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultSettings}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load built-in defaults")
	}

	userPath := settingsFilePath()
	if _, err := os.Stat(userPath); err == nil {
		if err := k.Load(file.Provider(userPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load settings from %q", userPath)
		}
	}

	// Settings keys are flat, so CONFIG_SAVER_STORE_ROOT maps to store_root.
	if err := k.Load(env.Provider("CONFIG_SAVER_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CONFIG_SAVER_"))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var settings Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal settings")
	}

	if settings.StoreRoot == "" {
		settings.StoreRoot = store.DefaultRoot()
	}
	return &settings, nil
}
