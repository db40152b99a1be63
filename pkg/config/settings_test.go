package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amt911/config-saver/pkg/store"
)

func TestLoadSettingsDefaults(t *testing.T) {
	settings, err := LoadSettings()
	require.NoError(t, err)

	// The embedded defaults leave store_root empty, which falls back to
	// the XDG default.
	assert.Equal(t, store.DefaultRoot(), settings.StoreRoot)
}

func TestLoadSettingsEnvOverride(t *testing.T) {
	t.Setenv("CONFIG_SAVER_STORE_ROOT", "/tmp/custom-store")
	t.Setenv("CONFIG_SAVER_SYSTEM_CONFIGS_DIR", "/etc/config-saver/configs")

	settings, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom-store", settings.StoreRoot)
	assert.Equal(t, "/etc/config-saver/configs", settings.SystemConfigsDir)
}
