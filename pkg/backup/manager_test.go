package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amt911/config-saver/pkg/errors"
	"github.com/amt911/config-saver/pkg/store"
	"github.com/amt911/config-saver/pkg/testutil"
	"github.com/amt911/config-saver/pkg/types"
)

func newManager(t *testing.T, env *testutil.Env) (*Manager, *store.Store) {
	t.Helper()
	st := store.New(env.FS, filepath.Join(env.Root, "saves"))
	return NewManager(env.FS, st, env.Home, os.Geteuid()), st
}

func writeYAML(t *testing.T, env *testutil.Env, name, content string) string {
	t.Helper()
	return env.WriteFile(t, filepath.Join(env.Root, "configs-src", name), []byte(content), 0o644)
}

func TestCompressConfigLegacyLayout(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteFile(t, env.HomePath(".bashrc"), []byte("alias ll='ls -la'\n"), 0o644)
	cfgPath := writeYAML(t, env, "dotfiles.yaml", "directories:\n  - $HOME/.bashrc\n")

	m, st := newManager(t, env)
	res, err := m.CompressConfig(cfgPath, CompressOptions{Timestamp: "20260830-120000"})
	require.NoError(t, err)

	assert.Equal(t, "dotfiles", res.Config)
	assert.Equal(t, st.LegacyArchivePath("dotfiles"), res.ArchivePath)
	assert.False(t, res.Incremental)
	assert.Equal(t, 1, res.Build.Written)

	_, err = os.Stat(res.ArchivePath)
	assert.NoError(t, err)
}

func TestCompressRejectsOutputWithDescription(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteFile(t, env.HomePath(".bashrc"), []byte("x"), 0o644)
	cfgPath := writeYAML(t, env, "dotfiles.yaml", "directories:\n  - $HOME/.bashrc\n")

	m, st := newManager(t, env)
	_, err := m.CompressConfig(cfgPath, CompressOptions{
		Output:      filepath.Join(env.Root, "explicit.tar.gz"),
		Description: "conflicting",
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	// Nothing is written anywhere.
	_, err = os.Stat(filepath.Join(env.Root, "explicit.tar.gz"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(st.Root())
	assert.True(t, os.IsNotExist(err))
}

func TestCompressConfigVersionedLayout(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteFile(t, env.HomePath(".bashrc"), []byte("x"), 0o644)
	cfgPath := writeYAML(t, env, "dotfiles.yaml", "directories:\n  - $HOME/.bashrc\n")

	m, st := newManager(t, env)
	res, err := m.CompressConfig(cfgPath, CompressOptions{
		Timestamp:   "20260830-120000",
		Description: "first snapshot",
	})
	require.NoError(t, err)
	assert.Equal(t, st.VersionArchivePath("dotfiles", "20260830-120000"), res.ArchivePath)

	latest, err := st.Latest("dotfiles")
	require.NoError(t, err)
	assert.Equal(t, "first snapshot", latest.Description)
}

func TestCompressIncrementalSecondRun(t *testing.T) {
	env := testutil.NewEnv(t)
	stable := env.WriteFile(t, env.HomePath(".config", "app", "stable.conf"), []byte("same"), 0o644)
	volatile := env.WriteFile(t, env.HomePath(".config", "app", "volatile.conf"), []byte("v1"), 0o644)
	cfgPath := writeYAML(t, env, "app.yaml", "directories:\n  - $CONFIG_DIR/app\n")

	m, _ := newManager(t, env)

	first, err := m.CompressConfig(cfgPath, CompressOptions{
		Timestamp: "20260830-120000", Description: "full",
	})
	require.NoError(t, err)
	assert.False(t, first.Incremental)
	assert.Equal(t, 2, first.Build.Written)

	env.WriteFile(t, volatile, []byte("v2 changed"), 0o644)

	second, err := m.CompressConfig(cfgPath, CompressOptions{
		Timestamp: "20260830-130000", Description: "incremental",
	})
	require.NoError(t, err)
	assert.True(t, second.Incremental)
	// Only the changed file is archived.
	assert.Equal(t, 1, second.Build.Written)
	assert.Equal(t, 1, second.Changed)
	_ = stable
}

func TestCompressRejectsRootOnlyConfig(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteFile(t, env.HomePath(".bashrc"), []byte("x"), 0o644)
	cfgPath := writeYAML(t, env, "system.yaml",
		"directories:\n  - $HOME/.bashrc\nonly_root_user: true\n")

	st := store.New(env.FS, filepath.Join(env.Root, "saves"))
	// Force a non-root effective uid regardless of who runs the tests.
	m := NewManager(env.FS, st, env.Home, 1000)

	_, err := m.CompressConfig(cfgPath, CompressOptions{Timestamp: "20260830-120000"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPermissionPolicy))

	// Rejected before any file is read: nothing was placed in the store.
	_, statErr := os.Stat(st.LegacyArchivePath("system"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompressDirectoryBatch(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteFile(t, env.HomePath(".bashrc"), []byte("x"), 0o644)
	env.WriteFile(t, env.HomePath(".vimrc"), []byte("y"), 0o644)

	dir := filepath.Dir(writeYAML(t, env, "shell.yaml", "directories:\n  - $HOME/.bashrc\n"))
	writeYAML(t, env, "vim.yaml", "directories:\n  - $HOME/.vimrc\n")
	writeYAML(t, env, "system.yaml", "directories:\n  - /etc/ssh\nonly_root_user: true\n")

	st := store.New(env.FS, filepath.Join(env.Root, "saves"))
	m := NewManager(env.FS, st, env.Home, 1000)

	results, batch, err := m.CompressDirectory(dir, CompressOptions{
		Timestamp: "20260830-120000", Description: "batch run",
	})
	require.NoError(t, err)

	// The root-only config is skipped as a unit; the batch continues.
	require.Len(t, results, 2)
	assert.Equal(t, 1, batch.Count(types.WarnRootRequired))
	assert.Equal(t, []string{filepath.Join(dir, "system.yaml")}, batch.Samples(types.WarnRootRequired))
}

func TestExtractRelocatesToCurrentHome(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteFile(t, env.HomePath(".config", ".fonts", "mono.conf"),
		[]byte("dir="+env.Home+"/.fonts\n"), 0o644)
	cfgPath := writeYAML(t, env, "fonts.yaml",
		"directories:\n  - $CONFIG_DIR/.fonts\nnormalize_content: true\n")

	m, _ := newManager(t, env)
	res, err := m.CompressConfig(cfgPath, CompressOptions{Timestamp: "20260830-120000"})
	require.NoError(t, err)

	// Restore as a different user.
	mariaHome := filepath.Join(env.Root, "home", "maria")
	require.NoError(t, os.MkdirAll(mariaHome, 0o755))
	maria := NewManager(env.FS, store.New(env.FS, filepath.Join(env.Root, "saves")), mariaHome, os.Geteuid())

	_, err = maria.Extract(res.ArchivePath, "", nil)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(mariaHome, ".config", ".fonts", "mono.conf"))
	require.NoError(t, err)
	assert.Equal(t, "dir="+mariaHome+"/.fonts\n", string(got))
}

func TestExtractSkipsIncrementalMetadata(t *testing.T) {
	env := testutil.NewEnv(t)
	volatile := env.WriteFile(t, env.HomePath("v.conf"), []byte("v1"), 0o644)
	cfgPath := writeYAML(t, env, "v.yaml", "directories:\n  - $HOME/v.conf\n")

	m, _ := newManager(t, env)
	_, err := m.CompressConfig(cfgPath, CompressOptions{Timestamp: "20260830-120000", Description: "d"})
	require.NoError(t, err)

	env.WriteFile(t, volatile, []byte("v2"), 0o644)
	second, err := m.CompressConfig(cfgPath, CompressOptions{Timestamp: "20260830-130000", Description: "d"})
	require.NoError(t, err)
	require.True(t, second.Incremental)

	destRoot := filepath.Join(env.Root, "restore")
	result, err := m.Extract(second.ArchivePath, destRoot, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Extracted)
	assert.Equal(t, 1, result.Skipped)

	_, err = os.Stat(filepath.Join(destRoot, MetadataMemberName))
	assert.True(t, os.IsNotExist(err))
}
