package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amt911/config-saver/pkg/testutil"
	"github.com/amt911/config-saver/pkg/types"
)

func TestExpandPathVariables(t *testing.T) {
	env := testutil.NewEnv(t)
	r := New(env.FS, env.Home)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"home", "$HOME/.bashrc", env.HomePath(".bashrc")},
		{"config dir", "$CONFIG_DIR/.fonts", env.HomePath(".config", ".fonts")},
		{"share dir", "$SHARE_DIR/fonts", env.HomePath(".local", "share", "fonts")},
		{"localshare alias", "$LOCALSHARE_DIR/fonts", env.HomePath(".local", "share", "fonts")},
		{"bin dir", "$BIN_DIR/backup.sh", env.HomePath(".local", "bin", "backup.sh")},
		{"no variables", "/etc/fstab", "/etc/fstab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ExpandPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandPathEndsWith(t *testing.T) {
	env := testutil.NewEnv(t)
	profiles := env.HomePath(".mozilla", "firefox")
	env.MkdirAll(t, filepath.Join(profiles, "abcd1234.default-release"))
	env.MkdirAll(t, filepath.Join(profiles, "zzzz.default"))

	r := New(env.FS, env.Home)
	got, err := r.ExpandPath(`$HOME/.mozilla/firefox/${ENDS_WITH=".default-release"}/prefs.js`)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(profiles, "abcd1234.default-release", "prefs.js"), got)
}

func TestExpandPathBeginsWith(t *testing.T) {
	env := testutil.NewEnv(t)
	base := env.HomePath(".config")
	env.MkdirAll(t, filepath.Join(base, "chromium-beta"))
	env.MkdirAll(t, filepath.Join(base, "chromium-stable"))

	r := New(env.FS, env.Home)
	got, err := r.ExpandPath(`$CONFIG_DIR/${BEGINS_WITH="chromium"}`)
	require.NoError(t, err)
	// First lexicographic match wins.
	assert.Equal(t, filepath.Join(base, "chromium-beta"), got)
}

func TestExpandPathNoMatch(t *testing.T) {
	env := testutil.NewEnv(t)
	env.MkdirAll(t, env.HomePath(".mozilla", "firefox"))

	r := New(env.FS, env.Home)
	_, err := r.ExpandPath(`$HOME/.mozilla/firefox/${ENDS_WITH=".default-release"}`)
	require.Error(t, err)
}

func TestResolveBarePathFile(t *testing.T) {
	env := testutil.NewEnv(t)
	bashrc := env.WriteFile(t, env.HomePath(".bashrc"), []byte("alias ll='ls -la'\n"), 0o644)

	r := New(env.FS, env.Home)
	report := types.NewReport()
	entries := r.Resolve([]types.PathSpec{{Path: "$HOME/.bashrc"}}, report)

	require.Len(t, entries, 1)
	assert.Equal(t, bashrc, entries[0].SourcePath)
	assert.Equal(t, "home/user/.bashrc", entries[0].ArchivePath)
	assert.True(t, entries[0].UnderHome)
	assert.Equal(t, 0, report.Total())
}

func TestResolveDirectoryRecursion(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteFile(t, env.HomePath(".config", "nvim", "init.lua"), []byte("-- init"), 0o644)
	env.WriteFile(t, env.HomePath(".config", "nvim", "lua", "plugins.lua"), []byte("-- plugins"), 0o644)

	r := New(env.FS, env.Home)
	report := types.NewReport()
	entries := r.Resolve([]types.PathSpec{{Path: "$CONFIG_DIR/nvim"}}, report)

	require.Len(t, entries, 2)
	assert.ElementsMatch(t,
		[]string{
			env.HomePath(".config", "nvim", "init.lua"),
			env.HomePath(".config", "nvim", "lua", "plugins.lua"),
		},
		testutil.SourcePaths(entries))
}

func TestResolveSymlinksNotFollowed(t *testing.T) {
	env := testutil.NewEnv(t)
	target := env.WriteFile(t, env.HomePath("real", "data.txt"), []byte("data"), 0o644)
	dir := env.MkdirAll(t, env.HomePath(".config", "app"))
	env.WriteFile(t, filepath.Join(dir, "settings.ini"), []byte("[a]"), 0o644)
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link.txt")))

	r := New(env.FS, env.Home)
	report := types.NewReport()
	entries := r.Resolve([]types.PathSpec{{Path: "$CONFIG_DIR/app"}}, report)

	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(dir, "settings.ini"), entries[0].SourcePath)
}

func TestResolveSourceFilesSpec(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteFile(t, env.HomePath(".config", "app", "keep.conf"), []byte("x"), 0o644)
	env.WriteFile(t, env.HomePath(".config", "app", "ignore.conf"), []byte("y"), 0o644)

	r := New(env.FS, env.Home)
	report := types.NewReport()
	entries := r.Resolve([]types.PathSpec{
		{Source: "$CONFIG_DIR/app", Files: []string{"keep.conf"}},
	}, report)

	require.Len(t, entries, 1)
	assert.Equal(t, env.HomePath(".config", "app", "keep.conf"), entries[0].SourcePath)
}

func TestResolveMissingBaseDirectory(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteFile(t, env.HomePath(".bashrc"), []byte("x"), 0o644)

	r := New(env.FS, env.Home)
	report := types.NewReport()
	entries := r.Resolve([]types.PathSpec{
		{Source: "$CONFIG_DIR/missing", Files: []string{"a.conf"}},
		{Path: "$HOME/.bashrc"},
	}, report)

	// The bad spec is skipped; its sibling still resolves.
	require.Len(t, entries, 1)
	assert.Equal(t, 1, report.Count(types.WarnResolutionFailure))
}

func TestResolveMissingFileEntryDoesNotAbortSiblings(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteFile(t, env.HomePath(".config", "app", "present.conf"), []byte("x"), 0o644)

	r := New(env.FS, env.Home)
	report := types.NewReport()
	entries := r.Resolve([]types.PathSpec{
		{Source: "$CONFIG_DIR/app", Files: []string{"absent.conf", "present.conf"}},
	}, report)

	require.Len(t, entries, 1)
	assert.Equal(t, env.HomePath(".config", "app", "present.conf"), entries[0].SourcePath)
	assert.Equal(t, 1, report.Count(types.WarnResolutionFailure))
}

func TestResolveDestinationOutsideHome(t *testing.T) {
	env := testutil.NewEnv(t)
	etc := env.WriteFile(t, filepath.Join(env.Root, "etc", "app.conf"), []byte("x"), 0o644)

	r := New(env.FS, env.Home)
	report := types.NewReport()
	entries := r.Resolve([]types.PathSpec{{Path: etc}}, report)

	require.Len(t, entries, 1)
	assert.False(t, entries[0].UnderHome)
	// Absolute path stored without its leading separator.
	assert.Equal(t, etc[1:], entries[0].ArchivePath)
}
