package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name    string
		absPath string
		homeDir string
		want    string
	}{
		{
			name:    "under home",
			absPath: "/home/andres/.config/.fonts",
			homeDir: "/home/andres",
			want:    "home/user/.config/.fonts",
		},
		{
			name:    "home itself",
			absPath: "/home/andres",
			homeDir: "/home/andres",
			want:    "home/user",
		},
		{
			name:    "outside home loses leading separator",
			absPath: "/etc/fstab",
			homeDir: "/home/andres",
			want:    "etc/fstab",
		},
		{
			name:    "sibling user is not under home",
			absPath: "/home/andresita/.bashrc",
			homeDir: "/home/andres",
			want:    "home/andresita/.bashrc",
		},
		{
			name:    "trailing slash on home",
			absPath: "/home/andres/.bashrc",
			homeDir: "/home/andres/",
			want:    "home/user/.bashrc",
		},
		{
			name:    "unclean input",
			absPath: "/home/andres/./.config/../.config/nvim",
			homeDir: "/home/andres",
			want:    "home/user/.config/nvim",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.absPath, tt.homeDir))
		})
	}
}

func TestDenormalizePath(t *testing.T) {
	tests := []struct {
		name        string
		archivePath string
		homeDir     string
		want        string
	}{
		{
			name:        "placeholder substituted with current home",
			archivePath: "home/user/.config/.fonts",
			homeDir:     "/home/maria",
			want:        "/home/maria/.config/.fonts",
		},
		{
			name:        "bare placeholder",
			archivePath: "home/user",
			homeDir:     "/home/maria",
			want:        "/home/maria",
		},
		{
			name:        "non-placeholder restored to absolute",
			archivePath: "etc/fstab",
			homeDir:     "/home/maria",
			want:        "/etc/fstab",
		},
		{
			name:        "literal other user home",
			archivePath: "home/andresita/.bashrc",
			homeDir:     "/home/maria",
			want:        "/home/andresita/.bashrc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DenormalizePath(tt.archivePath, tt.homeDir))
		})
	}
}

func TestPathRoundTrip(t *testing.T) {
	home := "/home/andres"
	underHome := []string{
		"/home/andres/.bashrc",
		"/home/andres/.config/nvim/init.lua",
		"/home/andres/.local/share/fonts/mono.ttf",
	}
	for _, p := range underHome {
		assert.Equal(t, p, DenormalizePath(NormalizePath(p, home), home), p)
	}

	outsideHome := []string{
		"/etc/fstab",
		"/usr/share/themes/Adwaita/index.theme",
		"/opt/app/config.toml",
	}
	for _, p := range outsideHome {
		assert.Equal(t, p, DenormalizePath(NormalizePath(p, home), home), p)
	}
}

func TestNormalizePathIdempotentAcrossHomes(t *testing.T) {
	// Relocation scenario: archived under andres, extracted under maria.
	archived := NormalizePath("/home/andres/.config/.fonts", "/home/andres")
	assert.Equal(t, "home/user/.config/.fonts", archived)
	assert.Equal(t, "/home/maria/.config/.fonts", DenormalizePath(archived, "/home/maria"))
}

func TestUnderHome(t *testing.T) {
	assert.True(t, UnderHome("/home/andres/.bashrc", "/home/andres"))
	assert.True(t, UnderHome("/home/andres", "/home/andres"))
	assert.False(t, UnderHome("/etc/fstab", "/home/andres"))
	assert.False(t, UnderHome("/home/andresita/.bashrc", "/home/andres"))
}
