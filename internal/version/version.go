package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/amt911/config-saver/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/amt911/config-saver/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/amt911/config-saver/internal/version.Date={{.Date}}
)
