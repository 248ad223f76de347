// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/narrative-watchlists/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/narrative-watchlists/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/narrative-watchlists/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/watchlists
package version

// Build-time variables (set via ldflags)
var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"

	// Commit is the git commit hash (short form)
	Commit = "unknown"

	// BuildTime is the UTC build timestamp (ISO 8601)
	BuildTime = "unknown"
)

// Name is the binary name reported by --version.
const Name = "narrative-watchlists"

// String returns the version line shown by --version, e.g.
// "narrative-watchlists 1.0.0 (abc1234) built 2025-01-02T03:04:05Z".
func String() string {
	return Name + " " + Version + " (" + Commit + ") built " + BuildTime
}
