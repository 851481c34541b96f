// Package version holds build-time version info injected via -ldflags.
package version

var (
	// Version is the semantic version or git tag of this build.
	Version = "dev"
	// Commit is the git commit hash of this build.
	Commit = "unknown"
)
