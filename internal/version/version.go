// Package version exposes build metadata stamped at link time. Values
// default to local-build placeholders and are overridden by the release
// pipeline, e.g.:
//
//	-ldflags "-X github.com/sho-platform/sho-core/internal/version.Version=1.2.0"
package version

// Set via -ldflags; left as placeholders for local builds.
var (
	// Version is the release tag.
	Version = "dev"

	// Commit is the short git revision the binary was built from.
	Commit = "unknown"

	// BuiltAt is the RFC3339 build timestamp.
	BuiltAt = "unknown"
)

// Info bundles the build metadata for diagnostic endpoints.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	BuiltAt string `json:"built_at"`
}

// Current returns the metadata this binary was stamped with.
func Current() Info {
	return Info{Version: Version, Commit: Commit, BuiltAt: BuiltAt}
}
