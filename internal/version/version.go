// Package version holds build metadata injected with -ldflags, e.g.
//
//	-X github.com/dkoosis/tabledoc/internal/version.Version=v1.2.0
package version

import "fmt"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String formats all three values for the version command.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
