// Package version holds build metadata, set with -ldflags at release time:
//
//	-X github.com/banshee-data/weld.report/internal/version.Version=v0.3.0
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String returns "weld-report <version> (<sha>, built <time>)".
func String() string {
	return fmt.Sprintf("weld-report %s (%s, built %s)", Version, GitSHA, BuildTime)
}
