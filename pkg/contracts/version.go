package contracts

import (
	"fmt"
	"runtime"
)

// Version is the application version.
const Version = "1.2.0"

// Build metadata, overridden in release builds through -ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// GetVersionString returns the one-line application name and version.
func GetVersionString() string {
	return fmt.Sprintf("Foreign Flyers v%s", Version)
}

// GetFullVersionString returns the version with build metadata. This
// is what the -version flag prints.
func GetFullVersionString() string {
	return fmt.Sprintf("%s (built: %s, commit: %s, go: %s, os: %s/%s)",
		GetVersionString(), BuildTime, GitCommit,
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
