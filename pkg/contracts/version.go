// Package contracts holds build metadata and the types shared between the
// HTTP API and its clients.
package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the application
	Version = "0.3.0"

	// APIVersion prefixes every analytics route
	APIVersion = "v1"
)

var (
	// BuildTime is set during build using ldflags
	BuildTime = "unknown"

	// GitCommit is set during build using ldflags
	GitCommit = "unknown"
)

// VersionString returns "SalesPulse vX.Y.Z"
func VersionString() string {
	return fmt.Sprintf("SalesPulse v%s", Version)
}

// FullVersionString adds build and platform details to VersionString
func FullVersionString() string {
	return fmt.Sprintf("%s (built: %s, commit: %s, go: %s, %s/%s)",
		VersionString(), BuildTime, GitCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
