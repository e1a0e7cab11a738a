package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at release build time.
var (
	// Version is the semantic version (e.g. v0.3.1)
	Version = "dev"

	// Commit is the short git commit hash
	Commit = "unknown"

	// Date is the build timestamp
	Date = "unknown"
)

// Info returns the full multi-line version report.
func Info() string {
	return fmt.Sprintf(
		"pydup %s\nCommit: %s\nBuilt: %s\nGo: %s\nOS/Arch: %s/%s",
		Version,
		Commit,
		Date,
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// Short returns just the version string.
func Short() string {
	return Version
}
