// Package cli provides the depwalk CLI application framework.
package cli

import "fmt"

// Version, Commit, Date, and BuiltBy are set from main via -ldflags
// before SetupVersion is called.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
	BuiltBy = "unknown"
)

// GetVersion returns the semantic version string.
func GetVersion() string {
	return Version
}

// GetFullVersion returns detailed version information including commit,
// build date, and who built the binary.
func GetFullVersion() string {
	return fmt.Sprintf("depwalk version %s (commit: %s, built: %s, by: %s)", Version, Commit, Date, BuiltBy)
}
