// Package genkit exposes build and version information.
package genkit

import (
	"fmt"
	"runtime"
	"strings"
)

// Version information
const (
	Version       = "0.4.0"
	SchemaVersion = "1"
)

// BuildInfo contains build information
var BuildInfo = struct {
	Version       string
	SchemaVersion string
	GitCommit     string
	BuildDate     string
	GoVersion     string
}{
	Version:       Version,
	SchemaVersion: SchemaVersion,
	GoVersion:     runtime.Version(),
}

// SetBuildInfo is called by the build process
func SetBuildInfo(commit, date, goVersion string) {
	BuildInfo.GitCommit = commit
	BuildInfo.BuildDate = date
	if goVersion != "" {
		BuildInfo.GoVersion = goVersion
	}
}

// VersionInfo returns formatted version information
func VersionInfo() string {
	return fmt.Sprintf("genkit %s (store schema %s)", BuildInfo.Version, BuildInfo.SchemaVersion)
}

// FullVersionInfo returns detailed version information
func FullVersionInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "genkit %s\n", BuildInfo.Version)
	fmt.Fprintf(&b, "Store Schema: %s\n", BuildInfo.SchemaVersion)
	fmt.Fprintf(&b, "Go Version: %s\n", BuildInfo.GoVersion)

	if BuildInfo.GitCommit != "" {
		fmt.Fprintf(&b, "Git Commit: %s\n", BuildInfo.GitCommit)
	}
	if BuildInfo.BuildDate != "" {
		fmt.Fprintf(&b, "Build Date: %s\n", BuildInfo.BuildDate)
	}

	return b.String()
}
