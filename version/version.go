// Package version provides utilities for extracting build information
package version

import "runtime/debug"

// Version is the service version, overridable at build time via
// -ldflags "-X authbench.evalgo.org/version.Version=...".
var Version = "v0.1.0"

// BuildInfo contains build-time information
type BuildInfo struct {
	GoVersion   string `json:"goVersion"`
	MainModule  string `json:"mainModule"`
	MainVersion string `json:"mainVersion"`
}

// GetBuildInfo extracts build information embedded in the current binary.
func GetBuildInfo() *BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return &BuildInfo{
			GoVersion:   "unknown",
			MainModule:  "unknown",
			MainVersion: Version,
		}
	}

	mainVersion := info.Main.Version
	if mainVersion == "" || mainVersion == "(devel)" {
		mainVersion = Version
	}

	return &BuildInfo{
		GoVersion:   info.GoVersion,
		MainModule:  info.Path,
		MainVersion: mainVersion,
	}
}
