// Package misc has build time information about the program.
package misc

import (
	"runtime/debug"
)

const appName = "pscss"

// set by linker: -X pscss/misc.version=... -X pscss/misc.githash=...
var (
	version = "dev"
	githash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns commit hash set at link time or the one recorded by go
// build in module information.
func GetGitHash() string {
	if githash != "" {
		return githash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
