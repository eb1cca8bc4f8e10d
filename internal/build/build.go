// Package build reports the version kiln was built as.
package build

import (
	"runtime/debug"
)

// Version and Commit are set by linker flags:
//
//	-ldflags "-X go.trai.ch/kiln/internal/build.Version=v1.2.0 -X go.trai.ch/kiln/internal/build.Commit=$(git rev-parse HEAD)"
var (
	Version = ""
	Commit  = ""
)

const shortCommit = 7

// Info returns the version string printed by kiln version. Linker flags take
// precedence over the module version and VCS revision recorded by the Go
// toolchain; a plain checkout reports "dev".
func Info() string {
	return describe(Version, Commit, readBuildInfo())
}

func readBuildInfo() *debug.BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return info
}

func describe(version, commit string, info *debug.BuildInfo) string {
	if info != nil {
		if version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		if commit == "" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					commit = s.Value
				}
			}
		}
	}

	if version == "" {
		version = "dev"
	}
	if commit == "" {
		return version
	}
	if len(commit) > shortCommit {
		commit = commit[:shortCommit]
	}
	return version + " (" + commit + ")"
}
