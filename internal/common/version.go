package common

import (
	"runtime"
	"runtime/debug"
)

// Build identity, injected with -ldflags "-X".
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is the build identity reported by the version endpoint and banner.
type VersionInfo struct {
	Version   string `json:"version"`
	Build     string `json:"build"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
}

// GetVersionInfo returns the ldflags values, filling commit and build time from
// the embedded VCS stamp when they were not injected.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{Version: Version, Build: Build, GitCommit: GitCommit, GoVersion: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" && s.Value != "" {
				info.GitCommit = shortCommit(s.Value)
			}
		case "vcs.time":
			if info.Build == "unknown" && s.Value != "" {
				info.Build = s.Value
			}
		}
	}
	return info
}

func shortCommit(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
