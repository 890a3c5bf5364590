// Package version reports the build identity of the riskledger binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// These variables are set at build time via ldflags
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// String returns the version string (commit-hash based, no semver).
// Without ldflags the VCS stamp embedded by `go build` is used.
func String() string {
	commit, built := resolve()
	return fmt.Sprintf("riskledger dev (commit: %s, built: %s)", commit, built)
}

func resolve() (commit, built string) {
	commit, built = Commit, BuildTime
	if commit != "unknown" {
		return short(commit), built
	}

	info, ok := readBuildInfo()
	if !ok {
		return commit, built
	}
	modified := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.time":
			if built == "unknown" {
				built = s.Value
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	commit = short(commit)
	if modified && commit != "unknown" {
		commit += "-dirty"
	}
	return commit, built
}

func short(commit string) string {
	if len(commit) > 7 && commit != "unknown" {
		return commit[:7]
	}
	return commit
}
