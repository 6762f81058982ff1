// Package version reports build information for sigil-connect binaries.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set at build time with -ldflags "-X".
//
//nolint:gochecknoglobals // Populated by the linker
var (
	version = ""
	commit  = ""
	date    = ""
)

// Info describes a build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the running binary's build info. Linker values win; VCS
// stamps embedded by the go tool fill any gaps.
func Get() Info {
	info := Info{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = shortCommit(s.Value)
				}
			case "vcs.time":
				if info.Date == "" {
					info.Date = s.Value
				}
			}
		}
	}
	return info
}

// String formats the info as "v1.2.3 (commit: abc1234, built: 2024-01-15)".
func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)",
		orDefault(i.Version, "dev"), orDefault(i.Commit, "unknown"), orDefault(i.Date, "unknown"))
}

// IsDev reports whether the build is not a tagged release.
func (i Info) IsDev() bool {
	v := strings.TrimPrefix(i.Version, "v")
	return v == "" || v == "dev" || isCommitHash(v)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func shortCommit(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}

// isCommitHash reports whether s looks like a git commit hash: 7 to 40 hex
// characters with at least one letter, optionally suffixed with -dirty.
func isCommitHash(s string) bool {
	s = strings.TrimSuffix(s, "-dirty")
	if len(s) < 7 || len(s) > 40 {
		return false
	}

	hasLetter := false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F'):
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter
}
