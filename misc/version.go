// Package misc keeps program identity in one place.
package misc

import (
	"runtime/debug"
	"sync"
)

const appName = "bookr"

var (
	// set with -ldflags "-X bookr/misc.version=... -X bookr/misc.gitHash=..."
	version = ""
	gitHash = ""

	buildOnce sync.Once
)

func GetAppName() string {
	return appName
}

// GetVersion returns program version, falling back to module build info when
// the binary was built without linker flags.
func GetVersion() string {
	fillFromBuildInfo()
	if version == "" {
		return "dev"
	}
	return version
}

// GetGitHash returns VCS revision the binary was built from if known.
func GetGitHash() string {
	fillFromBuildInfo()
	if gitHash == "" {
		return "unknown"
	}
	return gitHash
}

func fillFromBuildInfo() {
	buildOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		if gitHash != "" {
			return
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				gitHash = s.Value
				if len(gitHash) > 12 {
					gitHash = gitHash[:12]
				}
				return
			}
		}
	})
}
