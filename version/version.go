// Package version reports the version of the running binary.
package version

import "runtime/debug"

// Version is empty unless set at link time, e.g.
//
//	go build -ldflags "-X github.com/trombonestudio/automation/version.Version=$(git describe --dirty)"
var Version string

// String returns Version if it was set. Otherwise it is built from the
// embedded build info: the main module version followed by the short vcs
// revision, marked -dirty for builds from a modified tree.
func String() string {
	if Version != "" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(unknown)"
	}
	ret := info.Main.Version
	rev, dirty := "", ""
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if len(setting.Value) >= 7 {
				rev = setting.Value[:7]
			}
		case "vcs.modified":
			if setting.Value == "true" {
				dirty = "-dirty"
			}
		}
	}
	if rev != "" {
		ret += " " + rev + dirty
	}
	return ret
}
