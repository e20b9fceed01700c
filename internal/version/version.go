// Package version provides version information.
package version

import "runtime/debug"

// Version is set at build time via -ldflags "-X github.com/VoxDroid/devflow/internal/version.Version=<value>"
// The default is a development placeholder.
var Version = "v0.1.0-dev"

// String returns Version, annotated with the VCS revision when the binary
// carries build info.
func String() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return Version + " (" + s.Value[:7] + ")"
		}
	}
	return Version
}
