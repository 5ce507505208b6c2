// Package version carries the build identity stamped in at link time.
package version

import "strings"

// Set with -ldflags "-X github.com/orris-inc/tracksync/internal/shared/version.Current=v1.2.3".
var (
	Current = "dev"
	Commit  = ""
)

// Normalize ensures version string has "v" prefix.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" || version == "dev" {
		return version
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// String is the normalized version with the short commit appended when known.
func String() string {
	v := Normalize(Current)
	if Commit == "" {
		return v
	}
	short := Commit
	if len(short) > 7 {
		short = short[:7]
	}
	return v + "+" + short
}
