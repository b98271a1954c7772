package cbor

import "github.com/blang/semver"

// versionString is the raw semver string for this module.
const versionString = "1.0.0"

// Version is the parsed semantic version of this module.
var Version = semver.MustParse(versionString)

// VersionInfo returns the full version string.
func VersionInfo() string {
	return "cbor v" + Version.String()
}
