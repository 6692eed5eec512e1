package utils

import "runtime/debug"

const unknownVersion = "unknown"

// GetApplicationVersion reports the module version recorded in the Go build
// information, falling back to "unknown" for development builds.
func GetApplicationVersion() string {
	buildInformation, buildInformationAvailable := debug.ReadBuildInfo()
	if buildInformationAvailable && buildInformation.Main.Version != "" && buildInformation.Main.Version != "(devel)" {
		return buildInformation.Main.Version
	}
	return unknownVersion
}
