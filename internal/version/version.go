// Package version reports the gfc release identifier embedded by the Go toolchain.
package version

import (
	"runtime/debug"
	"strings"
)

const (
	unknownVersionFallbackConstant = "unknown"
	buildInfoDevelVersionValue     = "(devel)"
)

// BuildInfoProvider exposes runtime build metadata.
type BuildInfoProvider interface {
	Read() (*debug.BuildInfo, bool)
}

// RuntimeBuildInfoProvider reads the build information of the running binary.
type RuntimeBuildInfoProvider struct{}

// Read delegates to debug.ReadBuildInfo.
func (RuntimeBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}

// Detect returns the main module version, or "unknown" for development builds.
func Detect(provider BuildInfoProvider) string {
	if provider == nil {
		return unknownVersionFallbackConstant
	}

	buildInfo, available := provider.Read()
	if !available || buildInfo == nil {
		return unknownVersionFallbackConstant
	}

	trimmedVersion := strings.TrimSpace(buildInfo.Main.Version)
	if len(trimmedVersion) == 0 || strings.EqualFold(trimmedVersion, buildInfoDevelVersionValue) {
		return unknownVersionFallbackConstant
	}

	return trimmedVersion
}
