// Package platform maps host platform identifiers to the release-asset
// naming convention used by the anchore tool projects.
package platform

import (
	"fmt"
	"runtime"
)

// AssetName returns the release-artifact filename for a tool version on
// the given platform, following the {tool}_{version}_{os}_{arch}.{ext}
// convention. Unmapped OS values fall back to linux, unmapped
// architectures pass through unchanged. The function is pure and never
// fails.
func AssetName(tool, version, os, arch string) string {
	osName := "linux"
	ext := "tar.gz"

	switch os {
	case "win32", "windows":
		osName = "windows"
		ext = "zip"
	case "darwin":
		osName = "darwin"
	}

	switch arch {
	case "x64":
		arch = "amd64"
	case "ppc64":
		arch = "ppc64le"
	}

	return fmt.Sprintf("%s_%s_%s_%s.%s", tool, version, osName, arch, ext)
}

// HostAssetName returns the asset filename for the running platform.
func HostAssetName(tool, version string) string {
	return AssetName(tool, version, runtime.GOOS, runtime.GOARCH)
}

// ExeName appends the Windows executable suffix when targeting windows.
func ExeName(tool, os string) string {
	if os == "windows" || os == "win32" {
		return tool + ".exe"
	}
	return tool
}

// HostExeName returns the executable name for the running platform.
func HostExeName(tool string) string {
	return ExeName(tool, runtime.GOOS)
}
