package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssetName(t *testing.T) {
	cases := []struct {
		name    string
		os      string
		arch    string
		want    string
	}{
		{"windows zip", "win32", "x64", "syft_1.0.0_windows_amd64.zip"},
		{"windows go name", "windows", "amd64", "syft_1.0.0_windows_amd64.zip"},
		{"darwin tarball", "darwin", "arm64", "syft_1.0.0_darwin_arm64.tar.gz"},
		{"linux tarball", "linux", "x64", "syft_1.0.0_linux_amd64.tar.gz"},
		{"ppc64 maps to ppc64le", "linux", "ppc64", "syft_1.0.0_linux_ppc64le.tar.gz"},
		{"s390x unchanged", "linux", "s390x", "syft_1.0.0_linux_s390x.tar.gz"},
		{"unknown os falls back to linux", "plan9", "amd64", "syft_1.0.0_linux_amd64.tar.gz"},
		{"unknown arch passes through", "linux", "riscv64", "syft_1.0.0_linux_riscv64.tar.gz"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AssetName("syft", "1.0.0", tc.os, tc.arch)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAssetNameDeterministic(t *testing.T) {
	first := AssetName("grype", "0.74.1", "darwin", "arm64")
	second := AssetName("grype", "0.74.1", "darwin", "arm64")
	assert.Equal(t, first, second)
}

func TestExeName(t *testing.T) {
	assert.Equal(t, "syft.exe", ExeName("syft", "windows"))
	assert.Equal(t, "syft.exe", ExeName("syft", "win32"))
	assert.Equal(t, "syft", ExeName("syft", "linux"))
	assert.Equal(t, "grype", ExeName("grype", "darwin"))
}
