package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeImageID(t *testing.T) {
	assert.Equal(t, "abcd1234", SanitizeImageID("sha256:abcd1234"))
	assert.Equal(t, "abcd1234", SanitizeImageID("abcd1234"))
}

func TestSBOMKey(t *testing.T) {
	key := SBOMKey("podman", "default", "sha256:abcd1234")
	assert.Equal(t, "podman/default/abcd1234.json", key)
}

func TestVulnPath(t *testing.T) {
	assert.Equal(t, "/s/podman/default/abcd.vuln.json", VulnPath("/s/podman/default/abcd.json"))
}

func TestPutWritesAtomically(t *testing.T) {
	s := New(t.TempDir())
	key := "podman/default/abcd.json"

	dest, err := s.Put(key, func(tmp string) error {
		// destination must not exist while the writer runs
		assert.False(t, s.Has(key))
		return os.WriteFile(tmp, []byte(`{"artifacts":[]}`), 0644)
	})
	require.NoError(t, err)
	assert.Equal(t, s.Abs(key), dest)
	assert.True(t, s.Has(key))

	// no .tmp file left behind on success
	_, statErr := os.Stat(dest + ".tmp")
	assert.True(t, os.IsNotExist(statErr))

	data, err := s.Get(key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"artifacts":[]}`, string(data))
}

func TestPutFailureLeavesNoArtifact(t *testing.T) {
	s := New(t.TempDir())
	key := "podman/default/broken.json"

	_, err := s.Put(key, func(tmp string) error {
		_ = os.WriteFile(tmp, []byte("partial"), 0644)
		return fmt.Errorf("tool exited with code 1")
	})
	assert.Error(t, err)
	assert.False(t, s.Has(key))

	_, statErr := os.Stat(s.Abs(key) + ".tmp")
	assert.True(t, os.IsNotExist(statErr))
}

func TestRel(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	rel, err := s.Rel(filepath.Join(root, "podman", "default", "abcd.json"))
	require.NoError(t, err)
	assert.Equal(t, "podman/default/abcd.json", rel)

	_, err = s.Rel(filepath.Join(os.TempDir(), "outside.json"))
	assert.Error(t, err)
}
