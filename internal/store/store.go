// Package store is the content-addressed artifact store backing scan
// result caching. Keys are deterministic storage-relative paths; the
// presence of a file at a key is the cache: artifacts are immutable once
// written and never invalidated.
package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/container-tools/podscan/util/common/errors"
	"github.com/container-tools/podscan/util/common/fileutil"
)

// Store roots artifact keys under a single storage directory.
type Store struct {
	root string
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// Abs resolves a key to its absolute filesystem path.
func (s *Store) Abs(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Rel converts an absolute path under the store root back into a key.
func (s *Store) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.NewStateError("store", "path is outside the storage root", errors.ErrInvalidOperation)
	}
	return filepath.ToSlash(rel), nil
}

// Has reports whether an artifact exists at key.
func (s *Store) Has(key string) bool {
	return fileutil.IsFile(s.Abs(key))
}

// Get returns the artifact content at key.
func (s *Store) Get(key string) ([]byte, error) {
	return fileutil.ReadFile(s.Abs(key))
}

// Put materialises an artifact at key by handing the writer a temporary
// path next to the destination and renaming it into place on success.
// The destination is never written directly, so a reader can never
// observe a partially written artifact. On failure the temp file is
// removed best-effort and the destination is left untouched.
func (s *Store) Put(key string, write func(tmp string) error) (string, error) {
	dest := s.Abs(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", errors.NewFileError(dest, "create_dir", err)
	}

	tmp := dest + ".tmp"
	if err := write(tmp); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", errors.NewFileError(dest, "rename", err)
	}
	return dest, nil
}

// SanitizeImageID strips a leading digest-scheme prefix from an image
// id. Ids without the prefix pass through unchanged.
func SanitizeImageID(id string) string {
	return strings.TrimPrefix(id, "sha256:")
}

// SBOMKey returns the artifact key for an image's SBOM document,
// scoped by provider and connection name.
func SBOMKey(providerID, connectionName, imageID string) string {
	return providerID + "/" + connectionName + "/" + SanitizeImageID(imageID) + ".json"
}

// VulnPath derives the vulnerability-result path from an SBOM path by
// replacing its extension with the fixed result suffix, in the same
// directory.
func VulnPath(sbomPath string) string {
	ext := filepath.Ext(sbomPath)
	return strings.TrimSuffix(sbomPath, ext) + ".vuln.json"
}
