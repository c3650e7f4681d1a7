package fileutil

import (
	"os"

	"github.com/container-tools/podscan/util/common/errors"
)

// ReadFile reads the entire file and returns its contents.
// It checks that the path exists and is a regular file first.
func ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewFileError(path, "stat", err)
	}
	if info.IsDir() {
		return nil, errors.NewFileError(path, "read", errors.ErrInvalidOperation)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewFileError(path, "read", err)
	}
	return data, nil
}

// Exists checks if a file or directory exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsFile checks if the path is a regular file
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
