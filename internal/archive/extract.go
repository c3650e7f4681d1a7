// Package archive extracts downloaded release archives and locates the
// tool binary inside them.
package archive

import (
	"archive/tar"
	goerrors "errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/zhyee/zipstream"

	"github.com/container-tools/podscan/util/common/errors"
	"github.com/container-tools/podscan/util/common/fileutil"
)

// Extract unpacks archivePath into destDir and returns the path of the
// tool binary. Dispatch is by file extension: .zip and .tar.gz are
// supported, anything else fails with an UnsupportedFormatError.
//
// The binary is expected at destDir/{toolID} (plus .exe on Windows) —
// the release layout convention is load-bearing, no search is performed.
// On POSIX targets the executable bit is set on the result.
func Extract(archivePath, destDir, toolID string) (string, error) {
	// The destination directory is created up front; a failed extraction
	// still leaves it behind.
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", errors.NewFileError(destDir, "create_dir", err)
	}

	var err error
	switch {
	case strings.HasSuffix(archivePath, ".zip"):
		err = extractZip(archivePath, destDir)
	case strings.HasSuffix(archivePath, ".tar.gz"):
		err = extractTarGz(archivePath, destDir)
	default:
		return "", errors.NewUnsupportedFormatError(archivePath)
	}
	if err != nil {
		return "", err
	}

	binaryName := toolID
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}
	binaryPath := filepath.Join(destDir, binaryName)
	if !fileutil.IsFile(binaryPath) {
		return "", errors.NewNotFoundError("tool binary", binaryPath)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(binaryPath, 0755); err != nil {
			return "", errors.NewFileError(binaryPath, "chmod", err)
		}
	}

	return binaryPath, nil
}

// safeTarget resolves an entry name under destDir. Entry names come
// from the archive and are untrusted: anything whose cleaned path would
// land outside destDir is rejected.
func safeTarget(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if target != filepath.Clean(destDir) &&
		!strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", errors.NewStateError("extract", "archive entry escapes the destination: "+name, errors.ErrInvalidOperation)
	}
	return target, nil
}

func extractZip(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.NewFileError(archivePath, "open", err)
	}
	defer f.Close()

	// Stream entries rather than loading the whole archive.
	zr := zipstream.NewReader(f)
	for {
		entry, err := zr.GetNextEntry()
		if goerrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errors.Wrap(err, "read zip entry")
		}

		target, err := safeTarget(destDir, entry.Name)
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.NewFileError(target, "create_dir", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.NewFileError(target, "create_dir", err)
		}
		rc, err := entry.Open()
		if err != nil {
			return errors.Wrap(err, "open zip entry")
		}
		if err := writeEntry(target, rc); err != nil {
			rc.Close()
			return err
		}
		rc.Close()
	}
	return nil
}

func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.NewFileError(archivePath, "open", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "gzip reader")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if goerrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errors.Wrap(err, "read tar header")
		}

		target, err := safeTarget(destDir, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.NewFileError(target, "create_dir", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return errors.NewFileError(target, "create_dir", err)
			}
			if err := writeEntry(target, tr); err != nil {
				return err
			}
		default:
			// Symlinks and other entry types are ignored.
		}
	}
	return nil
}

func writeEntry(target string, r io.Reader) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.NewFileError(target, "create", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errors.NewFileError(target, "write", err)
	}
	return out.Close()
}
