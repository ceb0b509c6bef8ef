// Package filesystem provides the path and I/O utilities needed by the
// patch client: path normalization, recursive directory creation and
// removal, working-directory resolution, and atomic file writes. It mirrors
// the corresponding concerns in the teacher's pkg/filesystem package.
package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Normalize converts an OS path into the forward-slash, NFC-normalized form
// used on the wire and in the manifest (spec §3, §9 "Platform path
// handling"). It never returns a path starting with "/": leading separators
// are stripped so the result is always relative.
func Normalize(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimLeft(path, "/")
	return norm.NFC.String(path)
}

// ToNative converts a manifest-style forward-slash path into the
// platform-native separator form used for actual OS calls.
func ToNative(path string) string {
	return filepath.FromSlash(path)
}

// Join joins a data directory with a manifest-relative path, producing a
// native-separator absolute or relative path suitable for OS calls.
func Join(dataDir, relative string) string {
	return filepath.Join(dataDir, ToNative(relative))
}

// ResolveDataDirectory resolves dataDir against the current working
// directory (read once, per spec §9 "Globals") and returns the normalized
// absolute path.
func ResolveDataDirectory(dataDir string) (string, error) {
	if dataDir == "" {
		return "", errors.New("no data directory specified")
	}
	if filepath.IsAbs(dataDir) {
		return filepath.Clean(dataDir), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "unable to determine current working directory")
	}
	return filepath.Clean(filepath.Join(cwd, dataDir)), nil
}
