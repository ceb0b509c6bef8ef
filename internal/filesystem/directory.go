package filesystem

import (
	"fmt"
	"os"
	"sort"
)

// directoryPermissions is the mode used when creating directories that
// correspond to manifest directory entries.
const directoryPermissions = 0755

// MkdirAll recursively creates the directory at path, along with any
// necessary parents, tolerating an already-existing directory.
func MkdirAll(path string) error {
	if err := os.MkdirAll(path, directoryPermissions); err != nil {
		return fmt.Errorf("unable to create directory %q: %w", path, err)
	}
	return nil
}

// RemoveAll recursively removes the file or directory at path.
func RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("unable to remove %q: %w", path, err)
	}
	return nil
}

// CollapseDescendants takes a sorted list of manifest-relative paths
// (spec §4.8 "remove_files walks remove_set in sorted order ... when a
// directory is deleted, its descendants are skipped in one pass using a
// path + '/' prefix test") and returns the subset that are not descendants
// of an earlier entry in the list, preserving order. paths must already be
// sorted lexicographically.
func CollapseDescendants(paths []string) []string {
	if !sort.StringsAreSorted(paths) {
		sort.Strings(paths)
	}
	// Lexicographic order does not keep a directory's descendants adjacent
	// to it ("a", "a-b", "a/c"), so each path is tested against every kept
	// ancestor rather than only the last kept entry.
	var result []string
	kept := make(map[string]bool)
	for _, path := range paths {
		descendant := false
		for i := 0; i < len(path) && !descendant; i++ {
			if path[i] == '/' {
				descendant = kept[path[:i]]
			}
		}
		if descendant {
			continue
		}
		result = append(result, path)
		kept[path] = true
	}
	return result
}

// DirectoryContentsByPath returns the names of entries directly inside the
// directory at path (non-recursive), used by scan_tree.
func DirectoryContentsByPath(path string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory %q: %w", path, err)
	}
	return entries, nil
}
