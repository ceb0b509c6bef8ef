package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSaveAndLoadManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	seq := FileInfoSeq{
		{Path: "a.txt", Size: 1, Checksum: Digest{1}},
		{Path: "dir", Size: DirectorySize},
		{Path: "dir/b.txt", Size: 2, Checksum: Digest{2}, Executable: true},
		{Path: "empty.txt", Size: 0, Checksum: HashBytes(nil)},
	}.Normalize()

	require.NoError(t, SaveManifest(dir, seq, nil))

	loaded, err := LoadManifest(dir)
	require.NoError(t, err)
	require.Equal(t, seq, loaded)
}

func TestLoadManifestMissingIsUnavailable(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadManifest(dir)
	require.Error(t, err)
	require.IsType(t, &ManifestUnavailableError{}, err)
}

func TestLoadManifestCorruptIsUnavailable(t *testing.T) {
	// Spec §8 scenario 6: a corrupt local manifest must be reported as
	// unavailable so the caller can escalate to a thorough rescan.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFileName), []byte("not: [valid yaml"), 0644))

	_, err := LoadManifest(dir)
	require.Error(t, err)
	require.IsType(t, &ManifestUnavailableError{}, err)
}

func TestLoadManifestUnsortedIsUnavailable(t *testing.T) {
	dir := t.TempDir()
	document := manifestDocument{Entries: []manifestEntry{
		toManifestEntry(FileInfo{Path: "b.txt", Size: 1}),
		toManifestEntry(FileInfo{Path: "a.txt", Size: 1}),
	}}
	data, err := yaml.Marshal(document)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFileName), data, 0644))

	_, err = LoadManifest(dir)
	require.Error(t, err)
	require.IsType(t, &ManifestUnavailableError{}, err)
}

func TestLoadManifestDuplicatePathIsUnavailable(t *testing.T) {
	dir := t.TempDir()
	document := manifestDocument{Entries: []manifestEntry{
		toManifestEntry(FileInfo{Path: "a.txt", Size: 1}),
		toManifestEntry(FileInfo{Path: "a.txt", Size: 2}),
	}}
	data, err := yaml.Marshal(document)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFileName), data, 0644))

	_, err = LoadManifest(dir)
	require.Error(t, err)
	require.IsType(t, &ManifestUnavailableError{}, err)
}

func TestScanTreeHashesFilesAndSkipsManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "root.txt"), []byte("hello world"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "nested.txt"), []byte("nested"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFileName), []byte("entries: []"), 0644))

	seq, err := ScanTree(dir, ScanTreeOptions{})
	require.NoError(t, err)

	require.Equal(t, []string{"root.txt", "sub", "sub/nested.txt"}, pathsOf(seq))
	require.False(t, seq.Contains(manifestFileName))

	for _, info := range seq {
		if info.Path == "root.txt" {
			require.Equal(t, HashBytes([]byte("hello world")), info.Checksum)
		}
	}
}

func TestScanTreeAppliesIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "build"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("k"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build", "output.bin"), []byte("o"), 0644))

	seq, err := ScanTree(dir, ScanTreeOptions{IgnorePatterns: []string{"build", "build/**"}})
	require.NoError(t, err)

	require.Equal(t, []string{"keep.txt"}, pathsOf(seq))
}
