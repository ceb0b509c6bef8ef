package patch

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/icepatch2/client/internal/filesystem"
	"github.com/icepatch2/client/internal/logging"
)

// manifestFileName is the well-known sidecar file name for the local
// manifest, analogous to IcePatch2.sum (spec §6 "Filesystem layout").
const manifestFileName = "IcePatch2.sum"

// manifestEntry is the on-disk representation of a FileInfo. Checksums are
// hex-encoded rather than relying on YAML's implicit []byte-to-base64
// handling (which only applies to slices, not the fixed-size Digest array),
// keeping the sidecar file human-inspectable.
type manifestEntry struct {
	Path       string `yaml:"path"`
	Checksum   string `yaml:"checksum"`
	Size       int64  `yaml:"size"`
	Executable bool   `yaml:"executable,omitempty"`
}

// manifestDocument is the root object persisted to the manifest sidecar.
type manifestDocument struct {
	Entries []manifestEntry `yaml:"entries"`
}

func toManifestEntry(info FileInfo) manifestEntry {
	return manifestEntry{
		Path:       info.Path,
		Checksum:   hex.EncodeToString(info.Checksum[:]),
		Size:       info.Size,
		Executable: info.Executable,
	}
}

func fromManifestEntry(entry manifestEntry) (FileInfo, error) {
	raw, err := hex.DecodeString(entry.Checksum)
	if err != nil || len(raw) != DigestSize {
		return FileInfo{}, &ManifestUnavailableError{
			Reason: fmt.Sprintf("invalid checksum for %q", entry.Path),
		}
	}
	var digest Digest
	copy(digest[:], raw)
	return FileInfo{
		Path:       entry.Path,
		Checksum:   digest,
		Size:       entry.Size,
		Executable: entry.Executable,
	}, nil
}

// manifestPath returns the path to the manifest sidecar inside dataDir.
func manifestPath(dataDir string) string {
	return filesystem.Join(dataDir, manifestFileName)
}

// LoadManifest reads the sidecar manifest file from dataDir (spec §4.2
// load_manifest). A missing, corrupt, or non-sorted/duplicated file fails
// with ManifestUnavailableError, which the orchestrator treats as
// recoverable via feedback escalation to a thorough scan.
func LoadManifest(dataDir string) (FileInfoSeq, error) {
	data, err := os.ReadFile(manifestPath(dataDir))
	if err != nil {
		return nil, &ManifestUnavailableError{Reason: err.Error()}
	}

	var document manifestDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, &ManifestUnavailableError{Reason: fmt.Sprintf("corrupt manifest: %v", err)}
	}

	seq := make(FileInfoSeq, len(document.Entries))
	for i, entry := range document.Entries {
		info, err := fromManifestEntry(entry)
		if err != nil {
			return nil, err
		}
		seq[i] = info
	}

	if !sort.IsSorted(seq) {
		return nil, &ManifestUnavailableError{Reason: "manifest entries are not sorted"}
	}
	for i := 1; i < len(seq); i++ {
		if seq[i].Path == seq[i-1].Path {
			return nil, &ManifestUnavailableError{Reason: fmt.Sprintf("duplicate path %q", seq[i].Path)}
		}
	}

	return seq, nil
}

// SaveManifest writes seq to the sidecar manifest file inside dataDir,
// atomically (spec §4.2 save_manifest). seq must already be sorted and
// duplicate-free; callers normalize before saving.
func SaveManifest(dataDir string, seq FileInfoSeq, logger *logging.Logger) error {
	document := manifestDocument{Entries: make([]manifestEntry, len(seq))}
	for i, info := range seq {
		document.Entries[i] = toManifestEntry(info)
	}

	data, err := yaml.Marshal(document)
	if err != nil {
		return fmt.Errorf("unable to marshal manifest: %w", err)
	}

	if err := filesystem.WriteFileAtomic(manifestPath(dataDir), data, 0600, logger); err != nil {
		return &IOFailureError{Path: manifestPath(dataDir), Reason: err}
	}
	return nil
}

// ScanTreeOptions configures ScanTree's traversal.
type ScanTreeOptions struct {
	// IgnorePatterns is a list of doublestar glob patterns (spec
	// SPEC_FULL.md §4.X); matching paths are excluded from the resulting
	// manifest.
	IgnorePatterns []string
	// Warn receives a human-readable warning for each skipped entry
	// (symlinks, device files) rather than failing the scan (spec §4.2).
	Warn func(format string, args ...interface{})
}

// ScanTree walks dataDir, hashes each regular file, and produces a sorted,
// unique manifest (spec §4.2 scan_tree). Symlinks and device files are
// skipped with a warning. Directories contribute DirectorySize entries with
// the all-zero digest so that empty subtrees remain stable under hashing
// (spec §4.1).
func ScanTree(dataDir string, options ScanTreeOptions) (FileInfoSeq, error) {
	var seq FileInfoSeq

	warn := options.Warn
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}

	ignored := func(relative string) bool {
		for _, pattern := range options.IgnorePatterns {
			if ok, _ := doublestar.Match(pattern, relative); ok {
				return true
			}
		}
		return false
	}

	var walk func(absolute, relative string) error
	walk = func(absolute, relative string) error {
		entries, err := filesystem.DirectoryContentsByPath(absolute)
		if err != nil {
			return &IOFailureError{Path: relative, Reason: err}
		}

		names := make([]string, len(entries))
		byName := make(map[string]fs.DirEntry, len(entries))
		for i, entry := range entries {
			names[i] = entry.Name()
			byName[entry.Name()] = entry
		}
		sort.Strings(names)

		for _, name := range names {
			if name == manifestFileName {
				continue
			}
			entry := byName[name]
			childRelative := filesystem.Normalize(path.Join(relative, name))
			childAbsolute := filesystem.Join(absolute, name)

			if ignored(childRelative) {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				return &IOFailureError{Path: childRelative, Reason: err}
			}

			switch {
			case info.Mode()&os.ModeSymlink != 0:
				warn("skipping symbolic link %q", childRelative)
				continue
			case info.Mode()&(os.ModeDevice|os.ModeNamedPipe|os.ModeSocket) != 0:
				warn("skipping device or special file %q", childRelative)
				continue
			case info.IsDir():
				seq = append(seq, FileInfo{
					Path: childRelative,
					Size: DirectorySize,
				})
				if err := walk(childAbsolute, childRelative); err != nil {
					return err
				}
			case info.Mode().IsRegular():
				digest, err := HashFile(childAbsolute)
				if err != nil {
					return &IOFailureError{Path: childRelative, Reason: err}
				}
				seq = append(seq, FileInfo{
					Path:       childRelative,
					Checksum:   digest,
					Size:       info.Size(),
					Executable: info.Mode()&0100 != 0,
				})
			default:
				warn("skipping unsupported file type %q", childRelative)
			}
		}
		return nil
	}

	if err := walk(dataDir, ""); err != nil {
		return nil, err
	}

	return seq.Normalize(), nil
}
