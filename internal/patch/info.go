// Package patch implements the file-tree patching client: the local
// manifest store, the two-level tree hashing and diffing algorithm, the
// reconciliation protocol with the remote file server, the streaming
// download and decompression pipeline, and the orchestrator that ties them
// together (spec §1–§9).
package patch

import (
	"bytes"
	"sort"
)

// DirectorySize is the sentinel FileInfo.Size value denoting a directory
// entry (spec §3).
const DirectorySize = -1

// DigestSize is the fixed width, in bytes, of a content digest (spec §4.1).
const DigestSize = 20

// Digest is a fixed-width content checksum. The zero value is the
// canonical all-zero digest used for directory entries (spec §3).
type Digest [DigestSize]byte

// IsZero reports whether d is the canonical all-zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// FileInfo is a manifest record for a single filesystem entry (spec §3).
type FileInfo struct {
	// Path is the entry's path relative to the data directory, forward-slash
	// separated, and never starting with "/".
	Path string
	// Checksum is the entry's content digest, or the all-zero digest for
	// directories.
	Checksum Digest
	// Size is the entry's byte length, DirectorySize (-1) for a directory,
	// 0 for an empty regular file, and >0 for a non-empty regular file.
	Size int64
	// Executable indicates whether the entry's execute bit should be set on
	// extraction. Platforms without the concept ignore it.
	Executable bool
}

// IsDirectory reports whether info represents a directory entry.
func (info FileInfo) IsDirectory() bool {
	return info.Size == DirectorySize
}

// Less implements the total ordering on FileInfo: lexicographic by Path.
// It corresponds to the C++ original's FileInfoLess.
func (info FileInfo) Less(other FileInfo) bool {
	return info.Path < other.Path
}

// Equal reports whether info and other are equal in every field. It
// corresponds to the C++ original's FileInfoEqual.
func (info FileInfo) Equal(other FileInfo) bool {
	return info.Path == other.Path &&
		info.Checksum == other.Checksum &&
		info.Size == other.Size &&
		info.Executable == other.Executable
}

// serialize produces the byte encoding of info used as input to the
// bucket-level content hash (spec §4.1): path || size (big-endian 8 bytes)
// || checksum.
func (info FileInfo) serialize() []byte {
	buffer := make([]byte, 0, len(info.Path)+8+DigestSize)
	buffer = append(buffer, info.Path...)
	var sizeBytes [8]byte
	size := uint64(info.Size)
	for i := 7; i >= 0; i-- {
		sizeBytes[i] = byte(size)
		size >>= 8
	}
	buffer = append(buffer, sizeBytes[:]...)
	buffer = append(buffer, info.Checksum[:]...)
	return buffer
}

// FileInfoSeq is a sorted, de-duplicated sequence of FileInfo records (spec
// §3). Operations that construct a FileInfoSeq from unsorted or duplicated
// input must call Normalize to restore the invariant.
type FileInfoSeq []FileInfo

// Len, Less, and Swap implement sort.Interface.
func (s FileInfoSeq) Len() int           { return len(s) }
func (s FileInfoSeq) Less(i, j int) bool { return s[i].Path < s[j].Path }
func (s FileInfoSeq) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Normalize sorts s by path and collapses adjacent full-equality duplicates
// in place, returning the (possibly shorter) normalized slice. This is the
// defensive sort/dedup called for in spec §4.4 step 2 when handling
// server-supplied bucket contents, and is also used by scan_tree to restore
// the FileInfoSeq invariant. load_manifest does not normalize: it rejects
// unsorted or duplicated input instead.
func (s FileInfoSeq) Normalize() FileInfoSeq {
	if len(s) == 0 {
		return s
	}
	sort.Stable(s)
	result := s[:1]
	for _, info := range s[1:] {
		if info.Equal(result[len(result)-1]) {
			continue
		}
		result = append(result, info)
	}
	return result
}

// Difference returns the elements of s not present (by Equal) in other,
// assuming both are sorted by Path. This implements the set_difference
// calls in spec §4.4: the two sequences are walked in path order (the
// FileInfoLess ordering), but an entry at a path shared by both sequences
// is only excluded from the result if it is identical in every field —
// otherwise it is a changed entry (e.g. a stale file whose checksum moved)
// and must surface on both sides: once here as the outdated local record,
// and once in the complementary Difference call as the new remote record.
func (s FileInfoSeq) Difference(other FileInfoSeq) FileInfoSeq {
	var result FileInfoSeq
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i].Path < other[j].Path:
			result = append(result, s[i])
			i++
		case s[i].Path > other[j].Path:
			j++
		default:
			if !s[i].Equal(other[j]) {
				result = append(result, s[i])
			}
			i++
			j++
		}
	}
	result = append(result, s[i:]...)
	return result
}

// Contains reports whether path is present in s, assuming s is sorted by
// Path.
func (s FileInfoSeq) Contains(path string) bool {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := (lo + hi) / 2
		if s[mid].Path < path {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(s) && s[lo].Path == path
}

// bytesEqual reports whether two digests are equal; kept as a named helper
// so call sites read like the original's checksum comparisons.
func bytesEqual(a, b Digest) bool {
	return bytes.Equal(a[:], b[:])
}
