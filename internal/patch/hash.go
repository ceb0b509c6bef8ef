package patch

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
)

// hasherFactory returns the digest algorithm used by this client. SHA-1 is
// selected because it is the only 20-byte digest available among the
// hashing algorithms the teacher's own content-hashing package supports
// (pkg/synchronization/hashing), matching the fixed 20-byte width pinned by
// spec §4.1.
func hasherFactory() *sha1digest {
	return &sha1digest{h: sha1.New()}
}

// sha1digest adapts hash.Hash into something that can produce a Digest
// value directly, avoiding repetitive slice-to-array conversions at call
// sites.
type sha1digest struct {
	h interface {
		io.Writer
		Sum([]byte) []byte
	}
}

func (d *sha1digest) Write(p []byte) (int, error) { return d.h.Write(p) }

func (d *sha1digest) Sum() Digest {
	var digest Digest
	copy(digest[:], d.h.Sum(nil))
	return digest
}

// HashFile computes the content digest of the regular file at path (spec
// §4.1 hash_file).
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("unable to open %q for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := hasherFactory()
	if _, err := io.Copy(hasher, file); err != nil {
		return Digest{}, fmt.Errorf("unable to read %q while hashing: %w", path, err)
	}
	return hasher.Sum(), nil
}

// HashBytes computes the content digest of an in-memory byte slice. It is
// used by tests and by HashPath.
func HashBytes(data []byte) Digest {
	hasher := hasherFactory()
	hasher.Write(data)
	return hasher.Sum()
}

// HashSequence folds a sequence of per-item digest-contributing byte slices
// into a single digest by feeding each item's bytes, in order, into one
// hasher (spec §4.1 hash_sequence). An empty sequence folds to the digest
// of zero input bytes, so every empty bucket has the same stable digest.
func HashSequence(items [][]byte) Digest {
	hasher := hasherFactory()
	for _, item := range items {
		hasher.Write(item)
	}
	return hasher.Sum()
}

// HashFileInfoSeq computes the bucket-level digest over a sorted FileInfoSeq
// as specified in spec §4.1: hash_sequence of each entry's serialization,
// fed in sort order.
func HashFileInfoSeq(seq FileInfoSeq) Digest {
	items := make([][]byte, len(seq))
	for i, info := range seq {
		items[i] = info.serialize()
	}
	return HashSequence(items)
}

// HashPath computes the digest used to select an entry's bucket (spec §3
// "keyed by the first byte of each file's path hash"). It hashes the raw
// path bytes directly, independent of HashFileInfoSeq's entry serialization,
// since bucket assignment must be stable under checksum changes to the
// entry's content.
func HashPath(path string) Digest {
	return HashBytes([]byte(path))
}
