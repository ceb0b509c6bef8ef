package patch

import (
	"context"
	"compress/bzip2"
	"bytes"
	"io"
)

// fakeServer is an in-memory patch.FileServer test double, analogous to
// the record-of-closures doubles the teacher uses for its own interfaces
// (e.g. testing_provider_test.go).
type fakeServer struct {
	files FileInfoSeq
	// compressedContent maps path to already bzip2-compressed content,
	// which GetFileCompressed serves in slices as is (tests only need valid
	// bzip2 input on the decompression side, not a compressor, so fixtures
	// precompute compressed bytes out of band — see bzip2Compress and
	// precompressed).
	compressedContent map[string][]byte
	// truncateBucketChecksums, if non-zero, makes GetBucketChecksums
	// return this many entries instead of BucketCount, simulating a
	// malformed server response (spec §4.4 / §7 taxonomy item 2).
	truncateBucketChecksums int
}

func newFakeServer(files FileInfoSeq, compressedContent map[string][]byte) *fakeServer {
	return &fakeServer{files: files.Normalize(), compressedContent: compressedContent}
}

func (s *fakeServer) GetRootChecksum(ctx context.Context) (Digest, error) {
	return BuildTree0(s.files).Checksum, nil
}

func (s *fakeServer) GetBucketChecksums(ctx context.Context) ([]Digest, error) {
	tree := BuildTree0(s.files)
	count := BucketCount
	if s.truncateBucketChecksums != 0 {
		count = s.truncateBucketChecksums
	}
	checksums := make([]Digest, count)
	for i := 0; i < count && i < BucketCount; i++ {
		checksums[i] = tree.Nodes[i].Checksum
	}
	return checksums, nil
}

func (s *fakeServer) GetBucketFiles(ctx context.Context, bucket byte) (FileInfoSeq, error) {
	tree := BuildTree0(s.files)
	return tree.Nodes[bucket].Files, nil
}

func (s *fakeServer) GetFileCompressed(ctx context.Context, path string, offset, maxBytes int64) ([]byte, error) {
	data := s.compressedContent[path]
	if offset >= int64(len(data)) {
		return nil, nil
	}
	end := offset + maxBytes
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[offset:end], nil
}

func (s *fakeServer) GetChecksumFor(ctx context.Context, path string) (Digest, error) {
	for _, info := range s.files {
		if info.Path == path {
			return info.Checksum, nil
		}
	}
	return Digest{}, nil
}

// decompressAll is a test helper that fully decompresses a bzip2 byte
// slice. No test in this package calls it at present.
func decompressAll(data []byte) ([]byte, error) {
	return io.ReadAll(bzip2.NewReader(bytes.NewReader(data)))
}
