package patch

import "context"

// FileServer is the remote file-server proxy abstraction (spec §4.5). Its
// wire transport is out of scope for this client (spec §1); callers supply
// a concrete implementation such as the grpc-backed one in the rpc
// subpackage.
type FileServer interface {
	// GetRootChecksum returns the server's root digest (spec §4.5
	// get_root_checksum).
	GetRootChecksum(ctx context.Context) (Digest, error)

	// GetBucketChecksums returns the server's bucket digests, in bucket
	// order (spec §4.5 get_bucket_checksums). The result is expected to
	// carry exactly BucketCount entries; a response of any other length is
	// a ProtocolViolationError, raised by the caller (spec §4.4, §7
	// taxonomy item 2). It is returned as a slice rather than a fixed-size
	// array so that a malformed response can actually be observed and
	// rejected instead of being silently truncated or zero-padded into
	// shape by the decoder.
	GetBucketChecksums(ctx context.Context) ([]Digest, error)

	// GetBucketFiles returns the server's FileInfoSeq for the given bucket
	// (spec §4.5 get_bucket_files).
	GetBucketFiles(ctx context.Context, bucket byte) (FileInfoSeq, error)

	// GetFileCompressed returns up to maxBytes of the bzip2-compressed
	// representation of path starting at offset (spec §4.5
	// get_file_compressed). An empty return before EOF signals a size
	// mismatch. Wire-level compression is disabled for this call by the
	// implementation to avoid double-compressing an already-compressed
	// payload.
	GetFileCompressed(ctx context.Context, path string, offset, maxBytes int64) ([]byte, error)

	// GetChecksumFor is an optional diagnostic lookup (spec §4.5
	// get_checksum_for).
	GetChecksumFor(ctx context.Context, path string) (Digest, error)
}
