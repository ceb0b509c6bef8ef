package rpc

// These request/response shapes mirror the five file-server operations
// enumerated in spec §4.5. Their wire representation (here, gob over grpc)
// is explicitly out of scope per spec §1; only the shapes matter to
// callers of patch.FileServer.

type getRootChecksumRequest struct{}

type getRootChecksumResponse struct {
	Checksum [20]byte
}

type getBucketChecksumsRequest struct{}

type getBucketChecksumsResponse struct {
	// Checksums is a slice, not a fixed [256][20]byte array, so a server
	// that returns the wrong number of buckets produces an observably
	// wrong-length response instead of being silently reshaped to fit.
	Checksums [][20]byte
}

type getBucketFilesRequest struct {
	Bucket byte
}

type fileInfoWire struct {
	Path       string
	Checksum   [20]byte
	Size       int64
	Executable bool
}

type getBucketFilesResponse struct {
	Files []fileInfoWire
}

type getFileCompressedRequest struct {
	Path     string
	Offset   int64
	MaxBytes int64
}

type getFileCompressedResponse struct {
	Data []byte
}

type getChecksumForRequest struct {
	Path string
}

type getChecksumForResponse struct {
	Checksum [20]byte
}
