package patch

import "fmt"

// ConfigurationError corresponds to spec §7 taxonomy item 1: missing
// Directory, missing Endpoints, or an unavailable working directory.
// Construction aborts on this error.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// ServerRejectionError corresponds to taxonomy item 2: the proxy does not
// answer as a file server when dialed. A get_bucket_checksums response
// without exactly 256 entries is reported as ProtocolViolationError instead.
type ServerRejectionError struct {
	Reason string
}

func (e *ServerRejectionError) Error() string {
	return fmt.Sprintf("server rejected: %s", e.Reason)
}

// ServerError corresponds to taxonomy item 3: a transport/RPC failure or
// FileAccessException surfaced by the remote file server, annotated with
// the offending path when one is known.
type ServerError struct {
	Path   string
	Reason error
}

func (e *ServerError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("server error: %v", e.Reason)
	}
	return fmt.Sprintf("server error for %q: %v", e.Path, e.Reason)
}

func (e *ServerError) Unwrap() error { return e.Reason }

// SizeMismatchError corresponds to taxonomy item 4: the server returned an
// empty chunk while pos < size, meaning the server disagrees with its own
// manifest about the file's length.
type SizeMismatchError struct {
	Path         string
	ExpectedSize int64
	ReceivedSize int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch for %q: expected %d bytes, server stopped at %d",
		e.Path, e.ExpectedSize, e.ReceivedSize)
}

// ManifestUnavailableError corresponds to taxonomy item 5: the local
// manifest is missing, corrupt, or in a stale format. It is recoverable via
// feedback escalation to a thorough scan (spec §4.8 prepare step 2).
type ManifestUnavailableError struct {
	Reason string
}

func (e *ManifestUnavailableError) Error() string {
	return fmt.Sprintf("manifest unavailable: %s", e.Reason)
}

// IOFailureError corresponds to taxonomy item 6: a local read, write,
// remove, or mkdir failure, annotated with the offending path and the
// underlying OS error.
type IOFailureError struct {
	Path   string
	Reason error
}

func (e *IOFailureError) Error() string {
	return fmt.Sprintf("I/O failure for %q: %v", e.Path, e.Reason)
}

func (e *IOFailureError) Unwrap() error { return e.Reason }

// DecompressionFailureError corresponds to taxonomy item 7: a codec error
// raised by the decompression worker while processing a sidecar file. It is
// sticky in decompressSink.err and surfaced at the next producer
// synchronization point and at worker join.
type DecompressionFailureError struct {
	Path   string
	Reason error
}

func (e *DecompressionFailureError) Error() string {
	return fmt.Sprintf("decompression failed for %q: %v", e.Path, e.Reason)
}

func (e *DecompressionFailureError) Unwrap() error { return e.Reason }

// ProtocolViolationError is raised when the server's responses do not
// satisfy the contracts assumed by the reconciler, e.g. a bucket-checksum
// response of the wrong length (spec §4.4).
type ProtocolViolationError struct {
	Reason string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("protocol violation: %s", e.Reason)
}

// Cancelled is not an error in the Go sense of an unexpected failure (spec
// §7 taxonomy item 8): it is returned as a plain bool by Prepare and Patch.
// It exists here only as documentation of the taxonomy; callers should
// check the bool return value, not a Cancelled error value.
