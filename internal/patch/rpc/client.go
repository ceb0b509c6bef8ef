package rpc

import (
	"context"
	"fmt"

	"github.com/golang/groupcache/lru"
	"github.com/golang/groupcache/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	// Registers the "gzip" compressor that invoke selects per call.
	_ "google.golang.org/grpc/encoding/gzip"

	"github.com/icepatch2/client/internal/patch"
)

// serviceName is the grpc service name under which the remote file server
// registers its methods, analogous to the Ice identity's role in routing a
// proxy's invocations.
const serviceName = "icepatch2.FileServer"

// checksumDiagnosticCacheSize bounds the optional GetChecksumFor
// diagnostic cache (spec §1(a) "bounded memory").
const checksumDiagnosticCacheSize = 1024

// Client is a grpc-backed implementation of patch.FileServer (spec §4.5).
// It holds two logical endpoints over the same underlying connection: one
// with wire-level compression enabled and one without, mirroring the Ice
// original's ice_compress(true)/ice_compress(false) proxy pair (spec §4.5,
// §6 "Identity").
type Client struct {
	conn     *grpc.ClientConn
	identity string

	bucketFileFlight singleflight.Group
	checksumCache    *lru.Cache
}

// Dial connects to endpoints (a grpc target string) and verifies that the
// remote answers a GetRootChecksum call on the file-server service,
// returning ServerRejectionError if it does not (spec §7 taxonomy item 2).
// identity is kept for error messages only; it is not sent to the server
// and takes no part in routing calls.
func Dial(ctx context.Context, endpoints, identity string) (*Client, error) {
	conn, err := grpc.DialContext(ctx, endpoints,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(gobCodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to dial %q: %w", endpoints, err)
	}

	client := &Client{
		conn:          conn,
		identity:      identity,
		checksumCache: lru.New(checksumDiagnosticCacheSize),
	}

	if _, err := client.GetRootChecksum(ctx); err != nil {
		conn.Close()
		return nil, &patch.ServerRejectionError{
			Reason: fmt.Sprintf("proxy %q:%s is not a file server: %v", identity, endpoints, err),
		}
	}

	return client, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) method(name string) string {
	return "/" + serviceName + "/" + name
}

// invoke calls method with the compress-on call option, matching the Ice
// original's default _serverCompress proxy (spec §4.5).
func (c *Client) invoke(ctx context.Context, name string, request, response interface{}) error {
	return c.conn.Invoke(ctx, c.method(name), request, response, grpc.UseCompressor("gzip"))
}

// invokeNoCompress calls method without wire-level compression, used only
// for GetFileCompressed since its payload is already bzip2-compressed
// (spec §4.5 "Wire-level transport compression is disabled for this call
// to avoid double compression").
func (c *Client) invokeNoCompress(ctx context.Context, name string, request, response interface{}) error {
	return c.conn.Invoke(ctx, c.method(name), request, response)
}

// GetRootChecksum implements patch.FileServer.
func (c *Client) GetRootChecksum(ctx context.Context) (patch.Digest, error) {
	response := &getRootChecksumResponse{}
	if err := c.invoke(ctx, "GetRootChecksum", &getRootChecksumRequest{}, response); err != nil {
		return patch.Digest{}, err
	}
	return patch.Digest(response.Checksum), nil
}

// GetBucketChecksums implements patch.FileServer. The wire response carries
// a variable-length slice rather than a fixed-size array, so a remote that
// speaks a different protocol version (or is simply broken) can actually be
// observed returning the wrong number of entries; Reconcile is responsible
// for rejecting that with a ProtocolViolationError (spec §4.4).
func (c *Client) GetBucketChecksums(ctx context.Context) ([]patch.Digest, error) {
	response := &getBucketChecksumsResponse{}
	if err := c.invoke(ctx, "GetBucketChecksums", &getBucketChecksumsRequest{}, response); err != nil {
		return nil, err
	}
	result := make([]patch.Digest, len(response.Checksums))
	for i, checksum := range response.Checksums {
		result[i] = patch.Digest(checksum)
	}
	return result, nil
}

// GetBucketFiles implements patch.FileServer. Concurrent calls for the same
// bucket are coalesced via singleflight so that a proxy instance shared
// across callers never issues duplicate RPCs for identical work (spec
// §1(a) "bounded memory"; defensive, since the single-producer model in
// spec §5 never actually calls this concurrently for the same bucket).
func (c *Client) GetBucketFiles(ctx context.Context, bucket byte) (patch.FileInfoSeq, error) {
	key := fmt.Sprintf("bucket:%d", bucket)
	value, err, _ := c.bucketFileFlight.Do(key, func() (interface{}, error) {
		response := &getBucketFilesResponse{}
		if err := c.invoke(ctx, "GetBucketFiles", &getBucketFilesRequest{Bucket: bucket}, response); err != nil {
			return nil, err
		}
		seq := make(patch.FileInfoSeq, len(response.Files))
		for i, wire := range response.Files {
			seq[i] = patch.FileInfo{
				Path:       wire.Path,
				Checksum:   patch.Digest(wire.Checksum),
				Size:       wire.Size,
				Executable: wire.Executable,
			}
		}
		return seq, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(patch.FileInfoSeq), nil
}

// GetFileCompressed implements patch.FileServer.
func (c *Client) GetFileCompressed(ctx context.Context, path string, offset, maxBytes int64) ([]byte, error) {
	response := &getFileCompressedResponse{}
	request := &getFileCompressedRequest{Path: path, Offset: offset, MaxBytes: maxBytes}
	if err := c.invokeNoCompress(ctx, "GetFileCompressed", request, response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetChecksumFor implements patch.FileServer's optional diagnostic lookup,
// caching results in a bounded LRU.
func (c *Client) GetChecksumFor(ctx context.Context, path string) (patch.Digest, error) {
	if cached, ok := c.checksumCache.Get(path); ok {
		return cached.(patch.Digest), nil
	}

	response := &getChecksumForResponse{}
	if err := c.invoke(ctx, "GetChecksumFor", &getChecksumForRequest{Path: path}, response); err != nil {
		return patch.Digest{}, err
	}

	digest := patch.Digest(response.Checksum)
	c.checksumCache.Add(path, digest)
	return digest, nil
}
