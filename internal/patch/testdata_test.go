package patch

// Precomputed bzip2 fixtures, produced offline with a real bzip2 encoder
// (the standard library only provides a decompressor, matching spec §4.7's
// treatment of the codec as an opaque, decompress-only primitive).

// helloWorldBz2 is the bzip2 compression of the 11-byte string
// "hello world", used by the end-to-end scenario in spec §8 scenario 1.
var helloWorldBz2 = []byte{
	0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0x44, 0xf7,
	0x13, 0x78, 0x00, 0x00, 0x01, 0x91, 0x80, 0x40, 0x00, 0x06, 0x44, 0x90,
	0x80, 0x20, 0x00, 0x22, 0x03, 0x34, 0x84, 0x30, 0x21, 0xb6, 0x81, 0x54,
	0x27, 0x8b, 0xb9, 0x22, 0x9c, 0x28, 0x48, 0x22, 0x7b, 0x89, 0xbc, 0x00,
}

// emptyBz2 is the bzip2 compression of zero bytes (a 14-byte stream, not a
// zero-byte sidecar), used to check that a valid empty bzip2 stream
// decompresses to an empty file.
var emptyBz2 = []byte{
	0x42, 0x5a, 0x68, 0x39, 0x17, 0x72, 0x45, 0x38, 0x50, 0x90, 0x00, 0x00,
	0x00, 0x00,
}

// newContentBz2 is the bzip2 compression of the 12-byte string
// "new content!", used by the stale-file scenario in spec §8 scenario 2.
var newContentBz2 = []byte{
	0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0x5e, 0x3b,
	0x77, 0x38, 0x00, 0x00, 0x02, 0x91, 0x80, 0x60, 0x00, 0x0a, 0x01, 0x84,
	0x80, 0x20, 0x00, 0x22, 0x03, 0x1a, 0x84, 0x30, 0x20, 0x37, 0x22, 0x80,
	0xab, 0xbc, 0x5d, 0xc9, 0x14, 0xe1, 0x42, 0x41, 0x78, 0xed, 0xdc, 0xe0,
}

// big200Bz2 is the bzip2 compression of the 200-byte sequence 0, 1, ...,
// 199 (incrementingBytes(200)), used by the cancellation scenario in spec §8 scenario 4,
// where a chunked multi-request download needs to be interruptible partway.
var big200Bz2 = []byte{
	0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0xfa, 0x48,
	0xa2, 0x96, 0x00, 0x00, 0x00, 0x7f, 0xfc, 0x7f, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x80, 0x30, 0x00, 0xa9,
	0x0e, 0x40, 0x68, 0x68, 0xc4, 0x1a, 0x34, 0x0d, 0x34, 0x06, 0x9a, 0x34,
	0x06, 0x9a, 0x30, 0x9a, 0x0c, 0x80, 0x06, 0x04, 0xc9, 0x90, 0x01, 0xa3,
	0x43, 0x23, 0x40, 0x06, 0x20, 0xd0, 0xd1, 0xa0, 0x06, 0x80, 0x01, 0xa0,
	0x03, 0x20, 0x1a, 0x69, 0x90, 0x1a, 0x06, 0x88, 0x00, 0xd0, 0xd3, 0x4c,
	0x81, 0x88, 0xd3, 0x40, 0x64, 0x64, 0x19, 0x0d, 0x18, 0x4d, 0x00, 0xd0,
	0x19, 0x01, 0x90, 0x64, 0x06, 0x46, 0x46, 0x8d, 0x01, 0xa0, 0x06, 0x40,
	0xd0, 0x68, 0x1a, 0x00, 0xc8, 0x00, 0x06, 0x08, 0x19, 0x32, 0x34, 0x0d,
	0x00, 0x10, 0x01, 0xa1, 0xa6, 0x99, 0x03, 0x11, 0xa6, 0x80, 0xc8, 0xc8,
	0x32, 0x1a, 0x30, 0x9a, 0x01, 0xa0, 0x32, 0x03, 0x20, 0xc8, 0x0c, 0x8c,
	0x8d, 0x1a, 0x03, 0x40, 0x0c, 0x81, 0xa0, 0xd0, 0x34, 0x01, 0x90, 0x00,
	0x0c, 0x10, 0x32, 0x64, 0x68, 0x1a, 0x00, 0x35, 0x6c, 0x6d, 0x6e, 0x6f,
	0x70, 0x71, 0x04, 0xe4, 0xe6, 0xe8, 0x0d, 0xd5, 0xd8, 0x20, 0x50, 0xce,
	0xef, 0x0f, 0x2f, 0x41, 0xde, 0xdf, 0x04, 0x3e, 0xbf, 0x3f, 0xc0, 0x40,
	0x89, 0x82, 0x15, 0x07, 0x09, 0x0b, 0x0d, 0x0f, 0x10, 0x2e, 0x24, 0x64,
	0x54, 0x58, 0xd8, 0xc8, 0xd8, 0xe8, 0xf9, 0x08, 0xf2, 0x12, 0x12, 0x24,
	0x49, 0x13, 0x29, 0x24, 0x56, 0x4e, 0x52, 0x56, 0x5a, 0x5e, 0x62, 0x64,
	0xb4, 0xd4, 0xdc, 0xe4, 0xec, 0xf4, 0xf9, 0x73, 0x14, 0x14, 0x34, 0x54,
	0x74, 0x94, 0xa6, 0x4d, 0x53, 0x53, 0xd4, 0x54, 0x9b, 0x39, 0x55, 0x57,
	0x59, 0x5b, 0x5d, 0x5e, 0x74, 0xf5, 0x85, 0x89, 0xf4, 0x16, 0x56, 0x68,
	0x6d, 0x2d, 0x51, 0x5b, 0x5b, 0xdc, 0x5c, 0xdd, 0x5d, 0xa3, 0xbc, 0xbd,
	0xbe, 0xbf, 0xc0, 0xc1, 0xc2, 0xc3, 0xc4, 0x48, 0x97, 0x17, 0x1b, 0x1f,
	0x23, 0x25, 0x36, 0x56, 0x5e, 0x66, 0x6a, 0x7c, 0xec, 0xfd, 0x0d, 0x1d,
	0x25, 0x1a, 0x7a, 0x9a, 0xba, 0xda, 0xfb, 0x1b, 0x3a, 0xda, 0xfb, 0x1b,
	0x3b, 0x5b, 0x7b, 0x9b, 0xbb, 0xdb, 0xfc, 0x0b, 0x78, 0x78, 0xb8, 0xf9,
	0x39, 0x79, 0xb9, 0xfa, 0x3a, 0x7a, 0x97, 0x2f, 0xeb, 0xec, 0xed, 0xee,
	0xef, 0xf0, 0xf1, 0x61, 0xe4, 0xc7, 0xcd, 0x93, 0x3f, 0x4f, 0x5f, 0x6f,
	0x7f, 0x8f, 0x96, 0x9f, 0x5f, 0x7f, 0x9f, 0xbf, 0xcd, 0x7f, 0xc5, 0xdc,
	0x91, 0x4e, 0x14, 0x24, 0x3e, 0x92, 0x28, 0xa5, 0x80,
}

// precompressed maps known test-fixture uncompressed content to its
// real-bzip2-encoded form, for tests that need a specific payload
// compressed rather than the two canonical fixtures above.
var precompressed = map[string][]byte{
	"new content!":             newContentBz2,
	string(incrementingBytes(200)): big200Bz2,
}

// incrementingBytes returns the n-byte sequence 0, 1, ..., 255, 0, 1, ...
// used to build the big.bin fixture content deterministically.
func incrementingBytes(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}
