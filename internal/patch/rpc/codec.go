// Package rpc provides the concrete, grpc-backed implementation of
// patch.FileServer. The wire transport is out of scope for the patch
// client itself (spec §1); this package exists to give the module a
// runnable end-to-end backing, the way the teacher's own
// pkg/synchronization/endpoint/remote gives a concrete backing to its
// abstract synchronization.Endpoint.
package rpc

import (
	"bytes"
	"encoding/gob"

	"google.golang.org/grpc/encoding"
)

// gobCodecName is the name under which the gob codec is registered with
// grpc, selected per call via grpc.CallContentSubtype.
const gobCodecName = "gob"

func init() {
	encoding.RegisterCodec(gobCodec{})
}

// gobCodec adapts encoding/gob to grpc's encoding.Codec interface. This
// sidesteps hand-authoring generated Protocol Buffers descriptors (which
// would require a protoc invocation this module cannot perform) while
// still exercising the real grpc client stack end to end, per
// SPEC_FULL.md §4.5.
type gobCodec struct{}

func (gobCodec) Marshal(v interface{}) ([]byte, error) {
	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(v); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (gobCodec) Name() string {
	return gobCodecName
}
