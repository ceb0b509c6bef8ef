package patch

import (
	"github.com/eknkc/basex"
	"github.com/google/uuid"
)

// base62Alphabet mirrors the teacher's own Base62 alphabet
// (pkg/encoding/base62.go), reused here for encoding run identifiers into
// the update log header.
const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var base62Encoding *basex.Encoding

func init() {
	encoding, err := basex.NewEncoding(base62Alphabet)
	if err != nil {
		panic("unable to initialize base62 encoder: " + err.Error())
	}
	base62Encoding = encoding
}

// EncodeRunID renders a UUID as a short, filesystem-safe Base62 token,
// used to tag update_log spans (SPEC_FULL.md GLOSSARY "Run identifier").
func EncodeRunID(id uuid.UUID) string {
	raw, _ := id.MarshalBinary()
	return base62Encoding.Encode(raw)
}
