// Package bundle encodes and decodes threshold signature bundles: the
// ordered list of (signer slot, signature) pairs that collectively authorize
// one operation hash.
package bundle

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Wire format per entry: 1 byte signer index, 2 bytes big-endian signature
// length, then the signature bytes. Entries are concatenated with nothing in
// between; decoding must consume the input exactly.

var (
	// ErrTruncated reports an entry cut off before its declared length.
	ErrTruncated = errors.New("bundle: truncated entry")
	// ErrEmptySignature reports an entry with a zero-length signature.
	ErrEmptySignature = errors.New("bundle: empty signature")
)

// Entry is one signature slot in a bundle.
type Entry struct {
	SignerIndex uint8
	Signature   []byte
}

// Bundle is an ordered sequence of entries.
type Bundle []Entry

// Encode serializes the bundle.
func Encode(b Bundle) ([]byte, error) {
	var out []byte
	for i, e := range b {
		if len(e.Signature) == 0 {
			return nil, fmt.Errorf("entry %d: %w", i, ErrEmptySignature)
		}
		if len(e.Signature) > 0xFFFF {
			return nil, fmt.Errorf("entry %d: signature length %d exceeds encoding limit", i, len(e.Signature))
		}
		out = append(out, e.SignerIndex)
		out = binary.BigEndian.AppendUint16(out, uint16(len(e.Signature)))
		out = append(out, e.Signature...)
	}
	return out, nil
}

// Decode parses raw into a bundle. It rejects truncated entries, zero-length
// signatures and trailing garbage, so Encode(Decode(raw)) round-trips exactly.
func Decode(raw []byte) (Bundle, error) {
	var b Bundle
	for off := 0; off < len(raw); {
		if len(raw)-off < 3 {
			return nil, ErrTruncated
		}
		idx := raw[off]
		sigLen := int(binary.BigEndian.Uint16(raw[off+1 : off+3]))
		if sigLen == 0 {
			return nil, fmt.Errorf("entry %d: %w", len(b), ErrEmptySignature)
		}
		off += 3
		if len(raw)-off < sigLen {
			return nil, ErrTruncated
		}
		sig := make([]byte, sigLen)
		copy(sig, raw[off:off+sigLen])
		b = append(b, Entry{SignerIndex: idx, Signature: sig})
		off += sigLen
	}
	return b, nil
}
