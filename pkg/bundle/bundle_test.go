package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sig(fill byte, n int) []byte {
	s := make([]byte, n)
	for i := range s {
		s[i] = fill
	}
	return s
}

func TestEncode(t *testing.T) {
	t.Run("lays out index, length and signature per entry", func(t *testing.T) {
		raw, err := Encode(Bundle{{SignerIndex: 7, Signature: []byte{0xaa, 0xbb}}})
		require.NoError(t, err)
		assert.Equal(t, []byte{7, 0x00, 0x02, 0xaa, 0xbb}, raw)
	})

	t.Run("empty bundle encodes to nothing", func(t *testing.T) {
		raw, err := Encode(nil)
		require.NoError(t, err)
		assert.Empty(t, raw)
	})

	t.Run("rejects zero-length signatures", func(t *testing.T) {
		_, err := Encode(Bundle{{SignerIndex: 0}})
		assert.ErrorIs(t, err, ErrEmptySignature)
	})

	t.Run("rejects signatures beyond the two-byte length field", func(t *testing.T) {
		_, err := Encode(Bundle{{SignerIndex: 0, Signature: sig(0x01, 0x10000)}})
		assert.Error(t, err)
	})
}

func TestDecode(t *testing.T) {
	t.Run("round-trips a multi-entry bundle", func(t *testing.T) {
		in := Bundle{
			{SignerIndex: 0, Signature: sig(0x11, 65)},
			{SignerIndex: 255, Signature: sig(0x22, 65)},
			{SignerIndex: 3, Signature: sig(0x33, 12)},
		}
		raw, err := Encode(in)
		require.NoError(t, err)

		out, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("empty input is an empty bundle", func(t *testing.T) {
		out, err := Decode(nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("rejects a truncated header", func(t *testing.T) {
		_, err := Decode([]byte{0x01, 0x00})
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("rejects a signature shorter than declared", func(t *testing.T) {
		_, err := Decode([]byte{0x01, 0x00, 0x05, 0xaa, 0xbb})
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("rejects trailing bytes after the last entry", func(t *testing.T) {
		raw, err := Encode(Bundle{{SignerIndex: 1, Signature: sig(0xcc, 4)}})
		require.NoError(t, err)

		_, err = Decode(append(raw, 0x00))
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("rejects declared zero-length signatures", func(t *testing.T) {
		_, err := Decode([]byte{0x01, 0x00, 0x00})
		assert.ErrorIs(t, err, ErrEmptySignature)
	})

	t.Run("decoded signatures do not alias the input", func(t *testing.T) {
		raw, err := Encode(Bundle{{SignerIndex: 1, Signature: sig(0xdd, 4)}})
		require.NoError(t, err)

		out, err := Decode(raw)
		require.NoError(t, err)
		raw[3] = 0x00
		assert.Equal(t, sig(0xdd, 4), out[0].Signature)
	})
}

func FuzzDecodeEncodeRoundTrip(f *testing.F) {
	seed1, _ := Encode(Bundle{{SignerIndex: 0, Signature: sig(0x11, 65)}})
	seed2, _ := Encode(Bundle{
		{SignerIndex: 1, Signature: sig(0x22, 65)},
		{SignerIndex: 2, Signature: sig(0x33, 65)},
	})
	f.Add(seed1)
	f.Add(seed2)
	f.Add([]byte{})
	f.Add([]byte{0x01, 0x00})

	f.Fuzz(func(t *testing.T, raw []byte) {
		b, err := Decode(raw)
		if err != nil {
			return
		}

		reencoded, err := Encode(b)
		if err != nil {
			t.Fatalf("Encode failed on decoded bundle: %v", err)
		}
		if string(reencoded) != string(raw) {
			t.Fatalf("roundtrip mismatch: got=%x want=%x", reencoded, raw)
		}
	})
}
