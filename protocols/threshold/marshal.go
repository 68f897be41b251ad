package threshold

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/vantoluck/dilithium-threshold/pkg/dilithium"
	"github.com/vantoluck/dilithium-threshold/pkg/params"
	"github.com/vantoluck/dilithium-threshold/pkg/party"
	"github.com/vantoluck/dilithium-threshold/pkg/ring"
)

// encodeHint packs a Hint's bit rows into a plain byte-per-bit encoding.
// Hints are small (k rows of 256 bits, weight bounded by omega) so a
// compact bitset is not worth the complexity.
func encodeHint(h dilithium.Hint) []byte {
	buf := make([]byte, 4, 4+len(h.Bits)*256)
	binary.LittleEndian.PutUint32(buf, uint32(len(h.Bits)))
	for _, row := range h.Bits {
		for _, b := range row {
			if b {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		}
	}
	return buf
}

func decodeHint(data []byte) (dilithium.Hint, error) {
	if len(data) < 4 {
		return dilithium.Hint{}, fmt.Errorf("threshold: hint: truncated")
	}
	k := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	if len(data) != k*256 {
		return dilithium.Hint{}, fmt.Errorf("threshold: hint: expected %d bytes, got %d", k*256, len(data))
	}
	h := dilithium.Hint{Bits: make([][]bool, k)}
	for i := 0; i < k; i++ {
		row := make([]bool, 256)
		for j := 0; j < 256; j++ {
			row[j] = data[i*256+j] != 0
		}
		h.Bits[i] = row
	}
	return h, nil
}

// MarshalBinary encodes a KeyShare as a big-endian u16 participant_id
// followed by the S1/S2 share vectors in pkg/ring's little-endian packed
// form.
func (k KeyShare) MarshalBinary() ([]byte, error) {
	s1b, err := k.S1Share.MarshalBinary()
	if err != nil {
		return nil, err
	}
	s2b, err := k.S2Share.MarshalBinary()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 2+4+4+len(s1b)+len(s2b))
	var idBuf [2]byte
	binary.BigEndian.PutUint16(idBuf[:], uint16(k.ParticipantID))
	buf = append(buf, idBuf[:]...)
	buf = appendLenPrefixed(buf, s1b)
	buf = appendLenPrefixed(buf, s2b)
	return buf, nil
}

// UnmarshalBinary decodes a KeyShare previously produced by MarshalBinary.
// It does not restore PublicKey, T, or N/Level/T — those are shared state
// the dealer publishes to every participant out-of-band; callers must
// attach them after decoding.
func (k *KeyShare) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("threshold: keyshare: truncated")
	}
	k.ParticipantID = party.ID(binary.BigEndian.Uint16(data))
	data = data[2:]

	s1b, rest, err := readLenPrefixed(data)
	if err != nil {
		return fmt.Errorf("threshold: keyshare: s1 share: %w", err)
	}
	if err := k.S1Share.UnmarshalBinary(s1b); err != nil {
		return fmt.Errorf("threshold: keyshare: s1 share: %w", err)
	}

	s2b, rest, err := readLenPrefixed(rest)
	if err != nil {
		return fmt.Errorf("threshold: keyshare: s2 share: %w", err)
	}
	if err := k.S2Share.UnmarshalBinary(s2b); err != nil {
		return fmt.Errorf("threshold: keyshare: s2 share: %w", err)
	}
	if len(rest) != 0 {
		return fmt.Errorf("threshold: keyshare: trailing bytes")
	}
	return nil
}

// MarshalBinary encodes a PartialSignature: participant_id (u16 BE), then
// Z, W, and C in pkg/ring's packed form.
func (ps PartialSignature) MarshalBinary() ([]byte, error) {
	zb, err := ps.Z.MarshalBinary()
	if err != nil {
		return nil, err
	}
	wb, err := ps.W.MarshalBinary()
	if err != nil {
		return nil, err
	}
	cb, err := ps.C.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var idBuf [2]byte
	binary.BigEndian.PutUint16(idBuf[:], uint16(ps.ParticipantID))
	buf := append([]byte{}, idBuf[:]...)
	buf = appendLenPrefixed(buf, zb)
	buf = appendLenPrefixed(buf, wb)
	buf = appendLenPrefixed(buf, cb)
	return buf, nil
}

// UnmarshalBinary decodes a PartialSignature previously produced by
// MarshalBinary.
func (ps *PartialSignature) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("threshold: partial signature: truncated")
	}
	ps.ParticipantID = party.ID(binary.BigEndian.Uint16(data))
	data = data[2:]

	zb, rest, err := readLenPrefixed(data)
	if err != nil {
		return fmt.Errorf("threshold: partial signature: z: %w", err)
	}
	if err := ps.Z.UnmarshalBinary(zb); err != nil {
		return fmt.Errorf("threshold: partial signature: z: %w", err)
	}

	wb, rest, err := readLenPrefixed(rest)
	if err != nil {
		return fmt.Errorf("threshold: partial signature: w: %w", err)
	}
	if err := ps.W.UnmarshalBinary(wb); err != nil {
		return fmt.Errorf("threshold: partial signature: w: %w", err)
	}

	cb, rest, err := readLenPrefixed(rest)
	if err != nil {
		return fmt.Errorf("threshold: partial signature: c: %w", err)
	}
	if len(rest) != 0 {
		return fmt.Errorf("threshold: partial signature: trailing bytes")
	}
	return ps.C.UnmarshalBinary(cb)
}

func appendLenPrefixed(dst, data []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	dst = append(dst, lenBuf[:]...)
	return append(dst, data...)
}

func readLenPrefixed(data []byte) (field, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("truncated length prefix")
	}
	l := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	if len(data) < l {
		return nil, nil, fmt.Errorf("truncated field: want %d bytes, have %d", l, len(data))
	}
	return data[:l], data[l:], nil
}

// envelope is the CBOR top-level wire wrapper: a type tag plus the type's
// own MarshalBinary payload, so any of this package's types can be stored
// or transmitted through one CBOR-encoded container.
type envelope struct {
	Kind    string `cbor:"kind"`
	Level   int    `cbor:"level"`
	Payload []byte `cbor:"payload"`
}

// EncodeKeyShare wraps a KeyShare's binary encoding in a CBOR envelope.
func EncodeKeyShare(k KeyShare) ([]byte, error) {
	payload, err := k.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(envelope{Kind: "KeyShare", Level: int(k.Level), Payload: payload})
}

// DecodeKeyShare unwraps a CBOR envelope produced by EncodeKeyShare.
func DecodeKeyShare(data []byte) (KeyShare, error) {
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return KeyShare{}, fmt.Errorf("threshold: decode keyshare envelope: %w", err)
	}
	if env.Kind != "KeyShare" {
		return KeyShare{}, fmt.Errorf("threshold: decode keyshare envelope: unexpected kind %q", env.Kind)
	}
	var k KeyShare
	if err := k.UnmarshalBinary(env.Payload); err != nil {
		return KeyShare{}, err
	}
	k.Level = params.Level(env.Level)
	return k, nil
}

// EncodeSignature wraps a Signature's packed fields in a CBOR envelope.
func EncodeSignature(sig Signature, level params.Level) ([]byte, error) {
	zb, err := sig.Z.MarshalBinary()
	if err != nil {
		return nil, err
	}
	cb, err := sig.C.MarshalBinary()
	if err != nil {
		return nil, err
	}
	hb := encodeHint(sig.H)

	payload := appendLenPrefixed(nil, zb)
	payload = appendLenPrefixed(payload, cb)
	payload = appendLenPrefixed(payload, hb)

	return cbor.Marshal(envelope{Kind: "Signature", Level: int(level), Payload: payload})
}

// DecodeSignature unwraps a CBOR envelope produced by EncodeSignature.
func DecodeSignature(data []byte) (Signature, params.Level, error) {
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return Signature{}, 0, fmt.Errorf("threshold: decode signature envelope: %w", err)
	}
	if env.Kind != "Signature" {
		return Signature{}, 0, fmt.Errorf("threshold: decode signature envelope: unexpected kind %q", env.Kind)
	}

	zb, rest, err := readLenPrefixed(env.Payload)
	if err != nil {
		return Signature{}, 0, err
	}
	var z ring.Vector
	if err := z.UnmarshalBinary(zb); err != nil {
		return Signature{}, 0, err
	}

	cb, rest, err := readLenPrefixed(rest)
	if err != nil {
		return Signature{}, 0, err
	}
	var c ring.Polynomial
	if err := c.UnmarshalBinary(cb); err != nil {
		return Signature{}, 0, err
	}

	hb, rest, err := readLenPrefixed(rest)
	if err != nil {
		return Signature{}, 0, err
	}
	if len(rest) != 0 {
		return Signature{}, 0, fmt.Errorf("threshold: decode signature: trailing bytes")
	}
	h, err := decodeHint(hb)
	if err != nil {
		return Signature{}, 0, err
	}

	return Signature{Z: z, H: h, C: c}, params.Level(env.Level), nil
}
