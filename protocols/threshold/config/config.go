// Package config provides base64-wrapped JSON encoding for KeyShare and
// PublicKey: a JSON envelope around base64-encoded binary field payloads,
// wrapping protocols/threshold's packed binary encoding.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/vantoluck/dilithium-threshold/pkg/params"
	"github.com/vantoluck/dilithium-threshold/protocols/threshold"
)

// keyShareJSON is the on-the-wire JSON shape for a KeyShare: everything
// protocols/threshold.KeyShare.MarshalBinary packs, base64-encoded,
// plus the fields that binary form deliberately omits (T, N, Level) since
// those are shared state rather than per-participant secret material.
type keyShareJSON struct {
	ParticipantID string `json:"participant_id"`
	T             int    `json:"t"`
	N             int    `json:"n"`
	Level         int    `json:"level"`
	Share         string `json:"share"` // base64(KeyShare.MarshalBinary())
	PublicKey     string `json:"public_key"`
}

// MarshalConfigJSON encodes a KeyShare as base64-wrapped JSON.
func MarshalConfigJSON(k threshold.KeyShare) ([]byte, error) {
	shareBytes, err := k.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("threshold/config: marshal share: %w", err)
	}

	pubJSON, err := MarshalPublicKeyJSON(k.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("threshold/config: marshal public key: %w", err)
	}

	out := keyShareJSON{
		ParticipantID: fmt.Sprintf("%d", k.ParticipantID),
		T:             k.T,
		N:             k.N,
		Level:         int(k.Level),
		Share:         base64.StdEncoding.EncodeToString(shareBytes),
		PublicKey:     base64.StdEncoding.EncodeToString(pubJSON),
	}
	return json.Marshal(out)
}

// UnmarshalConfigJSON decodes a KeyShare previously produced by
// MarshalConfigJSON.
func UnmarshalConfigJSON(data []byte) (threshold.KeyShare, error) {
	var in keyShareJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return threshold.KeyShare{}, fmt.Errorf("threshold/config: unmarshal: %w", err)
	}

	shareBytes, err := base64.StdEncoding.DecodeString(in.Share)
	if err != nil {
		return threshold.KeyShare{}, fmt.Errorf("threshold/config: decode share: %w", err)
	}
	var k threshold.KeyShare
	if err := k.UnmarshalBinary(shareBytes); err != nil {
		return threshold.KeyShare{}, fmt.Errorf("threshold/config: unmarshal share: %w", err)
	}

	pubBytes, err := base64.StdEncoding.DecodeString(in.PublicKey)
	if err != nil {
		return threshold.KeyShare{}, fmt.Errorf("threshold/config: decode public key: %w", err)
	}
	pub, err := UnmarshalPublicKeyJSON(pubBytes)
	if err != nil {
		return threshold.KeyShare{}, fmt.Errorf("threshold/config: unmarshal public key: %w", err)
	}

	k.T = in.T
	k.N = in.N
	k.Level = params.Level(in.Level)
	k.PublicKey = pub
	return k, nil
}

// publicKeyJSON is the on-the-wire JSON shape for a PublicKey: rho plus
// the packed T and T0 vectors, all base64-encoded.
type publicKeyJSON struct {
	Level int    `json:"level"`
	Rho   string `json:"rho"`
	T     string `json:"t"`
	T0    string `json:"t0"`
}

// MarshalPublicKeyJSON encodes a PublicKey as base64-wrapped JSON. The
// matrix A is omitted: it is fully determined by Rho, so only the seed
// need be carried.
func MarshalPublicKeyJSON(pk *threshold.PublicKey) ([]byte, error) {
	tBytes, err := pk.T.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("threshold/config: marshal t: %w", err)
	}
	t0Bytes, err := pk.T0.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("threshold/config: marshal t0: %w", err)
	}

	out := publicKeyJSON{
		Level: int(pk.Level),
		Rho:   base64.StdEncoding.EncodeToString(pk.Rho),
		T:     base64.StdEncoding.EncodeToString(tBytes),
		T0:    base64.StdEncoding.EncodeToString(t0Bytes),
	}
	return json.Marshal(out)
}

// UnmarshalPublicKeyJSON decodes a PublicKey previously produced by
// MarshalPublicKeyJSON, re-expanding A from Rho.
func UnmarshalPublicKeyJSON(data []byte) (*threshold.PublicKey, error) {
	var in publicKeyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("threshold/config: unmarshal: %w", err)
	}

	rho, err := base64.StdEncoding.DecodeString(in.Rho)
	if err != nil {
		return nil, fmt.Errorf("threshold/config: decode rho: %w", err)
	}
	tBytes, err := base64.StdEncoding.DecodeString(in.T)
	if err != nil {
		return nil, fmt.Errorf("threshold/config: decode t: %w", err)
	}
	t0Bytes, err := base64.StdEncoding.DecodeString(in.T0)
	if err != nil {
		return nil, fmt.Errorf("threshold/config: decode t0: %w", err)
	}

	level := params.Level(in.Level)
	p, err := params.For(level)
	if err != nil {
		return nil, fmt.Errorf("threshold/config: %w", err)
	}

	pk, err := threshold.ExpandPublicKey(level, rho, p.K, p.L)
	if err != nil {
		return nil, fmt.Errorf("threshold/config: expand A from rho: %w", err)
	}
	if err := pk.T.UnmarshalBinary(tBytes); err != nil {
		return nil, fmt.Errorf("threshold/config: unmarshal t: %w", err)
	}
	if err := pk.T0.UnmarshalBinary(t0Bytes); err != nil {
		return nil, fmt.Errorf("threshold/config: unmarshal t0: %w", err)
	}
	return pk, nil
}
