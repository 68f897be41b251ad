// Package testutil holds fixtures shared across package test files: party
// id generation and deterministic/random message helpers for the
// synchronous, non-interactive signing API.
package testutil

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/vantoluck/dilithium-threshold/pkg/party"
)

// PartyIDs returns the dense participant set 1..n used by nearly every
// test in this module.
func PartyIDs(n int) party.IDSlice {
	return party.IDs(n)
}

// Message returns a deterministic, human-readable test message so
// failures are easy to recognize in diffs.
func Message(label string) []byte {
	return []byte(fmt.Sprintf("test message: %s", label))
}

// RandomMessage returns n random bytes for tests that need a message of a
// particular size rather than a fixed fixture.
func RandomMessage(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
