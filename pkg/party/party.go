// Package party holds the participant identifier type shared by the
// Shamir and threshold-signature layers. Participant ids are elements of
// Z_q, not opaque curve-scalar-convertible strings.
package party

import (
	"fmt"
	"sort"
)

// ID is a participant identifier: a nonzero element of [1, q-1], held as a
// plain integer since Shamir shares are evaluated at x=ID. Ids fit in one
// byte's worth of distinct participants (n <= 255) while staying nonzero
// mod q.
type ID uint16

// Validate reports whether the id is a legal participant identifier: in
// range [1, maxID] and nonzero.
func (id ID) Validate(maxID int) error {
	if id == 0 {
		return fmt.Errorf("party: id must be nonzero")
	}
	if int(id) > maxID {
		return fmt.Errorf("party: id %d exceeds participant bound %d", id, maxID)
	}
	return nil
}

// IDSlice is a slice of IDs with sorting and membership helpers.
type IDSlice []ID

func (s IDSlice) Len() int           { return len(s) }
func (s IDSlice) Less(i, j int) bool { return s[i] < s[j] }
func (s IDSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Sorted returns a sorted copy.
func (s IDSlice) Sorted() IDSlice {
	out := make(IDSlice, len(s))
	copy(out, s)
	sort.Sort(out)
	return out
}

// Contains reports whether id appears in the slice.
func (s IDSlice) Contains(id ID) bool {
	for _, x := range s {
		if x == id {
			return true
		}
	}
	return false
}

// Distinct reports whether every id in the slice is unique.
func (s IDSlice) Distinct() bool {
	seen := make(map[ID]struct{}, len(s))
	for _, id := range s {
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

// IDs returns the identifiers 1..n, the conventional dense participant set
// used by tests and by dealer-driven keygen.
func IDs(n int) IDSlice {
	out := make(IDSlice, n)
	for i := 0; i < n; i++ {
		out[i] = ID(i + 1)
	}
	return out
}
