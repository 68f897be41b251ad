package shamir

import (
	"github.com/vantoluck/dilithium-threshold/pkg/party"
	"github.com/vantoluck/dilithium-threshold/pkg/ring"
)

// Lagrange computes, for each id in ids, the Lagrange coefficient
// lambda_u = prod_{v != u} (-x_v) * (x_u - x_v)^-1 mod Q that evaluates
// the basis polynomial for u at 0. Coefficients over any participant
// subset always sum to one; that property is exercised in
// lagrange_test.go.
func Lagrange(ids []party.ID) map[party.ID]uint32 {
	coeffs := make(map[party.ID]uint32, len(ids))
	for _, u := range ids {
		num := uint32(1)
		den := uint32(1)
		for _, v := range ids {
			if v == u {
				continue
			}
			num = ring.MulMod(num, ring.NegMod(uint32(v)))
			den = ring.MulMod(den, ring.SubMod(uint32(u), uint32(v)))
		}
		coeffs[u] = ring.MulMod(num, ring.Inverse(den))
	}
	return coeffs
}
