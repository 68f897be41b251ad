package shamir_test

import (
	"crypto/rand"
	"testing"
	"testing/quick"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vantoluck/dilithium-threshold/pkg/party"
	"github.com/vantoluck/dilithium-threshold/pkg/ring"
	"github.com/vantoluck/dilithium-threshold/pkg/shamir"
)

func TestShamir(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "shamir suite")
}

var _ = Describe("Lagrange", func() {
	It("sums to one over any participant subset", func() {
		for n := 2; n <= 9; n++ {
			for t := 2; t <= n; t++ {
				ids := party.IDs(n)[:t]
				lambda := shamir.Lagrange(ids)

				sum := uint32(0)
				for _, id := range ids {
					sum = ring.AddMod(sum, lambda[id])
				}
				Expect(sum).To(Equal(uint32(1)), "t=%d n=%d", t, n)
			}
		}
	})

	It("assigns one coefficient to each participant id", func() {
		ids := party.IDs(5)
		lambda := shamir.Lagrange(ids)
		Expect(lambda).To(HaveLen(5))
	})
})

var _ = Describe("AdaptedShamirSSS perfect reconstruction", func() {
	It("reconstructs the exact secret from any t-subset, for random (t, n, secret)", func() {
		f := func(tSeed, nSeed uint8, seedBytes [32]byte) bool {
			n := int(nSeed%9) + 2
			t := int(tSeed)%(n-1) + 2

			cfg, err := shamir.New(t, n)
			if err != nil {
				return false
			}

			secret, err := ring.RandomVector(rand.Reader, 2)
			if err != nil {
				return false
			}

			shares, err := cfg.Split(secret, rand.Reader)
			if err != nil || len(shares) != n {
				return false
			}

			// Shuffle the shares with seedBytes so the t-subset varies
			// from case to case instead of always being the first t.
			picked := append([]shamir.Share(nil), shares...)
			for i := len(picked) - 1; i > 0; i-- {
				j := int(seedBytes[i%len(seedBytes)]) % (i + 1)
				picked[i], picked[j] = picked[j], picked[i]
			}
			got, err := cfg.Reconstruct(picked[:t])
			if err != nil {
				return false
			}
			return secret.Equal(got)
		}
		Expect(quick.Check(f, &quick.Config{MaxCount: 64})).To(Succeed())
	})
})

var _ = Describe("AdaptedShamirSSS share privacy", func() {
	It("keeps a single share's coefficient distribution indistinguishable from uniform", func() {
		trials := 10000
		if testing.Short() {
			trials = 500
		}
		const bins = 256

		cfg, err := shamir.New(2, 3)
		Expect(err).NotTo(HaveOccurred())

		secret, err := ring.RandomVector(rand.Reader, 1)
		Expect(err).NotTo(HaveOccurred())

		counts := make([]int, bins)
		for i := 0; i < trials; i++ {
			shares, err := cfg.Split(secret, rand.Reader)
			Expect(err).NotTo(HaveOccurred())
			coeff := shares[0].Vector.Polys[0].Coeffs[0]
			counts[int(coeff)%bins]++
		}

		expected := float64(trials) / float64(bins)
		chiSq := 0.0
		for _, c := range counts {
			d := float64(c) - expected
			chiSq += d * d / expected
		}

		// Critical chi-squared value at the 1% significance level for a
		// goodness-of-fit test with bins-1=255 degrees of freedom.
		const criticalValue = 310.46
		Expect(chiSq).To(BeNumerically("<", criticalValue))
	})
})

var _ = Describe("AdaptedShamirSSS homomorphism", func() {
	It("preserves affine combinations of shares under reconstruction", func() {
		cfg, err := shamir.New(3, 6)
		Expect(err).NotTo(HaveOccurred())

		s, err := ring.RandomVector(rand.Reader, 3)
		Expect(err).NotTo(HaveOccurred())
		u, err := ring.RandomVector(rand.Reader, 3)
		Expect(err).NotTo(HaveOccurred())

		sharesS, err := cfg.Split(s, rand.Reader)
		Expect(err).NotTo(HaveOccurred())
		sharesU, err := cfg.Split(u, rand.Reader)
		Expect(err).NotTo(HaveOccurred())

		const a, b = int64(7), int64(11)
		combined := make([]shamir.Share, len(sharesS))
		for i := range sharesS {
			combined[i] = shamir.Share{
				ParticipantID: sharesS[i].ParticipantID,
				Vector:        sharesS[i].Vector.ScalarMul(a).Add(sharesU[i].Vector.ScalarMul(b)),
				VectorLength:  sharesS[i].VectorLength,
			}
		}

		want := s.ScalarMul(a).Add(u.ScalarMul(b))
		got, err := cfg.Reconstruct(combined[:3])
		Expect(err).NotTo(HaveOccurred())
		Expect(want.Equal(got)).To(BeTrue())
	})
})
