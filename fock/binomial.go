package fock

import "math/bits"

// Binomial is a table of binomial coefficients C(n, k) for 0 <= k <= n <= N.
// It also ranks states within a particle-number sector using the combinatorial number system,
// under which the states of a sector are ordered as their integer values.
type Binomial struct {
	n int
	c [][]int64
}

// NewBinomial returns the table for n modes.
func NewBinomial(n int) *Binomial {
	b := &Binomial{n: n, c: make([][]int64, n+1)}
	for i := range b.c {
		b.c[i] = make([]int64, i+1)
		b.c[i][0], b.c[i][i] = 1, 1
		for k := 1; k < i; k++ {
			b.c[i][k] = b.c[i-1][k-1] + b.c[i-1][k]
		}
	}
	return b
}

// N returns the number of modes of the table.
func (b *Binomial) N() int { return b.n }

// C returns C(n, k), which is 0 outside 0 <= k <= n.
func (b *Binomial) C(n, k int) int64 {
	if n < 0 || k < 0 || k > n {
		return 0
	}
	return b.c[n][k]
}

// SectorSize returns the number of states with k particles.
func (b *Binomial) SectorSize(k int) int64 { return b.C(b.n, k) }

// Rank returns the position of s among the states with the same number of particles.
func (b *Binomial) Rank(s State) int64 {
	var r int64
	i := 0
	for x := uint32(s); x != 0; x &= x - 1 {
		i++
		p := bits.TrailingZeros32(x)
		r += b.C(p, i)
	}
	return r
}

// Unrank returns the k-particle state at position r, the inverse of Rank.
// r must be less than SectorSize(k).
func (b *Binomial) Unrank(k int, r int64) State {
	var s State
	p := b.n - 1
	for i := k; i >= 1; i-- {
		for b.C(p, i) > r {
			p--
		}
		s |= 1 << p
		r -= b.C(p, i)
		p--
	}
	return s
}
