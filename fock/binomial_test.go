package fock

import (
	"fmt"
	"testing"
)

func TestBinomial(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 1, 4, 12, MaxModes} {
		t.Run(fmt.Sprintf("%d", n), func(t *testing.T) {
			t.Parallel()
			b := NewBinomial(n)
			for i := 0; i <= n; i++ {
				if b.C(i, 0) != 1 || b.C(i, i) != 1 {
					t.Fatalf("%d %d %d", i, b.C(i, 0), b.C(i, i))
				}
				for k := 1; k < i; k++ {
					if b.C(i, k) != b.C(i-1, k-1)+b.C(i-1, k) {
						t.Fatalf("%d %d %d", i, k, b.C(i, k))
					}
				}
			}
			if b.C(n, n+1) != 0 || b.C(n, -1) != 0 {
				t.Fatalf("%d %d", b.C(n, n+1), b.C(n, -1))
			}
		})
	}

	// Two tables of the same size are identical.
	a, b := NewBinomial(20), NewBinomial(20)
	for n := 0; n <= 20; n++ {
		for k := 0; k <= n; k++ {
			if a.C(n, k) != b.C(n, k) {
				t.Fatalf("%d %d %d %d", n, k, a.C(n, k), b.C(n, k))
			}
		}
	}
	if a.C(20, 10) != 184756 {
		t.Fatalf("%d, expected 184756", a.C(20, 10))
	}
}

func TestRank(t *testing.T) {
	t.Parallel()
	const n = 10
	b := NewBinomial(n)
	next := make([]int64, n+1)
	// Visiting states in ascending order, the rank within each sector increases by one.
	for s := State(0); s < 1<<n; s++ {
		k := s.N()
		r := b.Rank(s)
		if r != next[k] {
			t.Fatalf("%s %d, expected %d", s.Format(n), r, next[k])
		}
		next[k]++

		if u := b.Unrank(k, r); u != s {
			t.Fatalf("%s, expected %s", u.Format(n), s.Format(n))
		}
	}
	for k := 0; k <= n; k++ {
		if next[k] != b.SectorSize(k) {
			t.Fatalf("%d %d, expected %d", k, next[k], b.SectorSize(k))
		}
	}
}
