package fock

import (
	"fmt"
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/fumin/embedci/optional"
)

func TestRestrictValence(t *testing.T) {
	t.Parallel()
	tests := []struct {
		modes    int
		min, max int
		nstates  int
	}{
		{modes: 4, min: 0, max: 4, nstates: 16},
		{modes: 4, min: 1, max: 3, nstates: 14},
		{modes: 4, min: 2, max: 2, nstates: 6},
		{modes: 6, min: 3, max: 3, nstates: 20},
		{modes: 4, min: -3, max: 9, nstates: 16},
		// An empty window is an empty basis, not an error.
		{modes: 4, min: 3, max: 1, nstates: 0},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d %d %d", test.modes, test.min, test.max), func(t *testing.T) {
			t.Parallel()
			b, err := Restrict(Restriction{Modes: test.modes, ValenceMin: test.min, ValenceMax: test.max})
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if b.Len() != test.nstates {
				t.Fatalf("%d, expected %d", b.Len(), test.nstates)
			}
			checkBijection(t, b)
			for _, s := range b.States() {
				if s.N() < test.min || s.N() > test.max {
					t.Fatalf("%s outside [%d, %d]", s.Format(test.modes), test.min, test.max)
				}
			}
		})
	}
}

func checkBijection(t *testing.T, b *Basis) {
	t.Helper()
	for i, s := range b.States() {
		if i > 0 && b.At(i-1) >= s {
			t.Fatalf("%d %d %d not ascending", i, b.At(i-1), s)
		}
		j, ok := b.Index(s)
		if !ok || j != i {
			t.Fatalf("%d %v, expected %d", j, ok, i)
		}
	}
	// States outside the basis are not found.
	for s := State(0); s < 1<<b.Modes(); s++ {
		i, ok := b.Index(s)
		if ok && b.At(i) != s {
			t.Fatalf("%d %d %d", s, i, b.At(i))
		}
	}
}

func TestRestrictMott(t *testing.T) {
	t.Parallel()
	tests := []struct {
		mott    Mott
		nstates int
	}{
		{mott: Mott{Orbitals: []int{0, 1}, Electrons: 1}, nstates: 2 * 6},
		{mott: Mott{Orbitals: []int{0, 1}, Electrons: 0}, nstates: 4},
		{mott: Mott{Orbitals: []int{1, 3, 5}, Electrons: 3}, nstates: 1},
		{mott: Mott{Orbitals: []int{2}, Electrons: 1}, nstates: 10},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v", test.mott), func(t *testing.T) {
			t.Parallel()
			r := Restriction{Modes: 6, ValenceMin: 3, ValenceMax: 3, Mott: optional.Some(test.mott)}
			b, err := Restrict(r)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if b.Len() != test.nstates {
				t.Fatalf("%d, expected %d", b.Len(), test.nstates)
			}
			checkBijection(t, b)
			for _, s := range b.States() {
				var n int
				for _, o := range test.mott.Orbitals {
					if s.Occupied(o) {
						n++
					}
				}
				if n != test.mott.Electrons {
					t.Fatalf("%s has %d on %v, expected %d", s.Format(6), n, test.mott.Orbitals, test.mott.Electrons)
				}
			}
		})
	}
}

func TestRestrictProjection(t *testing.T) {
	t.Parallel()
	// Spin up on even modes, spin down on odd modes.
	weights := []float64{0.5, -0.5, 0.5, -0.5}
	r := Restriction{Modes: 4, ValenceMin: 0, ValenceMax: 4}

	r.Projection = optional.Some(Projection{Mode: ProjectionSz, Weights: weights})
	all, err := Restrict(r)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if all.Len() != 16 {
		t.Fatalf("%d, expected 16", all.Len())
	}
	for i, s := range all.States() {
		q, ok := all.QuantumNumber(i)
		if !ok {
			t.Fatalf("no quantum number")
		}
		var up, down int
		for p := range 4 {
			if s.Occupied(p) && p%2 == 0 {
				up++
			}
			if s.Occupied(p) && p%2 == 1 {
				down++
			}
		}
		if math.Abs(q-float64(up-down)/2) > 1e-12 {
			t.Fatalf("%s %f, expected %f", s.Format(4), q, float64(up-down)/2)
		}
	}

	r.Projection = optional.Some(Projection{Mode: ProjectionSz, Weights: weights, Target: optional.Some(0.0)})
	sz0, err := Restrict(r)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	// 1 + 2*2 + 1 states with as many ups as downs.
	if sz0.Len() != 6 {
		t.Fatalf("%d, expected 6", sz0.Len())
	}
	checkBijection(t, sz0)

	r.Projection = optional.Some(Projection{Mode: ProjectionSz, Weights: weights, Target: optional.Some(3.0)})
	empty, err := Restrict(r)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if empty.Len() != 0 {
		t.Fatalf("%d, expected 0", empty.Len())
	}

	plain, err := Restrict(Restriction{Modes: 4, ValenceMin: 0, ValenceMax: 4})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if _, ok := plain.QuantumNumber(0); ok {
		t.Fatalf("quantum number without projection")
	}
}

func TestRestrictInvalid(t *testing.T) {
	t.Parallel()
	tests := []Restriction{
		{Modes: 0},
		{Modes: MaxModes + 1},
		{Modes: 4, Mott: optional.Some(Mott{Orbitals: []int{4}})},
		{Modes: 4, Mott: optional.Some(Mott{Orbitals: []int{1, 1}})},
		{Modes: 4, Mott: optional.Some(Mott{Orbitals: []int{1}, Electrons: 2})},
		{Modes: 4, Projection: optional.Some(Projection{Weights: []float64{1}})},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			if _, err := Restrict(test); !errors.Is(err, ErrInvalid) {
				t.Fatalf("%+v", err)
			}
		})
	}
}

func TestWeights(t *testing.T) {
	t.Parallel()
	sz := []complex128{0.5, 0, 0, -0.5}
	lz := []complex128{1, 0, 0, -1}
	w, err := Weights(ProjectionSz, 2, sz, lz)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if fmt.Sprint(w) != "[0.5 -0.5 0.5 -0.5]" {
		t.Fatalf("%v", w)
	}
	w, err = Weights(ProjectionJz, 2, sz, lz)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if fmt.Sprint(w) != "[1.5 -1.5 1.5 -1.5]" {
		t.Fatalf("%v", w)
	}

	if _, err := Weights(ProjectionSz, 2, []complex128{0.5, 0.1, 0, -0.5}, nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("%+v", err)
	}
	if _, err := Weights(ProjectionJz, 2, sz, nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("%+v", err)
	}
	if _, err := Weights(ProjectionNone, 2, sz, lz); !errors.Is(err, ErrInvalid) {
		t.Fatalf("%+v", err)
	}
}
