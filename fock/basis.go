package fock

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Basis is an ascending sequence of retained states together with its inverse.
type Basis struct {
	modes  int
	states []State
	set    *roaring.Bitmap

	// qn is the projected quantum number of each state, nil without a projection.
	qn []float64
}

// NewBasis returns the basis of the given states over n modes.
// Duplicates are dropped and the states are sorted.
func NewBasis(n int, states []State) *Basis {
	set := roaring.New()
	for _, s := range states {
		set.Add(uint32(s))
	}
	return newBasis(n, set)
}

func newBasis(n int, set *roaring.Bitmap) *Basis {
	set.RunOptimize()
	b := &Basis{modes: n, set: set, states: make([]State, 0, set.GetCardinality())}
	it := set.Iterator()
	for it.HasNext() {
		b.states = append(b.states, State(it.Next()))
	}
	return b
}

// Modes returns the number of modes of the states.
func (b *Basis) Modes() int { return b.modes }

// Len returns the number of states.
func (b *Basis) Len() int { return len(b.states) }

// At returns the i-th state.
func (b *Basis) At(i int) State { return b.states[i] }

// States returns the states in ascending order.
// The returned slice must not be modified.
func (b *Basis) States() []State { return b.states }

// Index returns the position of s, and false if s is not in the basis.
func (b *Basis) Index(s State) (int, bool) {
	if !b.set.Contains(uint32(s)) {
		return -1, false
	}
	return int(b.set.Rank(uint32(s))) - 1, true
}

// QuantumNumber returns the projected quantum number of the i-th state,
// and false if the basis was built without a projection.
func (b *Basis) QuantumNumber(i int) (float64, bool) {
	if b.qn == nil {
		return 0, false
	}
	return b.qn[i], true
}
