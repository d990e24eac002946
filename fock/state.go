// Package fock enumerates and indexes occupation-number states of fermionic modes.
//
// A State is a bit pattern, bit p being the occupation of mode p.
// Operators follow the Jordan-Wigner ordering over increasing mode index:
//
//	c†_p|s> = (-1)^{N_{<p}(s)} |s + p>   if p is empty in s, 0 otherwise,
//	c_p|s>  = (-1)^{N_{<p}(s)} |s - p>   if p is occupied in s, 0 otherwise,
//
// where N_{<p}(s) is the number of occupied modes below p.
package fock

import (
	"math/bits"
	"strings"
)

// MaxModes is the largest number of modes a State can hold.
const MaxModes = 32

// State is an occupation pattern over at most MaxModes modes.
type State uint32

// N returns the number of occupied modes.
func (s State) N() int { return bits.OnesCount32(uint32(s)) }

// Occupied reports whether mode p is occupied.
func (s State) Occupied(p int) bool { return s&(1<<p) != 0 }

// parity is the Jordan-Wigner sign of mode p in s.
func (s State) parity(p int) float64 {
	if bits.OnesCount32(uint32(s)&(1<<p-1))%2 == 1 {
		return -1
	}
	return 1
}

// Create applies c†_p and returns the resulting state and sign.
// The sign is 0 if p is already occupied.
func (s State) Create(p int) (State, float64) {
	if s.Occupied(p) {
		return s, 0
	}
	return s | 1<<p, s.parity(p)
}

// Annihilate applies c_p and returns the resulting state and sign.
// The sign is 0 if p is empty.
func (s State) Annihilate(p int) (State, float64) {
	if !s.Occupied(p) {
		return s, 0
	}
	return s &^ (1 << p), s.parity(p)
}

// Hop applies c†_p c_q.
func (s State) Hop(p, q int) (State, float64) {
	t, sq := s.Annihilate(q)
	if sq == 0 {
		return s, 0
	}
	t, sp := t.Create(p)
	return t, sp * sq
}

// Format writes the occupations of the first n modes, highest mode first.
func (s State) Format(n int) string {
	var b strings.Builder
	for p := n - 1; p >= 0; p-- {
		switch {
		case s.Occupied(p):
			b.WriteByte('1')
		default:
			b.WriteByte('0')
		}
	}
	return b.String()
}
