package fock

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pkg/errors"

	"github.com/fumin/embedci/optional"
)

const (
	// weightTol is the tolerance for comparing quantum numbers and for off-diagonal projection matrix elements.
	weightTol = 1e-8
)

var (
	// ErrInvalid is returned for restrictions that cannot describe a basis.
	ErrInvalid = errors.New("invalid restriction")
)

// Mott fixes the total occupation of a set of orbitals.
type Mott struct {
	Orbitals  []int
	Electrons int
}

// ProjectionMode selects the conserved quantity a basis is annotated with.
type ProjectionMode int

const (
	ProjectionNone ProjectionMode = iota
	ProjectionSz
	ProjectionJz
)

func (m ProjectionMode) String() string {
	switch m {
	case ProjectionNone:
		return "none"
	case ProjectionSz:
		return "sz"
	case ProjectionJz:
		return "jz"
	default:
		return fmt.Sprintf("ProjectionMode(%d)", int(m))
	}
}

// ParseProjectionMode parses "none", "sz" or "jz".
func ParseProjectionMode(s string) (ProjectionMode, error) {
	switch s {
	case "", "none":
		return ProjectionNone, nil
	case "sz":
		return ProjectionSz, nil
	case "jz":
		return ProjectionJz, nil
	default:
		return ProjectionNone, errors.Wrap(ErrInvalid, fmt.Sprintf("projection %q", s))
	}
}

// Projection annotates every state with q = sum of Weights over its occupied modes.
// If Target is present, only states with q equal to Target are retained.
type Projection struct {
	Mode    ProjectionMode
	Weights []float64
	Target  optional.Value[float64]
}

// Charge returns the quantum number of s.
func (p Projection) Charge(s State) float64 {
	var q float64
	for x := uint32(s); x != 0; x &= x - 1 {
		q += p.Weights[bits.TrailingZeros32(x)]
	}
	return q
}

// Restriction selects the states of a basis.
type Restriction struct {
	// Modes is the number of modes.
	Modes int
	// ValenceMin and ValenceMax bound the total number of particles, inclusive.
	ValenceMin int
	ValenceMax int

	Mott       optional.Value[Mott]
	Projection optional.Value[Projection]
}

// Validate checks that r describes a basis.
func (r Restriction) Validate() error {
	if r.Modes < 1 || r.Modes > MaxModes {
		return errors.Wrap(ErrInvalid, fmt.Sprintf("modes %d", r.Modes))
	}
	if mott, ok := r.Mott.Get(); ok {
		seen := make(map[int]bool, len(mott.Orbitals))
		for _, o := range mott.Orbitals {
			if o < 0 || o >= r.Modes {
				return errors.Wrap(ErrInvalid, fmt.Sprintf("mott orbital %d of %d", o, r.Modes))
			}
			if seen[o] {
				return errors.Wrap(ErrInvalid, fmt.Sprintf("duplicate mott orbital %d", o))
			}
			seen[o] = true
		}
		if mott.Electrons < 0 || mott.Electrons > len(mott.Orbitals) {
			return errors.Wrap(ErrInvalid, fmt.Sprintf("mott electrons %d on %d orbitals", mott.Electrons, len(mott.Orbitals)))
		}
	}
	if proj, ok := r.Projection.Get(); ok {
		if len(proj.Weights) != r.Modes {
			return errors.Wrap(ErrInvalid, fmt.Sprintf("%d projection weights for %d modes", len(proj.Weights), r.Modes))
		}
	}
	return nil
}

// Restrict enumerates the states allowed by r in ascending order.
// States are filtered by the valence window, then by the Mott constraint, then by the projection target.
// An empty basis is not an error.
func Restrict(r Restriction) (*Basis, error) {
	if err := r.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	bin := NewBinomial(r.Modes)

	mott, hasMott := r.Mott.Get()
	var mottMask State
	for _, o := range mott.Orbitals {
		mottMask |= 1 << o
	}
	proj, hasProj := r.Projection.Get()
	target, hasTarget := proj.Target.Get()

	set := roaring.New()
	for n := max(r.ValenceMin, 0); n <= min(r.ValenceMax, r.Modes); n++ {
		size := bin.SectorSize(n)
		for rank := range size {
			s := bin.Unrank(n, rank)
			if hasMott && (s&mottMask).N() != mott.Electrons {
				continue
			}
			if hasProj && hasTarget && math.Abs(proj.Charge(s)-target) > weightTol {
				continue
			}
			set.Add(uint32(s))
		}
	}

	b := newBasis(r.Modes, set)
	if hasProj {
		b.qn = make([]float64, len(b.states))
		for i, s := range b.states {
			b.qn[i] = proj.Charge(s)
		}
	}
	return b, nil
}

// Weights returns per-mode projection weights for norb impurity orbitals and norb bath orbitals.
// sz and lz are norb×norb row-major single particle matrices, which must be diagonal.
// Bath mode norb+a carries the weight of orbital a.
// ProjectionSz uses the diagonal of sz, ProjectionJz the diagonal of sz+lz.
func Weights(mode ProjectionMode, norb int, sz, lz []complex128) ([]float64, error) {
	var mats [][]complex128
	switch mode {
	case ProjectionSz:
		mats = [][]complex128{sz}
	case ProjectionJz:
		mats = [][]complex128{sz, lz}
	default:
		return nil, errors.Wrap(ErrInvalid, fmt.Sprintf("weights for %s", mode))
	}

	w := make([]float64, 2*norb)
	for _, m := range mats {
		if len(m) != norb*norb {
			return nil, errors.Wrap(ErrInvalid, fmt.Sprintf("%s matrix of length %d, norb %d", mode, len(m), norb))
		}
		for i := range norb {
			for j := range norb {
				v := m[i*norb+j]
				if i != j && (math.Abs(real(v)) > weightTol || math.Abs(imag(v)) > weightTol) {
					return nil, errors.Wrap(ErrInvalid, fmt.Sprintf("%s matrix not diagonal at %d %d: %v", mode, i, j, v))
				}
			}
			w[i] += real(m[i*norb+i])
		}
	}
	copy(w[norb:], w[:norb])
	return w, nil
}
