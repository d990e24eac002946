package embedci

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	gmat "gonum.org/v1/gonum/mat"

	"github.com/fumin/embedci/optional"
)

// Solution is the ground state of an embedding Hamiltonian.
type Solution struct {
	// Dim is the number of basis states.
	Dim int
	// Energy is Eigenvalue - tr(lambdac).
	Energy     float64
	Eigenvalue float64
	Vector     []complex128
	// DensityMatrix is ρ[p][q] = <c†_p c_q> over the impurity and bath modes.
	DensityMatrix *gmat.CDense
	// QuantumNumber is the expectation of the projected quantum number, if a projection is configured.
	QuantumNumber optional.Value[float64]

	Iterations int
	Residual   float64
	// WarmStart reports whether the restart vector was used.
	WarmStart bool
}

// Occupations returns the diagonal of the density matrix.
func (sol *Solution) Occupations() []float64 {
	n, _ := sol.DensityMatrix.Dims()
	occ := make([]float64, n)
	for p := range occ {
		occ[p] = real(sol.DensityMatrix.At(p, p))
	}
	return occ
}

func (s *Solver) solve(ctx context.Context, restart optional.Value[[]complex128]) (*Solution, error) {
	start := time.Now()
	h := s.ham
	modes := s.cfg.Params.Modes()
	if h.Dim() == 0 {
		s.opt.logger.Warn("empty basis")
		return &Solution{DensityMatrix: gmat.NewCDense(modes, modes, nil)}, nil
	}

	v0, warm := s.startVector(restart)
	res, err := s.opt.eigensolver.Lowest(ctx, h, v0)
	if err != nil && len(res.Vector) != h.Dim() {
		return nil, errors.Wrap(err, "")
	}

	sol := &Solution{
		Dim:           h.Dim(),
		Eigenvalue:    res.Value,
		Energy:        res.Value - real(s.cfg.Params.Trace()),
		Vector:        res.Vector,
		DensityMatrix: h.densityMatrix(res.Vector),
		Iterations:    res.Iterations,
		Residual:      res.Residual,
		WarmStart:     warm,
	}
	if s.cfg.Restriction.Projection.IsSome() {
		var q float64
		for i, v := range res.Vector {
			qi, _ := s.basis.QuantumNumber(i)
			q += qi * (real(v)*real(v) + imag(v)*imag(v))
		}
		sol.QuantumNumber = optional.Some(q)
	}

	if m := s.opt.metrics; m != nil {
		m.applies.WithLabelValues(s.opt.label).Add(float64(res.Iterations))
		m.solveSeconds.WithLabelValues(s.opt.label).Set(time.Since(start).Seconds())
	}
	s.opt.logger.Info("solved", "energy", sol.Energy, "iterations", sol.Iterations, "residual", sol.Residual, "warm", warm, "elapsed", time.Since(start))
	if err != nil {
		return sol, errors.Wrap(err, "")
	}
	return sol, nil
}

// startVector returns restart if it is a nonzero vector over the basis, and a random vector otherwise.
func (s *Solver) startVector(restart optional.Value[[]complex128]) ([]complex128, bool) {
	n := s.basis.Len()
	if v, ok := restart.Get(); ok {
		nrm := norm(v)
		switch {
		case len(v) != n:
			s.opt.logger.Warn("restart vector discarded", "length", len(v), "states", n)
		case nrm == 0 || math.IsNaN(nrm) || math.IsInf(nrm, 0):
			s.opt.logger.Warn("restart vector discarded", "norm", nrm)
		default:
			v0 := make([]complex128, n)
			for i, x := range v {
				v0[i] = x / complex(nrm, 0)
			}
			return v0, true
		}
	}

	rng := rand.New(rand.NewPCG(s.opt.seed, uint64(n)))
	v0 := make([]complex128, n)
	for i := range v0 {
		v0[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	nrm := norm(v0)
	for i := range v0 {
		v0[i] /= complex(nrm, 0)
	}
	return v0, false
}

// densityMatrix returns ρ[p][q] = <x| c†_p c_q |x>.
func (h *Hamiltonian) densityMatrix(x []complex128) *gmat.CDense {
	modes := len(h.occupied)
	rho := gmat.NewCDense(modes, modes, nil)
	for p, occ := range h.occupied {
		var d float64
		for _, i := range occ {
			d += real(x[i])*real(x[i]) + imag(x[i])*imag(x[i])
		}
		rho.Set(p, p, complex(d, 0))
	}
	for _, hp := range h.hops {
		var v complex128
		for k, i := range hp.rows {
			j := hp.cols[k]
			v += complex(real(x[i]), -imag(x[i])) * complex(float64(hp.signs[k]), 0) * x[j]
		}
		rho.Set(hp.p, hp.q, v)
		rho.Set(hp.q, hp.p, complex(real(v), -imag(v)))
	}
	return rho
}

func norm(v []complex128) float64 {
	var n float64
	for _, x := range v {
		n += real(x)*real(x) + imag(x)*imag(x)
	}
	return math.Sqrt(n)
}
