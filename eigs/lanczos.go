// Package eigs finds the lowest eigenpair of a Hermitian operator given only its action on vectors.
package eigs

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/embedci/internal/util"
)

var (
	// ErrNotConverged is returned when the residual is still above tolerance after the last restart.
	ErrNotConverged = errors.New("not converged")
)

// Operator is a Hermitian linear operator.
type Operator interface {
	// Dim returns the dimension of the vector space.
	Dim() int
	// Apply adds the operator applied to src into dst.
	Apply(dst, src []complex128)
}

// Result is an approximate eigenpair.
type Result struct {
	Value  float64
	Vector []complex128
	// Iterations is the number of operator applications.
	Iterations int
	// Residual is the norm of Hx - Value x.
	Residual float64
}

// Options are options for the Lanczos eigensolver.
type Options struct {
	maxKrylov   int
	maxRestarts int
	tol         float64
	logger      *slog.Logger
}

// NewOptions returns the default Lanczos options.
func NewOptions() Options {
	opt := Options{}
	opt.maxKrylov = 64
	opt.maxRestarts = 200
	opt.tol = 1e-10
	opt.logger = slog.New(slog.DiscardHandler)
	return opt
}

// MaxKrylov sets the dimension of the Krylov subspace built between restarts.
func (opt Options) MaxKrylov(n int) Options {
	opt.maxKrylov = n
	return opt
}

// MaxRestarts sets the maximum number of restarts.
func (opt Options) MaxRestarts(n int) Options {
	opt.maxRestarts = n
	return opt
}

// Tol sets the tolerance of the convergence criterion |Hx - θx| <= tol * max(1, |θ|).
func (opt Options) Tol(tol float64) Options {
	opt.tol = tol
	return opt
}

// Logger sets the logger for progress messages.
func (opt Options) Logger(logger *slog.Logger) Options {
	opt.logger = logger
	return opt
}

// Lanczos is a restarted Lanczos eigensolver with full reorthogonalization.
type Lanczos struct {
	opt Options
}

func NewLanczos(options ...Options) *Lanczos {
	opt := NewOptions()
	if len(options) > 0 {
		opt = options[0]
	}
	return &Lanczos{opt: opt}
}

// Lowest returns the lowest eigenpair of op, starting the iteration from v0.
// If the iteration does not converge, the last approximation is returned together with ErrNotConverged.
func (l *Lanczos) Lowest(ctx context.Context, op Operator, v0 []complex128) (Result, error) {
	n := op.Dim()
	if n == 0 {
		return Result{}, errors.Errorf("empty operator")
	}
	if len(v0) != n {
		return Result{}, errors.Errorf("start vector length %d, dimension %d", len(v0), n)
	}
	m := max(1, min(l.opt.maxKrylov, n))

	basis := make([][]complex128, m+1)
	for i := range basis {
		basis[i] = make([]complex128, n)
	}
	alpha := make([]float64, m)
	beta := make([]float64, m)

	res := Result{Vector: make([]complex128, n)}
	copy(res.Vector, v0)
	x := vec(res.Vector)
	norm := cblas128.Nrm2(x)
	if norm == 0 || math.IsNaN(norm) {
		return Result{}, errors.Errorf("start vector norm %f", norm)
	}
	cblas128.Dscal(1/norm, x)

	throttle := util.NewThrottle(10 * time.Second)
	for restart := range l.opt.maxRestarts {
		if err := ctx.Err(); err != nil {
			return res, errors.Wrap(err, "")
		}

		copy(basis[0], res.Vector)
		k, scale, breakdown := 0, 1.0, false
		for j := range m {
			vj, w := vec(basis[j]), vec(basis[j+1])
			clear(w.Data)
			op.Apply(w.Data, vj.Data)
			res.Iterations++

			alpha[j] = real(cblas128.Dotc(vj, w))
			// Two passes of classical Gram-Schmidt against the whole basis.
			for range 2 {
				for i := 0; i <= j; i++ {
					vi := vec(basis[i])
					cblas128.Axpy(-cblas128.Dotc(vi, w), vi, w)
				}
			}
			k = j + 1

			b := cblas128.Nrm2(w)
			scale = max(scale, math.Abs(alpha[j]), b)
			if b <= 1e-12*scale {
				beta[j] = 0
				breakdown = true
				break
			}
			beta[j] = b
			cblas128.Dscal(1/b, w)
		}

		theta, y, err := tridiagLowest(alpha[:k], beta[:k-1])
		if err != nil {
			return res, errors.Wrap(err, "")
		}
		clear(x.Data)
		for i := range k {
			cblas128.Axpy(complex(y[i], 0), vec(basis[i]), x)
		}
		cblas128.Dscal(1/cblas128.Nrm2(x), x)

		res.Value = theta
		res.Residual = math.Abs(beta[k-1] * y[k-1])
		converged := breakdown || res.Residual <= l.opt.tol*max(1, math.Abs(theta))
		if throttle.Allow(time.Now()) || converged {
			l.opt.logger.Info("lanczos", "restart", restart, "krylov", k, "value", theta, "residual", res.Residual, "applies", res.Iterations)
		}
		if converged {
			return res, nil
		}
	}
	return res, errors.Wrap(ErrNotConverged, fmt.Sprintf("residual %g after %d restarts", res.Residual, l.opt.maxRestarts))
}

// tridiagLowest returns the lowest eigenpair of the symmetric tridiagonal matrix
// with diagonal alpha and off-diagonal beta.
func tridiagLowest(alpha, beta []float64) (float64, []float64, error) {
	k := len(alpha)
	t := mat.NewSymDense(k, nil)
	for i, a := range alpha {
		t.SetSym(i, i, a)
	}
	for i, b := range beta {
		t.SetSym(i, i+1, b)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(t, true); !ok {
		return math.NaN(), nil, errors.Errorf("eig.Factorize failed %v %v", alpha, beta)
	}
	vals := eig.Values(nil)
	lowest := 0
	for i, v := range vals {
		if v < vals[lowest] {
			lowest = i
		}
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	return vals[lowest], mat.Col(nil, lowest, &vecs), nil
}

func vec(data []complex128) cblas128.Vector {
	return cblas128.Vector{N: len(data), Inc: 1, Data: data}
}
