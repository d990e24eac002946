package embedci

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/pkg/errors"

	"github.com/fumin/embedci/fock"
)

const (
	// hermitianTol is the absolute tolerance of the hermiticity checks on the parameters.
	hermitianTol = 1e-8
)

// Params are the one and two body parameters of the embedding Hamiltonian of one impurity,
//
//	H = Σ h1e[i][j] c†_i c_j
//	  + ½ Σ v2e[i][j][k][l] c†_i c†_k c_l c_j
//	  + Σ (daalpha[a][i] c†_i f_a + h.c.)
//	  + Σ lambdac[a][b] f_b f†_a,
//
// where c_i are the impurity modes 0..Norb-1 and f_a = c_{Norb+a} are the bath modes.
// Matrices are row-major.
type Params struct {
	Norb int

	// H1E is the Norb×Norb impurity one body matrix.
	H1E []complex128
	// Daalpha is the Norb×Norb hybridization, Daalpha[a*Norb+i] couples bath a to impurity orbital i.
	Daalpha []complex128
	// Lambdac is the Norb×Norb bath one body matrix.
	Lambdac []complex128
	// V2E is the Norb⁴ two body tensor, V2E[((i*Norb+j)*Norb+k)*Norb+l].
	// An empty V2E has no interaction.
	V2E []complex128
}

// Modes returns the number of modes, impurity and bath.
func (p Params) Modes() int { return 2 * p.Norb }

// Validate checks the shapes of the matrices and their hermiticity.
func (p Params) Validate() error {
	n := p.Norb
	if n < 1 || 2*n > fock.MaxModes {
		return errors.Wrap(ErrConfig, fmt.Sprintf("norb %d", n))
	}
	for _, m := range []struct {
		name string
		v    []complex128
	}{{"h1e", p.H1E}, {"daalpha", p.Daalpha}, {"lambdac", p.Lambdac}} {
		if len(m.v) != n*n {
			return errors.Wrap(ErrConfig, fmt.Sprintf("%s of length %d, norb %d", m.name, len(m.v), n))
		}
	}
	if len(p.V2E) != 0 && len(p.V2E) != n*n*n*n {
		return errors.Wrap(ErrConfig, fmt.Sprintf("v2e of length %d, norb %d", len(p.V2E), n))
	}

	if i, j, ok := hermitian(n, p.H1E); !ok {
		return errors.Wrap(ErrConfig, fmt.Sprintf("h1e not hermitian at %d %d", i, j))
	}
	if i, j, ok := hermitian(n, p.Lambdac); !ok {
		return errors.Wrap(ErrConfig, fmt.Sprintf("lambdac not hermitian at %d %d", i, j))
	}
	if len(p.V2E) > 0 {
		// The adjoint of c†_i c†_k c_l c_j is c†_l c†_j c_i c_k.
		for i := range n {
			for k := i + 1; k < n; k++ {
				for l := range n {
					for j := l + 1; j < n; j++ {
						w, wh := p.pair(i, k, l, j), p.pair(l, j, i, k)
						if cmplx.Abs(w-cmplx.Conj(wh)) > hermitianTol {
							return errors.Wrap(ErrConfig, fmt.Sprintf("v2e not hermitian at %d %d %d %d: %v %v", i, k, l, j, w, wh))
						}
					}
				}
			}
		}
	}
	return nil
}

// Trace returns the trace of Lambdac.
func (p Params) Trace() complex128 {
	var tr complex128
	for a := range p.Norb {
		tr += p.Lambdac[a*p.Norb+a]
	}
	return tr
}

// OneBody returns the 2Norb×2Norb one body matrix T of H,
// such that H = Σ T[p][q] c†_p c_q + tr(lambdac) + two body terms.
func (p Params) OneBody() [][]complex128 {
	n := p.Norb
	t := make([][]complex128, 2*n)
	for i := range t {
		t[i] = make([]complex128, 2*n)
	}
	for i := range n {
		for j := range n {
			t[i][j] = p.H1E[i*n+j]
		}
	}
	for a := range n {
		for i := range n {
			d := p.Daalpha[a*n+i]
			t[i][n+a] = d
			t[n+a][i] = cmplx.Conj(d)
		}
	}
	// f_b f†_a = δ_ab - f†_a f_b.
	for a := range n {
		for b := range n {
			t[n+a][n+b] = -p.Lambdac[a*n+b]
		}
	}
	return t
}

func (p Params) v2e(i, j, k, l int) complex128 {
	n := p.Norb
	return p.V2E[((i*n+j)*n+k)*n+l]
}

// pair returns the coefficient of c†_i c†_k c_l c_j for i < k and l < j,
// collecting the four orderings of the creation and annihilation pairs.
func (p Params) pair(i, k, l, j int) complex128 {
	return (p.v2e(i, j, k, l) + p.v2e(k, l, i, j) - p.v2e(i, l, k, j) - p.v2e(k, j, i, l)) / 2
}

func hermitian(n int, m []complex128) (int, int, bool) {
	for i := range n {
		for j := i; j < n; j++ {
			d := m[i*n+j] - cmplx.Conj(m[j*n+i])
			if math.Abs(real(d)) > hermitianTol || math.Abs(imag(d)) > hermitianTol {
				return i, j, false
			}
		}
	}
	return -1, -1, true
}
