package mat

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

type ValVec struct {
	Val float64
	Vec []complex128
}

// LowestHermitian returns the lowest eigenpair of the Hermitian matrix h.
// The complex problem is solved as the real symmetric problem [[Re, -Im], [Im, Re]],
// whose spectrum is that of h with every multiplicity doubled.
func LowestHermitian(h [][]complex128) (ValVec, error) {
	n := len(h)
	if n == 0 {
		return ValVec{}, errors.Errorf("empty matrix")
	}
	sym := mat.NewSymDense(2*n, nil)
	for i, row := range h {
		if len(row) != n {
			return ValVec{}, errors.Errorf("%d %d", i, len(row))
		}
		for j := i; j < n; j++ {
			v := row[j]
			if d := h[j][i] - complex(real(v), -imag(v)); math.Abs(real(d))+math.Abs(imag(d)) > 1e-10*(1+abs(v)) {
				return ValVec{}, errors.Errorf("not hermitian at %d %d: %v %v", i, j, v, h[j][i])
			}
			sym.SetSym(i, j, real(v))
			sym.SetSym(n+i, n+j, real(v))
			sym.SetSym(i, n+j, -imag(v))
			if i != j {
				sym.SetSym(j, n+i, imag(v))
			}
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return ValVec{}, errors.Errorf("eig.Factorize failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	lowest := 0
	for i, v := range vals {
		if v < vals[lowest] {
			lowest = i
		}
	}
	vv := ValVec{Val: vals[lowest], Vec: make([]complex128, n)}
	var norm float64
	for i := range n {
		vv.Vec[i] = complex(vecs.At(i, lowest), vecs.At(n+i, lowest))
		norm += real(vv.Vec[i])*real(vv.Vec[i]) + imag(vv.Vec[i])*imag(vv.Vec[i])
	}
	if norm == 0 {
		panic(fmt.Sprintf("%v", vals))
	}
	norm = math.Sqrt(norm)
	for i := range vv.Vec {
		vv.Vec[i] /= complex(norm, 0)
	}
	return vv, nil
}

func abs(v complex128) float64 {
	return math.Hypot(real(v), imag(v))
}
