package embedci

import (
	"math/cmplx"

	"github.com/pkg/errors"

	"github.com/fumin/embedci/fock"
	"github.com/fumin/embedci/mat"
)

// maxReferenceModes bounds the dense reference, which is built over all 2^modes states.
const maxReferenceModes = 12

// ReferenceHamiltonian returns the dense Hamiltonian restricted to basis,
// built from Jordan-Wigner matrices of every mode over the whole Fock space.
// Every term is written from the raw parameters as products of creation and annihilation matrices,
// sharing nothing with the sparse assembly. It is meant for cross checks on small systems.
func ReferenceHamiltonian(p Params, basis *fock.Basis) ([][]complex128, error) {
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	modes := p.Modes()
	if modes > maxReferenceModes {
		return nil, errors.Errorf("%d modes above %d", modes, maxReferenceModes)
	}

	c := mat.JordanWigner(modes)
	cd := make([]*mat.COO, modes)
	for m := range modes {
		cd[m] = c[m].H()
	}

	dim := 1 << modes
	full := mat.COOZeros(dim, dim)
	n := p.Norb
	for i := range n {
		for j := range n {
			if v := p.H1E[i*n+j]; v != 0 {
				full.Add(v, mat.Product(cd[i], c[j]))
			}
		}
	}
	// daalpha[a][i] c†_i f_a + conj(daalpha[a][i]) f†_a c_i.
	for a := range n {
		for i := range n {
			d := p.Daalpha[a*n+i]
			if d == 0 {
				continue
			}
			full.Add(d, mat.Product(cd[i], c[n+a]))
			full.Add(cmplx.Conj(d), mat.Product(cd[n+a], c[i]))
		}
	}
	// lambdac[a][b] f_b f†_a, kept in this order.
	for a := range n {
		for b := range n {
			if v := p.Lambdac[a*n+b]; v != 0 {
				full.Add(v, mat.Product(c[n+b], cd[n+a]))
			}
		}
	}

	if len(p.V2E) > 0 {
		for i := range n {
			for j := range n {
				for k := range n {
					for l := range n {
						v := p.v2e(i, j, k, l)
						if v == 0 {
							continue
						}
						op := mat.Product(mat.Product(mat.Product(cd[i], cd[k]), c[l]), c[j])
						full.Add(v/2, op)
					}
				}
			}
		}
	}

	ref := make([][]complex128, basis.Len())
	for a, sa := range basis.States() {
		ref[a] = make([]complex128, basis.Len())
		for b, sb := range basis.States() {
			ref[a][b] = full.At(int(sa), int(sb))
		}
	}
	return ref, nil
}
