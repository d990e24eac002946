package embedci

import (
	"github.com/fumin/embedci/fock"
	"github.com/fumin/embedci/mat"
)

func assemble(p Params, basis *fock.Basis, f *factorization) *Hamiltonian {
	modes := p.Modes()
	h := &Hamiltonian{
		dim:      basis.Len(),
		shift:    p.Trace(),
		t:        p.OneBody(),
		occupied: make([][]int32, modes),
		fact:     f,
	}

	for i, s := range basis.States() {
		for m := range modes {
			if s.Occupied(m) {
				h.occupied[m] = append(h.occupied[m], int32(i))
			}
		}
	}
	for q := range modes {
		for pp := range q {
			hp := hops{p: pp, q: q}
			for j, s := range basis.States() {
				t, sign := s.Hop(pp, q)
				if sign == 0 {
					continue
				}
				i, ok := basis.Index(t)
				if !ok {
					continue
				}
				hp.rows = append(hp.rows, int32(i))
				hp.cols = append(hp.cols, int32(j))
				hp.signs = append(hp.signs, int8(sign))
			}
			h.hops = append(h.hops, hp)
		}
	}
	for _, sec := range f.sectors {
		sec.baths = nil
	}

	h.twoBody = compileTwoBody(f)
	for _, sec := range f.sectors {
		sec.block = nil
	}
	return h
}

// compileTwoBody gathers the upper triangles of the sector blocks into one operator over the local basis.
func compileTwoBody(f *factorization) *mat.CSR {
	n := f.local.Len()
	coo := mat.COOZeros(n, n)
	for _, sec := range f.sectors {
		if sec.block == nil {
			continue
		}
		for r, lr := range sec.locals {
			for c := r; c < len(sec.locals); c++ {
				v := sec.block.At(r, c)
				if v == 0 {
					continue
				}
				coo.Append(int(lr), int(sec.locals[c]), v)
			}
		}
	}
	return coo.CSR()
}
