package embedci

import (
	"fmt"

	"github.com/fumin/embedci/fock"
	"github.com/fumin/embedci/mat"
)

// hops is the structure of c†_p c_q over the basis, for p < q:
// <rows[k]| c†_p c_q |cols[k]> = signs[k].
type hops struct {
	p, q  int
	rows  []int32
	cols  []int32
	signs []int8
}

// Hamiltonian is the embedding Hamiltonian over the retained basis.
type Hamiltonian struct {
	dim   int
	shift complex128
	t     [][]complex128

	// occupied[p] are the basis indices where mode p is occupied.
	occupied [][]int32
	hops     []hops

	// twoBody is the upper triangle of the interaction over the local basis.
	twoBody *mat.CSR
	fact    *factorization
}

// Dim returns the number of basis states.
func (h *Hamiltonian) Dim() int { return h.dim }

// TwoBody returns the upper triangle of the interaction over the local basis.
func (h *Hamiltonian) TwoBody() *mat.CSR { return h.twoBody }

// LocalBasis returns the basis of the impurity modes that TwoBody is written in.
func (h *Hamiltonian) LocalBasis() *fock.Basis { return h.fact.local }

func (h *Hamiltonian) numHops() int {
	var n int
	for _, hp := range h.hops {
		n += len(hp.rows)
	}
	return n
}

// Apply adds H src to dst.
func (h *Hamiltonian) Apply(dst, src []complex128) {
	if len(dst) != h.dim || len(src) != h.dim {
		panic(fmt.Sprintf("%d %d %d", h.dim, len(dst), len(src)))
	}

	for i, v := range src {
		dst[i] += h.shift * v
	}
	for p, occ := range h.occupied {
		tpp := h.t[p][p]
		for _, i := range occ {
			dst[i] += tpp * src[i]
		}
	}
	for _, hp := range h.hops {
		tpq, tqp := h.t[hp.p][hp.q], h.t[hp.q][hp.p]
		for k, i := range hp.rows {
			j := hp.cols[k]
			sign := complex(float64(hp.signs[k]), 0)
			dst[i] += tpq * sign * src[j]
			dst[j] += tqp * sign * src[i]
		}
	}

	h.applyTwoBody(dst, src)
}

// applyTwoBody applies the interaction, which acts on the local part of a state and leaves its bath part unchanged.
func (h *Hamiltonian) applyTwoBody(dst, src []complex128) {
	f := h.fact
	for r := range h.twoBody.Rows() {
		cols, vals := h.twoBody.Row(r)
		if len(cols) == 0 {
			continue
		}
		sec := f.sectors[f.sectorOf[r]]
		nl := len(sec.locals)
		sr := int(f.slotOf[r])
		for b := range sec.nbath {
			index := sec.index[b*nl : (b+1)*nl]
			i := index[sr]
			if i < 0 {
				continue
			}
			for k, c := range cols {
				j := index[f.slotOf[c]]
				if j < 0 {
					continue
				}
				v := vals[k]
				dst[i] += v * src[j]
				if int(c) != r {
					dst[j] += complex(real(v), -imag(v)) * src[i]
				}
			}
		}
	}
}
