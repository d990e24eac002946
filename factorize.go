package embedci

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pkg/errors"
	gmat "gonum.org/v1/gonum/mat"

	"github.com/fumin/embedci/fock"
	"github.com/fumin/embedci/optional"
)

// A full state s is split into its impurity part s & localMask(norb) and its bath part s >> norb.
func localMask(norb int) fock.State { return 1<<norb - 1 }

// sector is the part of the basis whose impurity modes hold a fixed number of particles.
type sector struct {
	n int
	// locals are the local basis indices of the sector, in ascending order.
	locals []int32

	// baths are the bath patterns completing some local state of the sector into a basis state.
	// Released after the one body operators are assembled.
	baths *roaring.Bitmap
	nbath int
	// index[b*len(locals)+l] is the basis index of bath slot b and local slot l, -1 if absent.
	index []int32

	// block is the two body interaction over the local states of the sector.
	// Released after it is compiled into the two body operator.
	block *gmat.CDense
}

// factorization is the basis written as a product of local and bath parts, sector by sector.
type factorization struct {
	norb  int
	local *fock.Basis

	sectors  []*sector
	sectorOf []int32
	slotOf   []int32
}

// localRestriction restricts the impurity modes to the occupations that can appear in a state of r.
func localRestriction(norb int, r fock.Restriction) fock.Restriction {
	return fock.Restriction{
		Modes:      norb,
		ValenceMin: max(0, r.ValenceMin-norb),
		ValenceMax: min(norb, r.ValenceMax),
		Mott:       r.Mott,
		Projection: optional.None[fock.Projection](),
	}
}

func factorize(cfg Config, basis *fock.Basis) (*factorization, error) {
	norb := cfg.Params.Norb
	local, err := fock.Restrict(localRestriction(norb, cfg.Restriction))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	f := &factorization{
		norb:     norb,
		local:    local,
		sectorOf: make([]int32, local.Len()),
		slotOf:   make([]int32, local.Len()),
	}

	byN := make(map[int]int32)
	for li, s := range local.States() {
		k, ok := byN[s.N()]
		if !ok {
			k = int32(len(f.sectors))
			byN[s.N()] = k
			f.sectors = append(f.sectors, &sector{n: s.N(), baths: roaring.New()})
		}
		sec := f.sectors[k]
		f.sectorOf[li] = k
		f.slotOf[li] = int32(len(sec.locals))
		sec.locals = append(sec.locals, int32(li))
	}

	mask := localMask(norb)
	for i, s := range basis.States() {
		li, ok := local.Index(s & mask)
		if !ok {
			return nil, errors.Errorf("%d %s has no local part", i, s.Format(2*norb))
		}
		f.sectors[f.sectorOf[li]].baths.Add(uint32(s >> norb))
	}
	for _, sec := range f.sectors {
		sec.nbath = int(sec.baths.GetCardinality())
		sec.index = make([]int32, sec.nbath*len(sec.locals))
		for k := range sec.index {
			sec.index[k] = -1
		}
	}
	for i, s := range basis.States() {
		li, _ := local.Index(s & mask)
		sec := f.sectors[f.sectorOf[li]]
		b := int(sec.baths.Rank(uint32(s>>norb))) - 1
		sec.index[b*len(sec.locals)+int(f.slotOf[li])] = int32(i)
	}

	if len(cfg.Params.V2E) > 0 {
		for _, sec := range f.sectors {
			if err := f.twoBodyBlock(cfg.Params, sec); err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("sector %d", sec.n))
			}
		}
	}
	return f, nil
}

// twoBodyBlock fills the interaction between the local states of sec.
// Transitions leaving the local basis are dropped.
func (f *factorization) twoBodyBlock(p Params, sec *sector) error {
	n := len(sec.locals)
	sec.block = gmat.NewCDense(n, n, nil)
	norb := p.Norb
	for c, lc := range sec.locals {
		s := f.local.At(int(lc))
		for j := range norb {
			sj, signJ := s.Annihilate(j)
			if signJ == 0 {
				continue
			}
			for l := range j {
				sl, signL := sj.Annihilate(l)
				if signL == 0 {
					continue
				}
				for k := range norb {
					sk, signK := sl.Create(k)
					if signK == 0 {
						continue
					}
					for i := range k {
						t, signI := sk.Create(i)
						if signI == 0 {
							continue
						}
						w := p.pair(i, k, l, j)
						if w == 0 {
							continue
						}
						lr, ok := f.local.Index(t)
						if !ok {
							continue
						}
						if f.sectorOf[lr] != f.sectorOf[lc] {
							return errors.Errorf("%s -> %s changes sector", s.Format(norb), t.Format(norb))
						}
						r := int(f.slotOf[lr])
						sign := signJ * signL * signK * signI
						sec.block.Set(r, c, sec.block.At(r, c)+complex(sign, 0)*w)
					}
				}
			}
		}
	}
	return nil
}
