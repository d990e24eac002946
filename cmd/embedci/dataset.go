package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/embedci"
	"github.com/fumin/embedci/fock"
	"github.com/fumin/embedci/optional"
	"github.com/fumin/embedci/store"
)

// readConfig reads the parameters of impurity from st and restricts them as cfg says.
func readConfig(ctx context.Context, st *store.Store, impurity int, cfg Config) (embedci.Config, error) {
	norb, err := st.Scalar(ctx, impurity, store.NameNorb)
	if err != nil {
		return embedci.Config{}, errors.Wrap(err, "")
	}
	p := embedci.Params{Norb: norb}
	for _, m := range []struct {
		name string
		v    *[]complex128
	}{
		{store.NameH1E, &p.H1E},
		{store.NameD, &p.Daalpha},
		{store.NameLambda, &p.Lambdac},
		{store.NameV2E, &p.V2E},
	} {
		*m.v, err = st.Complex(ctx, impurity, m.name)
		if err != nil {
			return embedci.Config{}, errors.Wrap(err, "")
		}
	}

	r := fock.Restriction{Modes: p.Modes()}
	r.ValenceMin, err = st.Scalar(ctx, impurity, store.NameNvalBot)
	if err != nil {
		return embedci.Config{}, errors.Wrap(err, "")
	}
	r.ValenceMax, err = st.Scalar(ctx, impurity, store.NameNvalTop)
	if err != nil {
		return embedci.Config{}, errors.Wrap(err, "")
	}
	if v := cfg.Restriction.ValenceMin; v != nil {
		r.ValenceMin = *v
	}
	if v := cfg.Restriction.ValenceMax; v != nil {
		r.ValenceMax = *v
	}

	r.Mott, err = readMott(ctx, st, impurity)
	if err != nil {
		return embedci.Config{}, errors.Wrap(err, "")
	}
	if m := cfg.Restriction.Mott; m != nil {
		r.Mott = optional.Some(fock.Mott{Orbitals: m.Orbitals, Electrons: m.Electrons})
	}

	mode, err := fock.ParseProjectionMode(cfg.Restriction.Projection)
	if err != nil {
		return embedci.Config{}, errors.Wrap(err, "")
	}
	if mode != fock.ProjectionNone {
		sz, err := st.Complex(ctx, impurity, store.NameSz)
		if err != nil {
			return embedci.Config{}, errors.Wrap(err, "")
		}
		var lz []complex128
		if mode == fock.ProjectionJz {
			lz, err = st.Complex(ctx, impurity, store.NameLz)
			if err != nil {
				return embedci.Config{}, errors.Wrap(err, "")
			}
		}
		w, err := fock.Weights(mode, norb, sz, lz)
		if err != nil {
			return embedci.Config{}, errors.Wrap(err, fmt.Sprintf("impurity %d", impurity))
		}
		proj := fock.Projection{Mode: mode, Weights: w}
		if t := cfg.Restriction.Target; t != nil {
			proj.Target = optional.Some(*t)
		}
		r.Projection = optional.Some(proj)
	}

	return embedci.Config{Params: p, Restriction: r}, nil
}

// readMott reads the Mott constraint, which is absent if NORB_MOTT is absent or zero.
func readMott(ctx context.Context, st *store.Store, impurity int) (optional.Value[fock.Mott], error) {
	none := optional.None[fock.Mott]()
	norbMott, err := st.Scalar(ctx, impurity, store.NameNorbMott)
	if errors.Is(err, store.ErrNotFound) {
		return none, nil
	}
	if err != nil {
		return none, errors.Wrap(err, "")
	}
	if norbMott == 0 {
		return none, nil
	}

	nelect, err := st.Scalar(ctx, impurity, store.NameNelectMott)
	if err != nil {
		return none, errors.Wrap(err, "")
	}
	iorb, err := st.Int(ctx, impurity, store.NameIorbMott)
	if err != nil {
		return none, errors.Wrap(err, "")
	}
	if len(iorb) != norbMott {
		return none, errors.Errorf("impurity %d: %d mott orbitals, %s %d", impurity, len(iorb), store.NameNorbMott, norbMott)
	}
	return optional.Some(fock.Mott{Orbitals: iorb, Electrons: nelect}), nil
}

// writeSolution writes the results of impurity to st.
func writeSolution(ctx context.Context, st *store.Store, impurity int, sol *embedci.Solution) error {
	if err := st.PutFloat(ctx, impurity, store.NameEmol, []float64{sol.Energy}); err != nil {
		return errors.Wrap(err, "")
	}
	modes, _ := sol.DensityMatrix.Dims()
	dm := make([]complex128, 0, modes*modes)
	for p := range modes {
		for q := range modes {
			dm = append(dm, sol.DensityMatrix.At(p, q))
		}
	}
	if err := st.PutComplex(ctx, impurity, store.NameDM, dm, modes, modes); err != nil {
		return errors.Wrap(err, "")
	}
	if err := st.PutInt(ctx, impurity, store.NameDimV, []int{sol.Dim}); err != nil {
		return errors.Wrap(err, "")
	}
	if err := st.PutComplex(ctx, impurity, store.NameEvec, sol.Vector); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// seedDimer writes a half filled Hubbard dimer, an orbital with both spins hybridized with its bath.
func seedDimer(ctx context.Context, st *store.Store, impurity int, u float64, mott bool) error {
	const norb = 2
	h1e := []complex128{complex(-u/2, 0), 0, 0, complex(-u/2, 0)}
	d := []complex128{0.5, 0, 0, 0.5}
	lambda := []complex128{0.1, 0, 0, 0.1}
	v2e := make([]complex128, norb*norb*norb*norb)
	// U n_0 n_1.
	v2e[((0*norb+0)*norb+1)*norb+1] = complex(u, 0)
	v2e[((1*norb+1)*norb+0)*norb+0] = complex(u, 0)
	sz := []complex128{0.5, 0, 0, -0.5}
	lz := make([]complex128, norb*norb)

	ints := []struct {
		name string
		v    []int
	}{
		{store.NameNorb, []int{norb}},
		{store.NameNvalBot, []int{norb}},
		{store.NameNvalTop, []int{norb}},
	}
	if mott {
		ints = append(ints, []struct {
			name string
			v    []int
		}{
			{store.NameNorbMott, []int{1}},
			{store.NameNelectMott, []int{1}},
			{store.NameIorbMott, []int{0}},
		}...)
	}
	for _, x := range ints {
		if err := st.PutInt(ctx, impurity, x.name, x.v); err != nil {
			return errors.Wrap(err, "")
		}
	}

	for _, x := range []struct {
		name string
		v    []complex128
		dims []int
	}{
		{store.NameH1E, h1e, []int{norb, norb}},
		{store.NameD, d, []int{norb, norb}},
		{store.NameLambda, lambda, []int{norb, norb}},
		{store.NameV2E, v2e, []int{norb, norb, norb, norb}},
		{store.NameSz, sz, []int{norb, norb}},
		{store.NameLz, lz, []int{norb, norb}},
	} {
		if err := st.PutComplex(ctx, impurity, x.name, x.v, x.dims...); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}
