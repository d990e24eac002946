package main

import (
	"context"
	"fmt"
	"math/cmplx"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fumin/embedci"
	"github.com/fumin/embedci/mat"
	"github.com/fumin/embedci/optional"
	"github.com/fumin/embedci/store"
)

type verifyFlags struct {
	inputFlags
	impurity int
	tol      float64
	printH   bool
}

func newVerifyCmd() *cobra.Command {
	f := &verifyFlags{}
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the sparse Hamiltonian of an impurity with a dense Jordan-Wigner construction",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return errors.Wrap(err, "")
			}
			return runVerify(cmd.Context(), cmd, f, cfg)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&f.impurity, "impurity", 1, "impurity to verify")
	cmd.Flags().Float64Var(&f.tol, "tol", 1e-10, "tolerance of matrix elements")
	cmd.Flags().BoolVar(&f.printH, "print", false, "print the dense Hamiltonian over the basis")
	return cmd
}

func runVerify(ctx context.Context, cmd *cobra.Command, f *verifyFlags, cfg Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(f.db)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer st.Close()

	ecfg, err := readConfig(ctx, st, f.impurity, cfg)
	if err != nil {
		return errors.Wrap(err, "")
	}
	logger := f.logger()
	solver, err := embedci.NewSolver(ecfg, embedci.NewOptions().Logger(logger).Seed(cfg.Solver.Seed).Retain(true))
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := solver.Build(); err != nil {
		return errors.Wrap(err, "")
	}
	h, err := solver.Hamiltonian()
	if err != nil {
		return errors.Wrap(err, "")
	}
	ref, err := embedci.ReferenceHamiltonian(ecfg.Params, solver.Basis())
	if err != nil {
		return errors.Wrap(err, "")
	}

	w := cmd.OutOrStdout()
	n := h.Dim()
	if n == 0 {
		fmt.Fprintf(w, "empty basis\n")
		return nil
	}
	if f.printH {
		fmt.Fprintf(w, "%s\n", mat.M(ref))
	}
	var maxDiff float64
	e := make([]complex128, n)
	col := make([]complex128, n)
	for j := range n {
		clear(e)
		clear(col)
		e[j] = 1
		h.Apply(col, e)
		for i, v := range col {
			maxDiff = max(maxDiff, cmplx.Abs(v-ref[i][j]))
		}
	}

	lowest, err := mat.LowestHermitian(ref)
	if err != nil {
		return errors.Wrap(err, "")
	}
	sol, err := solver.Solve(ctx, optional.None[[]complex128]())
	if err != nil {
		return errors.Wrap(err, "")
	}
	denseEnergy := lowest.Val - real(ecfg.Params.Trace())
	fmt.Fprintf(w, "dim %d, max element difference %g, energy %f, dense energy %f\n", n, maxDiff, sol.Energy, denseEnergy)
	if maxDiff > f.tol {
		return errors.Errorf("max element difference %g above %g", maxDiff, f.tol)
	}
	return nil
}
