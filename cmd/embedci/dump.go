package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fumin/embedci"
	"github.com/fumin/embedci/store"
)

type dumpFlags struct {
	inputFlags
	impurity int
	out      string
}

func newDumpCmd() *cobra.Command {
	f := &dumpFlags{}
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the two body operator of an impurity over its local basis as COO CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return errors.Wrap(err, "")
			}
			return runDump(cmd.Context(), cmd, f, cfg)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&f.impurity, "impurity", 1, "impurity to dump")
	cmd.Flags().StringVar(&f.out, "out", "twobody", "output directory")
	return cmd
}

func runDump(ctx context.Context, cmd *cobra.Command, f *dumpFlags, cfg Config) error {
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
	solver, err := embedci.NewSolver(ecfg, embedci.NewOptions().Logger(f.logger()))
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

	if err := os.MkdirAll(f.out, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}
	twoBody := h.TwoBody()
	if err := twoBody.COO().WriteCSV(f.out); err != nil {
		return errors.Wrap(err, "")
	}
	local := h.LocalBasis()
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "local states %d, nonzeros %d, written to %s\n", local.Len(), twoBody.NumNonZero(), f.out)
	for i, s := range local.States() {
		fmt.Fprintf(w, "%d %s\n", i, s.Format(ecfg.Params.Norb))
	}
	return nil
}
