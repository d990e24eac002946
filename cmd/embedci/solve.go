package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fumin/embedci"
	"github.com/fumin/embedci/eigs"
	"github.com/fumin/embedci/optional"
	"github.com/fumin/embedci/store"
)

type solveFlags struct {
	inputFlags
	impurities  []int
	jobs        int
	restartDir  string
	metricsFile string
}

func newSolveCmd() *cobra.Command {
	f := &solveFlags{}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve impurities and write their energy, density matrix and ground state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return errors.Wrap(err, "")
			}
			return runSolve(cmd.Context(), cmd, f, cfg)
		},
	}
	f.register(cmd)
	cmd.Flags().IntSliceVar(&f.impurities, "impurity", nil, "impurities to solve, all if empty")
	cmd.Flags().IntVar(&f.jobs, "jobs", 1, "number of impurities solved concurrently")
	cmd.Flags().StringVar(&f.restartDir, "restart", "", "directory of restart vectors, the database if empty")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "file to write prometheus metrics to")
	return cmd
}

type solveResult struct {
	impurity  int
	sol       *embedci.Solution
	converged bool
}

func runSolve(ctx context.Context, cmd *cobra.Command, f *solveFlags, cfg Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if f.jobs < 1 {
		return errors.Errorf("jobs %d", f.jobs)
	}
	st, err := store.Open(f.db)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer st.Close()

	impurities := f.impurities
	if len(impurities) == 0 {
		impurities, err = st.Impurities(ctx)
		if err != nil {
			return errors.Wrap(err, "")
		}
	}

	reg := prometheus.NewRegistry()
	metrics, err := embedci.NewMetrics(reg)
	if err != nil {
		return errors.Wrap(err, "")
	}
	logger := f.logger()

	results := make([]solveResult, len(impurities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.jobs)
	for i, imp := range impurities {
		g.Go(func() error {
			label := strconv.Itoa(imp)
			opt := embedci.NewOptions().
				Logger(logger).
				Eigensolver(eigs.NewLanczos(cfg.lanczos().Logger(logger.With("impurity", label)))).
				Seed(cfg.Solver.Seed).
				Metrics(metrics, label)
			sol, err := solveImpurity(gctx, st, imp, cfg, f.restartDir, opt)
			switch {
			case errors.Is(err, eigs.ErrNotConverged) && sol != nil:
				logger.Warn("not converged", "impurity", imp, "residual", sol.Residual, "err", err)
				results[i] = solveResult{impurity: imp, sol: sol}
				return nil
			case err != nil:
				return errors.Wrap(err, fmt.Sprintf("impurity %d", imp))
			}
			results[i] = solveResult{impurity: imp, sol: sol, converged: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "")
	}

	if f.metricsFile != "" {
		if err := prometheus.WriteToTextfile(f.metricsFile, reg); err != nil {
			return errors.Wrap(err, "")
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "impurity,dim,energy,iterations,residual,converged\n")
	notConverged := make([]int, 0)
	for _, r := range results {
		fmt.Fprintf(w, "%d,%d,%f,%d,%g,%t\n", r.impurity, r.sol.Dim, r.sol.Energy, r.sol.Iterations, r.sol.Residual, r.converged)
		if !r.converged {
			notConverged = append(notConverged, r.impurity)
		}
	}
	if len(notConverged) > 0 {
		return errors.Wrap(eigs.ErrNotConverged, fmt.Sprintf("impurities %v", notConverged))
	}
	return nil
}

func solveImpurity(ctx context.Context, st *store.Store, impurity int, cfg Config, restartDir string, opt embedci.Options) (*embedci.Solution, error) {
	ecfg, err := readConfig(ctx, st, impurity, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	restart, err := readRestart(ctx, st, impurity, restartDir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	solver, err := embedci.NewSolver(ecfg, opt)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := solver.Build(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	sol, err := solver.Solve(ctx, restart)
	if err != nil {
		if !errors.Is(err, eigs.ErrNotConverged) || sol == nil {
			return nil, errors.Wrap(err, "")
		}
		// Keep the approximation as the restart vector of the next run, but not as a result.
		if err1 := writeRestart(ctx, st, impurity, restartDir, sol.Vector); err1 != nil {
			return nil, errors.Wrap(err1, "")
		}
		return sol, errors.Wrap(err, "")
	}

	if err := writeSolution(ctx, st, impurity, sol); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if restartDir != "" {
		if err := writeRestart(ctx, st, impurity, restartDir, sol.Vector); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}
	return sol, nil
}

// writeRestart writes v to restartDir, or to st if restartDir is empty.
func writeRestart(ctx context.Context, st *store.Store, impurity int, restartDir string, v []complex128) error {
	if restartDir == "" {
		if err := st.PutComplex(ctx, impurity, store.NameEvec, v); err != nil {
			return errors.Wrap(err, "")
		}
		return nil
	}
	dir := filepath.Join(restartDir, strconv.Itoa(impurity))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}
	if err := store.WriteVector(dir, v); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// readRestart reads the previous ground state of impurity from restartDir, or from st if restartDir is empty.
// A missing vector is not an error.
func readRestart(ctx context.Context, st *store.Store, impurity int, restartDir string) (optional.Value[[]complex128], error) {
	none := optional.None[[]complex128]()
	if restartDir != "" {
		v, err := store.ReadVector(filepath.Join(restartDir, strconv.Itoa(impurity)))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return none, nil
		case err != nil:
			return none, errors.Wrap(err, "")
		}
		return optional.Some(v), nil
	}

	v, err := st.Complex(ctx, impurity, store.NameEvec)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return none, nil
	case err != nil:
		return none, errors.Wrap(err, "")
	}
	return optional.Some(v), nil
}
