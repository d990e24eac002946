// Package embedci computes the ground state of an impurity embedding Hamiltonian
// by configuration interaction over a restricted occupation-number basis.
//
// The basis is built from the valence window, an optional Mott constraint,
// and an optional Sz or Jz projection. The Hamiltonian is never materialized,
// instead it is applied to vectors through sparse one and two body blocks,
// and its lowest eigenpair is found by an iterative eigensolver.
//
// A Solver goes through the stages
//
//	StageUninitialized -> StageBasisBuilt -> StageOperatorsAssembled -> StageSolving -> StageConverged
//
// and returns ErrStage for operations called out of order.
package embedci

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/fumin/embedci/eigs"
	"github.com/fumin/embedci/fock"
	"github.com/fumin/embedci/optional"
)

var (
	// ErrConfig is returned for parameters or restrictions that cannot be solved.
	ErrConfig = errors.New("invalid configuration")
	// ErrStage is returned for operations called in the wrong stage.
	ErrStage = errors.New("wrong stage")
)

// Stage is the progress of a Solver.
type Stage int

const (
	StageUninitialized Stage = iota
	StageBasisBuilt
	StageOperatorsAssembled
	StageSolving
	StageConverged
)

func (s Stage) String() string {
	switch s {
	case StageUninitialized:
		return "uninitialized"
	case StageBasisBuilt:
		return "basis built"
	case StageOperatorsAssembled:
		return "operators assembled"
	case StageSolving:
		return "solving"
	case StageConverged:
		return "converged"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Config is the input of a solve.
type Config struct {
	Params Params
	// Restriction selects the basis over the Params.Modes() modes.
	// A zero Restriction.Modes is taken to be Params.Modes().
	// Mott orbitals must be impurity modes.
	Restriction fock.Restriction
}

// Validate checks that c can be solved.
func (c Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return errors.Wrap(err, "")
	}
	r := c.restriction()
	if r.Modes != c.Params.Modes() {
		return errors.Wrap(ErrConfig, fmt.Sprintf("restriction over %d modes, norb %d", r.Modes, c.Params.Norb))
	}
	if err := r.Validate(); err != nil {
		return errors.Wrap(ErrConfig, fmt.Sprintf("%+v", err))
	}
	if mott, ok := r.Mott.Get(); ok {
		for _, o := range mott.Orbitals {
			if o >= c.Params.Norb {
				return errors.Wrap(ErrConfig, fmt.Sprintf("mott orbital %d is not an impurity orbital, norb %d", o, c.Params.Norb))
			}
		}
	}
	if proj, ok := r.Projection.Get(); ok && proj.Mode == fock.ProjectionNone {
		return errors.Wrap(ErrConfig, "projection without a mode")
	}
	return nil
}

func (c Config) restriction() fock.Restriction {
	r := c.Restriction
	if r.Modes == 0 {
		r.Modes = c.Params.Modes()
	}
	return r
}

// Eigensolver finds the lowest eigenpair of a Hermitian operator.
type Eigensolver interface {
	Lowest(ctx context.Context, op eigs.Operator, v0 []complex128) (eigs.Result, error)
}

// Options are options for a Solver.
type Options struct {
	logger      *slog.Logger
	eigensolver Eigensolver
	seed        uint64
	metrics     *Metrics
	label       string
	retain      bool
}

// NewOptions returns the default solver options.
func NewOptions() Options {
	opt := Options{}
	opt.logger = slog.New(slog.DiscardHandler)
	opt.seed = 1
	return opt
}

// Logger sets the logger.
func (opt Options) Logger(logger *slog.Logger) Options {
	opt.logger = logger
	return opt
}

// Eigensolver sets the eigensolver, which defaults to Lanczos with default options.
func (opt Options) Eigensolver(e Eigensolver) Options {
	opt.eigensolver = e
	return opt
}

// Seed sets the seed of the random start vector of a cold start.
func (opt Options) Seed(seed uint64) Options {
	opt.seed = seed
	return opt
}

// Metrics sets the metrics to record solves in, under the given label.
func (opt Options) Metrics(m *Metrics, label string) Options {
	opt.metrics = m
	opt.label = label
	return opt
}

// Retain keeps the operators after convergence, so that the Hamiltonian remains available.
func (opt Options) Retain(retain bool) Options {
	opt.retain = retain
	return opt
}

// Solver is the context of the solve of one impurity.
// A Solver must not be used concurrently.
type Solver struct {
	cfg   Config
	opt   Options
	stage Stage

	basis *fock.Basis
	fact  *factorization
	ham   *Hamiltonian
}

// NewSolver validates cfg and returns an uninitialized Solver.
func NewSolver(cfg Config, options ...Options) (*Solver, error) {
	opt := NewOptions()
	if len(options) > 0 {
		opt = options[0]
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	cfg.Restriction = cfg.restriction()
	if opt.eigensolver == nil {
		opt.eigensolver = eigs.NewLanczos(eigs.NewOptions().Logger(opt.logger))
	}
	if opt.label != "" {
		opt.logger = opt.logger.With("impurity", opt.label)
	}
	return &Solver{cfg: cfg, opt: opt}, nil
}

// Stage returns the current stage.
func (s *Solver) Stage() Stage { return s.stage }

// Basis returns the retained basis, nil before BuildBasis.
func (s *Solver) Basis() *fock.Basis { return s.basis }

// BuildBasis enumerates the retained basis and factorizes it into impurity and bath parts.
func (s *Solver) BuildBasis() error {
	if err := s.expect(StageUninitialized); err != nil {
		return errors.Wrap(err, "")
	}
	basis, err := fock.Restrict(s.cfg.Restriction)
	if err != nil {
		return errors.Wrap(err, "")
	}
	fact, err := factorize(s.cfg, basis)
	if err != nil {
		return errors.Wrap(err, "")
	}
	s.basis, s.fact = basis, fact
	s.stage = StageBasisBuilt

	s.opt.logger.Info("basis built", "states", basis.Len(), "local", fact.local.Len(), "sectors", len(fact.sectors))
	if s.opt.metrics != nil {
		s.opt.metrics.basisStates.WithLabelValues(s.opt.label).Set(float64(basis.Len()))
	}
	return nil
}

// Assemble compiles the sparse operators of the Hamiltonian.
func (s *Solver) Assemble() error {
	if err := s.expect(StageBasisBuilt); err != nil {
		return errors.Wrap(err, "")
	}
	s.ham = assemble(s.cfg.Params, s.basis, s.fact)
	s.stage = StageOperatorsAssembled

	s.opt.logger.Info("operators assembled", "hops", s.ham.numHops(), "twoBody", s.ham.twoBody.NumNonZero())
	return nil
}

// Build runs BuildBasis and Assemble.
func (s *Solver) Build() error {
	if err := s.BuildBasis(); err != nil {
		return errors.Wrap(err, "")
	}
	if err := s.Assemble(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Hamiltonian returns the assembled Hamiltonian.
// It is unavailable after convergence unless the operators are retained.
func (s *Solver) Hamiltonian() (*Hamiltonian, error) {
	if s.ham == nil {
		return nil, errors.Wrap(ErrStage, fmt.Sprintf("no operators in stage %s", s.stage))
	}
	return s.ham, nil
}

// Solve finds the ground state, starting from restart if it is a vector over the basis.
// If the eigensolver fails to converge, its last approximation is returned together with the error,
// and Solve may be called again.
func (s *Solver) Solve(ctx context.Context, restart optional.Value[[]complex128]) (*Solution, error) {
	if err := s.expect(StageOperatorsAssembled); err != nil {
		return nil, errors.Wrap(err, "")
	}
	s.stage = StageSolving
	sol, err := s.solve(ctx, restart)
	if err != nil {
		s.stage = StageOperatorsAssembled
		return sol, errors.Wrap(err, "")
	}

	s.stage = StageConverged
	if !s.opt.retain {
		s.ham = nil
		s.fact = nil
	}
	return sol, nil
}

func (s *Solver) expect(stage Stage) error {
	if s.stage != stage {
		return errors.Wrap(ErrStage, fmt.Sprintf("%s, expected %s", s.stage, stage))
	}
	return nil
}
