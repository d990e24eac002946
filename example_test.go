package embedci_test

import (
	"context"
	"fmt"
	"log"

	"github.com/fumin/embedci"
	"github.com/fumin/embedci/fock"
	"github.com/fumin/embedci/optional"
)

func Example() {
	// One impurity orbital at 0.3 hybridized with its bath orbital, holding a single electron.
	cfg := embedci.Config{
		Params: embedci.Params{
			Norb:    1,
			H1E:     []complex128{0.3},
			Daalpha: []complex128{1},
			Lambdac: []complex128{-0.3},
		},
		Restriction: fock.Restriction{ValenceMin: 1, ValenceMax: 1},
	}

	// Build the basis and operators, then search for the ground state.
	solver, err := embedci.NewSolver(cfg)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	if err := solver.Build(); err != nil {
		log.Fatalf("%+v", err)
	}
	sol, err := solver.Solve(context.Background(), optional.None[[]complex128]())
	if err != nil {
		log.Fatalf("%+v", err)
	}
	fmt.Printf("%d %f\n", sol.Dim, sol.Energy)
	// Output:
	// 2 -0.700000
}
