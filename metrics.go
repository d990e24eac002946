package embedci

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records solves, labeled by impurity.
type Metrics struct {
	applies      *prometheus.CounterVec
	basisStates  *prometheus.GaugeVec
	solveSeconds *prometheus.GaugeVec
}

// NewMetrics registers the solver metrics with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		applies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "embedci_apply_total",
			Help: "Total Hamiltonian applications",
		}, []string{"impurity"}),
		basisStates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "embedci_basis_states",
			Help: "Number of retained basis states",
		}, []string{"impurity"}),
		solveSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "embedci_solve_seconds",
			Help: "Duration of the last eigensolve",
		}, []string{"impurity"}),
	}
	for _, c := range []prometheus.Collector{m.applies, m.basisStates, m.solveSeconds} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}
	return m, nil
}
