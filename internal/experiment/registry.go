package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/bactsim/internal/integrators"
	"github.com/san-kum/bactsim/internal/metrics"
	"github.com/san-kum/bactsim/internal/sim"
)

type Registry struct {
	integrators map[string]func() integrators.Stepper
	metrics     map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() integrators.Stepper),
		metrics:     make(map[string]func() sim.Metric),
	}

	r.integrators["euler"] = func() integrators.Stepper { return integrators.NewEuler() }
	r.integrators["rk4"] = func() integrators.Stepper { return integrators.NewRK4() }

	r.metrics["max_abs_error"] = func() sim.Metric { return metrics.NewMaxAbsError() }
	r.metrics["mean_rel_error"] = func() sim.Metric { return metrics.NewMeanRelError() }
	r.metrics["final_rel_error"] = func() sim.Metric { return metrics.NewFinalRelError() }

	return r
}

func (r *Registry) GetIntegrator(name string) (integrators.Stepper, error) {
	if name == "" {
		name = "euler"
	}
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh instances of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, r.metrics[name]())
	}
	return out
}
