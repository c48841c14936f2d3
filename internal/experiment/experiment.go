package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/bactsim/internal/config"
	"github.com/san-kum/bactsim/internal/culture"
	"github.com/san-kum/bactsim/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	simulator *sim.Simulator
}

// New validates cfg and wires a model, integrator and the default metrics.
func New(cfg *config.Config, registry *Registry, logger *slog.Logger) (*Experiment, error) {
	if registry == nil {
		registry = NewRegistry()
	}

	model, err := buildModel(cfg, registry)
	if err != nil {
		return nil, err
	}

	s := sim.New(model, logger)
	for _, m := range registry.DefaultMetrics() {
		s.AddMetric(m)
	}

	return &Experiment{
		cfg:       cfg.Clone(),
		registry:  registry,
		simulator: s,
	}, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Model is the configured culture model behind the experiment.
func (e *Experiment) Model() *culture.Model { return e.simulator.Model() }

func (e *Experiment) AddObserver(o sim.Observer) { e.simulator.AddObserver(o) }

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx)
}

// Sweep reruns the experiment for each step count, using the configured
// sweep when stepCounts is empty. Every run gets the same random seed.
func (e *Experiment) Sweep(ctx context.Context, stepCounts []int) ([]sim.SweepPoint, error) {
	if len(stepCounts) == 0 {
		stepCounts = e.cfg.Sweep
	}
	if len(stepCounts) == 0 {
		return nil, fmt.Errorf("no step counts to sweep")
	}

	stepper, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return nil, err
	}

	seed := e.cfg.RandSeed
	return sim.Sweep(ctx, e.cfg.Culture(), stepCounts,
		func(int) culture.Source { return culture.NewRandSource(seed) },
		culture.WithStepper(stepper),
	)
}

func buildModel(cfg *config.Config, registry *Registry) (*culture.Model, error) {
	stepper, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	return culture.NewModel(cfg.Culture(), culture.NewRandSource(cfg.RandSeed), culture.WithStepper(stepper))
}
